package command

import (
	"context"
	"fmt"

	"github.com/escola-hub/escola-server/internal/application/reply"
	"github.com/escola-hub/escola-server/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD LESSON COMMAND
// Registers one class session under a date key. Lessons live only in the
// class-group mirror; one lesson per date per offering.
// ══════════════════════════════════════════════════════════════════════════════

// RecordLessonCommand contains the data to register a lesson.
type RecordLessonCommand struct {
	Subject     string `validate:"required"`
	ClassGroup  string `validate:"required"`
	Date        string `validate:"required"`
	Description string `validate:"required"`
}

// Validate validates the command.
func (c RecordLessonCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("record_lesson: %w", err)
	}
	return nil
}

// RecordLessonHandler handles the RecordLessonCommand.
type RecordLessonHandler struct {
	store Store
}

// NewRecordLessonHandler creates a new RecordLessonHandler.
func NewRecordLessonHandler(store Store) *RecordLessonHandler {
	return &RecordLessonHandler{store: store}
}

// Handle executes the record lesson command.
func (h *RecordLessonHandler) Handle(ctx context.Context, cmd RecordLessonCommand) (reply.R, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("record_lesson: load state: %w", err)
	}

	cg := state.ClassGroups[cmd.ClassGroup]
	if cg == nil {
		return reply.Fail("Turma ou disciplina não encontrada."), nil
	}
	mirror := cg.Subjects[cmd.Subject]
	if mirror == nil {
		return reply.Fail("Turma ou disciplina não encontrada."), nil
	}
	if _, exists := mirror.Lessons[cmd.Date]; exists {
		return reply.Failf("Já existe uma aula registrada para a data %s.", cmd.Date), nil
	}

	mirror.Lessons[cmd.Date] = &school.Lesson{Description: cmd.Description}

	if err := h.store.Save(state); err != nil {
		return nil, fmt.Errorf("record_lesson: save state: %w", err)
	}
	return reply.OKf("Aula de %s em %s registrada com sucesso!", cmd.Subject, cmd.Date), nil
}
