package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/escola-hub/escola-server/internal/application/reply"
	"github.com/escola-hub/escola-server/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER SUBJECT COMMAND
// Creates a subject offering binding a subject, a class group, and a teacher.
// The canonical record and the class-group mirror are created together.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterSubjectCommand contains the data to create a subject offering.
type RegisterSubjectCommand struct {
	Subject    string `validate:"required"`
	ClassGroup string `validate:"required"`
	TeacherCPF string `validate:"required"`
}

// Validate validates the command.
func (c RegisterSubjectCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("register_subject: %w", err)
	}
	return nil
}

// RegisterSubjectHandler handles the RegisterSubjectCommand.
type RegisterSubjectHandler struct {
	store Store
}

// NewRegisterSubjectHandler creates a new RegisterSubjectHandler.
func NewRegisterSubjectHandler(store Store) *RegisterSubjectHandler {
	return &RegisterSubjectHandler{store: store}
}

// Handle executes the register subject command.
func (h *RegisterSubjectHandler) Handle(ctx context.Context, cmd RegisterSubjectCommand) (reply.R, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("register_subject: load state: %w", err)
	}

	subject := strings.ToUpper(cmd.Subject)
	key := school.OfferingKey(subject, cmd.ClassGroup)

	if _, exists := state.Offerings[key]; exists {
		return reply.Failf("A disciplina '%s' já está cadastrada na turma '%s'!", subject, cmd.ClassGroup), nil
	}
	if _, exists := state.ClassGroups[cmd.ClassGroup]; !exists {
		return reply.Fail("Turma não encontrada!"), nil
	}
	teacher, exists := state.Teachers[cmd.TeacherCPF]
	if !exists {
		return reply.Fail("Professor não encontrado!"), nil
	}

	state.AddOffering(subject, school.TeacherRef{CPF: cmd.TeacherCPF, Name: teacher.Name}, cmd.ClassGroup)

	if err := h.store.Save(state); err != nil {
		return nil, fmt.Errorf("register_subject: save state: %w", err)
	}
	return reply.OKf("Disciplina '%s' cadastrada na turma '%s' com o professor '%s'.",
		subject, cmd.ClassGroup, teacher.Name), nil
}
