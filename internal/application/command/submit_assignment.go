package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/escola-hub/escola-server/internal/application/reply"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT ASSIGNMENT COMMAND
// A student hands in a response link for an assignment in their own class
// group. Resubmitting overwrites the previous link.
// ══════════════════════════════════════════════════════════════════════════════

// SubmitAssignmentCommand contains the data to submit a response.
type SubmitAssignmentCommand struct {
	RA         string `validate:"required"`
	Subject    string `validate:"required"`
	Assignment string `validate:"required"`
	Link       string `validate:"required"`
}

// Validate validates the command.
func (c SubmitAssignmentCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("submit_assignment: %w", err)
	}
	return nil
}

// SubmitAssignmentHandler handles the SubmitAssignmentCommand.
type SubmitAssignmentHandler struct {
	store Store
}

// NewSubmitAssignmentHandler creates a new SubmitAssignmentHandler.
func NewSubmitAssignmentHandler(store Store) *SubmitAssignmentHandler {
	return &SubmitAssignmentHandler{store: store}
}

// Handle executes the submit assignment command.
func (h *SubmitAssignmentHandler) Handle(ctx context.Context, cmd SubmitAssignmentCommand) (reply.R, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("submit_assignment: load state: %w", err)
	}

	ra := strings.ToUpper(cmd.RA)
	student := state.Students[ra]
	if student == nil {
		return reply.Fail("Aluno não encontrado."), nil
	}
	cg := state.ClassGroups[student.ClassGroup]
	if cg == nil || cg.Subjects[cmd.Subject] == nil {
		return reply.Fail("Disciplina não está na sua turma."), nil
	}
	if cg.Subjects[cmd.Subject].Assignments[cmd.Assignment] == nil {
		return reply.Fail("Atividade não encontrada na disciplina."), nil
	}

	state.RecordSubmission(ra, cmd.Subject, cmd.Assignment, cmd.Link)

	if err := h.store.Save(state); err != nil {
		return nil, fmt.Errorf("submit_assignment: save state: %w", err)
	}
	return reply.OKf("Atividade '%s' enviada com sucesso! O professor já pode verificar o link.", cmd.Assignment), nil
}
