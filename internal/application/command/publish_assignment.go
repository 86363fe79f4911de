package command

import (
	"context"
	"fmt"

	"github.com/escola-hub/escola-server/internal/application/reply"
)

// MaxAssignmentsPerSubject caps how many assignments one offering can carry.
const MaxAssignmentsPerSubject = 10

// ══════════════════════════════════════════════════════════════════════════════
// PUBLISH ASSIGNMENT COMMAND
// A teacher publishes an assignment with a material link. The assignment is
// created on the canonical offering and its class-group mirror together.
// ══════════════════════════════════════════════════════════════════════════════

// PublishAssignmentCommand contains the data to publish an assignment.
type PublishAssignmentCommand struct {
	Subject    string `validate:"required"`
	ClassGroup string `validate:"required"`
	Name       string `validate:"required"`
	Link       string `validate:"required"`
}

// Validate validates the command.
func (c PublishAssignmentCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("publish_assignment: %w", err)
	}
	return nil
}

// PublishAssignmentHandler handles the PublishAssignmentCommand.
type PublishAssignmentHandler struct {
	store Store
}

// NewPublishAssignmentHandler creates a new PublishAssignmentHandler.
func NewPublishAssignmentHandler(store Store) *PublishAssignmentHandler {
	return &PublishAssignmentHandler{store: store}
}

// Handle executes the publish assignment command.
func (h *PublishAssignmentHandler) Handle(ctx context.Context, cmd PublishAssignmentCommand) (reply.R, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("publish_assignment: load state: %w", err)
	}

	cg := state.ClassGroups[cmd.ClassGroup]
	if cg == nil {
		return reply.Fail("Turma não encontrada!"), nil
	}
	mirror := cg.Subjects[cmd.Subject]
	if mirror == nil {
		return reply.Fail("Disciplina não encontrada na turma!"), nil
	}
	if len(mirror.Assignments) >= MaxAssignmentsPerSubject {
		return reply.Fail("Limite de 10 atividades por disciplina atingido (modelo fixo)."), nil
	}

	state.AddAssignment(cmd.Subject, cmd.ClassGroup, cmd.Name, cmd.Link)

	if err := h.store.Save(state); err != nil {
		return nil, fmt.Errorf("publish_assignment: save state: %w", err)
	}
	return reply.OKf("Atividade '%s' enviada.", cmd.Name), nil
}
