package command

import (
	"context"
	"fmt"

	"github.com/escola-hub/escola-server/internal/application/reply"
	"github.com/escola-hub/escola-server/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCORE ASSIGNMENT COMMAND
// A teacher grades one student's assignment response. The score lands on
// both copies of the assignment.
// ══════════════════════════════════════════════════════════════════════════════

// ScoreAssignmentCommand contains the data to grade a response.
type ScoreAssignmentCommand struct {
	Subject    string `validate:"required"`
	ClassGroup string `validate:"required"`
	Assignment string `validate:"required"`
	RA         string `validate:"required"`
	Score      float64
}

// Validate validates the command.
func (c ScoreAssignmentCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("score_assignment: %w", err)
	}
	return nil
}

// ScoreAssignmentHandler handles the ScoreAssignmentCommand.
type ScoreAssignmentHandler struct {
	store Store
}

// NewScoreAssignmentHandler creates a new ScoreAssignmentHandler.
func NewScoreAssignmentHandler(store Store) *ScoreAssignmentHandler {
	return &ScoreAssignmentHandler{store: store}
}

// Handle executes the score assignment command.
func (h *ScoreAssignmentHandler) Handle(ctx context.Context, cmd ScoreAssignmentCommand) (reply.R, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if !school.ScoreInRange(cmd.Score) {
		return reply.Fail("Nota inválida! A nota deve estar entre 0 e 10."), nil
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("score_assignment: load state: %w", err)
	}

	if !state.SetAssignmentScore(cmd.Subject, cmd.ClassGroup, cmd.Assignment, cmd.RA, cmd.Score) {
		return reply.Fail("Atividade não encontrada na disciplina."), nil
	}

	if err := h.store.Save(state); err != nil {
		return nil, fmt.Errorf("score_assignment: save state: %w", err)
	}
	return reply.OKf("Nota %v salva para o aluno RA %s.", cmd.Score, cmd.RA), nil
}
