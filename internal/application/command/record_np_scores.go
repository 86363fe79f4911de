package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/escola-hub/escola-server/internal/application/reply"
	"github.com/escola-hub/escola-server/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD NP SCORES COMMAND
// Bulk-launches NP1 or NP2 exam scores for a class. Entries that do not
// parse as a number, fall outside [0, 10], or reference a student not in
// the class group are skipped; the rest are applied and the batch reports
// success.
// ══════════════════════════════════════════════════════════════════════════════

// RecordNPScoresCommand contains one score batch.
type RecordNPScoresCommand struct {
	Subject    string `validate:"required"`
	ClassGroup string `validate:"required"`
	Kind       string `validate:"required,oneof=NP1 NP2"`
	// Scores maps RA to a score, as a JSON number or numeric string.
	Scores map[string]any
}

// Validate validates the command.
func (c RecordNPScoresCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("record_np_scores: %w", err)
	}
	return nil
}

// RecordNPScoresHandler handles the RecordNPScoresCommand.
type RecordNPScoresHandler struct {
	store Store
}

// NewRecordNPScoresHandler creates a new RecordNPScoresHandler.
func NewRecordNPScoresHandler(store Store) *RecordNPScoresHandler {
	return &RecordNPScoresHandler{store: store}
}

// Handle executes the record NP scores command.
func (h *RecordNPScoresHandler) Handle(ctx context.Context, cmd RecordNPScoresCommand) (reply.R, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("record_np_scores: load state: %w", err)
	}

	for ra, raw := range cmd.Scores {
		score, ok := parseScore(raw)
		if !ok || !school.ScoreInRange(score) {
			continue
		}
		state.SetExamScore(cmd.ClassGroup, ra, cmd.Subject, cmd.Kind, score)
	}

	if err := h.store.Save(state); err != nil {
		return nil, fmt.Errorf("record_np_scores: save state: %w", err)
	}
	return reply.OKf("Lançamento de %s concluído!", cmd.Kind), nil
}

// parseScore accepts the numeric forms a JSON client may send.
func parseScore(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
