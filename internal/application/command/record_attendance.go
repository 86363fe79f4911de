package command

import (
	"context"
	"fmt"

	"github.com/escola-hub/escola-server/internal/application/reply"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ATTENDANCE COMMAND
// Takes a roll call for a class group: every student marked absent gains one
// absence on both the canonical record and the class-group mirror. Entries
// for RAs not enrolled in the class group are skipped.
// ══════════════════════════════════════════════════════════════════════════════

// RecordAttendanceCommand contains one roll call.
type RecordAttendanceCommand struct {
	ClassGroup string `validate:"required"`
	// Presence maps RA to a presence value. Truthiness follows the wire
	// format: false, 0, "" and nil all mean absent.
	Presence map[string]any
}

// Validate validates the command.
func (c RecordAttendanceCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("record_attendance: %w", err)
	}
	return nil
}

// RecordAttendanceHandler handles the RecordAttendanceCommand.
type RecordAttendanceHandler struct {
	store Store
}

// NewRecordAttendanceHandler creates a new RecordAttendanceHandler.
func NewRecordAttendanceHandler(store Store) *RecordAttendanceHandler {
	return &RecordAttendanceHandler{store: store}
}

// Handle executes the record attendance command.
func (h *RecordAttendanceHandler) Handle(ctx context.Context, cmd RecordAttendanceCommand) (reply.R, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("record_attendance: load state: %w", err)
	}

	if _, exists := state.ClassGroups[cmd.ClassGroup]; !exists {
		return reply.Fail("Turma não encontrada!"), nil
	}

	for ra, presence := range cmd.Presence {
		if isPresent(presence) {
			continue
		}
		state.IncrementAbsence(cmd.ClassGroup, ra)
	}

	if err := h.store.Save(state); err != nil {
		return nil, fmt.Errorf("record_attendance: save state: %w", err)
	}
	return reply.OK("Chamada registrada!"), nil
}

// isPresent interprets a decoded JSON value as a presence flag.
func isPresent(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case nil:
		return false
	default:
		return true
	}
}
