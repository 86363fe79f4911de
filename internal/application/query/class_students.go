package query

import (
	"context"
	"fmt"

	"github.com/escola-hub/escola-server/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLASS STUDENTS QUERY
// Returns the student summaries of one class group, keyed by RA. An
// unknown class group yields an empty map.
// ══════════════════════════════════════════════════════════════════════════════

// GetClassStudentsQuery identifies the class group.
type GetClassStudentsQuery struct {
	ClassGroup string `validate:"required"`
}

// Validate validates the query.
func (q GetClassStudentsQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("get_class_students: %w", err)
	}
	return nil
}

// GetClassStudentsHandler handles the GetClassStudentsQuery.
type GetClassStudentsHandler struct {
	store Store
}

// NewGetClassStudentsHandler creates a new GetClassStudentsHandler.
func NewGetClassStudentsHandler(store Store) *GetClassStudentsHandler {
	return &GetClassStudentsHandler{store: store}
}

// Handle fetches the class group's student summaries.
func (h *GetClassStudentsHandler) Handle(ctx context.Context, q GetClassStudentsQuery) (any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("get_class_students: load state: %w", err)
	}

	cg := state.ClassGroups[q.ClassGroup]
	if cg == nil {
		return map[string]*school.StudentSummary{}, nil
	}
	return cg.Students, nil
}
