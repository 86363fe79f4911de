package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/escola-hub/escola-server/internal/application/reply"
)

// ══════════════════════════════════════════════════════════════════════════════
// LESSONS QUERY
// Lists the lessons registered for one offering, ordered by date key.
// ══════════════════════════════════════════════════════════════════════════════

// ListLessonsQuery identifies the offering.
type ListLessonsQuery struct {
	Subject    string `validate:"required"`
	ClassGroup string `validate:"required"`
}

// Validate validates the query.
func (q ListLessonsQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("list_lessons: %w", err)
	}
	return nil
}

// ListLessonsHandler handles the ListLessonsQuery.
type ListLessonsHandler struct {
	store Store
}

// NewListLessonsHandler creates a new ListLessonsHandler.
func NewListLessonsHandler(store Store) *ListLessonsHandler {
	return &ListLessonsHandler{store: store}
}

// Handle lists the offering's lessons sorted ascending by date key.
func (h *ListLessonsHandler) Handle(ctx context.Context, q ListLessonsQuery) (reply.R, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("list_lessons: load state: %w", err)
	}

	cg := state.ClassGroups[q.ClassGroup]
	if cg == nil || cg.Subjects[q.Subject] == nil {
		return reply.Fail("Turma ou disciplina não encontrada."), nil
	}

	lessons := cg.Subjects[q.Subject].Lessons
	dates := make([]string, 0, len(lessons))
	for date := range lessons {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	listed := make([]reply.R, 0, len(dates))
	for _, date := range dates {
		listed = append(listed, reply.R{
			"data":      date,
			"descricao": lessons[date].Description,
		})
	}
	return reply.R{"success": true, "aulas": listed}, nil
}
