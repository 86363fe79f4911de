package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/escola-hub/escola-server/internal/application/reply"
	"github.com/escola-hub/escola-server/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT RECORD QUERY
// Fetches one student's profile with formatted grades, no credentials
// required. Used by the student menu to refresh its view.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentRecordQuery identifies the student.
type GetStudentRecordQuery struct {
	RA string `validate:"required"`
}

// Validate validates the query.
func (q GetStudentRecordQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("get_student_record: %w", err)
	}
	return nil
}

// GetStudentRecordHandler handles the GetStudentRecordQuery.
type GetStudentRecordHandler struct {
	store Store
}

// NewGetStudentRecordHandler creates a new GetStudentRecordHandler.
func NewGetStudentRecordHandler(store Store) *GetStudentRecordHandler {
	return &GetStudentRecordHandler{store: store}
}

// Handle fetches the student record.
func (h *GetStudentRecordHandler) Handle(ctx context.Context, q GetStudentRecordQuery) (reply.R, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("get_student_record: load state: %w", err)
	}

	ra := strings.ToUpper(q.RA)
	student := state.Students[ra]
	if student == nil {
		return reply.Fail("Aluno não encontrado."), nil
	}

	return reply.R{
		"success": true,
		"ra":      ra,
		"nome":    student.Name,
		"turma":   student.ClassGroup,
		"faltas":  student.Absences,
		"notas":   school.FormatGradeViews(student.Grades),
	}, nil
}
