package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/escola-hub/escola-server/internal/application/reply"
	"github.com/escola-hub/escola-server/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// ASSIGNMENT QUERIES
// Three views over assignments: the teacher's listing of one offering, the
// deliveries of one assignment, and the student's catalog of every
// assignment published in their class group.
// ══════════════════════════════════════════════════════════════════════════════

// GetSubjectAssignmentsQuery identifies one offering.
type GetSubjectAssignmentsQuery struct {
	Subject    string `validate:"required"`
	ClassGroup string `validate:"required"`
}

// Validate validates the query.
func (q GetSubjectAssignmentsQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("get_subject_assignments: %w", err)
	}
	return nil
}

// GetSubjectAssignmentsHandler handles the GetSubjectAssignmentsQuery.
type GetSubjectAssignmentsHandler struct {
	store Store
}

// NewGetSubjectAssignmentsHandler creates a new GetSubjectAssignmentsHandler.
func NewGetSubjectAssignmentsHandler(store Store) *GetSubjectAssignmentsHandler {
	return &GetSubjectAssignmentsHandler{store: store}
}

// Handle returns the offering's assignments keyed by name. Unknown
// class group or subject yields an empty map.
func (h *GetSubjectAssignmentsHandler) Handle(ctx context.Context, q GetSubjectAssignmentsQuery) (any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("get_subject_assignments: load state: %w", err)
	}

	cg := state.ClassGroups[q.ClassGroup]
	if cg == nil || cg.Subjects[q.Subject] == nil {
		return map[string]*school.Assignment{}, nil
	}
	return cg.Subjects[q.Subject].Assignments, nil
}

// GetAssignmentDeliveriesQuery identifies one assignment.
type GetAssignmentDeliveriesQuery struct {
	Subject    string `validate:"required"`
	ClassGroup string `validate:"required"`
	Assignment string `validate:"required"`
}

// Validate validates the query.
func (q GetAssignmentDeliveriesQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("get_assignment_deliveries: %w", err)
	}
	return nil
}

// GetAssignmentDeliveriesHandler handles the GetAssignmentDeliveriesQuery.
type GetAssignmentDeliveriesHandler struct {
	store Store
}

// NewGetAssignmentDeliveriesHandler creates a new GetAssignmentDeliveriesHandler.
func NewGetAssignmentDeliveriesHandler(store Store) *GetAssignmentDeliveriesHandler {
	return &GetAssignmentDeliveriesHandler{store: store}
}

// Handle lists who handed in the assignment, with each current score or
// the pending marker. Responses from RAs no longer in the class group are
// filtered out. Rows are ordered by RA.
func (h *GetAssignmentDeliveriesHandler) Handle(ctx context.Context, q GetAssignmentDeliveriesQuery) (any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("get_assignment_deliveries: load state: %w", err)
	}

	deliveries := []reply.R{}
	cg := state.ClassGroups[q.ClassGroup]
	if cg == nil || cg.Subjects[q.Subject] == nil {
		return deliveries, nil
	}
	assignment := cg.Subjects[q.Subject].Assignments[q.Assignment]
	if assignment == nil {
		return deliveries, nil
	}

	ras := make([]string, 0, len(assignment.Submissions))
	for ra := range assignment.Submissions {
		ras = append(ras, ra)
	}
	sort.Strings(ras)

	for _, ra := range ras {
		info := cg.Students[ra]
		if info == nil {
			continue
		}
		var score any = school.GradePending
		if v, ok := assignment.Scores[ra]; ok {
			score = v
		}
		deliveries = append(deliveries, reply.R{
			"ra":         ra,
			"nome":       info.Name,
			"link":       assignment.Submissions[ra],
			"nota_atual": score,
		})
	}
	return deliveries, nil
}

// GetStudentAssignmentsQuery identifies the student.
type GetStudentAssignmentsQuery struct {
	RA string `validate:"required"`
}

// Validate validates the query.
func (q GetStudentAssignmentsQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("get_student_assignments: %w", err)
	}
	return nil
}

// GetStudentAssignmentsHandler handles the GetStudentAssignmentsQuery.
type GetStudentAssignmentsHandler struct {
	store Store
}

// NewGetStudentAssignmentsHandler creates a new GetStudentAssignmentsHandler.
func NewGetStudentAssignmentsHandler(store Store) *GetStudentAssignmentsHandler {
	return &GetStudentAssignmentsHandler{store: store}
}

// Handle lists every assignment published in the student's class group,
// flagged with whether the student already submitted. Subjects and
// assignments are ordered by name.
func (h *GetStudentAssignmentsHandler) Handle(ctx context.Context, q GetStudentAssignmentsQuery) (reply.R, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("get_student_assignments: load state: %w", err)
	}

	ra := strings.ToUpper(q.RA)
	student := state.Students[ra]
	if student == nil {
		return reply.Fail("Aluno não encontrado."), nil
	}
	cg := state.ClassGroups[student.ClassGroup]
	if cg == nil {
		return reply.Fail("Turma não encontrada!"), nil
	}

	subjects := make([]string, 0, len(cg.Subjects))
	for name := range cg.Subjects {
		subjects = append(subjects, name)
	}
	sort.Strings(subjects)

	listed := []reply.R{}
	for _, subject := range subjects {
		mirror := cg.Subjects[subject]
		names := make([]string, 0, len(mirror.Assignments))
		for name := range mirror.Assignments {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			info := mirror.Assignments[name]
			link := info.Link
			if link == "" {
				link = "Link Indisponível"
			}
			_, submitted := student.Submissions[name]
			listed = append(listed, reply.R{
				"disciplina": subject,
				"nome":       name,
				"link":       link,
				"enviada":    submitted,
			})
		}
	}

	return reply.R{
		"success":           true,
		"atividades":        listed,
		"turma":             student.ClassGroup,
		"disciplinas_turma": subjects,
	}, nil
}
