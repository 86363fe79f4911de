package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/escola-hub/escola-server/internal/application/reply"
	"github.com/escola-hub/escola-server/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLASS REPORT QUERY
// Builds a grades-and-absences report of one class group in one subject.
// Fields never launched show the S/D marker so the report stays rectangular.
// ══════════════════════════════════════════════════════════════════════════════

// GetClassReportQuery identifies the subject offering to report on.
type GetClassReportQuery struct {
	Subject    string `validate:"required"`
	ClassGroup string `validate:"required"`
}

// Validate validates the query.
func (q GetClassReportQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("get_class_report: %w", err)
	}
	return nil
}

// GetClassReportHandler handles the GetClassReportQuery.
type GetClassReportHandler struct {
	store Store
}

// NewGetClassReportHandler creates a new GetClassReportHandler.
func NewGetClassReportHandler(store Store) *GetClassReportHandler {
	return &GetClassReportHandler{store: store}
}

// Handle builds the report, one row per student, ordered by RA.
func (h *GetClassReportHandler) Handle(ctx context.Context, q GetClassReportQuery) (any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("get_class_report: load state: %w", err)
	}

	cg := state.ClassGroups[q.ClassGroup]
	if cg == nil {
		return []reply.R{}, nil
	}

	ras := make([]string, 0, len(cg.Students))
	for ra := range cg.Students {
		ras = append(ras, ra)
	}
	sort.Strings(ras)

	report := make([]reply.R, 0, len(ras))
	for _, ra := range ras {
		info := cg.Students[ra]
		rec := info.Grades[q.Subject]
		report = append(report, reply.R{
			"nome":       info.Name,
			"ra":         ra,
			"np1":        scoreOrMarker(recNP1(rec)),
			"np2":        scoreOrMarker(recNP2(rec)),
			"media_ativ": scoreOrMarker(recAverage(rec)),
			"final":      scoreOrMarker(recFinal(rec)),
			"faltas":     info.Absences,
		})
	}
	return report, nil
}

func scoreOrMarker(v *float64) any {
	if v == nil {
		return school.GradeNoData
	}
	return *v
}

func recNP1(r *school.GradeRecord) *float64 {
	if r == nil {
		return nil
	}
	return r.NP1
}

func recNP2(r *school.GradeRecord) *float64 {
	if r == nil {
		return nil
	}
	return r.NP2
}

func recAverage(r *school.GradeRecord) *float64 {
	if r == nil {
		return nil
	}
	return r.ActivityAverage
}

func recFinal(r *school.GradeRecord) *float64 {
	if r == nil {
		return nil
	}
	return r.FinalGrade
}
