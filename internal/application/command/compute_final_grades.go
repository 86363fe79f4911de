package command

import (
	"context"
	"fmt"

	"github.com/escola-hub/escola-server/internal/application/reply"
	"github.com/escola-hub/escola-server/internal/domain/school"
	"github.com/escola-hub/escola-server/internal/infrastructure/grading"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPUTE FINAL GRADES COMMAND
// Computes the assignments average and the weighted final grade for every
// student of a class group in one subject. The weighted sum goes through
// the configured grading calculator; results are rounded to two decimals
// and written to both sides of the mirror.
// ══════════════════════════════════════════════════════════════════════════════

// ComputeFinalGradesCommand identifies the subject offering to close.
type ComputeFinalGradesCommand struct {
	Subject    string `validate:"required"`
	ClassGroup string `validate:"required"`
}

// Validate validates the command.
func (c ComputeFinalGradesCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("compute_final_grades: %w", err)
	}
	return nil
}

// ComputeFinalGradesHandler handles the ComputeFinalGradesCommand.
type ComputeFinalGradesHandler struct {
	store      Store
	calculator grading.Calculator
}

// NewComputeFinalGradesHandler creates a new ComputeFinalGradesHandler.
func NewComputeFinalGradesHandler(store Store, calculator grading.Calculator) *ComputeFinalGradesHandler {
	return &ComputeFinalGradesHandler{store: store, calculator: calculator}
}

// Handle executes the compute final grades command.
func (h *ComputeFinalGradesHandler) Handle(ctx context.Context, cmd ComputeFinalGradesCommand) (reply.R, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("compute_final_grades: load state: %w", err)
	}

	cg := state.ClassGroups[cmd.ClassGroup]
	if cg == nil {
		return reply.Fail("Turma não encontrada!"), nil
	}

	for ra := range cg.Students {
		h.computeFor(state, ra, cmd.Subject)
	}

	if err := h.store.Save(state); err != nil {
		return nil, fmt.Errorf("compute_final_grades: save state: %w", err)
	}
	return reply.OK("Cálculo das notas finais concluído."), nil
}

// computeFor computes and stores one student's grades. Students whose own
// class group does not carry the subject are skipped.
func (h *ComputeFinalGradesHandler) computeFor(state *school.State, ra, subject string) {
	student := state.Students[ra]
	if student == nil {
		return
	}
	cg := state.ClassGroups[student.ClassGroup]
	if cg == nil {
		return
	}
	mirror := cg.Subjects[subject]
	if mirror == nil {
		return
	}

	average := school.ActivityAverageFor(mirror.Assignments, ra)

	var np1, np2 float64
	if rec := student.Grades[subject]; rec != nil {
		np1 = school.ExamOrZero(rec.NP1)
		np2 = school.ExamOrZero(rec.NP2)
	}

	final := h.calculator.ComputeFinal(np1, np2, average)

	state.SetComputedGrades(student.ClassGroup, ra, subject,
		school.Round2(average), school.Round2(final))
}
