package school

import (
	"fmt"
	"strconv"
)

// Exam kinds accepted by SetExamScore.
const (
	ExamNP1 = "NP1"
	ExamNP2 = "NP2"
)

// Placeholder strings used when presenting grade records to clients.
const (
	GradePending      = "PENDENTE" // score not launched yet
	GradeNotAvailable = "N/A"      // computed value not produced yet
	GradeNoData       = "S/D"      // student has no record for the subject
)

// MinScore and MaxScore bound every accepted exam and assignment score.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// ScoreInRange reports whether v is an acceptable score.
func ScoreInRange(v float64) bool {
	return v >= MinScore && v <= MaxScore
}

// Round2 rounds to two decimal places on the true decimal value of v,
// ties to even, matching the grades already stored in existing data
// files (2.675 rounds to 2.67, 0.125 to 0.12). All stored computed
// grades go through this.
func Round2(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}

// GradeRecord holds one student's scores for one subject. Pointer fields
// distinguish "not launched" from a real zero. The JSON tags are the keys
// clients and the data file use.
type GradeRecord struct {
	NP1             *float64 `json:"NP1,omitempty"`
	NP2             *float64 `json:"NP2,omitempty"`
	ActivityAverage *float64 `json:"ATIVIDADES_MEDIA,omitempty"`
	FinalGrade      *float64 `json:"NOTA_FINAL,omitempty"`
}

// View renders the record for client display, substituting placeholders
// for values that have not been produced yet.
func (g *GradeRecord) View() map[string]any {
	v := map[string]any{
		"NP1":        any(GradePending),
		"NP2":        any(GradePending),
		"Media_Ativ": any(GradePending),
		"Final":      any(GradeNotAvailable),
	}
	if g == nil {
		return v
	}
	if g.NP1 != nil {
		v["NP1"] = *g.NP1
	}
	if g.NP2 != nil {
		v["NP2"] = *g.NP2
	}
	if g.ActivityAverage != nil {
		v["Media_Ativ"] = *g.ActivityAverage
	}
	if g.FinalGrade != nil {
		v["Final"] = *g.FinalGrade
	}
	return v
}

// FormatGradeViews renders a student's whole grade map for display.
func FormatGradeViews(grades map[string]*GradeRecord) map[string]any {
	out := make(map[string]any, len(grades))
	for subject, rec := range grades {
		out[subject] = rec.View()
	}
	return out
}

// ActivityAverageFor computes the assignments average for one student over
// the offering's defined assignments: scored assignments contribute their
// score, unscored defined assignments contribute zero but still count in
// the divisor. No assignments at all yields zero.
func ActivityAverageFor(assignments map[string]*Assignment, ra string) float64 {
	if len(assignments) == 0 {
		return 0
	}
	var sum float64
	for _, a := range assignments {
		if score, ok := a.Scores[ra]; ok {
			sum += score
		}
	}
	return sum / float64(len(assignments))
}

// ExamOrZero returns the launched score or zero when the exam was never
// launched, which is how the final-grade formula treats missing exams.
func ExamOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// String implements a compact debugging representation.
func (g *GradeRecord) String() string {
	f := func(p *float64) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprintf("%.2f", *p)
	}
	return fmt.Sprintf("NP1=%s NP2=%s media=%s final=%s",
		f(g.NP1), f(g.NP2), f(g.ActivityAverage), f(g.FinalGrade))
}
