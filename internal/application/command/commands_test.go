package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escola-hub/escola-server/internal/domain/school"
	"github.com/escola-hub/escola-server/internal/infrastructure/grading"
	"github.com/escola-hub/escola-server/internal/infrastructure/persistence/jsonfile"
)

func testStore(t *testing.T) *jsonfile.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dados.json")
	return jsonfile.New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// seed builds a store with one class group, teacher, offering and student.
func seed(t *testing.T) *jsonfile.Store {
	t.Helper()
	store := testStore(t)

	state := school.NewState()
	state.ClassGroups["ADS-1A"] = school.NewClassGroup()
	state.Teachers["111"] = &school.Teacher{Name: "CARLOS", PasswordHash: "h"}
	state.AddOffering("LOGICA", school.TeacherRef{CPF: "111", Name: "CARLOS"}, "ADS-1A")
	state.AddStudent("RA100", &school.Student{
		Name:        "ANA",
		ClassGroup:  "ADS-1A",
		Grades:      make(map[string]*school.GradeRecord),
		Submissions: make(map[string]*school.Submission),
	})
	require.NoError(t, store.Save(state))
	return store
}

func TestRegisterClassGroup(t *testing.T) {
	store := testStore(t)
	handler := NewRegisterClassGroupHandler(store)
	ctx := context.Background()

	res, err := handler.Handle(ctx, RegisterClassGroupCommand{Name: "ads-1a"})
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])

	state, err := store.Load()
	require.NoError(t, err)
	assert.Contains(t, state.ClassGroups, "ADS-1A")
}

func TestRegisterClassGroupDuplicateLeavesStateUnchanged(t *testing.T) {
	store := seed(t)
	handler := NewRegisterClassGroupHandler(store)
	ctx := context.Background()

	res, err := handler.Handle(ctx, RegisterClassGroupCommand{Name: "ADS-1A"})
	require.NoError(t, err)
	assert.Equal(t, false, res["success"])
	assert.Equal(t, "Essa turma já está cadastrada!", res["message"])

	state, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, state.ClassGroups, 1)
	assert.Len(t, state.Students, 1)
}

func TestRegisterTeacherHashesPassword(t *testing.T) {
	store := testStore(t)
	handler := NewRegisterTeacherHandler(store)
	ctx := context.Background()

	res, err := handler.Handle(ctx, RegisterTeacherCommand{CPF: "222", Name: "MARIA", Password: "s3nh4"})
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])

	state, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, state.Teachers, "222")
	assert.NotEqual(t, "s3nh4", state.Teachers["222"].PasswordHash)
	assert.NotEmpty(t, state.Teachers["222"].PasswordHash)
}

func TestRegisterSubjectValidatesTargets(t *testing.T) {
	store := seed(t)
	handler := NewRegisterSubjectHandler(store)
	ctx := context.Background()

	res, err := handler.Handle(ctx, RegisterSubjectCommand{Subject: "LOGICA", ClassGroup: "ADS-1A", TeacherCPF: "111"})
	require.NoError(t, err)
	assert.Equal(t, false, res["success"])

	res, err = handler.Handle(ctx, RegisterSubjectCommand{Subject: "POO", ClassGroup: "NOPE", TeacherCPF: "111"})
	require.NoError(t, err)
	assert.Equal(t, "Turma não encontrada!", res["message"])

	res, err = handler.Handle(ctx, RegisterSubjectCommand{Subject: "POO", ClassGroup: "ADS-1A", TeacherCPF: "999"})
	require.NoError(t, err)
	assert.Equal(t, "Professor não encontrado!", res["message"])

	res, err = handler.Handle(ctx, RegisterSubjectCommand{Subject: "poo", ClassGroup: "ADS-1A", TeacherCPF: "111"})
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])

	state, err := store.Load()
	require.NoError(t, err)
	assert.Contains(t, state.Offerings, "POO-ADS-1A")
	assert.Contains(t, state.ClassGroups["ADS-1A"].Subjects, "POO")
}

func TestRegisterStudentUppercasesAndMirrors(t *testing.T) {
	store := seed(t)
	handler := NewRegisterStudentHandler(store)
	ctx := context.Background()

	res, err := handler.Handle(ctx, RegisterStudentCommand{RA: "ra200", Name: "bruno", Password: "p", ClassGroup: "ADS-1A"})
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])

	state, err := store.Load()
	require.NoError(t, err)
	require.Contains(t, state.Students, "RA200")
	assert.Equal(t, "BRUNO", state.Students["RA200"].Name)
	assert.Contains(t, state.ClassGroups["ADS-1A"].Students, "RA200")
}

func TestRecordAttendanceSkipsUnknownRA(t *testing.T) {
	store := seed(t)
	handler := NewRecordAttendanceHandler(store)
	ctx := context.Background()

	res, err := handler.Handle(ctx, RecordAttendanceCommand{
		ClassGroup: "ADS-1A",
		Presence: map[string]any{
			"RA100": false,
			"RA999": false, // not enrolled, must not blow up
			"RA100-present": true,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])
	assert.Equal(t, "Chamada registrada!", res["message"])

	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, state.Students["RA100"].Absences)
	assert.Equal(t, 1, state.ClassGroups["ADS-1A"].Students["RA100"].Absences)
}

func TestPublishAssignmentLimit(t *testing.T) {
	store := seed(t)
	handler := NewPublishAssignmentHandler(store)
	ctx := context.Background()

	for i := 0; i < MaxAssignmentsPerSubject; i++ {
		res, err := handler.Handle(ctx, PublishAssignmentCommand{
			Subject: "LOGICA", ClassGroup: "ADS-1A",
			Name: fmt.Sprintf("Lista %d", i), Link: "http://ex",
		})
		require.NoError(t, err)
		require.Equal(t, true, res["success"])
	}

	res, err := handler.Handle(ctx, PublishAssignmentCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Name: "Lista 11", Link: "http://ex",
	})
	require.NoError(t, err)
	assert.Equal(t, false, res["success"])
	assert.Equal(t, "Limite de 10 atividades por disciplina atingido (modelo fixo).", res["message"])

	state, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, state.Offerings["LOGICA-ADS-1A"].Assignments, MaxAssignmentsPerSubject)
	assert.Len(t, state.ClassGroups["ADS-1A"].Subjects["LOGICA"].Assignments, MaxAssignmentsPerSubject)
}

func TestRecordNPScoresSkipsInvalidEntries(t *testing.T) {
	store := seed(t)
	handler := NewRecordNPScoresHandler(store)
	ctx := context.Background()

	res, err := handler.Handle(ctx, RecordNPScoresCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Kind: "NP1",
		Scores: map[string]any{
			"RA100": 10.1, // above range, skipped
		},
	})
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])

	state, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, state.Students["RA100"].Grades["LOGICA"])

	res, err = handler.Handle(ctx, RecordNPScoresCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Kind: "NP1",
		Scores: map[string]any{
			"RA100": "-0.1", // below range, skipped
		},
	})
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])

	state, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, state.Students["RA100"].Grades["LOGICA"])

	res, err = handler.Handle(ctx, RecordNPScoresCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Kind: "NP1",
		Scores: map[string]any{
			"RA100":  "8",    // numeric string, accepted
			"RA999":  7.0,    // unknown student, skipped
			"RA100x": "oops", // unparseable, skipped
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lançamento de NP1 concluído!", res["message"])

	state, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, state.Students["RA100"].Grades["LOGICA"].NP1)
	assert.Equal(t, 8.0, *state.Students["RA100"].Grades["LOGICA"].NP1)
	assert.NotContains(t, state.Students, "RA999")
}

func TestScoreAssignmentRange(t *testing.T) {
	store := seed(t)
	publish := NewPublishAssignmentHandler(store)
	handler := NewScoreAssignmentHandler(store)
	ctx := context.Background()

	_, err := publish.Handle(ctx, PublishAssignmentCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Name: "Lista 1", Link: "l",
	})
	require.NoError(t, err)

	res, err := handler.Handle(ctx, ScoreAssignmentCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Assignment: "Lista 1", RA: "RA100", Score: 10.5,
	})
	require.NoError(t, err)
	assert.Equal(t, false, res["success"])

	res, err = handler.Handle(ctx, ScoreAssignmentCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Assignment: "Lista 1", RA: "RA100", Score: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])

	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 9.0, state.Offerings["LOGICA-ADS-1A"].Assignments["Lista 1"].Scores["RA100"])
	assert.Equal(t, 9.0, state.ClassGroups["ADS-1A"].Subjects["LOGICA"].Assignments["Lista 1"].Scores["RA100"])
}

func TestSubmitAssignment(t *testing.T) {
	store := seed(t)
	publish := NewPublishAssignmentHandler(store)
	handler := NewSubmitAssignmentHandler(store)
	ctx := context.Background()

	_, err := publish.Handle(ctx, PublishAssignmentCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Name: "Lista 1", Link: "l",
	})
	require.NoError(t, err)

	res, err := handler.Handle(ctx, SubmitAssignmentCommand{
		RA: "ra100", Subject: "LOGICA", Assignment: "Lista 1", Link: "http://resp",
	})
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])

	res, err = handler.Handle(ctx, SubmitAssignmentCommand{
		RA: "RA100", Subject: "POO", Assignment: "Lista 1", Link: "http://resp",
	})
	require.NoError(t, err)
	assert.Equal(t, "Disciplina não está na sua turma.", res["message"])

	res, err = handler.Handle(ctx, SubmitAssignmentCommand{
		RA: "RA100", Subject: "LOGICA", Assignment: "Lista 9", Link: "http://resp",
	})
	require.NoError(t, err)
	assert.Equal(t, "Atividade não encontrada na disciplina.", res["message"])

	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://resp", state.Offerings["LOGICA-ADS-1A"].Assignments["Lista 1"].Submissions["RA100"])
	assert.Contains(t, state.Students["RA100"].Submissions, "Lista 1")
}

func TestComputeFinalGradesWorkedExample(t *testing.T) {
	store := seed(t)
	ctx := context.Background()

	// Three assignments: 10, 5, and one never scored.
	publish := NewPublishAssignmentHandler(store)
	score := NewScoreAssignmentHandler(store)
	for _, name := range []string{"A1", "A2", "A3"} {
		_, err := publish.Handle(ctx, PublishAssignmentCommand{
			Subject: "LOGICA", ClassGroup: "ADS-1A", Name: name, Link: "l",
		})
		require.NoError(t, err)
	}
	_, err := score.Handle(ctx, ScoreAssignmentCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Assignment: "A1", RA: "RA100", Score: 10,
	})
	require.NoError(t, err)
	_, err = score.Handle(ctx, ScoreAssignmentCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Assignment: "A2", RA: "RA100", Score: 5,
	})
	require.NoError(t, err)

	np := NewRecordNPScoresHandler(store)
	_, err = np.Handle(ctx, RecordNPScoresCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Kind: "NP1",
		Scores: map[string]any{"RA100": 8.0},
	})
	require.NoError(t, err)
	_, err = np.Handle(ctx, RecordNPScoresCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Kind: "NP2",
		Scores: map[string]any{"RA100": 6.0},
	})
	require.NoError(t, err)

	handler := NewComputeFinalGradesHandler(store, grading.WeightedCalculator{})
	res, err := handler.Handle(ctx, ComputeFinalGradesCommand{Subject: "LOGICA", ClassGroup: "ADS-1A"})
	require.NoError(t, err)
	assert.Equal(t, "Cálculo das notas finais concluído.", res["message"])

	state, err := store.Load()
	require.NoError(t, err)
	rec := state.Students["RA100"].Grades["LOGICA"]
	require.NotNil(t, rec)
	// (10+5+0)/3 = 5.0; 8*0.35 + 6*0.35 + 5*0.30 = 6.4.
	assert.Equal(t, 5.0, *rec.ActivityAverage)
	assert.Equal(t, 6.4, *rec.FinalGrade)

	mirrored := state.ClassGroups["ADS-1A"].Students["RA100"].Grades["LOGICA"]
	require.NotNil(t, mirrored)
	assert.Equal(t, 5.0, *mirrored.ActivityAverage)
	assert.Equal(t, 6.4, *mirrored.FinalGrade)
}

func TestComputeFinalGradesWithoutExamsOrScores(t *testing.T) {
	store := seed(t)
	handler := NewComputeFinalGradesHandler(store, grading.WeightedCalculator{})
	ctx := context.Background()

	// No assignments, no exams: everything computes to zero.
	res, err := handler.Handle(ctx, ComputeFinalGradesCommand{Subject: "LOGICA", ClassGroup: "ADS-1A"})
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])

	state, err := store.Load()
	require.NoError(t, err)
	rec := state.Students["RA100"].Grades["LOGICA"]
	require.NotNil(t, rec)
	assert.Equal(t, 0.0, *rec.ActivityAverage)
	assert.Equal(t, 0.0, *rec.FinalGrade)
}

func TestRecordLessonDuplicateDate(t *testing.T) {
	store := seed(t)
	handler := NewRecordLessonHandler(store)
	ctx := context.Background()

	res, err := handler.Handle(ctx, RecordLessonCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Date: "2025-03-10", Description: "Tabelas verdade",
	})
	require.NoError(t, err)
	assert.Equal(t, true, res["success"])

	res, err = handler.Handle(ctx, RecordLessonCommand{
		Subject: "LOGICA", ClassGroup: "ADS-1A", Date: "2025-03-10", Description: "Outra coisa",
	})
	require.NoError(t, err)
	assert.Equal(t, false, res["success"])
	assert.Equal(t, "Já existe uma aula registrada para a data 2025-03-10.", res["message"])

	state, err := store.Load()
	require.NoError(t, err)
	lessons := state.ClassGroups["ADS-1A"].Subjects["LOGICA"].Lessons
	require.Len(t, lessons, 1)
	assert.Equal(t, "Tabelas verdade", lessons["2025-03-10"].Description)
}
