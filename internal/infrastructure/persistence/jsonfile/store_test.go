package jsonfile

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escola-hub/escola-server/internal/domain/school"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dados.json")
	return New(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoadMissingFileYieldsEmptyState(t *testing.T) {
	store := testStore(t)

	state, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, state.Students)
	assert.Empty(t, state.ClassGroups)
}

func TestLoadCorruptFileYieldsEmptyState(t *testing.T) {
	store := testStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte("{not json"), 0o644))

	state, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, state.Students)

	// The service keeps working: the next save overwrites the bad file.
	state.ClassGroups["ADS-1A"] = school.NewClassGroup()
	require.NoError(t, store.Save(state))

	reloaded, err := store.Load()
	require.NoError(t, err)
	assert.Contains(t, reloaded.ClassGroups, "ADS-1A")
}

func TestSaveLoadRoundtrip(t *testing.T) {
	store := testStore(t)

	state := school.NewState()
	state.ClassGroups["ADS-1A"] = school.NewClassGroup()
	state.Teachers["111"] = &school.Teacher{Name: "CARLOS", PasswordHash: "hash"}
	state.AddOffering("LÓGICA", school.TeacherRef{CPF: "111", Name: "CARLOS"}, "ADS-1A")
	state.AddStudent("RA100", &school.Student{
		Name:        "ANA",
		ClassGroup:  "ADS-1A",
		Grades:      make(map[string]*school.GradeRecord),
		Submissions: make(map[string]*school.Submission),
	})
	require.True(t, state.SetExamScore("ADS-1A", "RA100", "LÓGICA", school.ExamNP1, 8))

	require.NoError(t, store.Save(state))

	reloaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "ANA", reloaded.Students["RA100"].Name)
	assert.Equal(t, "CARLOS", reloaded.Offerings["LÓGICA-ADS-1A"].Teacher.Name)
	require.NotNil(t, reloaded.Students["RA100"].Grades["LÓGICA"].NP1)
	assert.Equal(t, 8.0, *reloaded.Students["RA100"].Grades["LÓGICA"].NP1)
	// Mirror survives the roundtrip too.
	assert.Equal(t, 8.0, *reloaded.ClassGroups["ADS-1A"].Students["RA100"].Grades["LÓGICA"].NP1)
}

func TestSaveKeepsAccentsReadable(t *testing.T) {
	store := testStore(t)

	state := school.NewState()
	state.Teachers["111"] = &school.Teacher{Name: "JOÃO", PasswordHash: "h"}
	require.NoError(t, store.Save(state))

	raw, err := os.ReadFile(store.path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "JOÃO")
}

func TestExclusiveSerializesMutations(t *testing.T) {
	store := testStore(t)
	require.NoError(t, store.Save(school.NewState()))

	const workers = 8
	const rounds = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				_, err := store.Exclusive(func() (any, error) {
					state, err := store.Load()
					if err != nil {
						return nil, err
					}
					if state.ClassGroups["T"] == nil {
						state.ClassGroups["T"] = school.NewClassGroup()
						state.ClassGroups["T"].Attendance["count"] = float64(0)
					}
					n := state.ClassGroups["T"].Attendance["count"].(float64)
					state.ClassGroups["T"].Attendance["count"] = n + 1
					return nil, store.Save(state)
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	state, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, float64(workers*rounds), state.ClassGroups["T"].Attendance["count"])
}
