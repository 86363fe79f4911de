// Package school contains the domain model of the school records system:
// the persisted state document, its entities, and the dual-write helpers
// that keep the canonical records and the class-group mirrors consistent.
// This package has no external dependencies.
package school

import "strings"

// State is the whole persisted document. It is loaded as one unit, mutated
// by exactly one operation at a time, and rewritten as one unit. The JSON
// tags match the on-disk layout (`alunos`, `professores`, `disciplinas`,
// `turmas`) so existing data files keep working unchanged.
type State struct {
	Students    map[string]*Student         `json:"alunos"`
	Teachers    map[string]*Teacher         `json:"professores"`
	Offerings   map[string]*SubjectOffering `json:"disciplinas"`
	ClassGroups map[string]*ClassGroup      `json:"turmas"`
}

// NewState returns an empty state document with all maps allocated.
func NewState() *State {
	return &State{
		Students:    make(map[string]*Student),
		Teachers:    make(map[string]*Teacher),
		Offerings:   make(map[string]*SubjectOffering),
		ClassGroups: make(map[string]*ClassGroup),
	}
}

// Teacher is a registered teacher, keyed by CPF in State.Teachers.
type Teacher struct {
	Name         string `json:"nome"`
	PasswordHash string `json:"senha"`
}

// TeacherRef is the denormalized teacher reference embedded in offerings.
type TeacherRef struct {
	CPF  string `json:"cpf"`
	Name string `json:"nome"`
}

// ClassGroup is a cohort of students, keyed by its uppercased name.
// Subjects and Students are denormalized mirrors of the canonical
// SubjectOffering and Student records.
type ClassGroup struct {
	Subjects   map[string]*SubjectMirror  `json:"disciplinas"`
	Students   map[string]*StudentSummary `json:"alunos"`
	Attendance map[string]any             `json:"presenca"`
}

// NewClassGroup returns an empty class group.
func NewClassGroup() *ClassGroup {
	return &ClassGroup{
		Subjects:   make(map[string]*SubjectMirror),
		Students:   make(map[string]*StudentSummary),
		Attendance: make(map[string]any),
	}
}

// SubjectOffering is the canonical record of a subject taught to one class
// group by one teacher, keyed by "{SUBJECT}-{CLASSGROUP}" in State.Offerings.
type SubjectOffering struct {
	Teacher      TeacherRef             `json:"professor"`
	ClassGroup   string                 `json:"turma"`
	OriginalName string                 `json:"nome_original"`
	Assignments  map[string]*Assignment `json:"atividades"`
}

// SubjectMirror is the copy of an offering nested inside its class group.
// Lessons live only here.
type SubjectMirror struct {
	Teacher     TeacherRef             `json:"professor"`
	Assignments map[string]*Assignment `json:"atividades"`
	Lessons     map[string]*Lesson     `json:"aulas"`
}

// Assignment is a gradable task with per-student submission links and scores.
type Assignment struct {
	Link        string             `json:"link"`
	Submissions map[string]string  `json:"respostas"`
	Scores      map[string]float64 `json:"notas"`
}

// NewAssignment returns an assignment with no submissions or scores yet.
func NewAssignment(link string) *Assignment {
	return &Assignment{
		Link:        link,
		Submissions: make(map[string]string),
		Scores:      make(map[string]float64),
	}
}

func (a *Assignment) clone() *Assignment {
	c := NewAssignment(a.Link)
	for ra, link := range a.Submissions {
		c.Submissions[ra] = link
	}
	for ra, score := range a.Scores {
		c.Scores[ra] = score
	}
	return c
}

// Lesson is one class session, keyed by an opaque date string.
type Lesson struct {
	Description string `json:"descricao"`
}

// Submission records that a student handed in a response for an assignment.
type Submission struct {
	Subject      string `json:"disciplina"`
	ResponseLink string `json:"resposta"`
}

// Student is the canonical student record, keyed by RA in State.Students.
type Student struct {
	Name         string                  `json:"nome"`
	PasswordHash string                  `json:"senha"`
	ClassGroup   string                  `json:"turma"`
	Absences     int                     `json:"faltas"`
	Grades       map[string]*GradeRecord `json:"notas"`
	Submissions  map[string]*Submission  `json:"atividades_enviadas"`
}

// StudentSummary is the student mirror nested inside the class group:
// everything except the password hash and the class-group back reference.
type StudentSummary struct {
	Name        string                  `json:"nome"`
	Absences    int                     `json:"faltas"`
	Grades      map[string]*GradeRecord `json:"notas"`
	Submissions map[string]*Submission  `json:"atividades_enviadas"`
}

// OfferingKey builds the global offering key from a subject name and a class
// group key. Both are expected to be uppercased already.
func OfferingKey(subject, classGroup string) string {
	return subject + "-" + classGroup
}

// SubjectFromOfferingKey recovers the subject name from an offering key.
func SubjectFromOfferingKey(key string) string {
	if i := strings.Index(key, "-"); i >= 0 {
		return key[:i]
	}
	return key
}

// Normalize allocates any maps left nil by decoding a partial or hand-edited
// document, so mutation helpers never have to nil-check storage maps.
func (s *State) Normalize() {
	if s.Students == nil {
		s.Students = make(map[string]*Student)
	}
	if s.Teachers == nil {
		s.Teachers = make(map[string]*Teacher)
	}
	if s.Offerings == nil {
		s.Offerings = make(map[string]*SubjectOffering)
	}
	if s.ClassGroups == nil {
		s.ClassGroups = make(map[string]*ClassGroup)
	}
	for _, st := range s.Students {
		if st.Grades == nil {
			st.Grades = make(map[string]*GradeRecord)
		}
		if st.Submissions == nil {
			st.Submissions = make(map[string]*Submission)
		}
	}
	for _, off := range s.Offerings {
		if off.Assignments == nil {
			off.Assignments = make(map[string]*Assignment)
		}
	}
	for _, cg := range s.ClassGroups {
		if cg.Subjects == nil {
			cg.Subjects = make(map[string]*SubjectMirror)
		}
		if cg.Students == nil {
			cg.Students = make(map[string]*StudentSummary)
		}
		if cg.Attendance == nil {
			cg.Attendance = make(map[string]any)
		}
		for _, m := range cg.Subjects {
			if m.Assignments == nil {
				m.Assignments = make(map[string]*Assignment)
			}
			if m.Lessons == nil {
				m.Lessons = make(map[string]*Lesson)
			}
		}
		for _, sum := range cg.Students {
			if sum.Grades == nil {
				sum.Grades = make(map[string]*GradeRecord)
			}
			if sum.Submissions == nil {
				sum.Submissions = make(map[string]*Submission)
			}
		}
	}
	for _, a := range s.allAssignments() {
		if a.Submissions == nil {
			a.Submissions = make(map[string]string)
		}
		if a.Scores == nil {
			a.Scores = make(map[string]float64)
		}
	}
}

func (s *State) allAssignments() []*Assignment {
	var out []*Assignment
	for _, off := range s.Offerings {
		for _, a := range off.Assignments {
			out = append(out, a)
		}
	}
	for _, cg := range s.ClassGroups {
		for _, m := range cg.Subjects {
			for _, a := range m.Assignments {
				out = append(out, a)
			}
		}
	}
	return out
}

// ─── Dual-write helpers ──────────────────────────────────────────────────────
//
// Every mutation below updates the canonical record AND its class-group
// mirror in one call. Mutating either side any other way breaks the mirror
// consistency invariant, so operations go through these helpers only. The
// two sides never share map instances.

// AddOffering registers a subject offering and its class-group mirror.
// The class group must exist.
func (s *State) AddOffering(subject string, ref TeacherRef, classGroup string) {
	s.Offerings[OfferingKey(subject, classGroup)] = &SubjectOffering{
		Teacher:      ref,
		ClassGroup:   classGroup,
		OriginalName: subject,
		Assignments:  make(map[string]*Assignment),
	}
	s.ClassGroups[classGroup].Subjects[subject] = &SubjectMirror{
		Teacher:     ref,
		Assignments: make(map[string]*Assignment),
		Lessons:     make(map[string]*Lesson),
	}
}

// AddStudent registers a student and seeds the class-group summary mirror.
// The class group must exist.
func (s *State) AddStudent(ra string, st *Student) {
	s.Students[ra] = st
	s.ClassGroups[st.ClassGroup].Students[ra] = &StudentSummary{
		Name:        st.Name,
		Absences:    st.Absences,
		Grades:      make(map[string]*GradeRecord),
		Submissions: make(map[string]*Submission),
	}
}

// AddAssignment creates a new assignment in the canonical offering and its
// mirror. Returns false when the class group or the subject is unknown.
func (s *State) AddAssignment(subject, classGroup, name, link string) bool {
	cg := s.ClassGroups[classGroup]
	if cg == nil {
		return false
	}
	mirror := cg.Subjects[subject]
	if mirror == nil {
		return false
	}
	mirror.Assignments[name] = NewAssignment(link)
	if off := s.Offerings[OfferingKey(subject, classGroup)]; off != nil {
		off.Assignments[name] = NewAssignment(link)
	}
	return true
}

// IncrementAbsence adds one absence to a student in the canonical record and
// the class-group mirror. Returns false when the student is not enrolled in
// the class group.
func (s *State) IncrementAbsence(classGroup, ra string) bool {
	cg := s.ClassGroups[classGroup]
	if cg == nil {
		return false
	}
	sum := cg.Students[ra]
	st := s.Students[ra]
	if sum == nil || st == nil {
		return false
	}
	st.Absences++
	sum.Absences++
	return true
}

// SetExamScore writes an NP1/NP2 score into the student's grade record for
// the subject, on both sides of the mirror. Returns false when the student
// is not enrolled in the class group or the kind is unknown.
func (s *State) SetExamScore(classGroup, ra, subject, kind string, score float64) bool {
	canonical, mirrored, ok := s.gradeRecords(classGroup, ra, subject)
	if !ok {
		return false
	}
	switch kind {
	case ExamNP1:
		canonical.NP1, mirrored.NP1 = ptr(score), ptr(score)
	case ExamNP2:
		canonical.NP2, mirrored.NP2 = ptr(score), ptr(score)
	default:
		return false
	}
	return true
}

// SetComputedGrades stores the rounded assignments average and final grade
// for a student in a subject, on both sides of the mirror.
func (s *State) SetComputedGrades(classGroup, ra, subject string, average, final float64) bool {
	canonical, mirrored, ok := s.gradeRecords(classGroup, ra, subject)
	if !ok {
		return false
	}
	canonical.ActivityAverage, mirrored.ActivityAverage = ptr(average), ptr(average)
	canonical.FinalGrade, mirrored.FinalGrade = ptr(final), ptr(final)
	return true
}

// SetAssignmentScore writes a teacher-assigned score for one student's
// assignment response, on both copies of the assignment.
func (s *State) SetAssignmentScore(subject, classGroup, assignment, ra string, score float64) bool {
	cg := s.ClassGroups[classGroup]
	if cg == nil {
		return false
	}
	mirror := cg.Subjects[subject]
	if mirror == nil {
		return false
	}
	a := mirror.Assignments[assignment]
	if a == nil {
		return false
	}
	a.Scores[ra] = score
	if off := s.Offerings[OfferingKey(subject, classGroup)]; off != nil {
		if ca := off.Assignments[assignment]; ca != nil {
			ca.Scores[ra] = score
		}
	}
	return true
}

// RecordSubmission stores a student's response link for an assignment on
// both copies of the assignment, and mirrors the student's submitted-set.
// Resubmission overwrites the previous link.
func (s *State) RecordSubmission(ra, subject, assignment, link string) bool {
	st := s.Students[ra]
	if st == nil {
		return false
	}
	cg := s.ClassGroups[st.ClassGroup]
	if cg == nil {
		return false
	}
	mirror := cg.Subjects[subject]
	if mirror == nil {
		return false
	}
	a := mirror.Assignments[assignment]
	if a == nil {
		return false
	}
	a.Submissions[ra] = link
	if off := s.Offerings[OfferingKey(subject, st.ClassGroup)]; off != nil {
		if ca := off.Assignments[assignment]; ca != nil {
			ca.Submissions[ra] = link
		}
	}
	st.Submissions[assignment] = &Submission{Subject: subject, ResponseLink: link}
	if sum := cg.Students[ra]; sum != nil {
		sum.Submissions[assignment] = &Submission{Subject: subject, ResponseLink: link}
	}
	return true
}

// gradeRecords returns the canonical and mirrored grade records for a
// student in a subject, creating them when missing.
func (s *State) gradeRecords(classGroup, ra, subject string) (canonical, mirrored *GradeRecord, ok bool) {
	st := s.Students[ra]
	cg := s.ClassGroups[classGroup]
	if st == nil || cg == nil {
		return nil, nil, false
	}
	sum := cg.Students[ra]
	if sum == nil {
		return nil, nil, false
	}
	canonical = st.Grades[subject]
	if canonical == nil {
		canonical = &GradeRecord{}
		st.Grades[subject] = canonical
	}
	mirrored = sum.Grades[subject]
	if mirrored == nil {
		mirrored = &GradeRecord{}
		sum.Grades[subject] = mirrored
	}
	return canonical, mirrored, true
}

func ptr(v float64) *float64 { return &v }
