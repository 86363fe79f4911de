package query

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/escola-hub/escola-server/internal/application/reply"
	"github.com/escola-hub/escola-server/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION QUERIES
// The three login flows. None of them creates a session: the response just
// carries the role plus whatever the client menu needs to proceed.
// Failures set role to nil with a user-facing message.
// ══════════════════════════════════════════════════════════════════════════════

// AdminCredentials are the configured administrator credentials.
type AdminCredentials struct {
	User     string
	Password string
}

// LoginAdminQuery contains administrator credentials to check.
type LoginAdminQuery struct {
	User     string `validate:"required"`
	Password string `validate:"required"`
}

// LoginAdminHandler handles the LoginAdminQuery.
type LoginAdminHandler struct {
	credentials AdminCredentials
}

// NewLoginAdminHandler creates a new LoginAdminHandler.
func NewLoginAdminHandler(credentials AdminCredentials) *LoginAdminHandler {
	return &LoginAdminHandler{credentials: credentials}
}

// Handle checks the administrator credentials.
func (h *LoginAdminHandler) Handle(ctx context.Context, q LoginAdminQuery) (reply.R, error) {
	if q.User == h.credentials.User && q.Password == h.credentials.Password {
		return reply.R{"role": "admin"}, nil
	}
	return reply.R{"role": nil, "message": "Acesso negado!"}, nil
}

// LoginTeacherQuery contains teacher credentials to check.
type LoginTeacherQuery struct {
	CPF      string `validate:"required"`
	Password string `validate:"required"`
}

// Validate validates the query.
func (q LoginTeacherQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("login_teacher: %w", err)
	}
	return nil
}

// LoginTeacherHandler handles the LoginTeacherQuery.
type LoginTeacherHandler struct {
	store Store
}

// NewLoginTeacherHandler creates a new LoginTeacherHandler.
func NewLoginTeacherHandler(store Store) *LoginTeacherHandler {
	return &LoginTeacherHandler{store: store}
}

// Handle checks teacher credentials and collects the subjects they teach,
// mapped subject name to class group.
func (h *LoginTeacherHandler) Handle(ctx context.Context, q LoginTeacherQuery) (reply.R, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("login_teacher: load state: %w", err)
	}

	teacher := state.Teachers[q.CPF]
	if teacher == nil {
		return reply.R{"role": nil, "message": "CPF não encontrado! Solicite seu cadastro ao Admin."}, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(q.Password)) != nil {
		return reply.R{"role": nil, "message": "Senha incorreta!"}, nil
	}

	subjects := make(map[string]string)
	for key, off := range state.Offerings {
		if off.Teacher.CPF != q.CPF {
			continue
		}
		name := off.OriginalName
		if name == "" {
			name = school.SubjectFromOfferingKey(key)
		}
		subjects[name] = off.ClassGroup
	}

	return reply.R{
		"role":        "professor",
		"cpf":         q.CPF,
		"nome":        teacher.Name,
		"disciplinas": subjects,
	}, nil
}

// LoginStudentQuery contains student credentials to check.
type LoginStudentQuery struct {
	RA       string `validate:"required"`
	Password string `validate:"required"`
}

// Validate validates the query.
func (q LoginStudentQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("login_student: %w", err)
	}
	return nil
}

// LoginStudentHandler handles the LoginStudentQuery.
type LoginStudentHandler struct {
	store Store
}

// NewLoginStudentHandler creates a new LoginStudentHandler.
func NewLoginStudentHandler(store Store) *LoginStudentHandler {
	return &LoginStudentHandler{store: store}
}

// Handle checks student credentials and returns the student's profile with
// formatted grades.
func (h *LoginStudentHandler) Handle(ctx context.Context, q LoginStudentQuery) (reply.R, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("login_student: load state: %w", err)
	}

	ra := strings.ToUpper(q.RA)
	student := state.Students[ra]
	if student == nil {
		return reply.R{"role": nil, "message": "RA não encontrado! Solicite seu cadastro ao Admin."}, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(q.Password)) != nil {
		return reply.R{"role": nil, "message": "Senha incorreta!"}, nil
	}

	return reply.R{
		"role":   "aluno",
		"ra":     ra,
		"nome":   student.Name,
		"turma":  student.ClassGroup,
		"faltas": student.Absences,
		"notas":  school.FormatGradeViews(student.Grades),
	}, nil
}
