package command

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/escola-hub/escola-server/internal/application/reply"
	"github.com/escola-hub/escola-server/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER STUDENT COMMAND
// Registers a student keyed by RA and enrolls them in a class group.
// RA and name are uppercased; the class-group summary mirror is seeded.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentCommand contains the data to register a student.
type RegisterStudentCommand struct {
	RA         string `validate:"required"`
	Name       string `validate:"required"`
	Password   string `validate:"required"`
	ClassGroup string `validate:"required"`
}

// Validate validates the command.
func (c RegisterStudentCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("register_student: %w", err)
	}
	return nil
}

// RegisterStudentHandler handles the RegisterStudentCommand.
type RegisterStudentHandler struct {
	store Store
}

// NewRegisterStudentHandler creates a new RegisterStudentHandler.
func NewRegisterStudentHandler(store Store) *RegisterStudentHandler {
	return &RegisterStudentHandler{store: store}
}

// Handle executes the register student command.
func (h *RegisterStudentHandler) Handle(ctx context.Context, cmd RegisterStudentCommand) (reply.R, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("register_student: load state: %w", err)
	}

	ra := strings.ToUpper(cmd.RA)
	name := strings.ToUpper(cmd.Name)

	if _, exists := state.Students[ra]; exists {
		return reply.Fail("Aluno já cadastrado!"), nil
	}
	if _, exists := state.ClassGroups[cmd.ClassGroup]; !exists {
		return reply.Fail("Turma não encontrada!"), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register_student: hash password: %w", err)
	}

	state.AddStudent(ra, &school.Student{
		Name:         name,
		PasswordHash: string(hash),
		ClassGroup:   cmd.ClassGroup,
		Grades:       make(map[string]*school.GradeRecord),
		Submissions:  make(map[string]*school.Submission),
	})

	if err := h.store.Save(state); err != nil {
		return nil, fmt.Errorf("register_student: save state: %w", err)
	}
	return reply.OKf("Aluno '%s' cadastrado na turma '%s'.", name, cmd.ClassGroup), nil
}
