package command

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/escola-hub/escola-server/internal/application/reply"
	"github.com/escola-hub/escola-server/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER TEACHER COMMAND
// Registers a teacher keyed by CPF. The password is stored as a bcrypt hash.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterTeacherCommand contains the data to register a teacher.
type RegisterTeacherCommand struct {
	CPF      string `validate:"required"`
	Name     string `validate:"required"`
	Password string `validate:"required"`
}

// Validate validates the command.
func (c RegisterTeacherCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("register_teacher: %w", err)
	}
	return nil
}

// RegisterTeacherHandler handles the RegisterTeacherCommand.
type RegisterTeacherHandler struct {
	store Store
}

// NewRegisterTeacherHandler creates a new RegisterTeacherHandler.
func NewRegisterTeacherHandler(store Store) *RegisterTeacherHandler {
	return &RegisterTeacherHandler{store: store}
}

// Handle executes the register teacher command.
func (h *RegisterTeacherHandler) Handle(ctx context.Context, cmd RegisterTeacherCommand) (reply.R, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("register_teacher: load state: %w", err)
	}

	if _, exists := state.Teachers[cmd.CPF]; exists {
		return reply.Fail("Professor já cadastrado!"), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register_teacher: hash password: %w", err)
	}

	state.Teachers[cmd.CPF] = &school.Teacher{
		Name:         cmd.Name,
		PasswordHash: string(hash),
	}

	if err := h.store.Save(state); err != nil {
		return nil, fmt.Errorf("register_teacher: save state: %w", err)
	}
	return reply.OKf("Professor '%s' cadastrado com sucesso!", cmd.Name), nil
}
