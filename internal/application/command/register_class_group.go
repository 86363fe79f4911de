package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/escola-hub/escola-server/internal/application/reply"
	"github.com/escola-hub/escola-server/internal/domain/school"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTER CLASS GROUP COMMAND
// Creates an empty class group. Names are uppercased and must be unique.
// ══════════════════════════════════════════════════════════════════════════════

// RegisterClassGroupCommand contains the data to create a class group.
type RegisterClassGroupCommand struct {
	Name string `validate:"required"`
}

// Validate validates the command.
func (c RegisterClassGroupCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("register_class_group: %w", err)
	}
	return nil
}

// RegisterClassGroupHandler handles the RegisterClassGroupCommand.
type RegisterClassGroupHandler struct {
	store Store
}

// NewRegisterClassGroupHandler creates a new RegisterClassGroupHandler.
func NewRegisterClassGroupHandler(store Store) *RegisterClassGroupHandler {
	return &RegisterClassGroupHandler{store: store}
}

// Handle executes the register class group command.
func (h *RegisterClassGroupHandler) Handle(ctx context.Context, cmd RegisterClassGroupCommand) (reply.R, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("register_class_group: load state: %w", err)
	}

	name := strings.ToUpper(cmd.Name)
	if _, exists := state.ClassGroups[name]; exists {
		return reply.Fail("Essa turma já está cadastrada!"), nil
	}

	state.ClassGroups[name] = school.NewClassGroup()

	if err := h.store.Save(state); err != nil {
		return nil, fmt.Errorf("register_class_group: save state: %w", err)
	}
	return reply.OKf("Turma '%s' cadastrada com sucesso!", name), nil
}
