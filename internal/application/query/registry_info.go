package query

import (
	"context"
	"fmt"
	"sort"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRY INFO QUERY
// Lists registered class-group names or teachers, for the admin forms that
// need to offer existing entities. Unknown entity kinds return an empty
// list rather than an error.
// ══════════════════════════════════════════════════════════════════════════════

// Entity kinds accepted by GetRegistryInfoQuery.
const (
	EntityClassGroups = "turmas"
	EntityTeachers    = "professores"
)

// GetRegistryInfoQuery names the entity kind to list.
type GetRegistryInfoQuery struct {
	Entity string `validate:"required"`
}

// Validate validates the query.
func (q GetRegistryInfoQuery) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("get_registry_info: %w", err)
	}
	return nil
}

// GetRegistryInfoHandler handles the GetRegistryInfoQuery.
type GetRegistryInfoHandler struct {
	store Store
}

// NewGetRegistryInfoHandler creates a new GetRegistryInfoHandler.
func NewGetRegistryInfoHandler(store Store) *GetRegistryInfoHandler {
	return &GetRegistryInfoHandler{store: store}
}

// Handle lists the requested entities.
func (h *GetRegistryInfoHandler) Handle(ctx context.Context, q GetRegistryInfoQuery) (any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	state, err := h.store.Load()
	if err != nil {
		return nil, fmt.Errorf("get_registry_info: load state: %w", err)
	}

	switch q.Entity {
	case EntityClassGroups:
		names := make([]string, 0, len(state.ClassGroups))
		for name := range state.ClassGroups {
			names = append(names, name)
		}
		sort.Strings(names)
		return names, nil
	case EntityTeachers:
		cpfs := make([]string, 0, len(state.Teachers))
		for cpf := range state.Teachers {
			cpfs = append(cpfs, cpf)
		}
		sort.Strings(cpfs)
		teachers := make([]map[string]string, 0, len(cpfs))
		for _, cpf := range cpfs {
			teachers = append(teachers, map[string]string{cpf: state.Teachers[cpf].Name})
		}
		return teachers, nil
	default:
		return []any{}, nil
	}
}
