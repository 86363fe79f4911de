// Package command contains write operations (CQRS - Commands).
// Every handler loads the whole state, mutates it through the domain
// helpers, and saves it back. The caller serializes handler invocations
// under the store lock, so handlers never see concurrent state.
package command

import (
	"github.com/go-playground/validator/v10"

	"github.com/escola-hub/escola-server/internal/domain/school"
)

// Store is the persistence surface commands depend on.
type Store interface {
	Load() (*school.State, error)
	Save(*school.State) error
}

var validate = validator.New()
