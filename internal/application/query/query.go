// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"github.com/go-playground/validator/v10"

	"github.com/escola-hub/escola-server/internal/domain/school"
)

// Store is the persistence surface queries depend on. Queries only Load.
type Store interface {
	Load() (*school.State, error)
}

var validate = validator.New()
