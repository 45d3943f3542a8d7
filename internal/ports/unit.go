// Package ports defines the interfaces that form the contract between the
// domain/application layers and the infrastructure layer.
package ports

import (
	"context"

	"github.com/ahrav/go-ballot/internal/domain"
)

// Unit is one stage of the scoring pipeline. It reads its inputs from the
// State and returns a new State with its outputs added. Units hold only
// immutable configuration and are safe for concurrent use.
type Unit interface {
	// Name returns a unique identifier for this unit, used in logs, spans
	// and metric labels.
	Name() string

	// Execute performs the unit's transformation. The input State is never
	// modified. A missing input key is a programming error and is reported
	// as a *domain.StateError; malformed candidate data never is.
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// Validate checks that the unit's configuration is usable. It is called
	// once when the pipeline is assembled.
	Validate() error
}
