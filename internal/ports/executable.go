package ports

import (
	"context"

	"github.com/ahrav/go-ballot/internal/domain"
)

// MergeStrategy combines the states produced by units that ran in
// parallel from the same base state.
type MergeStrategy interface {
	// Merge folds states into baseState. Implementations must be
	// deterministic: the result may not depend on goroutine completion order.
	Merge(baseState domain.State, states []domain.State) (domain.State, error)
}

// Executable is anything the pipeline can run: a single unit, a sequence
// or a parallel layer.
type Executable interface {
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// ID returns the identifier used for logging and tracing.
	ID() string
}

// Pipeline runs its executables sequentially, threading state through.
type Pipeline interface {
	Executable

	Add(exec Executable) error

	Executables() []Executable
}

// Layer runs its executables concurrently against the same input state and
// merges their outputs.
type Layer interface {
	Executable

	Add(exec Executable) error

	Executables() []Executable

	SetMergeStrategy(strategy MergeStrategy)
}
