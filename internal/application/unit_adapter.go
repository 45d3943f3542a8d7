package application

import (
	"context"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.Executable = (*UnitAdapter)(nil)

// UnitAdapter wraps a ports.Unit so it can be added to a Pipeline or a
// Layer.
type UnitAdapter struct {
	unit ports.Unit
	// id is the identifier used in pipeline error messages. It defaults to
	// the unit's name.
	id string
}

// NewUnitAdapter creates an adapter for unit. An empty id falls back to
// unit.Name().
func NewUnitAdapter(unit ports.Unit, id string) *UnitAdapter {
	if id == "" {
		id = unit.Name()
	}
	return &UnitAdapter{unit: unit, id: id}
}

// Execute delegates to the wrapped unit.
func (ua *UnitAdapter) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	return ua.unit.Execute(ctx, state)
}

// ID returns the adapter's identifier.
func (ua *UnitAdapter) ID() string { return ua.id }

// Unit returns the wrapped unit.
func (ua *UnitAdapter) Unit() ports.Unit { return ua.unit }
