package application

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/ahrav/go-ballot/infrastructure/units"
	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.UnitRegistry = (*DefaultUnitRegistry)(nil)

var (
	// ErrUnknownUnitType is returned by CreateUnit for an unregistered type.
	ErrUnknownUnitType = errors.New("unsupported unit type")

	// ErrDuplicateUnitType is returned by Register for a type that is
	// already registered.
	ErrDuplicateUnitType = errors.New("unit type already registered")
)

// DefaultUnitRegistry implements ports.UnitRegistry. It comes with the five
// scoring stages pre-registered and accepts additional factories at
// runtime.
type DefaultUnitRegistry struct {
	// factories maps unit type strings to their factory functions.
	factories map[string]ports.UnitFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
}

// NewDefaultUnitRegistry creates a registry with the built-in stages
// registered.
func NewDefaultUnitRegistry() *DefaultUnitRegistry {
	return &DefaultUnitRegistry{
		factories: map[string]ports.UnitFactory{
			units.TypeNormalize:    units.NewNormalizeFromConfig,
			units.TypeCompetence:   units.NewCompetenceFromConfig,
			units.TypeIntegrity:    units.NewIntegrityFromConfig,
			units.TypeTransparency: units.NewTransparencyFromConfig,
			units.TypeCompose:      units.NewComposeFromConfig,
		},
	}
}

// Register adds a factory for unitType. Registering an existing type fails
// with ErrDuplicateUnitType.
func (r *DefaultUnitRegistry) Register(unitType string, factory ports.UnitFactory) error {
	if unitType == "" {
		return fmt.Errorf("unit type cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[unitType]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateUnitType, unitType)
	}
	r.factories[unitType] = factory
	return nil
}

// CreateUnit looks up the factory for unitType and builds a unit. The
// returned unit has already passed Validate.
func (r *DefaultUnitRegistry) CreateUnit(
	unitType string,
	id string,
	rubric domain.Rubric,
	params map[string]any,
) (ports.Unit, error) {
	r.mu.RLock()
	factory, exists := r.factories[unitType]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUnitType, unitType)
	}
	if id == "" {
		return nil, fmt.Errorf("unit ID cannot be empty")
	}
	if params == nil {
		params = make(map[string]any)
	}

	unit, err := factory(id, rubric, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create unit %s of type %s: %w", id, unitType, err)
	}
	if err := unit.Validate(); err != nil {
		return nil, fmt.Errorf("unit %s of type %s is invalid: %w", id, unitType, err)
	}
	return unit, nil
}

// SupportedTypes returns the registered unit types in sorted order.
func (r *DefaultUnitRegistry) SupportedTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
