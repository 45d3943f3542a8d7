package ports

import "github.com/ahrav/go-ballot/internal/domain"

// UnitFactory builds a unit from its identifier, the active rubric and the
// unit-specific parameters decoded from configuration.
type UnitFactory func(id string, rubric domain.Rubric, params map[string]any) (Unit, error)

// UnitRegistry maps unit type names to factories.
type UnitRegistry interface {
	// Register adds a factory for unitType. Registering a type twice fails.
	Register(unitType string, factory UnitFactory) error

	// CreateUnit builds a unit of unitType.
	CreateUnit(unitType, id string, rubric domain.Rubric, params map[string]any) (Unit, error)

	// SupportedTypes lists the registered unit types in sorted order.
	SupportedTypes() []string
}
