package application

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-ballot/internal/domain"
)

// registerCustomValidators registers the rubric-specific validation
// functions referenced by struct tags in the domain and config packages.
func registerCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("semver", validateSemver); err != nil {
		return fmt.Errorf("failed to register semver validator: %w", err)
	}
	if err := RegisterRubricValidators(v); err != nil {
		return fmt.Errorf("failed to register rubric validators: %w", err)
	}
	return nil
}

// RegisterRubricValidators adds the ascsteps and weightsum validators so
// that rubric tables can be checked with struct tags.
func RegisterRubricValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("ascsteps", validateAscendingSteps); err != nil {
		return fmt.Errorf("failed to register ascsteps validator: %w", err)
	}
	if err := v.RegisterValidation("weightsum", validateWeightSum); err != nil {
		return fmt.Errorf("failed to register weightsum validator: %w", err)
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0 &&
		value == fmt.Sprintf("%d.%d.%d", major, minor, patch)
}

// validateAscendingSteps requires strictly ascending thresholds and
// non-decreasing points so that more years never earn fewer points.
func validateAscendingSteps(fl validator.FieldLevel) bool {
	table, ok := fl.Field().Interface().(domain.StepTable)
	if !ok {
		return false
	}
	for i := 1; i < len(table); i++ {
		if table[i].MinYears <= table[i-1].MinYears {
			return false
		}
		if table[i].Points < table[i-1].Points {
			return false
		}
	}
	return true
}

// validateWeightSum requires every weight set in a preset map to sum to
// one within domain.WeightTolerance.
func validateWeightSum(fl validator.FieldLevel) bool {
	presets, ok := fl.Field().Interface().(map[string]domain.Weights)
	if !ok {
		return false
	}
	for _, w := range presets {
		if math.Abs(w.Sum()-1) > domain.WeightTolerance {
			return false
		}
	}
	return true
}
