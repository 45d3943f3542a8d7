package units

import (
	"context"
	"fmt"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.Unit = (*ComposeUnit)(nil)

// ComposeUnit blends the dimension scores into the rubric's named presets
// and an optional custom blend, and assembles the final ScoreResult.
//
// Presidential candidacies with an externally computed plan-viability
// score use the presidential preset table, which weighs that fourth
// dimension. Custom weights are a competence/integrity/transparency triple
// projected into the rubric's bounds with a sum of one.
type ComposeUnit struct {
	name   string
	rubric domain.Rubric
	config ComposeConfig
	tracer trace.Tracer
}

// ComposeConfig controls result formatting.
type ComposeConfig struct {
	// Precision is the number of decimals kept in top-level and blended
	// scores. Breakdown sub-totals are never rounded.
	Precision int `yaml:"precision" json:"precision" validate:"min=0,max=6"`
}

// DefaultComposeConfig returns the compose defaults.
func DefaultComposeConfig() ComposeConfig {
	return ComposeConfig{Precision: 2}
}

// NewComposeUnit creates a ComposeUnit over rubric.
func NewComposeUnit(name string, rubric domain.Rubric, config ComposeConfig) (*ComposeUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &ComposeUnit{
		name:   name,
		rubric: rubric,
		config: config,
		tracer: otel.Tracer("compose-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *ComposeUnit) Name() string { return u.name }

// Execute reads the normalized candidate, the four breakdowns and the
// optional domain.KeyCustomWeights, and stores the ScoreResult under
// domain.KeyResult.
func (u *ComposeUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "ComposeUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeCompose),
			attribute.String("unit.id", u.name),
			attribute.String("rubric.version", u.rubric.Version),
		),
	)
	defer span.End()

	candidate, err := domain.Require(state, domain.KeyNormalized)
	if err != nil {
		return state, failSpan(span, err)
	}

	var breakdown domain.ScoreBreakdown
	if breakdown.Competence, err = domain.Require(state, domain.KeyCompetence); err != nil {
		return state, failSpan(span, err)
	}
	if breakdown.Integrity, err = domain.Require(state, domain.KeyIntegrity); err != nil {
		return state, failSpan(span, err)
	}
	if breakdown.Transparency, err = domain.Require(state, domain.KeyTransparency); err != nil {
		return state, failSpan(span, err)
	}
	if breakdown.Confidence, err = domain.Require(state, domain.KeyConfidence); err != nil {
		return state, failSpan(span, err)
	}

	var custom *domain.Weights
	if w, ok := domain.Get(state, domain.KeyCustomWeights); ok {
		custom = &w
	}

	result, err := u.Compose(candidate, breakdown, custom)
	if err != nil {
		return state, failSpan(span, err)
	}

	span.SetAttributes(
		attribute.Int("compose.blends", len(result.Blends)),
		attribute.Bool("compose.custom", result.Custom != nil),
	)
	return domain.With(state, domain.KeyResult, result), nil
}

// Compose assembles the result for one candidate.
func (u *ComposeUnit) Compose(c domain.NormalizedCandidate, b domain.ScoreBreakdown, custom *domain.Weights) (domain.ScoreResult, error) {
	scores := domain.Scores{
		Competence:   b.Competence.Score,
		Integrity:    b.Integrity.Score,
		Transparency: b.Transparency.Score,
		Confidence:   b.Confidence.Score,
	}
	if pv := c.Record.Aggregates.PlanViability; c.Cargo.IsPresidential() && pv != nil {
		v := domain.Clamp(*pv, 0, 100)
		scores.PlanViability = &v
	}

	blends, err := u.Presets(c.Cargo, scores)
	if err != nil {
		return domain.ScoreResult{}, err
	}

	result := domain.ScoreResult{
		CandidateID:   c.ID,
		Cargo:         c.Cargo,
		RubricVersion: u.rubric.Version,
		Breakdown:     b,
		Blends:        blends,
		Timeline: domain.TimelineDiagnostics{
			RawYears:        c.ExperienceTimeline.RawYears,
			UniqueYears:     c.ExperienceTimeline.UniqueYears,
			HasOverlap:      c.ExperienceTimeline.HasOverlap,
			LeadershipYears: c.LeadershipTimeline.UniqueYears,
		},
		Education:  c.Education,
		Experience: c.Experience,
	}

	if custom != nil {
		w, err := u.CustomWeights(*custom)
		if err != nil {
			return domain.ScoreResult{}, err
		}
		blend, err := u.Blend(w, scores)
		if err != nil {
			return domain.ScoreResult{}, err
		}
		result.Custom = &blend
	}

	result.Scores = domain.Scores{
		Competence:   u.round(scores.Competence),
		Integrity:    u.round(scores.Integrity),
		Transparency: u.round(scores.Transparency),
		Confidence:   u.round(scores.Confidence),
	}
	if scores.PlanViability != nil {
		v := u.round(*scores.PlanViability)
		result.Scores.PlanViability = &v
	}
	return result, nil
}

// Presets blends scores under every preset that applies to cargo. The
// presidential table applies only when a plan-viability score is present.
func (u *ComposeUnit) Presets(cargo domain.Cargo, scores domain.Scores) (map[string]domain.Blend, error) {
	table := u.rubric.Composer.Presets
	if cargo.IsPresidential() && scores.PlanViability != nil && len(u.rubric.Composer.PresidentialPresets) > 0 {
		table = u.rubric.Composer.PresidentialPresets
	}

	blends := make(map[string]domain.Blend, len(table))
	for name, w := range table {
		blend, err := u.Blend(w, scores)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		blends[name] = blend
	}
	return blends, nil
}

// Blend applies w to scores. Weights that do not sum to one are
// normalized first; an all-zero set is rejected.
func (u *ComposeUnit) Blend(w domain.Weights, scores domain.Scores) (domain.Blend, error) {
	w, err := normalizeWeights(w)
	if err != nil {
		return domain.Blend{}, err
	}
	if w.PlanViability > 0 && scores.PlanViability == nil {
		return domain.Blend{}, fmt.Errorf("%w: plan_viability weighted without a plan-viability score", domain.ErrInvalidWeights)
	}

	total := w.Competence*scores.Competence + w.Integrity*scores.Integrity + w.Transparency*scores.Transparency
	if scores.PlanViability != nil {
		total += w.PlanViability * *scores.PlanViability
	}
	return domain.Blend{Weights: w, Score: u.round(domain.Clamp(total, 0, 100))}, nil
}

// CustomWeights projects a user-supplied triple onto the rubric bounds so
// that every weight lies within its range and the three sum to one. Any
// plan-viability weight is dropped.
func (u *ComposeUnit) CustomWeights(w domain.Weights) (domain.Weights, error) {
	return u.rubric.Composer.CustomBounds.Project(w)
}

func normalizeWeights(w domain.Weights) (domain.Weights, error) {
	sum := w.Sum()
	if sum <= 0 || math.IsNaN(sum) {
		return domain.Weights{}, fmt.Errorf("%w: weights sum to %v", domain.ErrInvalidWeights, sum)
	}
	if math.Abs(sum-1) > domain.WeightTolerance {
		w = w.Normalized()
	}
	return w, nil
}

func (u *ComposeUnit) round(v float64) float64 {
	scale := math.Pow(10, float64(u.config.Precision))
	return math.Round(v*scale) / scale
}

// Validate checks the rubric and unit configuration.
func (u *ComposeUnit) Validate() error {
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return u.rubric.Check()
}

// NewComposeFromConfig creates a ComposeUnit from a configuration map.
func NewComposeFromConfig(id string, rubric domain.Rubric, params map[string]any) (ports.Unit, error) {
	cfg := DefaultComposeConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewComposeUnit(id, rubric, cfg)
}
