package units

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.Unit = (*CompetenceUnit)(nil)

// CompetenceUnit scores education, experience and leadership.
//
// Education awards points for the highest level reached plus a bounded
// depth bonus for each further qualifying entry. Experience awards step
// points for unique years across every role and for relevance-weighted
// unique years, where each covered year counts once at the largest
// multiplier the cargo assigns to any role held that year. Leadership
// scores the highest seniority tier reached and the unique years spent at
// supervisory tier or above.
type CompetenceUnit struct {
	name     string
	rubric   domain.Rubric
	depthMin domain.EducationLevel
	tracer   trace.Tracer
}

// NewCompetenceUnit creates a CompetenceUnit over rubric.
func NewCompetenceUnit(name string, rubric domain.Rubric) (*CompetenceUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	depthMin, ok := domain.ParseEducationLevel(rubric.Education.DepthMinLevel)
	if !ok {
		return nil, fmt.Errorf("%w: education.depth_min_level %q", domain.ErrInvalidRubric, rubric.Education.DepthMinLevel)
	}

	return &CompetenceUnit{
		name:     name,
		rubric:   rubric,
		depthMin: depthMin,
		tracer:   otel.Tracer("competence-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *CompetenceUnit) Name() string { return u.name }

// Execute reads domain.KeyNormalized and stores the breakdown under
// domain.KeyCompetence.
func (u *CompetenceUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "CompetenceUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeCompetence),
			attribute.String("unit.id", u.name),
			attribute.String("rubric.version", u.rubric.Version),
		),
	)
	defer span.End()

	candidate, err := domain.Require(state, domain.KeyNormalized)
	if err != nil {
		return state, failSpan(span, err)
	}

	b := u.Score(candidate)
	span.SetAttributes(
		attribute.Float64("competence.score", b.Score),
		attribute.Int("experience.unique_years", b.UniqueYears),
		attribute.Float64("experience.relevant_years", b.RelevantYears),
	)
	return domain.With(state, domain.KeyCompetence, b), nil
}

// Score computes the competence breakdown of a normalized candidate.
func (u *CompetenceUnit) Score(c domain.NormalizedCandidate) domain.CompetenceBreakdown {
	edu, exp, lead := u.rubric.Education, u.rubric.Experience, u.rubric.Leadership

	b := domain.CompetenceBreakdown{
		HighestEducation: c.HighestEducation(),
		HighestSeniority: c.HighestSeniority(),
		UniqueYears:      c.ExperienceTimeline.UniqueYears,
		LeadershipYears:  c.LeadershipTimeline.UniqueYears,
	}

	b.EducationLevel = domain.NewSubScore(edu.LevelPoints[b.HighestEducation.String()], edu.LevelMax)

	qualifying := 0
	for _, e := range c.Education {
		if e.Level >= u.depthMin {
			qualifying++
		}
	}
	b.EducationDepth = domain.NewSubScore(float64(max(qualifying-1, 0))*edu.DepthPerEntry, edu.DepthMax)

	weighted := make([]domain.WeightedInterval, 0, len(c.Experience))
	for _, e := range c.Experience {
		weighted = append(weighted, domain.WeightedInterval{
			Interval: e.Interval,
			Weight:   exp.Multiplier(c.Cargo, e.RoleType),
		})
	}
	b.RelevantYears = domain.WeightedUniqueYears(weighted, c.ReferenceYear)

	b.ExperienceTotal = domain.NewSubScore(exp.TotalSteps.Lookup(float64(b.UniqueYears)), exp.TotalMax)
	b.ExperienceRelevant = domain.NewSubScore(exp.RelevantSteps.Lookup(b.RelevantYears), exp.RelevantMax)

	b.LeadershipSeniority = domain.NewSubScore(lead.SeniorityPoints[b.HighestSeniority.String()], lead.SeniorityMax)
	b.LeadershipStability = domain.NewSubScore(lead.StabilitySteps.Lookup(float64(b.LeadershipYears)), lead.StabilityMax)

	total := b.EducationLevel.Value + b.EducationDepth.Value +
		b.ExperienceTotal.Value*exp.TotalWeight +
		b.ExperienceRelevant.Value*exp.RelevantWeight +
		b.LeadershipSeniority.Value + b.LeadershipStability.Value
	b.Score = domain.Clamp(total, 0, 100)
	return b
}

// Validate checks the rubric the unit was built with.
func (u *CompetenceUnit) Validate() error {
	return u.rubric.Check()
}

// NewCompetenceFromConfig creates a CompetenceUnit. Competence takes no
// parameters beyond the rubric.
func NewCompetenceFromConfig(id string, rubric domain.Rubric, _ map[string]any) (ports.Unit, error) {
	return NewCompetenceUnit(id, rubric)
}
