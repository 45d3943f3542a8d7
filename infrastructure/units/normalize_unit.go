package units

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-ballot/infrastructure/taxonomy"
	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.Unit = (*NormalizeUnit)(nil)

// NormalizeUnit converts a raw CandidateRecord into the strict
// NormalizedCandidate every calculator consumes. It resolves education
// levels, classifies experience and political trajectory entries, collapses
// redundant year fields and builds the experience and leadership timelines.
//
// Normalization is total: malformed or missing fields resolve to the
// taxonomy defaults and never produce an error. The only failures are
// missing state inputs.
//
// Concurrency: NormalizeUnit holds only immutable configuration and is safe
// for concurrent execution.
type NormalizeUnit struct {
	name       string
	config     NormalizeConfig
	normalizer *taxonomy.Normalizer
	classifier *taxonomy.Classifier
	tracer     trace.Tracer
}

// NormalizeConfig controls taxonomy resolution.
type NormalizeConfig struct {
	Taxonomy taxonomy.Config `yaml:"taxonomy" json:"taxonomy"`

	// DefaultCargo applies when the record carries no cargo text.
	DefaultCargo string `yaml:"default_cargo" json:"default_cargo" validate:"omitempty,oneof=president vice_president senator deputy andean_parliament regional_governor mayor other"`
}

// DefaultNormalizeConfig returns the normalize defaults.
func DefaultNormalizeConfig() NormalizeConfig {
	return NormalizeConfig{
		Taxonomy:     taxonomy.DefaultConfig(),
		DefaultCargo: string(domain.CargoOther),
	}
}

// NewNormalizeUnit creates a NormalizeUnit over the default rule tables.
func NewNormalizeUnit(name string, config NormalizeConfig) (*NormalizeUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	normalizer, err := taxonomy.NewNormalizer(config.Taxonomy)
	if err != nil {
		return nil, err
	}

	return &NormalizeUnit{
		name:       name,
		config:     config,
		normalizer: normalizer,
		classifier: taxonomy.DefaultClassifier(),
		tracer:     otel.Tracer("normalize-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *NormalizeUnit) Name() string { return u.name }

// Execute normalizes the candidate stored under domain.KeyCandidate using
// domain.KeyReferenceYear for ongoing intervals, and stores the result
// under domain.KeyNormalized.
func (u *NormalizeUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "NormalizeUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeNormalize),
			attribute.String("unit.id", u.name),
		),
	)
	defer span.End()

	record, err := domain.Require(state, domain.KeyCandidate)
	if err != nil {
		return state, failSpan(span, err)
	}
	refYear, err := domain.Require(state, domain.KeyReferenceYear)
	if err != nil {
		return state, failSpan(span, err)
	}
	if refYear <= 0 {
		return state, failSpan(span, fmt.Errorf("%w: %d", ErrInvalidReferenceYear, refYear))
	}

	normalized := u.Normalize(record, refYear)

	span.SetAttributes(
		attribute.String("candidate.id", normalized.ID),
		attribute.String("candidate.cargo", string(normalized.Cargo)),
		attribute.Int("experience.entries", len(normalized.Experience)),
		attribute.Int("experience.unique_years", normalized.ExperienceTimeline.UniqueYears),
		attribute.Bool("experience.has_overlap", normalized.ExperienceTimeline.HasOverlap),
	)

	return domain.With(state, domain.KeyNormalized, normalized), nil
}

// Normalize is the pure normalization step.
func (u *NormalizeUnit) Normalize(record domain.CandidateRecord, referenceYear int) domain.NormalizedCandidate {
	out := domain.NormalizedCandidate{
		ID:            record.ID,
		Cargo:         u.cargo(record.Cargo),
		ReferenceYear: referenceYear,
		Education:     u.education(record.Education),
		Record:        record,
	}

	for _, e := range record.Experience {
		out.Experience = append(out.Experience, u.experience(e, referenceYear))
	}
	for _, t := range record.PoliticalTrajectory {
		if e, ok := u.trajectory(t, referenceYear); ok {
			out.Experience = append(out.Experience, e)
		}
	}

	var all, leadership []domain.Interval
	for _, e := range out.Experience {
		all = append(all, e.Interval)
		if e.Leadership() {
			leadership = append(leadership, e.Interval)
		}
	}
	out.ExperienceTimeline = domain.MergeIntervals(all, referenceYear)
	out.LeadershipTimeline = domain.MergeIntervals(leadership, referenceYear)

	for _, s := range record.CivilSentences {
		out.CivilSentences = append(out.CivilSentences, u.normalizer.CivilSentenceType(s.Type, s.Matter))
	}
	return out
}

func (u *NormalizeUnit) cargo(text string) domain.Cargo {
	if text == "" && u.config.DefaultCargo != "" {
		return domain.Cargo(u.config.DefaultCargo)
	}
	return u.normalizer.Cargo(text)
}

func (u *NormalizeUnit) education(entries []domain.EducationEntry) []domain.NormalizedEducation {
	if len(entries) == 0 {
		return nil
	}
	out := make([]domain.NormalizedEducation, 0, len(entries))
	for _, e := range entries {
		level := u.normalizer.EducationLevel(e.Level, e.LegacyLevel)
		if level == domain.EducationNone && e.Degree != "" {
			level = u.normalizer.EducationLevel(e.Degree, "")
		}
		level = taxonomy.AdjustForCompletion(level, e.Completed, e.HasTitle)

		endDateYear, _ := parseYear(e.EndDate)
		out = append(out, domain.NormalizedEducation{
			Level:       level,
			Field:       e.Field,
			Institution: e.Institution,
			Year:        firstYear(e.BachelorYear, e.TitleYear, e.Year, endDateYear, e.EndYear),
			Verified:    e.Verified,
		})
	}
	return out
}

func (u *NormalizeUnit) experience(e domain.ExperienceEntry, referenceYear int) domain.NormalizedExperience {
	out := domain.NormalizedExperience{
		Position:     e.Position,
		Organization: e.Organization,
		Interval:     interval(e.StartYear, e.StartDate, e.EndYear, e.EndDate, e.IsCurrent, referenceYear),
		Source:       domain.SourceStructured,
	}

	role, roleOK := taxonomy.StructuredRole(e.RoleType)
	seniority, seniorityOK := taxonomy.StructuredSeniority(e.Seniority)
	if !roleOK || !seniorityOK {
		cls := u.classifier.Classify(e.Position, e.Organization)
		if !roleOK {
			role = cls.Role
		}
		if !seniorityOK {
			seniority = cls.Seniority
		}
		out.Source = domain.SourceHeuristic
	}
	out.RoleType = role
	out.SeniorityLevel = seniority
	return out
}

// trajectory maps a political trajectory entry onto experience. Candidacies
// and affiliations are not experience and report false, as do elected-office
// entries the candidate did not win.
func (u *NormalizeUnit) trajectory(t domain.PoliticalTrajectoryEntry, referenceYear int) (domain.NormalizedExperience, bool) {
	typ := u.normalizer.TrajectoryType(t.Type)
	if typ == domain.TrajectoryUnknown && t.Elected {
		typ = domain.TrajectoryElectedOffice
	}

	organization := t.Institution
	if organization == "" {
		organization = t.Party
	}
	cls := u.classifier.Classify(t.Position, organization)

	out := domain.NormalizedExperience{
		Position:       t.Position,
		Organization:   organization,
		SeniorityLevel: cls.Seniority,
		Interval:       interval(t.StartYear, "", t.EndYear, "", t.IsCurrent, referenceYear),
		Source:         domain.SourceTrajectory,
	}

	switch typ {
	case domain.TrajectoryElectedOffice:
		if !t.Elected {
			return out, false
		}
		out.RoleType = domain.RoleElectedMid
		if cls.Role == domain.RoleElectedHigh {
			out.RoleType = domain.RoleElectedHigh
		}
		out.SeniorityLevel = max(out.SeniorityLevel, domain.SeniorityManagerial)
	case domain.TrajectoryAppointedOffice:
		out.RoleType = domain.RolePublicExecMid
		if cls.Role == domain.RolePublicExecHigh {
			out.RoleType = domain.RolePublicExecHigh
		}
	case domain.TrajectoryPartyOffice:
		out.RoleType = domain.RolePartisan
	default:
		return out, false
	}
	return out, true
}

// interval builds a year interval from integer years, falling back to date
// strings. A start without an end or ongoing marker counts for its start
// year only; a future end is clamped to the reference year.
func interval(startYear int, startDate string, endYear int, endDate string, current bool, referenceYear int) domain.Interval {
	start := startYear
	if start <= 0 {
		start, _ = parseYear(startDate)
	}

	end, ongoing := endYear, current
	if end <= 0 {
		var marked bool
		end, marked = parseYear(endDate)
		ongoing = ongoing || marked
	}

	switch {
	case ongoing:
		return domain.Interval{Start: start, Ongoing: true}
	case start > 0 && end <= 0:
		end = start + 1
	}
	if end > referenceYear {
		end = max(referenceYear, start)
	}
	return domain.Interval{Start: start, End: end}
}

// Validate checks the unit configuration.
func (u *NormalizeUnit) Validate() error {
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// NewNormalizeFromConfig creates a NormalizeUnit from a configuration map.
// The rubric is not consulted by normalization.
func NewNormalizeFromConfig(id string, _ domain.Rubric, params map[string]any) (ports.Unit, error) {
	cfg := DefaultNormalizeConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewNormalizeUnit(id, cfg)
}
