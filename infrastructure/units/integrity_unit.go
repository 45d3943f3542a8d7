package units

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.Unit = (*IntegrityUnit)(nil)

// negligiblePenalty stops summing repeated occurrences once a term no
// longer changes the result.
const negligiblePenalty = 1e-9

// IntegrityUnit starts from a base score and subtracts one capped penalty
// per category: criminal sentences, civil sentences, party resignations,
// company-linked legal issues, voting record, incumbent performance and tax
// standing. Within the criminal, civil and company categories repeated
// occurrences are discounted by the rubric's diminishing-return factors,
// heaviest occurrence first. Opposing votes earn a capped bonus.
//
// Every category is reported separately so the final score can be audited.
type IntegrityUnit struct {
	name   string
	rubric domain.Rubric
	config IntegrityConfig
	tracer trace.Tracer
}

// IntegrityConfig controls integrity scoring.
type IntegrityConfig struct {
	// AllowBaseOverride honours a pre-adjusted integrity base carried on
	// the record. The override can only lower the base.
	AllowBaseOverride bool `yaml:"allow_base_override" json:"allow_base_override"`
}

// DefaultIntegrityConfig returns the integrity defaults.
func DefaultIntegrityConfig() IntegrityConfig {
	return IntegrityConfig{AllowBaseOverride: true}
}

// NewIntegrityUnit creates an IntegrityUnit over rubric.
func NewIntegrityUnit(name string, rubric domain.Rubric, config IntegrityConfig) (*IntegrityUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &IntegrityUnit{
		name:   name,
		rubric: rubric,
		config: config,
		tracer: otel.Tracer("integrity-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *IntegrityUnit) Name() string { return u.name }

// Execute reads domain.KeyNormalized and stores the breakdown under
// domain.KeyIntegrity.
func (u *IntegrityUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "IntegrityUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeIntegrity),
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
		attribute.Float64("integrity.score", b.Score),
		attribute.Float64("integrity.total_penalty", b.TotalPenalty),
	)
	return domain.With(state, domain.KeyIntegrity, b), nil
}

// Score computes the integrity breakdown of a normalized candidate.
func (u *IntegrityUnit) Score(c domain.NormalizedCandidate) domain.IntegrityBreakdown {
	r := u.rubric.Integrity
	rec := c.Record

	b := domain.IntegrityBreakdown{Base: r.Base}
	if u.config.AllowBaseOverride && rec.IntegrityBase != nil {
		b.Base = domain.Clamp(*rec.IntegrityBase, 0, r.Base)
	}

	b.Criminal = domain.NewSubScore(u.criminal(rec.PenalSentences), r.Criminal.Cap)
	b.Civil = domain.NewSubScore(u.civil(c.CivilSentences), r.Civil.Cap)
	b.Resignations = domain.NewSubScore(r.Resignations.Penalty(rec.PartyResignations), r.Resignations.Cap)
	b.Company = domain.NewSubScore(u.company(rec.Aggregates.CompanyIssues), r.Company.Cap)

	if v := rec.Aggregates.Voting; v != nil {
		b.Voting = domain.NewSubScore(float64(max(v.InFavor, 0))*r.Voting.PenaltyPerVote, r.Voting.PenaltyCap)
		b.VotingBonus = domain.NewSubScore(float64(max(v.Against, 0))*r.Voting.BonusPerVote, r.Voting.BonusCap)
	} else {
		b.Voting = domain.NewSubScore(0, r.Voting.PenaltyCap)
		b.VotingBonus = domain.NewSubScore(0, r.Voting.BonusCap)
	}

	b.Incumbent = domain.NewSubScore(u.incumbent(rec.Aggregates.IncumbentPerformance), r.Incumbent.Cap)
	b.Tax = domain.NewSubScore(u.tax(rec.Aggregates.Tax), r.Tax.Cap)

	for _, cat := range b.Categories() {
		b.TotalPenalty += cat.Penalty.Value
	}
	b.Score = domain.Clamp(b.Base-b.TotalPenalty+b.VotingBonus.Value, 0, 100)
	return b
}

// diminishing sums weights, heaviest first, discounting each successive
// occurrence by the rubric's diminishing-return factor.
func (u *IntegrityUnit) diminishing(weights []float64) float64 {
	slices.SortStableFunc(weights, func(a, b float64) int { return cmp.Compare(b, a) })
	total := 0.0
	for i, w := range weights {
		total += w * u.rubric.Integrity.Diminishing.Factor(i)
	}
	return total
}

// repeated sums count occurrences of the same weight with diminishing
// returns, stopping once limit is reached or terms become negligible.
func (u *IntegrityUnit) repeated(weight float64, count int, limit float64) float64 {
	total := 0.0
	for i := 0; i < count && total < limit; i++ {
		term := weight * u.rubric.Integrity.Diminishing.Factor(i)
		if term < negligiblePenalty {
			break
		}
		total += term
	}
	return min(total, limit)
}

func (u *IntegrityUnit) criminal(sentences []domain.PenalSentence) float64 {
	if len(sentences) == 0 {
		return 0
	}
	cr := u.rubric.Integrity.Criminal
	weights := make([]float64, 0, len(sentences))
	for _, s := range sentences {
		if s.Firm {
			weights = append(weights, cr.FirmWeight)
		} else {
			weights = append(weights, cr.NonFirmWeight)
		}
	}
	return u.diminishing(weights)
}

func (u *IntegrityUnit) civil(types []domain.CivilSentenceType) float64 {
	if len(types) == 0 {
		return 0
	}
	weights := make([]float64, 0, len(types))
	for _, t := range types {
		weights = append(weights, u.rubric.Integrity.Civil.Weights[string(t)])
	}
	return u.diminishing(weights)
}

func (u *IntegrityUnit) company(issues *domain.CompanyIssues) float64 {
	if issues == nil {
		return 0
	}
	co := u.rubric.Integrity.Company
	total := 0.0
	for _, t := range domain.CompanyIssueTypes() {
		total += u.repeated(co.Weights[string(t)], issues.Count(t), co.TypeCaps[string(t)])
	}
	return total
}

func (u *IntegrityUnit) incumbent(perf *domain.IncumbentPerformance) float64 {
	if perf == nil {
		return 0
	}
	in := u.rubric.Integrity.Incumbent
	penalty := float64(max(perf.EthicsSanctions, 0)) * in.SanctionWeight
	if perf.AttendanceRate != nil && *perf.AttendanceRate < in.AttendanceThreshold {
		penalty += in.LowAttendancePenalty
	}
	return penalty
}

func (u *IntegrityUnit) tax(status *domain.TaxStatus) float64 {
	if status == nil {
		return 0
	}
	tx := u.rubric.Integrity.Tax
	penalty := min(float64(max(status.ActiveCoactiveDebts, 0))*tx.PerDebtPenalty, tx.DebtCap)
	if status.NotLocatable {
		penalty += tx.NotLocatablePenalty
	}
	return penalty
}

// Validate checks the rubric and unit configuration.
func (u *IntegrityUnit) Validate() error {
	if err := validate.Struct(u.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return u.rubric.Check()
}

// NewIntegrityFromConfig creates an IntegrityUnit from a configuration map.
func NewIntegrityFromConfig(id string, rubric domain.Rubric, params map[string]any) (ports.Unit, error) {
	cfg := DefaultIntegrityConfig()
	if err := decodeParams(params, &cfg); err != nil {
		return nil, err
	}
	return NewIntegrityUnit(id, rubric, cfg)
}
