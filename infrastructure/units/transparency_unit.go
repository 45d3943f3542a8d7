package units

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

var _ ports.Unit = (*TransparencyUnit)(nil)

// detailedAssetItems is the number of valued items a declaration needs to
// count as detailed.
const detailedAssetItems = 3

// Plausible age range of a candidate in the reference year.
const (
	minCandidateAge = 18
	maxCandidateAge = 110
)

// TransparencyUnit scores the quality of the candidate's declarations and,
// separately, the advisory confidence indicator. Confidence describes how
// far the record can be relied upon and never feeds back into any other
// dimension.
type TransparencyUnit struct {
	name   string
	rubric domain.Rubric
	tracer trace.Tracer
}

// NewTransparencyUnit creates a TransparencyUnit over rubric.
func NewTransparencyUnit(name string, rubric domain.Rubric) (*TransparencyUnit, error) {
	if name == "" {
		return nil, ErrEmptyUnitName
	}
	return &TransparencyUnit{
		name:   name,
		rubric: rubric,
		tracer: otel.Tracer("transparency-unit"),
	}, nil
}

// Name returns the unique identifier for this unit instance.
func (u *TransparencyUnit) Name() string { return u.name }

// Execute reads domain.KeyNormalized and stores the breakdowns under
// domain.KeyTransparency and domain.KeyConfidence.
func (u *TransparencyUnit) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := u.tracer.Start(ctx, "TransparencyUnit.Execute",
		trace.WithAttributes(
			attribute.String("unit.type", TypeTransparency),
			attribute.String("unit.id", u.name),
			attribute.String("rubric.version", u.rubric.Version),
		),
	)
	defer span.End()

	candidate, err := domain.Require(state, domain.KeyNormalized)
	if err != nil {
		return state, failSpan(span, err)
	}

	transparency := u.Transparency(candidate)
	confidence := u.Confidence(candidate)
	span.SetAttributes(
		attribute.Float64("transparency.score", transparency.Score),
		attribute.Float64("confidence.score", confidence.Score),
	)

	return state.WithMultiple(map[string]any{
		domain.KeyTransparency.Name(): transparency,
		domain.KeyConfidence.Name():   confidence,
	}), nil
}

// Transparency scores declaration completeness, internal consistency and
// asset-declaration quality, minus a capped penalty for regulatory
// reporting sanctions.
func (u *TransparencyUnit) Transparency(c domain.NormalizedCandidate) domain.TransparencyBreakdown {
	r := u.rubric.Transparency
	rec := c.Record

	b := domain.TransparencyBreakdown{
		Completeness: domain.NewSubScore(fraction(completeness(rec))*r.CompletenessMax, r.CompletenessMax),
		Consistency:  domain.NewSubScore(fraction(u.consistency(c))*r.ConsistencyMax, r.ConsistencyMax),
		Assets:       domain.NewSubScore(u.assets(rec.Assets), r.AssetsMax),
		Sanctions: domain.NewSubScore(
			float64(max(rec.Aggregates.RegulatorySanctions, 0))*r.SanctionPenalty, r.SanctionCap),
	}

	total := b.Completeness.Value + b.Consistency.Value + b.Assets.Value - b.Sanctions.Value
	b.Score = domain.Clamp(total, 0, 100)
	return b
}

// Confidence scores verification, source trust and data coverage.
func (u *TransparencyUnit) Confidence(c domain.NormalizedCandidate) domain.ConfidenceBreakdown {
	r := u.rubric.Confidence
	rec := c.Record

	b := domain.ConfidenceBreakdown{
		Verification:  domain.NewSubScore(0, r.VerifiedPoints),
		TrustedSource: domain.NewSubScore(0, r.TrustedSourcePoints),
		Coverage:      domain.NewSubScore(fraction(coverage(rec))*r.CoverageMax, r.CoverageMax),
	}
	if rec.Verified {
		b.Verification.Value = r.VerifiedPoints
	}
	source := strings.TrimSpace(rec.DataSource)
	for _, trusted := range r.TrustedSources {
		if source != "" && strings.EqualFold(source, trusted) {
			b.TrustedSource.Value = r.TrustedSourcePoints
			break
		}
	}

	b.Score = domain.Clamp(b.Verification.Value+b.TrustedSource.Value+b.Coverage.Value, 0, 100)
	return b
}

// tally counts passed checks out of total.
type tally struct{ passed, total int }

func (t *tally) check(ok bool) {
	t.total++
	if ok {
		t.passed++
	}
}

// fraction returns the share of passed checks; an empty tally is complete.
func fraction(t tally) float64 {
	if t.total == 0 {
		return 1
	}
	return float64(t.passed) / float64(t.total)
}

// completeness counts the populated expected declaration fields.
func completeness(rec domain.CandidateRecord) tally {
	var t tally
	t.check(rec.BirthYear > 0)
	t.check(strings.TrimSpace(rec.Cargo) != "")
	t.check(len(rec.Education) > 0)
	t.check(len(rec.Experience) > 0)
	t.check(rec.Assets != nil && rec.Assets.Declared)
	t.check(rec.Assets != nil && (rec.Assets.Income != nil || rec.Assets.HasIncomeData))
	return t
}

// consistency runs cross-field plausibility checks. Checks whose inputs
// are missing pass.
func (u *TransparencyUnit) consistency(c domain.NormalizedCandidate) tally {
	var t tally
	ref := c.ReferenceYear
	birth := c.Record.BirthYear

	if birth > 0 {
		age := ref - birth
		t.check(age >= minCandidateAge && age <= maxCandidateAge)
	}

	for _, e := range c.Education {
		if e.Year <= 0 {
			continue
		}
		t.check(e.Year <= ref && (birth <= 0 || e.Year > birth))
	}

	earliest := birth + u.rubric.Transparency.MinWorkingAge
	for _, e := range c.Experience {
		iv := e.Interval
		if iv.Start <= 0 {
			continue
		}
		ordered := iv.Ongoing || iv.End >= iv.Start
		notFuture := iv.Start <= ref
		afterWorkingAge := birth <= 0 || iv.Start >= earliest
		t.check(ordered && notFuture && afterWorkingAge)
	}

	if a := c.Record.Assets; a != nil && a.DeclaredYear > 0 {
		t.check(a.DeclaredYear <= ref)
	}
	return t
}

// assets grades the asset declaration: absent, declared without items,
// sparse, or detailed.
func (u *TransparencyUnit) assets(a *domain.AssetDeclaration) float64 {
	r := u.rubric.Transparency
	if a == nil || !a.Declared {
		return 0
	}
	if len(a.Items) == 0 {
		return r.AssetsBare
	}

	valued := 0
	for _, item := range a.Items {
		if item.Value != nil {
			valued++
		}
	}
	hasIncome := a.Income != nil || a.HasIncomeData
	if valued >= detailedAssetItems && valued == len(a.Items) && hasIncome {
		return r.AssetsDetailed
	}
	return r.AssetsSparse
}

// coverage counts the non-empty expected data categories.
func coverage(rec domain.CandidateRecord) tally {
	var t tally
	agg := rec.Aggregates
	t.check(len(rec.Education) > 0)
	t.check(len(rec.Experience) > 0)
	t.check(len(rec.PoliticalTrajectory) > 0)
	t.check(rec.Assets != nil && rec.Assets.Declared)
	t.check(agg.CompanyIssues != nil)
	t.check(agg.Voting != nil)
	t.check(agg.Tax != nil)
	return t
}

// Validate checks the rubric the unit was built with.
func (u *TransparencyUnit) Validate() error {
	return u.rubric.Check()
}

// NewTransparencyFromConfig creates a TransparencyUnit. Transparency takes
// no parameters beyond the rubric.
func NewTransparencyFromConfig(id string, rubric domain.Rubric, _ map[string]any) (ports.Unit, error) {
	return NewTransparencyUnit(id, rubric)
}
