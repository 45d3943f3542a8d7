package units

import (
	"context"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/testutils"
)

func newTestIntegrityUnit(t *testing.T, cfg IntegrityConfig) *IntegrityUnit {
	t.Helper()
	u, err := NewIntegrityUnit("integrity", domain.DefaultRubric(), cfg)
	require.NoError(t, err)
	return u
}

func TestIntegrityUnit_Score(t *testing.T) {
	u := newTestIntegrityUnit(t, DefaultIntegrityConfig())

	tests := []struct {
		name   string
		record domain.CandidateRecord
		check  func(t *testing.T, b domain.IntegrityBreakdown)
	}{
		{
			name:   "clean record keeps the base",
			record: testutils.MinimalCandidate("clean"),
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				assert.Equal(t, 100.0, b.Score)
				assert.Zero(t, b.TotalPenalty)
			},
		},
		{
			name:   "single firm sentence applies full weight",
			record: testutils.SeasonedLegislator("c-1"),
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				assert.Equal(t, 40.0, b.Criminal.Value)
				assert.Equal(t, 70.0, b.Criminal.Max)
				assert.Equal(t, 40.0, b.TotalPenalty)
				assert.Equal(t, 60.0, b.Score)
			},
		},
		{
			name:   "single non-firm sentence",
			record: domain.CandidateRecord{PenalSentences: []domain.PenalSentence{{Firm: false}}},
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				assert.Equal(t, 20.0, b.Criminal.Value)
				assert.Equal(t, 80.0, b.Score)
			},
		},
		{
			name:   "every category penalised",
			record: testutils.TroubledCandidate("c-2"),
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				// Firm 40, firm 40x.5, non-firm 20x.25.
				assert.InDelta(t, 65.0, b.Criminal.Value, 1e-9)
				// 30 + 20x.5 + 20x.25 = 45, capped.
				assert.Equal(t, 40.0, b.Civil.Value)
				assert.Equal(t, 15.0, b.Resignations.Value)
				// 14 + 6 + 8 (labor type cap) + 3 = 31, capped.
				assert.Equal(t, 20.0, b.Company.Value)
				assert.Equal(t, 8.0, b.Voting.Value)
				assert.Equal(t, 1.0, b.VotingBonus.Value)
				// Two sanctions plus low attendance.
				assert.Equal(t, 15.0, b.Incumbent.Value)
				// Debts capped at 9, plus not locatable, capped.
				assert.Equal(t, 15.0, b.Tax.Value)
				assert.InDelta(t, 178.0, b.TotalPenalty, 1e-9)
				assert.Equal(t, 0.0, b.Score)
			},
		},
		{
			name: "voting bonus cannot lift the score above 100",
			record: domain.CandidateRecord{Aggregates: domain.Aggregates{
				Voting: &domain.VotingRecord{Against: 20},
			}},
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				assert.Equal(t, 5.0, b.VotingBonus.Value)
				assert.Equal(t, 100.0, b.Score)
			},
		},
		{
			name: "voting bonus offsets penalties",
			record: domain.CandidateRecord{
				PartyResignations: 2,
				Aggregates:        domain.Aggregates{Voting: &domain.VotingRecord{InFavor: 1, Against: 3}},
			},
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				assert.Equal(t, 10.0, b.Resignations.Value)
				assert.Equal(t, 2.0, b.Voting.Value)
				assert.Equal(t, 3.0, b.VotingBonus.Value)
				assert.Equal(t, 91.0, b.Score)
			},
		},
		{
			name: "company issue types have their own caps",
			record: domain.CandidateRecord{Aggregates: domain.Aggregates{
				CompanyIssues: &domain.CompanyIssues{Labor: 1000},
			}},
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				assert.InDelta(t, 8.0, b.Company.Value, 1e-6)
			},
		},
		{
			name: "incumbent without attendance data",
			record: domain.CandidateRecord{Aggregates: domain.Aggregates{
				IncumbentPerformance: &domain.IncumbentPerformance{EthicsSanctions: 1},
			}},
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				assert.Equal(t, 5.0, b.Incumbent.Value)
			},
		},
		{
			name: "good attendance is not penalised",
			record: domain.CandidateRecord{Aggregates: domain.Aggregates{
				IncumbentPerformance: &domain.IncumbentPerformance{AttendanceRate: testutils.Ptr(0.9)},
			}},
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				assert.Zero(t, b.Incumbent.Value)
			},
		},
		{
			name: "not locatable taxpayer",
			record: domain.CandidateRecord{Aggregates: domain.Aggregates{
				Tax: &domain.TaxStatus{NotLocatable: true},
			}},
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				assert.Equal(t, 10.0, b.Tax.Value)
				assert.Equal(t, 90.0, b.Score)
			},
		},
		{
			name: "negative counts are ignored",
			record: domain.CandidateRecord{
				PartyResignations: -3,
				Aggregates: domain.Aggregates{
					Voting: &domain.VotingRecord{InFavor: -4, Against: -2},
					Tax:    &domain.TaxStatus{ActiveCoactiveDebts: -1},
				},
			},
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				assert.Equal(t, 100.0, b.Score)
			},
		},
		{
			name:   "lower base override",
			record: domain.CandidateRecord{IntegrityBase: testutils.Ptr(80.0)},
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				assert.Equal(t, 80.0, b.Base)
				assert.Equal(t, 80.0, b.Score)
			},
		},
		{
			name:   "base override cannot raise the base",
			record: domain.CandidateRecord{IntegrityBase: testutils.Ptr(150.0)},
			check: func(t *testing.T, b domain.IntegrityBreakdown) {
				assert.Equal(t, 100.0, b.Base)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, u.Score(normalized(t, tt.record)))
		})
	}
}

func TestIntegrityUnit_BaseOverrideDisabled(t *testing.T) {
	u := newTestIntegrityUnit(t, IntegrityConfig{AllowBaseOverride: false})
	b := u.Score(normalized(t, domain.CandidateRecord{IntegrityBase: testutils.Ptr(50.0)}))
	assert.Equal(t, 100.0, b.Base)
}

func TestIntegrityUnit_QuarterWeightFloor(t *testing.T) {
	u := newTestIntegrityUnit(t, DefaultIntegrityConfig())
	labor := make([]domain.CivilSentenceType, 4)
	for i := range labor {
		labor[i] = domain.CivilLabor
	}
	// 10 + 5 + 2.5 + 2.5: the fourth sentence still counts at a quarter.
	assert.InDelta(t, 20.0, u.civil(labor), 1e-9)
}

func TestIntegrityUnit_ResignationTiers(t *testing.T) {
	u := newTestIntegrityUnit(t, DefaultIntegrityConfig())

	for count, want := range map[int]float64{0: 0, 1: 5, 2: 10, 3: 10, 4: 15, 9: 15} {
		b := u.Score(normalized(t, domain.CandidateRecord{PartyResignations: count}))
		assert.Equal(t, want, b.Resignations.Value, "count %d", count)
	}
}

func TestIntegrityUnit_CategoriesAreReportedInOrder(t *testing.T) {
	u := newTestIntegrityUnit(t, DefaultIntegrityConfig())
	b := u.Score(normalized(t, testutils.TroubledCandidate("c-2")))

	var names []string
	for _, c := range b.Categories() {
		names = append(names, c.Category)
	}
	assert.Equal(t, []string{
		domain.CategoryCriminal, domain.CategoryCivil, domain.CategoryResignations,
		domain.CategoryCompany, domain.CategoryVoting, domain.CategoryIncumbent, domain.CategoryTax,
	}, names)
}

func TestIntegrityUnit_Properties(t *testing.T) {
	u := newTestIntegrityUnit(t, DefaultIntegrityConfig())
	nu := newTestNormalizeUnit(t)
	rubric := domain.DefaultRubric().Integrity

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	civilTypes := make([]any, 0, len(domain.CivilSentenceTypes()))
	for _, ct := range domain.CivilSentenceTypes() {
		civilTypes = append(civilTypes, ct)
	}

	properties.Property("civil penalty of one sub-type never exceeds the cap", prop.ForAll(
		func(n int, ct domain.CivilSentenceType) bool {
			types := make([]domain.CivilSentenceType, n)
			for i := range types {
				types[i] = ct
			}
			sub := domain.NewSubScore(u.civil(types), rubric.Civil.Cap)
			return sub.Value <= rubric.Civil.Cap
		},
		gen.IntRange(0, 200),
		gen.OneConstOf(civilTypes...),
	))

	properties.Property("extra occurrences add less until the quarter-weight floor", prop.ForAll(
		func(n int, ct domain.CivilSentenceType) bool {
			penalty := func(k int) float64 {
				types := make([]domain.CivilSentenceType, k)
				for i := range types {
					types[i] = ct
				}
				return u.civil(types)
			}
			last := penalty(n) - penalty(n-1)
			previous := penalty(n-1) - penalty(n-2)
			if n <= 3 {
				return last > 0 && last < previous
			}
			return last > 0 && math.Abs(last-previous) < 1e-9
		},
		gen.IntRange(2, 20),
		gen.OneConstOf(civilTypes...),
	))

	properties.Property("integrity stays within bounds with every category maxed", prop.ForAll(
		func(criminal, civil, resignations, issues, votes, sanctions int, notLocatable bool) bool {
			rec := domain.CandidateRecord{PartyResignations: resignations}
			for range criminal {
				rec.PenalSentences = append(rec.PenalSentences, domain.PenalSentence{Firm: true})
			}
			for range civil {
				rec.CivilSentences = append(rec.CivilSentences, domain.CivilSentence{Type: "violencia familiar"})
			}
			rec.Aggregates = domain.Aggregates{
				CompanyIssues:        &domain.CompanyIssues{Criminal: issues, Environmental: issues, Labor: issues, Consumer: issues},
				Voting:               &domain.VotingRecord{InFavor: votes, Against: votes},
				IncumbentPerformance: &domain.IncumbentPerformance{EthicsSanctions: sanctions, AttendanceRate: testutils.Ptr(0.1)},
				Tax:                  &domain.TaxStatus{NotLocatable: notLocatable, ActiveCoactiveDebts: issues},
			}

			b := u.Score(nu.Normalize(rec, testutils.ReferenceYear))
			for _, c := range b.Categories() {
				if c.Penalty.Value < 0 || c.Penalty.Value > c.Penalty.Max {
					return false
				}
			}
			return b.Score >= 0 && b.Score <= 100
		},
		gen.IntRange(0, 30),
		gen.IntRange(0, 30),
		gen.IntRange(0, 10),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 100),
		gen.IntRange(0, 20),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestIntegrityUnit_Execute(t *testing.T) {
	u := newTestIntegrityUnit(t, DefaultIntegrityConfig())

	_, err := u.Execute(context.Background(), domain.NewState())
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	state := domain.With(domain.NewState(), domain.KeyNormalized, normalized(t, testutils.SeasonedLegislator("c-1")))
	out, err := u.Execute(context.Background(), state)
	require.NoError(t, err)

	b, ok := domain.Get(out, domain.KeyIntegrity)
	require.True(t, ok)
	assert.Equal(t, 60.0, b.Score)
}

func TestNewIntegrityFromConfig(t *testing.T) {
	rubric := domain.DefaultRubric()

	unit, err := NewIntegrityFromConfig("integrity", rubric, map[string]any{"allow_base_override": false})
	require.NoError(t, err)
	assert.False(t, unit.(*IntegrityUnit).config.AllowBaseOverride)
	assert.NoError(t, unit.Validate())

	_, err = NewIntegrityFromConfig("integrity", rubric, map[string]any{"base": 90})
	assert.ErrorContains(t, err, "parse config")

	_, err = NewIntegrityFromConfig("", rubric, nil)
	assert.ErrorIs(t, err, ErrEmptyUnitName)

	broken := domain.DefaultRubric()
	broken.Integrity.Criminal.Cap = 500
	unit, err = NewIntegrityFromConfig("integrity", broken, nil)
	require.NoError(t, err)
	assert.Error(t, unit.Validate())
}
