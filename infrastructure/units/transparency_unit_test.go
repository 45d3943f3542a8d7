package units

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/testutils"
)

func newTestTransparencyUnit(t *testing.T) *TransparencyUnit {
	t.Helper()
	u, err := NewTransparencyUnit("transparency", domain.DefaultRubric())
	require.NoError(t, err)
	return u
}

func TestTransparencyUnit_Transparency(t *testing.T) {
	u := newTestTransparencyUnit(t)

	t.Run("complete consistent declaration", func(t *testing.T) {
		b := u.Transparency(normalized(t, testutils.SeasonedLegislator("c-1")))
		assert.Equal(t, 40.0, b.Completeness.Value)
		assert.Equal(t, 30.0, b.Consistency.Value)
		assert.Equal(t, 30.0, b.Assets.Value)
		assert.Zero(t, b.Sanctions.Value)
		assert.Equal(t, 100.0, b.Score)
	})

	t.Run("half complete with capped sanctions", func(t *testing.T) {
		b := u.Transparency(normalized(t, testutils.TroubledCandidate("c-2")))
		assert.InDelta(t, 20.0, b.Completeness.Value, 1e-9)
		assert.Equal(t, 30.0, b.Consistency.Value)
		assert.Zero(t, b.Assets.Value)
		assert.Equal(t, 20.0, b.Sanctions.Value)
		assert.InDelta(t, 30.0, b.Score, 1e-9)
	})

	t.Run("empty record has nothing to contradict", func(t *testing.T) {
		b := u.Transparency(normalized(t, testutils.MinimalCandidate("c-3")))
		assert.Zero(t, b.Completeness.Value)
		assert.Equal(t, 30.0, b.Consistency.Value)
		assert.Equal(t, 30.0, b.Score)
	})

	t.Run("implausible dates", func(t *testing.T) {
		rec := domain.CandidateRecord{
			BirthYear:  2015,
			Education:  []domain.EducationEntry{{Level: "primaria", Year: 2030}},
			Experience: []domain.ExperienceEntry{{Position: "Asistente", StartYear: 2020, EndYear: 2022}},
		}
		b := u.Transparency(normalized(t, rec))
		assert.Zero(t, b.Consistency.Value)
	})

	t.Run("inverted interval", func(t *testing.T) {
		rec := domain.CandidateRecord{
			Experience: []domain.ExperienceEntry{
				{Position: "Asistente", StartYear: 2018, EndYear: 2012},
				{Position: "Analista", StartYear: 2012, EndYear: 2018},
			},
		}
		b := u.Transparency(normalized(t, rec))
		assert.Equal(t, 15.0, b.Consistency.Value)
	})
}

func TestTransparencyUnit_Assets(t *testing.T) {
	u := newTestTransparencyUnit(t)
	value := testutils.Ptr(1000.0)

	tests := []struct {
		name   string
		assets *domain.AssetDeclaration
		want   float64
	}{
		{"no declaration", nil, 0},
		{"not declared", &domain.AssetDeclaration{Declared: false}, 0},
		{"declared without items", &domain.AssetDeclaration{Declared: true}, 10},
		{"too few items", &domain.AssetDeclaration{
			Declared: true, HasIncomeData: true,
			Items: []domain.AssetItem{{Value: value}, {Value: value}},
		}, 20},
		{"unvalued item", &domain.AssetDeclaration{
			Declared: true, HasIncomeData: true,
			Items: []domain.AssetItem{{Value: value}, {Value: value}, {Value: value}, {Kind: "otros"}},
		}, 20},
		{"no income data", &domain.AssetDeclaration{
			Declared: true,
			Items:    []domain.AssetItem{{Value: value}, {Value: value}, {Value: value}},
		}, 20},
		{"detailed", testutils.DetailedAssets(), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, u.assets(tt.assets))
		})
	}
}

func TestTransparencyUnit_Confidence(t *testing.T) {
	u := newTestTransparencyUnit(t)

	t.Run("verified record from a trusted source", func(t *testing.T) {
		b := u.Confidence(normalized(t, testutils.SeasonedLegislator("c-1")))
		assert.Equal(t, 25.0, b.Verification.Value)
		assert.Equal(t, 25.0, b.TrustedSource.Value)
		// Education, experience and assets out of seven categories.
		assert.InDelta(t, 50.0*3/7, b.Coverage.Value, 1e-9)
		assert.InDelta(t, 50+50.0*3/7, b.Score, 1e-9)
	})

	t.Run("source match ignores case and spacing", func(t *testing.T) {
		b := u.Confidence(normalized(t, domain.CandidateRecord{DataSource: " JNE "}))
		assert.Equal(t, 25.0, b.TrustedSource.Value)
	})

	t.Run("untrusted source", func(t *testing.T) {
		b := u.Confidence(normalized(t, domain.CandidateRecord{DataSource: "blog"}))
		assert.Zero(t, b.TrustedSource.Value)
		assert.Zero(t, b.Score)
	})

	t.Run("aggregates count toward coverage", func(t *testing.T) {
		b := u.Confidence(normalized(t, testutils.TroubledCandidate("c-2")))
		assert.InDelta(t, 50.0*5/7, b.Coverage.Value, 1e-9)
	})
}

func TestTransparencyUnit_ConfidenceIsIndependent(t *testing.T) {
	u := newTestTransparencyUnit(t)

	rec := testutils.SeasonedLegislator("c-1")
	before := u.Transparency(normalized(t, rec))

	rec.Verified = false
	rec.DataSource = ""
	after := u.Transparency(normalized(t, rec))

	assert.Equal(t, before, after)
}

func TestTransparencyUnit_Execute(t *testing.T) {
	u := newTestTransparencyUnit(t)

	_, err := u.Execute(context.Background(), domain.NewState())
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	state := domain.With(domain.NewState(), domain.KeyNormalized, normalized(t, testutils.SeasonedLegislator("c-1")))
	out, err := u.Execute(context.Background(), state)
	require.NoError(t, err)

	tr, ok := domain.Get(out, domain.KeyTransparency)
	require.True(t, ok)
	assert.Equal(t, 100.0, tr.Score)

	conf, ok := domain.Get(out, domain.KeyConfidence)
	require.True(t, ok)
	assert.Greater(t, conf.Score, 50.0)
}

func TestNewTransparencyFromConfig(t *testing.T) {
	unit, err := NewTransparencyFromConfig("transparency", domain.DefaultRubric(), nil)
	require.NoError(t, err)
	assert.NoError(t, unit.Validate())

	_, err = NewTransparencyFromConfig("", domain.DefaultRubric(), nil)
	assert.ErrorIs(t, err, ErrEmptyUnitName)
}
