package units

import (
	"context"
	"math"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/testutils"
)

func newTestComposeUnit(t *testing.T) *ComposeUnit {
	t.Helper()
	u, err := NewComposeUnit("compose", domain.DefaultRubric(), DefaultComposeConfig())
	require.NoError(t, err)
	return u
}

// scoreDimensions runs the dimension units over rec and returns the
// normalized candidate with its breakdown.
func scoreDimensions(t *testing.T, rec domain.CandidateRecord) (domain.NormalizedCandidate, domain.ScoreBreakdown) {
	t.Helper()
	rubric := domain.DefaultRubric()

	competence, err := NewCompetenceUnit("competence", rubric)
	require.NoError(t, err)
	integrity, err := NewIntegrityUnit("integrity", rubric, DefaultIntegrityConfig())
	require.NoError(t, err)
	transparency, err := NewTransparencyUnit("transparency", rubric)
	require.NoError(t, err)

	c := normalized(t, rec)
	return c, domain.ScoreBreakdown{
		Competence:   competence.Score(c),
		Integrity:    integrity.Score(c),
		Transparency: transparency.Transparency(c),
		Confidence:   transparency.Confidence(c),
	}
}

func TestComposeUnit_Compose(t *testing.T) {
	u := newTestComposeUnit(t)

	t.Run("seasoned legislator", func(t *testing.T) {
		c, b := scoreDimensions(t, testutils.SeasonedLegislator("c-1"))
		result, err := u.Compose(c, b, nil)
		require.NoError(t, err)

		assert.Equal(t, "c-1", result.CandidateID)
		assert.Equal(t, domain.DefaultRubric().Version, result.RubricVersion)
		assert.Equal(t, 92.0, result.Scores.Competence)
		assert.Equal(t, 60.0, result.Scores.Integrity)
		assert.Equal(t, 100.0, result.Scores.Transparency)
		assert.Equal(t, 71.43, result.Scores.Confidence)
		assert.Nil(t, result.Scores.PlanViability)
		assert.Nil(t, result.Custom)

		require.Len(t, result.Blends, 3)
		assert.InDelta(t, 80.8, result.Blends[domain.PresetBalanced].Score, 1e-9)
		assert.InDelta(t, 83.6, result.Blends[domain.PresetMerit].Score, 1e-9)
		assert.InDelta(t, 74.0, result.Blends[domain.PresetIntegrity].Score, 1e-9)

		assert.Equal(t, 20, result.Timeline.UniqueYears)
		assert.NotEmpty(t, result.Experience)
	})

	t.Run("confidence does not move the blends", func(t *testing.T) {
		rec := testutils.SeasonedLegislator("c-1")
		c, b := scoreDimensions(t, rec)
		verified, err := u.Compose(c, b, nil)
		require.NoError(t, err)

		rec.Verified = false
		rec.DataSource = ""
		c, b = scoreDimensions(t, rec)
		unverified, err := u.Compose(c, b, nil)
		require.NoError(t, err)

		assert.Less(t, unverified.Scores.Confidence, verified.Scores.Confidence)
		assert.Equal(t, verified.Blends, unverified.Blends)
	})

	t.Run("custom weights stay within bounds after normalizing", func(t *testing.T) {
		c, b := scoreDimensions(t, testutils.SeasonedLegislator("c-1"))
		result, err := u.Compose(c, b, &domain.Weights{Competence: 0.9, Integrity: 0.05, Transparency: 0.05})
		require.NoError(t, err)
		require.NotNil(t, result.Custom)

		// Competence pins at its 0.70 maximum; the remaining 0.30 is shared
		// by integrity and transparency in their clamped 2:1 ratio.
		w := result.Custom.Weights
		assert.InDelta(t, 0.7, w.Competence, 1e-9)
		assert.InDelta(t, 0.2, w.Integrity, 1e-9)
		assert.InDelta(t, 0.1, w.Transparency, 1e-9)
		assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	})

	t.Run("identical input yields identical output", func(t *testing.T) {
		c, b := scoreDimensions(t, testutils.TroubledCandidate("c-2"))
		first, err := u.Compose(c, b, nil)
		require.NoError(t, err)
		second, err := u.Compose(c, b, nil)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestComposeUnit_Presidential(t *testing.T) {
	u := newTestComposeUnit(t)

	t.Run("plan viability selects the presidential presets", func(t *testing.T) {
		c, b := scoreDimensions(t, testutils.PresidentialCandidate("p-1", 70))
		require.Equal(t, domain.CargoPresident, c.Cargo)

		result, err := u.Compose(c, b, nil)
		require.NoError(t, err)
		require.NotNil(t, result.Scores.PlanViability)
		assert.Equal(t, 70.0, *result.Scores.PlanViability)

		presets := domain.DefaultRubric().Composer.PresidentialPresets
		for name, blend := range result.Blends {
			assert.Equal(t, presets[name], blend.Weights, name)
		}
	})

	t.Run("out of range plan viability is clamped", func(t *testing.T) {
		c, b := scoreDimensions(t, testutils.PresidentialCandidate("p-1", 140))
		result, err := u.Compose(c, b, nil)
		require.NoError(t, err)
		assert.Equal(t, 100.0, *result.Scores.PlanViability)
	})

	t.Run("without plan viability the standard presets apply", func(t *testing.T) {
		rec := testutils.PresidentialCandidate("p-1", 0)
		rec.Aggregates.PlanViability = nil
		c, b := scoreDimensions(t, rec)

		result, err := u.Compose(c, b, nil)
		require.NoError(t, err)
		assert.Nil(t, result.Scores.PlanViability)
		assert.Zero(t, result.Blends[domain.PresetBalanced].Weights.PlanViability)
	})

	t.Run("plan viability is ignored for other offices", func(t *testing.T) {
		rec := testutils.SeasonedLegislator("c-1")
		rec.Aggregates.PlanViability = testutils.Ptr(90.0)
		c, b := scoreDimensions(t, rec)

		result, err := u.Compose(c, b, nil)
		require.NoError(t, err)
		assert.Nil(t, result.Scores.PlanViability)
	})
}

func TestComposeUnit_Blend(t *testing.T) {
	u := newTestComposeUnit(t)
	scores := domain.Scores{Competence: 80, Integrity: 50, Transparency: 20}

	tests := []struct {
		name    string
		weights domain.Weights
		scores  domain.Scores
		want    float64
		wantErr error
	}{
		{
			name:    "normalized weights",
			weights: domain.Weights{Competence: 0.5, Integrity: 0.25, Transparency: 0.25},
			scores:  scores,
			want:    57.5,
		},
		{
			name:    "unnormalized weights are scaled",
			weights: domain.Weights{Competence: 2, Integrity: 1, Transparency: 1},
			scores:  scores,
			want:    57.5,
		},
		{
			name:    "rounded to precision",
			weights: domain.Weights{Competence: 1, Integrity: 1, Transparency: 1},
			scores:  domain.Scores{Competence: 10, Integrity: 10, Transparency: 0},
			want:    6.67,
		},
		{
			name:    "plan viability",
			weights: domain.Weights{Competence: 0.3, Integrity: 0.35, Transparency: 0.15, PlanViability: 0.2},
			scores:  domain.Scores{Competence: 80, Integrity: 50, Transparency: 20, PlanViability: testutils.Ptr(60.0)},
			want:    24 + 17.5 + 3 + 12,
		},
		{
			name:    "zero weights",
			weights: domain.Weights{},
			scores:  scores,
			wantErr: domain.ErrInvalidWeights,
		},
		{
			name:    "plan viability weight without a score",
			weights: domain.Weights{Competence: 0.5, PlanViability: 0.5},
			scores:  scores,
			wantErr: domain.ErrInvalidWeights,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blend, err := u.Blend(tt.weights, tt.scores)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, blend.Score, 1e-9)
			assert.InDelta(t, 1.0, blend.Weights.Sum(), 1e-9)
		})
	}
}

func TestComposeUnit_CustomWeights(t *testing.T) {
	u := newTestComposeUnit(t)

	t.Run("zeros clamp up to the minimums", func(t *testing.T) {
		w, err := u.CustomWeights(domain.Weights{})
		require.NoError(t, err)
		assert.InDelta(t, 0.1/0.25, w.Competence, 1e-9)
		assert.InDelta(t, 0.05/0.25, w.Transparency, 1e-9)
	})

	t.Run("plan viability is dropped", func(t *testing.T) {
		w, err := u.CustomWeights(domain.Weights{Competence: 0.4, Integrity: 0.4, Transparency: 0.2, PlanViability: 0.5})
		require.NoError(t, err)
		assert.Zero(t, w.PlanViability)
		assert.InDelta(t, 0.4, w.Competence, 1e-9)
	})

	t.Run("results respect every bound", func(t *testing.T) {
		bounds := domain.DefaultRubric().Composer.CustomBounds
		within := func(r domain.Range, v float64) bool {
			return v >= r.Min-1e-9 && v <= r.Max+1e-9
		}
		f := func(c, i, tr float64) bool {
			w, err := u.CustomWeights(domain.Weights{Competence: c, Integrity: i, Transparency: tr})
			if err != nil {
				return false
			}
			return within(bounds.Competence, w.Competence) &&
				within(bounds.Integrity, w.Integrity) &&
				within(bounds.Transparency, w.Transparency) &&
				math.Abs(w.Sum()-1) <= 1e-9
		}
		require.NoError(t, quick.Check(f, &quick.Config{MaxCount: 500}))

		for _, in := range []domain.Weights{
			{Competence: 0.9, Integrity: 0.05, Transparency: 0.05},
			{Competence: 0.05, Integrity: 0.05, Transparency: 0.9},
			{Competence: 1, Integrity: 1, Transparency: 1},
			{Competence: 0.7, Integrity: 0.7, Transparency: 0},
		} {
			w, err := u.CustomWeights(in)
			require.NoError(t, err)
			assert.True(t, within(bounds.Competence, w.Competence), "competence %v for %+v", w.Competence, in)
			assert.True(t, within(bounds.Integrity, w.Integrity), "integrity %v for %+v", w.Integrity, in)
			assert.True(t, within(bounds.Transparency, w.Transparency), "transparency %v for %+v", w.Transparency, in)
			assert.InDelta(t, 1.0, w.Sum(), 1e-9)
		}
	})

	t.Run("non-finite weights are rejected", func(t *testing.T) {
		_, err := u.CustomWeights(domain.Weights{Competence: math.NaN(), Integrity: 0.5, Transparency: 0.5})
		assert.ErrorIs(t, err, domain.ErrInvalidWeights)

		_, err = u.CustomWeights(domain.Weights{Competence: math.Inf(1), Integrity: 0.5, Transparency: 0.5})
		assert.ErrorIs(t, err, domain.ErrInvalidWeights)
	})
}

func TestComposeUnit_Execute(t *testing.T) {
	u := newTestComposeUnit(t)
	c, b := scoreDimensions(t, testutils.SeasonedLegislator("c-1"))

	partial := domain.With(domain.NewState(), domain.KeyNormalized, c)
	partial = domain.With(partial, domain.KeyCompetence, b.Competence)
	_, err := u.Execute(context.Background(), partial)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	state := partial.WithMultiple(map[string]any{
		domain.KeyIntegrity.Name():    b.Integrity,
		domain.KeyTransparency.Name(): b.Transparency,
		domain.KeyConfidence.Name():   b.Confidence,
	})
	state = domain.With(state, domain.KeyCustomWeights, domain.Weights{Competence: 0.4, Integrity: 0.4, Transparency: 0.2})

	out, err := u.Execute(context.Background(), state)
	require.NoError(t, err)

	result, ok := domain.Get(out, domain.KeyResult)
	require.True(t, ok)
	require.NotNil(t, result.Custom)
	assert.InDelta(t, result.Blends[domain.PresetBalanced].Score, result.Custom.Score, 1e-9)
}

func TestNewComposeFromConfig(t *testing.T) {
	rubric := domain.DefaultRubric()

	unit, err := NewComposeFromConfig("compose", rubric, map[string]any{"precision": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, unit.(*ComposeUnit).config.Precision)
	assert.NoError(t, unit.Validate())

	_, err = NewComposeFromConfig("compose", rubric, map[string]any{"decimals": 2})
	assert.ErrorContains(t, err, "parse config")

	_, err = NewComposeFromConfig("compose", rubric, map[string]any{"precision": 9})
	assert.ErrorContains(t, err, "configuration validation failed")

	_, err = NewComposeFromConfig("", rubric, nil)
	assert.ErrorIs(t, err, ErrEmptyUnitName)
}
