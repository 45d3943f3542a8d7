package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRubric_Check(t *testing.T) {
	require.NoError(t, DefaultRubric().Check(), "the built-in rubric must always validate")
}

func TestRubric_Check(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *Rubric)
		wantMsg string
	}{
		{
			name:    "missing education level",
			mutate:  func(r *Rubric) { delete(r.Education.LevelPoints, EducationMaster.String()) },
			wantMsg: `education.level_points missing "master"`,
		},
		{
			name:    "non-monotonic education points",
			mutate:  func(r *Rubric) { r.Education.LevelPoints[EducationDoctorate.String()] = 1 },
			wantMsg: `education.level_points not monotonic at "doctorate"`,
		},
		{
			name:    "unknown depth level",
			mutate:  func(r *Rubric) { r.Education.DepthMinLevel = "postdoc" },
			wantMsg: `education.depth_min_level "postdoc" is not a level`,
		},
		{
			name: "custom minimums above one",
			mutate: func(r *Rubric) {
				r.Composer.CustomBounds.Competence.Min = 0.5
				r.Composer.CustomBounds.Integrity.Min = 0.5
			},
			wantMsg: "composer.custom_bounds admit no weights summing to 1.0",
		},
		{
			name: "custom maximums below one",
			mutate: func(r *Rubric) {
				r.Composer.CustomBounds.Competence.Max = 0.3
				r.Composer.CustomBounds.Integrity.Max = 0.3
				r.Composer.CustomBounds.Transparency.Max = 0.3
			},
			wantMsg: "composer.custom_bounds admit no weights summing to 1.0",
		},
		{
			name:    "relevance without fallback row",
			mutate:  func(r *Rubric) { delete(r.Experience.Relevance, string(CargoOther)) },
			wantMsg: `experience.relevance requires an "other" row`,
		},
		{
			name: "unknown relevance role",
			mutate: func(r *Rubric) {
				r.Experience.Relevance[string(CargoMayor)]["astronaut"] = 1
			},
			wantMsg: `experience.relevance["mayor"] has unknown role "astronaut"`,
		},
		{
			name:    "cap above base",
			mutate:  func(r *Rubric) { r.Integrity.Criminal.Cap = 120 },
			wantMsg: "integrity.criminal cap 120.00 exceeds base 100.00",
		},
		{
			name:    "competence maxima do not sum to 100",
			mutate:  func(r *Rubric) { r.Leadership.StabilityMax = 10 },
			wantMsg: "competence sub-maxima sum to 104.00, must sum to 100",
		},
		{
			name: "preset does not sum to one",
			mutate: func(r *Rubric) {
				r.Composer.Presets[PresetMerit] = Weights{Competence: 0.5, Integrity: 0.5, Transparency: 0.5}
			},
			wantMsg: `composer.presets["merit"] sums to 1.5000, must sum to 1.0`,
		},
		{
			name: "standard preset weights plan viability",
			mutate: func(r *Rubric) {
				r.Composer.Presets[PresetBalanced] = Weights{Competence: 0.3, Integrity: 0.3, Transparency: 0.2, PlanViability: 0.2}
			},
			wantMsg: `composer.presets["balanced"] must not weight plan_viability`,
		},
		{
			name: "resignation tiers out of order",
			mutate: func(r *Rubric) {
				r.Integrity.Resignations.Tiers = []CountTier{{MinCount: 2, Penalty: 10}, {MinCount: 1, Penalty: 5}}
			},
			wantMsg: "integrity.resignations.tiers must have ascending min_count",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := DefaultRubric()
			tt.mutate(&r)

			err := r.Check()
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Errors, tt.wantMsg)
		})
	}
}

func TestDefaultRubric_Independent(t *testing.T) {
	a := DefaultRubric()
	a.Education.LevelPoints[EducationDoctorate.String()] = 0
	a.Composer.Presets[PresetBalanced] = Weights{}

	b := DefaultRubric()
	assert.Equal(t, 22.0, b.Education.LevelPoints[EducationDoctorate.String()])
	assert.InDelta(t, 1.0, b.Composer.Presets[PresetBalanced].Sum(), WeightTolerance)
}

func TestStepTable_Lookup(t *testing.T) {
	table := StepTable{{MinYears: 1, Points: 3}, {MinYears: 5, Points: 12}, {MinYears: 20, Points: 25}}

	tests := []struct {
		years float64
		want  float64
	}{
		{0, 0},
		{0.9, 0},
		{1, 3},
		{4.99, 3},
		{5, 12},
		{19, 12},
		{20, 25},
		{45, 25},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, table.Lookup(tt.years), "years=%v", tt.years)
	}
}

func TestCustomBounds_Project(t *testing.T) {
	bounds := DefaultRubric().Composer.CustomBounds

	w, err := bounds.Project(Weights{Competence: 0.9, Integrity: 0.05, Transparency: 0.05, PlanViability: 0.3})
	require.NoError(t, err)
	assert.Equal(t, 0.7, w.Competence)
	assert.InDelta(t, 0.2, w.Integrity, 1e-9)
	assert.InDelta(t, 0.1, w.Transparency, 1e-9)
	assert.Zero(t, w.PlanViability)

	in := Weights{Competence: 0.5, Integrity: 0.3, Transparency: 0.2}
	w, err = bounds.Project(in)
	require.NoError(t, err)
	assert.InDelta(t, in.Competence, w.Competence, 1e-12, "in-bounds weights summing to one are kept")

	tight := CustomBounds{
		Competence:   Range{Min: 0, Max: 0.2},
		Integrity:    Range{Min: 0, Max: 0.2},
		Transparency: Range{Min: 0, Max: 0.2},
	}
	assert.False(t, tight.Feasible())
	_, err = tight.Project(in)
	assert.ErrorIs(t, err, ErrInvalidWeights)
	assert.True(t, bounds.Feasible())
}

func TestDiminishingReturns_Factor(t *testing.T) {
	d := DefaultRubric().Integrity.Diminishing

	assert.Equal(t, 1.0, d.Factor(0))
	assert.Equal(t, 0.5, d.Factor(1))
	for i := 2; i < 10; i++ {
		assert.Equal(t, 0.25, d.Factor(i), "third and later occurrences count at a quarter")
	}
	assert.Equal(t, 0.0, d.Factor(-1))
}

func TestDiminishingReturns_TailDecay(t *testing.T) {
	d := DiminishingReturns{Factors: []float64{1, 0.5, 0.25}, TailDecay: 0.5}

	assert.Equal(t, 1.0, d.Factor(0))
	assert.Equal(t, 0.5, d.Factor(1))
	assert.Equal(t, 0.25, d.Factor(2))
	assert.Equal(t, 0.125, d.Factor(3))
	assert.Equal(t, 0.0625, d.Factor(4))
	assert.Equal(t, 0.0, d.Factor(-1))

	for i := 1; i < 20; i++ {
		assert.Less(t, d.Factor(i), d.Factor(i-1), "factor must strictly decrease at occurrence %d", i)
	}
}

func TestResignationRubric_Penalty(t *testing.T) {
	r := DefaultRubric().Integrity.Resignations

	tests := []struct {
		count int
		want  float64
	}{
		{0, 0},
		{1, 5},
		{2, 10},
		{3, 10},
		{4, 15},
		{11, 15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Penalty(tt.count), "count=%d", tt.count)
	}
}

func TestExperienceRubric_Multiplier(t *testing.T) {
	r := DefaultRubric().Experience

	assert.Equal(t, 1.0, r.Multiplier(CargoAndeanParliament, RoleInternational),
		"international experience weighs highest for the Andean Parliament")
	assert.Greater(t, r.Multiplier(CargoDeputy, RoleTechnicalProfessional),
		r.Multiplier(CargoDeputy, RolePrivateExecMid))
	assert.Equal(t, r.Multiplier(CargoOther, RoleAcademia), r.Multiplier(Cargo("unlisted"), RoleAcademia),
		"unknown cargo falls back to the other row")
	assert.Equal(t, 0.0, r.Multiplier(CargoMayor, RoleType("unlisted")))
}

func TestWeights(t *testing.T) {
	w := Weights{Competence: 2, Integrity: 1, Transparency: 1}
	n := w.Normalized()

	assert.InDelta(t, 1.0, n.Sum(), WeightTolerance)
	assert.InDelta(t, 0.5, n.Competence, WeightTolerance)
	assert.Equal(t, Weights{}, Weights{}.Normalized())

	r := Range{Min: 0.1, Max: 0.7}
	assert.Equal(t, 0.1, r.Clamp(0))
	assert.Equal(t, 0.7, r.Clamp(0.95))
	assert.Equal(t, 0.4, r.Clamp(0.4))
}
