package domain

import (
	"fmt"
	"math"
)

// WeightTolerance is the allowed deviation of a weight set's sum from 1.0.
const WeightTolerance = 1e-6

// Rubric holds every scoring constant the calculators consume. It is plain
// data so that a rubric can be versioned, diffed and audited independently
// of the aggregation logic. Struct tags drive validation in the
// application layer; Check performs the cross-field rules tags cannot
// express.
type Rubric struct {
	Version      string             `yaml:"version" json:"version" validate:"required,semver"`
	Name         string             `yaml:"name" json:"name" validate:"required,min=1,max=100"`
	Education    EducationRubric    `yaml:"education" json:"education"`
	Experience   ExperienceRubric   `yaml:"experience" json:"experience"`
	Leadership   LeadershipRubric   `yaml:"leadership" json:"leadership"`
	Integrity    IntegrityRubric    `yaml:"integrity" json:"integrity"`
	Transparency TransparencyRubric `yaml:"transparency" json:"transparency"`
	Confidence   ConfidenceRubric   `yaml:"confidence" json:"confidence"`
	Composer     ComposerRubric     `yaml:"composer" json:"composer"`
}

// Step maps a minimum number of years to the points awarded from there on.
type Step struct {
	MinYears float64 `yaml:"min_years" json:"min_years" validate:"min=0"`
	Points   float64 `yaml:"points" json:"points" validate:"min=0"`
}

// StepTable is a list of steps sorted by ascending MinYears and Points.
type StepTable []Step

// Lookup returns the points of the highest step reached by years.
func (t StepTable) Lookup(years float64) float64 {
	points := 0.0
	for _, s := range t {
		if years >= s.MinYears {
			points = s.Points
		}
	}
	return points
}

// EducationRubric scores formal education.
type EducationRubric struct {
	// LevelPoints maps canonical level names to points.
	LevelPoints map[string]float64 `yaml:"level_points" json:"level_points" validate:"required,dive,min=0"`
	LevelMax    float64            `yaml:"level_max" json:"level_max" validate:"gt=0"`

	// DepthPerEntry is awarded for each qualifying entry beyond the top one.
	DepthPerEntry float64 `yaml:"depth_per_entry" json:"depth_per_entry" validate:"min=0"`
	DepthMax      float64 `yaml:"depth_max" json:"depth_max" validate:"min=0"`
	// DepthMinLevel is the lowest level that counts as a specialization.
	DepthMinLevel string `yaml:"depth_min_level" json:"depth_min_level" validate:"required"`
}

// ExperienceRubric scores total and cargo-relevant years.
type ExperienceRubric struct {
	TotalSteps     StepTable `yaml:"total_steps" json:"total_steps" validate:"required,min=1,ascsteps,dive"`
	TotalMax       float64   `yaml:"total_max" json:"total_max" validate:"gt=0"`
	TotalWeight    float64   `yaml:"total_weight" json:"total_weight" validate:"min=0,max=1"`
	RelevantSteps  StepTable `yaml:"relevant_steps" json:"relevant_steps" validate:"required,min=1,ascsteps,dive"`
	RelevantMax    float64   `yaml:"relevant_max" json:"relevant_max" validate:"gt=0"`
	RelevantWeight float64   `yaml:"relevant_weight" json:"relevant_weight" validate:"min=0,max=1"`

	// Relevance maps cargo -> role type -> per-year multiplier. Missing
	// cargos fall back to the "other" row; missing roles weigh zero.
	Relevance map[string]map[string]float64 `yaml:"relevance" json:"relevance" validate:"required"`
}

// Multiplier returns the relevance multiplier for role when scoring for cargo.
func (r ExperienceRubric) Multiplier(cargo Cargo, role RoleType) float64 {
	row, ok := r.Relevance[string(cargo)]
	if !ok {
		row = r.Relevance[string(CargoOther)]
	}
	return row[string(role)]
}

// LeadershipRubric scores the highest seniority reached and the years
// spent in leadership positions.
type LeadershipRubric struct {
	SeniorityPoints map[string]float64 `yaml:"seniority_points" json:"seniority_points" validate:"required,dive,min=0"`
	SeniorityMax    float64            `yaml:"seniority_max" json:"seniority_max" validate:"gt=0"`
	StabilitySteps  StepTable          `yaml:"stability_steps" json:"stability_steps" validate:"required,min=1,ascsteps,dive"`
	StabilityMax    float64            `yaml:"stability_max" json:"stability_max" validate:"gt=0"`
}

// DiminishingReturns defines how repeated occurrences inside one category
// are discounted. Occurrence i (zero-based) uses Factors[i]; occurrences
// beyond the list multiply the last factor by TailDecay once per extra
// occurrence. A TailDecay of 1 holds the last factor.
type DiminishingReturns struct {
	Factors   []float64 `yaml:"factors" json:"factors" validate:"required,min=1,dive,gt=0,max=1"`
	TailDecay float64   `yaml:"tail_decay" json:"tail_decay" validate:"gt=0,max=1"`
}

// Factor returns the multiplier of the occurrence at zero-based index i.
func (d DiminishingReturns) Factor(i int) float64 {
	if i < 0 || len(d.Factors) == 0 {
		return 0
	}
	if i < len(d.Factors) {
		return d.Factors[i]
	}
	last := d.Factors[len(d.Factors)-1]
	return last * math.Pow(d.TailDecay, float64(i-len(d.Factors)+1))
}

// CriminalRubric weighs criminal sentences.
type CriminalRubric struct {
	FirmWeight    float64 `yaml:"firm_weight" json:"firm_weight" validate:"min=0"`
	NonFirmWeight float64 `yaml:"non_firm_weight" json:"non_firm_weight" validate:"min=0"`
	Cap           float64 `yaml:"cap" json:"cap" validate:"min=0"`
}

// CivilRubric weighs civil sentences per sub-type under one shared cap.
type CivilRubric struct {
	Weights map[string]float64 `yaml:"weights" json:"weights" validate:"required,dive,min=0"`
	Cap     float64            `yaml:"cap" json:"cap" validate:"min=0"`
}

// CountTier applies Penalty once the count reaches MinCount.
type CountTier struct {
	MinCount int     `yaml:"min_count" json:"min_count" validate:"min=1"`
	Penalty  float64 `yaml:"penalty" json:"penalty" validate:"min=0"`
}

// ResignationRubric penalises party resignations by count tier.
type ResignationRubric struct {
	Tiers []CountTier `yaml:"tiers" json:"tiers" validate:"required,min=1,dive"`
	Cap   float64     `yaml:"cap" json:"cap" validate:"min=0"`
}

// Penalty returns the tier penalty for count resignations.
func (r ResignationRubric) Penalty(count int) float64 {
	p := 0.0
	for _, t := range r.Tiers {
		if count >= t.MinCount {
			p = t.Penalty
		}
	}
	return p
}

// CompanyRubric weighs legal issues of linked companies per issue type,
// each with its own cap, under a shared category cap.
type CompanyRubric struct {
	Weights  map[string]float64 `yaml:"weights" json:"weights" validate:"required,dive,min=0"`
	TypeCaps map[string]float64 `yaml:"type_caps" json:"type_caps" validate:"required,dive,min=0"`
	Cap      float64            `yaml:"cap" json:"cap" validate:"min=0"`
}

// VotingRubric nets penalties for votes favouring impunity-type measures
// against bonuses for opposing votes.
type VotingRubric struct {
	PenaltyPerVote float64 `yaml:"penalty_per_vote" json:"penalty_per_vote" validate:"min=0"`
	BonusPerVote   float64 `yaml:"bonus_per_vote" json:"bonus_per_vote" validate:"min=0"`
	PenaltyCap     float64 `yaml:"penalty_cap" json:"penalty_cap" validate:"min=0"`
	BonusCap       float64 `yaml:"bonus_cap" json:"bonus_cap" validate:"min=0"`
}

// IncumbentRubric penalises a poor record in office.
type IncumbentRubric struct {
	SanctionWeight       float64 `yaml:"sanction_weight" json:"sanction_weight" validate:"min=0"`
	AttendanceThreshold  float64 `yaml:"attendance_threshold" json:"attendance_threshold" validate:"min=0,max=1"`
	LowAttendancePenalty float64 `yaml:"low_attendance_penalty" json:"low_attendance_penalty" validate:"min=0"`
	Cap                  float64 `yaml:"cap" json:"cap" validate:"min=0"`
}

// TaxRubric penalises tax-authority standing.
type TaxRubric struct {
	NotLocatablePenalty float64 `yaml:"not_locatable_penalty" json:"not_locatable_penalty" validate:"min=0"`
	PerDebtPenalty      float64 `yaml:"per_debt_penalty" json:"per_debt_penalty" validate:"min=0"`
	DebtCap             float64 `yaml:"debt_cap" json:"debt_cap" validate:"min=0"`
	Cap                 float64 `yaml:"cap" json:"cap" validate:"min=0"`
}

// IntegrityRubric defines the base score and every penalty category.
type IntegrityRubric struct {
	Base         float64            `yaml:"base" json:"base" validate:"gt=0,max=100"`
	Diminishing  DiminishingReturns `yaml:"diminishing" json:"diminishing"`
	Criminal     CriminalRubric     `yaml:"criminal" json:"criminal"`
	Civil        CivilRubric        `yaml:"civil" json:"civil"`
	Resignations ResignationRubric  `yaml:"resignations" json:"resignations"`
	Company      CompanyRubric      `yaml:"company" json:"company"`
	Voting       VotingRubric       `yaml:"voting" json:"voting"`
	Incumbent    IncumbentRubric    `yaml:"incumbent" json:"incumbent"`
	Tax          TaxRubric          `yaml:"tax" json:"tax"`
}

// TransparencyRubric scores the quality of what the candidate declared.
type TransparencyRubric struct {
	CompletenessMax float64 `yaml:"completeness_max" json:"completeness_max" validate:"min=0"`
	ConsistencyMax  float64 `yaml:"consistency_max" json:"consistency_max" validate:"min=0"`
	AssetsMax       float64 `yaml:"assets_max" json:"assets_max" validate:"min=0"`

	// Asset quality points by declaration state.
	AssetsBare     float64 `yaml:"assets_bare" json:"assets_bare" validate:"min=0"`
	AssetsSparse   float64 `yaml:"assets_sparse" json:"assets_sparse" validate:"min=0"`
	AssetsDetailed float64 `yaml:"assets_detailed" json:"assets_detailed" validate:"min=0"`

	SanctionPenalty float64 `yaml:"sanction_penalty" json:"sanction_penalty" validate:"min=0"`
	SanctionCap     float64 `yaml:"sanction_cap" json:"sanction_cap" validate:"min=0"`

	// MinWorkingAge bounds the earliest plausible career start after birth.
	MinWorkingAge int `yaml:"min_working_age" json:"min_working_age" validate:"min=0,max=30"`
}

// ConfidenceRubric scores how much the record can be relied upon.
type ConfidenceRubric struct {
	VerifiedPoints      float64  `yaml:"verified_points" json:"verified_points" validate:"min=0"`
	TrustedSourcePoints float64  `yaml:"trusted_source_points" json:"trusted_source_points" validate:"min=0"`
	CoverageMax         float64  `yaml:"coverage_max" json:"coverage_max" validate:"min=0"`
	TrustedSources      []string `yaml:"trusted_sources" json:"trusted_sources" validate:"dive,min=1"`
}

// Weights is a blend of the dimension scores. PlanViability is only used
// by presidential presets.
type Weights struct {
	Competence    float64 `yaml:"competence" json:"competence" validate:"min=0,max=1"`
	Integrity     float64 `yaml:"integrity" json:"integrity" validate:"min=0,max=1"`
	Transparency  float64 `yaml:"transparency" json:"transparency" validate:"min=0,max=1"`
	PlanViability float64 `yaml:"plan_viability,omitempty" json:"plan_viability,omitempty" validate:"min=0,max=1"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Competence + w.Integrity + w.Transparency + w.PlanViability
}

// Normalized scales the weights so they sum to one. A zero set is returned
// unchanged.
func (w Weights) Normalized() Weights {
	sum := w.Sum()
	if sum <= 0 {
		return w
	}
	return Weights{
		Competence:    w.Competence / sum,
		Integrity:     w.Integrity / sum,
		Transparency:  w.Transparency / sum,
		PlanViability: w.PlanViability / sum,
	}
}

// Range bounds a single custom weight.
type Range struct {
	Min float64 `yaml:"min" json:"min" validate:"min=0,max=1"`
	Max float64 `yaml:"max" json:"max" validate:"min=0,max=1,gtefield=Min"`
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 { return math.Min(r.Max, math.Max(r.Min, v)) }

// CustomBounds bounds user-supplied weight triples per dimension.
type CustomBounds struct {
	Competence   Range `yaml:"competence" json:"competence"`
	Integrity    Range `yaml:"integrity" json:"integrity"`
	Transparency Range `yaml:"transparency" json:"transparency"`
}

func (b CustomBounds) ranges() [3]Range {
	return [3]Range{b.Competence, b.Integrity, b.Transparency}
}

// Feasible reports whether some triple within the bounds sums to one.
func (b CustomBounds) Feasible() bool {
	lo, hi := 0.0, 0.0
	for _, r := range b.ranges() {
		lo += r.Min
		hi += r.Max
	}
	return lo <= 1+WeightTolerance && hi >= 1-WeightTolerance
}

// Project maps a competence/integrity/transparency triple onto the bounds
// with a sum of one. Each weight is clamped first; the weights still inside
// their range are then rescaled together, and any that leave their range
// are pinned to the violated bound before the rest are rescaled again.
// Plan viability is dropped.
func (b CustomBounds) Project(w Weights) (Weights, error) {
	bounds := b.ranges()
	vals := [3]float64{w.Competence, w.Integrity, w.Transparency}
	for i, r := range bounds {
		if math.IsNaN(vals[i]) || math.IsInf(vals[i], 0) {
			return Weights{}, fmt.Errorf("%w: custom weights must be finite", ErrInvalidWeights)
		}
		vals[i] = r.Clamp(vals[i])
	}

	var pinned [3]bool
	for range len(vals) + 1 {
		pinnedSum, freeSum := 0.0, 0.0
		for i, v := range vals {
			if pinned[i] {
				pinnedSum += v
			} else {
				freeSum += v
			}
		}
		if freeSum <= 0 {
			break
		}
		scale := (1 - pinnedSum) / freeSum
		settled := true
		for i, r := range bounds {
			if pinned[i] {
				continue
			}
			switch v := vals[i] * scale; {
			case v > r.Max:
				vals[i], pinned[i], settled = r.Max, true, false
			case v < r.Min:
				vals[i], pinned[i], settled = r.Min, true, false
			}
		}
		if settled {
			for i := range vals {
				if !pinned[i] {
					vals[i] *= scale
				}
			}
			break
		}
	}

	out := Weights{Competence: vals[0], Integrity: vals[1], Transparency: vals[2]}
	if math.Abs(out.Sum()-1) > WeightTolerance {
		return Weights{}, fmt.Errorf("%w: no weights within bounds sum to 1 (got %.4f)", ErrInvalidWeights, out.Sum())
	}
	return out, nil
}

// ComposerRubric declares the named blends.
type ComposerRubric struct {
	Presets             map[string]Weights `yaml:"presets" json:"presets" validate:"required,min=1,weightsum,dive"`
	PresidentialPresets map[string]Weights `yaml:"presidential_presets" json:"presidential_presets" validate:"weightsum,dive"`
	CustomBounds        CustomBounds       `yaml:"custom_bounds" json:"custom_bounds"`
}

// Preset names shipped with the default rubric.
const (
	PresetBalanced  = "balanced"
	PresetMerit     = "merit"
	PresetIntegrity = "integrity"
)

// Check validates the cross-field rules of the rubric: every enumeration
// member has a table entry, tables are monotonic, caps never exceed the
// integrity base, and standard preset weights sum to one.
func (r Rubric) Check() error {
	verr := NewValidationError("rubric")

	prev := -1.0
	for _, level := range EducationLevels() {
		pts, ok := r.Education.LevelPoints[level.String()]
		if !ok {
			verr.AddError(fmt.Sprintf("education.level_points missing %q", level))
			continue
		}
		if pts < prev {
			verr.AddError(fmt.Sprintf("education.level_points not monotonic at %q", level))
		}
		if pts > r.Education.LevelMax {
			verr.AddError(fmt.Sprintf("education.level_points[%q] exceeds level_max", level))
		}
		prev = pts
	}
	if _, ok := ParseEducationLevel(r.Education.DepthMinLevel); !ok {
		verr.AddError(fmt.Sprintf("education.depth_min_level %q is not a level", r.Education.DepthMinLevel))
	}

	prev = -1.0
	for _, s := range SeniorityLevels() {
		pts, ok := r.Leadership.SeniorityPoints[s.String()]
		if !ok {
			verr.AddError(fmt.Sprintf("leadership.seniority_points missing %q", s))
			continue
		}
		if pts < prev {
			verr.AddError(fmt.Sprintf("leadership.seniority_points not monotonic at %q", s))
		}
		prev = pts
	}

	if _, ok := r.Experience.Relevance[string(CargoOther)]; !ok {
		verr.AddError(`experience.relevance requires an "other" row`)
	}
	for cargo, row := range r.Experience.Relevance {
		if !Cargo(cargo).Valid() {
			verr.AddError(fmt.Sprintf("experience.relevance has unknown cargo %q", cargo))
		}
		for role, m := range row {
			if !RoleType(role).Valid() {
				verr.AddError(fmt.Sprintf("experience.relevance[%q] has unknown role %q", cargo, role))
			}
			if m < 0 {
				verr.AddError(fmt.Sprintf("experience.relevance[%q][%q] is negative", cargo, role))
			}
		}
	}

	for _, t := range CivilSentenceTypes() {
		if _, ok := r.Integrity.Civil.Weights[string(t)]; !ok {
			verr.AddError(fmt.Sprintf("integrity.civil.weights missing %q", t))
		}
	}
	for _, t := range CompanyIssueTypes() {
		if _, ok := r.Integrity.Company.Weights[string(t)]; !ok {
			verr.AddError(fmt.Sprintf("integrity.company.weights missing %q", t))
		}
		if _, ok := r.Integrity.Company.TypeCaps[string(t)]; !ok {
			verr.AddError(fmt.Sprintf("integrity.company.type_caps missing %q", t))
		}
	}

	base := r.Integrity.Base
	caps := []struct {
		name string
		cap  float64
	}{
		{"criminal", r.Integrity.Criminal.Cap},
		{"civil", r.Integrity.Civil.Cap},
		{"resignations", r.Integrity.Resignations.Cap},
		{"company", r.Integrity.Company.Cap},
		{"voting", r.Integrity.Voting.PenaltyCap},
		{"voting bonus", r.Integrity.Voting.BonusCap},
		{"incumbent", r.Integrity.Incumbent.Cap},
		{"tax", r.Integrity.Tax.Cap},
	}
	for _, c := range caps {
		if c.cap > base {
			verr.AddError(fmt.Sprintf("integrity.%s cap %.2f exceeds base %.2f", c.name, c.cap, base))
		}
	}
	if r.Transparency.SanctionCap > 100 {
		verr.AddError("transparency.sanction_cap exceeds 100")
	}

	prevTier := 0
	for _, tier := range r.Integrity.Resignations.Tiers {
		if tier.MinCount <= prevTier {
			verr.AddError("integrity.resignations.tiers must have ascending min_count")
		}
		prevTier = tier.MinCount
	}

	competenceMax := r.Education.LevelMax + r.Education.DepthMax +
		r.Experience.TotalMax + r.Experience.RelevantMax +
		r.Leadership.SeniorityMax + r.Leadership.StabilityMax
	if math.Abs(competenceMax-100) > WeightTolerance {
		verr.AddError(fmt.Sprintf("competence sub-maxima sum to %.2f, must sum to 100", competenceMax))
	}
	transparencyMax := r.Transparency.CompletenessMax + r.Transparency.ConsistencyMax + r.Transparency.AssetsMax
	if math.Abs(transparencyMax-100) > WeightTolerance {
		verr.AddError(fmt.Sprintf("transparency sub-maxima sum to %.2f, must sum to 100", transparencyMax))
	}
	if r.Transparency.AssetsDetailed > r.Transparency.AssetsMax {
		verr.AddError("transparency.assets_detailed exceeds assets_max")
	}
	confidenceMax := r.Confidence.VerifiedPoints + r.Confidence.TrustedSourcePoints + r.Confidence.CoverageMax
	if math.Abs(confidenceMax-100) > WeightTolerance {
		verr.AddError(fmt.Sprintf("confidence sub-maxima sum to %.2f, must sum to 100", confidenceMax))
	}

	for name, w := range r.Composer.Presets {
		if w.PlanViability != 0 {
			verr.AddError(fmt.Sprintf("composer.presets[%q] must not weight plan_viability", name))
		}
		if math.Abs(w.Sum()-1) > WeightTolerance {
			verr.AddError(fmt.Sprintf("composer.presets[%q] sums to %.4f, must sum to 1.0", name, w.Sum()))
		}
	}
	for name, w := range r.Composer.PresidentialPresets {
		if math.Abs(w.Sum()-1) > WeightTolerance {
			verr.AddError(fmt.Sprintf("composer.presidential_presets[%q] sums to %.4f, must sum to 1.0", name, w.Sum()))
		}
	}

	if !r.Composer.CustomBounds.Feasible() {
		verr.AddError("composer.custom_bounds admit no weights summing to 1.0")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// DefaultRubric returns the built-in rubric. It always passes Check.
func DefaultRubric() Rubric {
	return Rubric{
		Version: "1.0.0",
		Name:    "default",
		Education: EducationRubric{
			LevelPoints: map[string]float64{
				EducationNone.String():                0,
				EducationPrimary.String():             2,
				EducationSecondaryIncomplete.String(): 4,
				EducationSecondaryComplete.String():   6,
				EducationTechnicalIncomplete.String(): 8,
				EducationTechnicalComplete.String():   10,
				EducationUniversityIncomplete.String(): 11,
				EducationUniversityComplete.String():  14,
				EducationProfessionalTitle.String():   16,
				EducationMaster.String():              19,
				EducationDoctorate.String():           22,
			},
			LevelMax:      22,
			DepthPerEntry: 2,
			DepthMax:      8,
			DepthMinLevel: EducationTechnicalComplete.String(),
		},
		Experience: ExperienceRubric{
			TotalSteps: StepTable{
				{MinYears: 1, Points: 3},
				{MinYears: 3, Points: 8},
				{MinYears: 5, Points: 12},
				{MinYears: 10, Points: 18},
				{MinYears: 15, Points: 22},
				{MinYears: 20, Points: 25},
			},
			TotalMax:    25,
			TotalWeight: 1,
			RelevantSteps: StepTable{
				{MinYears: 1, Points: 3},
				{MinYears: 3, Points: 8},
				{MinYears: 5, Points: 12},
				{MinYears: 10, Points: 18},
				{MinYears: 15, Points: 22},
				{MinYears: 20, Points: 25},
			},
			RelevantMax:    25,
			RelevantWeight: 1,
			Relevance:      defaultRelevance(),
		},
		Leadership: LeadershipRubric{
			SeniorityPoints: map[string]float64{
				SeniorityIndividualContributor.String(): 0,
				SeniorityCoordinator.String():           3,
				SenioritySupervisory.String():           6,
				SeniorityManagerial.String():            10,
				SeniorityExecutive.String():             14,
			},
			SeniorityMax: 14,
			StabilitySteps: StepTable{
				{MinYears: 2, Points: 2},
				{MinYears: 4, Points: 4},
				{MinYears: 8, Points: 6},
			},
			StabilityMax: 6,
		},
		Integrity: IntegrityRubric{
			Base: 100,
			Diminishing: DiminishingReturns{
				Factors:   []float64{1, 0.5, 0.25},
				TailDecay: 1,
			},
			Criminal: CriminalRubric{FirmWeight: 40, NonFirmWeight: 20, Cap: 70},
			Civil: CivilRubric{
				Weights: map[string]float64{
					string(CivilFamilyViolence):    30,
					string(CivilSupportObligation): 20,
					string(CivilLabor):             10,
					string(CivilContractual):       8,
					string(CivilOther):             5,
				},
				Cap: 40,
			},
			Resignations: ResignationRubric{
				Tiers: []CountTier{
					{MinCount: 1, Penalty: 5},
					{MinCount: 2, Penalty: 10},
					{MinCount: 4, Penalty: 15},
				},
				Cap: 15,
			},
			Company: CompanyRubric{
				Weights: map[string]float64{
					string(CompanyIssueCriminal):      8,
					string(CompanyIssueEnvironmental): 6,
					string(CompanyIssueLabor):         4,
					string(CompanyIssueConsumer):      2,
				},
				TypeCaps: map[string]float64{
					string(CompanyIssueCriminal):      16,
					string(CompanyIssueEnvironmental): 12,
					string(CompanyIssueLabor):         8,
					string(CompanyIssueConsumer):      4,
				},
				Cap: 20,
			},
			Voting: VotingRubric{PenaltyPerVote: 2, BonusPerVote: 1, PenaltyCap: 20, BonusCap: 5},
			Incumbent: IncumbentRubric{
				SanctionWeight:       5,
				AttendanceThreshold:  0.7,
				LowAttendancePenalty: 5,
				Cap:                  15,
			},
			Tax: TaxRubric{NotLocatablePenalty: 10, PerDebtPenalty: 3, DebtCap: 9, Cap: 15},
		},
		Transparency: TransparencyRubric{
			CompletenessMax: 40,
			ConsistencyMax:  30,
			AssetsMax:       30,
			AssetsBare:      10,
			AssetsSparse:    20,
			AssetsDetailed:  30,
			SanctionPenalty: 10,
			SanctionCap:     20,
			MinWorkingAge:   14,
		},
		Confidence: ConfidenceRubric{
			VerifiedPoints:      25,
			TrustedSourcePoints: 25,
			CoverageMax:         50,
			TrustedSources:      []string{"jne", "onpe", "sunat", "poder_judicial", "congreso"},
		},
		Composer: ComposerRubric{
			Presets: map[string]Weights{
				PresetBalanced:  {Competence: 0.40, Integrity: 0.40, Transparency: 0.20},
				PresetMerit:     {Competence: 0.55, Integrity: 0.30, Transparency: 0.15},
				PresetIntegrity: {Competence: 0.25, Integrity: 0.60, Transparency: 0.15},
			},
			PresidentialPresets: map[string]Weights{
				PresetBalanced:  {Competence: 0.30, Integrity: 0.35, Transparency: 0.15, PlanViability: 0.20},
				PresetMerit:     {Competence: 0.40, Integrity: 0.25, Transparency: 0.10, PlanViability: 0.25},
				PresetIntegrity: {Competence: 0.20, Integrity: 0.50, Transparency: 0.10, PlanViability: 0.20},
			},
			CustomBounds: CustomBounds{
				Competence:   Range{Min: 0.10, Max: 0.70},
				Integrity:    Range{Min: 0.10, Max: 0.70},
				Transparency: Range{Min: 0.05, Max: 0.50},
			},
		},
	}
}

func defaultRelevance() map[string]map[string]float64 {
	row := func(electedHigh, electedMid, pubHigh, pubMid, privHigh, privMid, tech, academia, intl, partisan float64) map[string]float64 {
		return map[string]float64{
			string(RoleElectedHigh):           electedHigh,
			string(RoleElectedMid):            electedMid,
			string(RolePublicExecHigh):        pubHigh,
			string(RolePublicExecMid):         pubMid,
			string(RolePrivateExecHigh):       privHigh,
			string(RolePrivateExecMid):        privMid,
			string(RoleTechnicalProfessional): tech,
			string(RoleAcademia):              academia,
			string(RoleInternational):         intl,
			string(RolePartisan):              partisan,
		}
	}

	return map[string]map[string]float64{
		string(CargoPresident):        row(1.0, 0.7, 1.0, 0.7, 0.8, 0.5, 0.4, 0.5, 0.8, 0.3),
		string(CargoVicePresident):    row(1.0, 0.7, 1.0, 0.7, 0.8, 0.5, 0.4, 0.5, 0.8, 0.3),
		string(CargoSenator):          row(1.0, 0.8, 0.9, 0.7, 0.6, 0.4, 0.8, 0.7, 0.6, 0.4),
		string(CargoDeputy):           row(1.0, 0.8, 0.8, 0.7, 0.6, 0.4, 0.9, 0.7, 0.5, 0.4),
		string(CargoAndeanParliament): row(0.8, 0.6, 0.8, 0.6, 0.5, 0.4, 0.6, 0.7, 1.0, 0.3),
		string(CargoRegionalGovernor): row(1.0, 0.9, 1.0, 0.8, 0.8, 0.6, 0.5, 0.4, 0.4, 0.3),
		string(CargoMayor):            row(1.0, 0.9, 0.9, 0.8, 0.8, 0.6, 0.5, 0.4, 0.3, 0.3),
		string(CargoOther):            row(0.9, 0.7, 0.8, 0.6, 0.7, 0.5, 0.6, 0.5, 0.5, 0.3),
	}
}
