package domain

import "math"

// SubScore is a sub-total paired with its declared maximum. For penalty
// categories Value is the penalty deducted and Max is the category cap.
type SubScore struct {
	Value float64 `json:"value"`
	Max   float64 `json:"max"`
}

// NewSubScore returns a SubScore with value clamped into [0, max].
func NewSubScore(value, max float64) SubScore {
	return SubScore{Value: Clamp(value, 0, max), Max: max}
}

// Clamp limits v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}

// CompetenceBreakdown details the competence dimension.
type CompetenceBreakdown struct {
	EducationLevel      SubScore `json:"education_level"`
	EducationDepth      SubScore `json:"education_depth"`
	ExperienceTotal     SubScore `json:"experience_total"`
	ExperienceRelevant  SubScore `json:"experience_relevant"`
	LeadershipSeniority SubScore `json:"leadership_seniority"`
	LeadershipStability SubScore `json:"leadership_stability"`

	HighestEducation EducationLevel `json:"highest_education"`
	HighestSeniority SeniorityLevel `json:"highest_seniority"`
	UniqueYears      int            `json:"unique_years"`
	RelevantYears    float64        `json:"relevant_years"`
	LeadershipYears  int            `json:"leadership_years"`

	Score float64 `json:"score"`
}

// Integrity penalty categories, in reporting order.
const (
	CategoryCriminal     = "criminal"
	CategoryCivil        = "civil"
	CategoryResignations = "resignations"
	CategoryCompany      = "company"
	CategoryVoting       = "voting"
	CategoryIncumbent    = "incumbent"
	CategoryTax          = "tax"
)

// CategoryPenalty is one named integrity category.
type CategoryPenalty struct {
	Category string   `json:"category"`
	Penalty  SubScore `json:"penalty"`
}

// IntegrityBreakdown exposes each penalty category separately.
type IntegrityBreakdown struct {
	Base         float64  `json:"base"`
	Criminal     SubScore `json:"criminal"`
	Civil        SubScore `json:"civil"`
	Resignations SubScore `json:"resignations"`
	Company      SubScore `json:"company"`
	Voting       SubScore `json:"voting"`
	Incumbent    SubScore `json:"incumbent"`
	Tax          SubScore `json:"tax"`
	VotingBonus  SubScore `json:"voting_bonus"`

	TotalPenalty float64 `json:"total_penalty"`
	Score        float64 `json:"score"`
}

// Categories lists the penalty categories in a fixed order.
func (b IntegrityBreakdown) Categories() []CategoryPenalty {
	return []CategoryPenalty{
		{CategoryCriminal, b.Criminal},
		{CategoryCivil, b.Civil},
		{CategoryResignations, b.Resignations},
		{CategoryCompany, b.Company},
		{CategoryVoting, b.Voting},
		{CategoryIncumbent, b.Incumbent},
		{CategoryTax, b.Tax},
	}
}

// TransparencyBreakdown details the transparency dimension.
type TransparencyBreakdown struct {
	Completeness SubScore `json:"completeness"`
	Consistency  SubScore `json:"consistency"`
	Assets       SubScore `json:"assets"`
	Sanctions    SubScore `json:"sanctions"`
	Score        float64  `json:"score"`
}

// ConfidenceBreakdown details the advisory confidence indicator.
type ConfidenceBreakdown struct {
	Verification  SubScore `json:"verification"`
	TrustedSource SubScore `json:"trusted_source"`
	Coverage      SubScore `json:"coverage"`
	Score         float64  `json:"score"`
}

// ScoreBreakdown nests every dimension's sub-totals.
type ScoreBreakdown struct {
	Competence   CompetenceBreakdown   `json:"competence"`
	Integrity    IntegrityBreakdown    `json:"integrity"`
	Transparency TransparencyBreakdown `json:"transparency"`
	Confidence   ConfidenceBreakdown   `json:"confidence"`
}

// Scores holds the top-level dimension scores, each in [0, 100].
type Scores struct {
	Competence   float64 `json:"competence"`
	Integrity    float64 `json:"integrity"`
	Transparency float64 `json:"transparency"`
	Confidence   float64 `json:"confidence"`

	// PlanViability is passed through for presidential candidacies.
	PlanViability *float64 `json:"plan_viability,omitempty"`
}

// TimelineDiagnostics reports how experience years were counted.
type TimelineDiagnostics struct {
	RawYears        int  `json:"raw_years"`
	UniqueYears     int  `json:"unique_years"`
	HasOverlap      bool `json:"has_overlap"`
	LeadershipYears int  `json:"leadership_years"`
}

// Blend is a composed score with the weights that produced it.
type Blend struct {
	Weights Weights `json:"weights"`
	Score   float64 `json:"score"`
}

// ScoreResult is the complete output for one candidate. It carries no
// timestamps; scoring the same record twice yields identical results.
type ScoreResult struct {
	CandidateID   string         `json:"candidate_id"`
	Cargo         Cargo          `json:"cargo"`
	RubricVersion string         `json:"rubric_version"`
	Scores        Scores         `json:"scores"`
	Breakdown     ScoreBreakdown `json:"breakdown"`

	// Blends maps preset name to its composed score.
	Blends map[string]Blend `json:"blends"`
	Custom *Blend           `json:"custom,omitempty"`

	Timeline   TimelineDiagnostics    `json:"timeline"`
	Education  []NormalizedEducation  `json:"education,omitempty"`
	Experience []NormalizedExperience `json:"experience,omitempty"`
}
