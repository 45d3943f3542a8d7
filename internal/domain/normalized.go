package domain

// NormalizedEducation is an education entry resolved onto the closed level
// enumeration.
type NormalizedEducation struct {
	Level       EducationLevel `json:"level"`
	Field       string         `json:"field,omitempty"`
	Institution string         `json:"institution,omitempty"`
	// Year is zero when no year field was usable.
	Year     int  `json:"year,omitempty"`
	Verified bool `json:"verified,omitempty"`
}

// ClassificationSource records how a role or seniority was obtained.
type ClassificationSource string

// Classification sources.
const (
	SourceStructured ClassificationSource = "structured"
	SourceHeuristic  ClassificationSource = "heuristic"
	SourceTrajectory ClassificationSource = "trajectory"
)

// NormalizedExperience is an experience entry with a resolved role category,
// seniority tier and year interval. Political trajectory entries that count
// as experience are normalized into this shape as well.
type NormalizedExperience struct {
	Position       string               `json:"position,omitempty"`
	Organization   string               `json:"organization,omitempty"`
	RoleType       RoleType             `json:"role_type"`
	SeniorityLevel SeniorityLevel       `json:"seniority"`
	Interval       Interval             `json:"interval"`
	Source         ClassificationSource `json:"source"`
}

// Leadership reports whether the entry was held at a supervisory tier or above.
func (e NormalizedExperience) Leadership() bool { return e.SeniorityLevel.IsLeadership() }

// NormalizedCandidate is the strict internal shape every calculator
// consumes. Nothing downstream of the normalize stage branches on the
// presence or spelling of raw fields.
type NormalizedCandidate struct {
	ID            string                 `json:"id"`
	Cargo         Cargo                  `json:"cargo"`
	ReferenceYear int                    `json:"reference_year"`
	Education     []NormalizedEducation  `json:"education"`
	Experience    []NormalizedExperience `json:"experience"`

	// ExperienceTimeline merges every experience interval.
	ExperienceTimeline Timeline `json:"experience_timeline"`
	// LeadershipTimeline merges intervals held at supervisory tier or above.
	LeadershipTimeline Timeline `json:"leadership_timeline"`

	CivilSentences []CivilSentenceType `json:"civil_sentences,omitempty"`

	// Record is the raw input, kept for the integrity and transparency
	// calculators which read sentence lists, declarations and aggregates.
	Record CandidateRecord `json:"-"`
}

// HighestEducation returns the top-ranked education level, or EducationNone.
func (n NormalizedCandidate) HighestEducation() EducationLevel {
	best := EducationNone
	for _, e := range n.Education {
		if e.Level > best {
			best = e.Level
		}
	}
	return best
}

// HighestSeniority returns the highest seniority tier ever reached.
func (n NormalizedCandidate) HighestSeniority() SeniorityLevel {
	best := SeniorityIndividualContributor
	for _, e := range n.Experience {
		if e.SeniorityLevel > best {
			best = e.SeniorityLevel
		}
	}
	return best
}
