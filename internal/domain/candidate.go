package domain

// CandidateRecord is a candidate as delivered by the persistence layer.
// Every field may be missing or use a legacy vocabulary; the normalize
// stage is the only place that interprets these raw shapes.
type CandidateRecord struct {
	// ID uniquely identifies the candidate upstream.
	ID string `json:"id"`

	// FullName is informational only and never affects scoring.
	FullName string `json:"full_name,omitempty"`

	// Party is the organisation the candidate runs for.
	Party string `json:"party,omitempty"`

	// Cargo is the free-text office the candidate runs for.
	Cargo string `json:"cargo,omitempty"`

	// BirthYear is used by the consistency checks.
	BirthYear int `json:"birth_year,omitempty"`

	Education           []EducationEntry           `json:"education,omitempty"`
	Experience          []ExperienceEntry          `json:"experience,omitempty"`
	PoliticalTrajectory []PoliticalTrajectoryEntry `json:"political_trajectory,omitempty"`
	PenalSentences      []PenalSentence            `json:"penal_sentences,omitempty"`
	CivilSentences      []CivilSentence            `json:"civil_sentences,omitempty"`

	// PartyResignations counts resignations from political parties.
	PartyResignations int `json:"party_resignations,omitempty"`

	// Assets is nil when no declaration was filed.
	Assets *AssetDeclaration `json:"assets,omitempty"`

	// Verified marks records confirmed by an independent audit workflow.
	Verified bool `json:"verified,omitempty"`

	// DataSource names the upstream source of the record (e.g. "jne").
	DataSource string `json:"data_source,omitempty"`

	// IntegrityBase optionally overrides the integrity starting score with a
	// pre-adjusted value.
	IntegrityBase *float64 `json:"integrity_base,omitempty"`

	// Aggregates holds pre-computed numeric summaries from other workflows.
	Aggregates Aggregates `json:"aggregates"`
}

// EducationEntry is one raw education record. The year fields are
// mutually redundant; upstream sources populate different ones.
type EducationEntry struct {
	Level       string `json:"level,omitempty"`
	LegacyLevel string `json:"legacy_level,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	Institution string `json:"institution,omitempty"`

	// Completed is nil when the source does not say.
	Completed *bool `json:"completed,omitempty"`
	HasTitle  *bool `json:"has_title,omitempty"`
	Verified  bool  `json:"verified,omitempty"`

	BachelorYear int    `json:"bachelor_year,omitempty"`
	TitleYear    int    `json:"title_year,omitempty"`
	Year         int    `json:"year,omitempty"`
	EndYear      int    `json:"end_year,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
}

// ExperienceEntry is one raw employment record.
type ExperienceEntry struct {
	Position     string `json:"position,omitempty"`
	Organization string `json:"organization,omitempty"`
	StartYear    int    `json:"start_year,omitempty"`
	EndYear      int    `json:"end_year,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	IsCurrent    bool   `json:"is_current,omitempty"`

	// RoleType and Seniority are pre-classified values. When they resolve
	// to a taxonomy member they win over heuristic classification.
	RoleType  string `json:"role_type,omitempty"`
	Seniority string `json:"seniority,omitempty"`
}

// PoliticalTrajectoryEntry is one raw political-record entry.
type PoliticalTrajectoryEntry struct {
	Type        string `json:"type,omitempty"`
	Position    string `json:"position,omitempty"`
	Party       string `json:"party,omitempty"`
	Institution string `json:"institution,omitempty"`
	StartYear   int    `json:"start_year,omitempty"`
	EndYear     int    `json:"end_year,omitempty"`
	IsCurrent   bool   `json:"is_current,omitempty"`
	Elected     bool   `json:"elected,omitempty"`
}

// PenalSentence is a criminal sentence.
type PenalSentence struct {
	Crime string `json:"crime,omitempty"`
	// Firm marks a final (non-appealable) sentence.
	Firm bool `json:"firm,omitempty"`
	Year int  `json:"year,omitempty"`
}

// CivilSentence is a civil sentence; Type is free text.
type CivilSentence struct {
	Type   string `json:"type,omitempty"`
	Matter string `json:"matter,omitempty"`
	Year   int    `json:"year,omitempty"`
}

// AssetDeclaration summarises the sworn asset and income declaration.
type AssetDeclaration struct {
	Declared      bool        `json:"declared"`
	Items         []AssetItem `json:"items,omitempty"`
	Income        *float64    `json:"income,omitempty"`
	DeclaredYear  int         `json:"declared_year,omitempty"`
	HasIncomeData bool        `json:"has_income_data,omitempty"`
}

// AssetItem is a single declared asset.
type AssetItem struct {
	Kind        string   `json:"kind,omitempty"`
	Description string   `json:"description,omitempty"`
	Value       *float64 `json:"value,omitempty"`
}

// Aggregates carries auxiliary summaries computed by other workflows. The
// engine does not know how they were derived. Nil pointers mean "not
// available", which differs from a zero tally.
type Aggregates struct {
	CompanyIssues        *CompanyIssues        `json:"company_issues,omitempty"`
	IncumbentPerformance *IncumbentPerformance `json:"incumbent_performance,omitempty"`
	Voting               *VotingRecord         `json:"voting,omitempty"`
	Tax                  *TaxStatus            `json:"tax,omitempty"`

	// RegulatorySanctions counts confirmed campaign-finance reporting sanctions.
	RegulatorySanctions int `json:"regulatory_sanctions,omitempty"`

	// PlanViability is the externally computed government-plan score
	// (0-100). Only presidential candidacies use it.
	PlanViability *float64 `json:"plan_viability,omitempty"`
}

// CompanyIssues counts legal issues of companies linked to the candidate.
type CompanyIssues struct {
	Criminal      int `json:"criminal,omitempty"`
	Environmental int `json:"environmental,omitempty"`
	Labor         int `json:"labor,omitempty"`
	Consumer      int `json:"consumer,omitempty"`
}

// Count returns the tally for t.
func (c CompanyIssues) Count(t CompanyIssueType) int {
	switch t {
	case CompanyIssueCriminal:
		return c.Criminal
	case CompanyIssueEnvironmental:
		return c.Environmental
	case CompanyIssueLabor:
		return c.Labor
	case CompanyIssueConsumer:
		return c.Consumer
	default:
		return 0
	}
}

// IncumbentPerformance summarises an incumbent's record in office.
type IncumbentPerformance struct {
	EthicsSanctions int `json:"ethics_sanctions,omitempty"`
	// AttendanceRate is in [0, 1]; nil when unknown.
	AttendanceRate *float64 `json:"attendance_rate,omitempty"`
}

// VotingRecord tallies votes on impunity-type measures.
type VotingRecord struct {
	InFavor int `json:"in_favor,omitempty"`
	Against int `json:"against,omitempty"`
}

// TaxStatus is the candidate's tax-authority standing.
type TaxStatus struct {
	// NotLocatable marks the "not found" / "not locatable" taxpayer condition.
	NotLocatable        bool `json:"not_locatable,omitempty"`
	ActiveCoactiveDebts int  `json:"active_coactive_debts,omitempty"`
}
