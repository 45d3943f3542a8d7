package domain

import (
	"fmt"
	"strings"
)

// EducationLevel is the ordered education enumeration. The integer value is
// the level's rank, so comparisons between levels are plain integer
// comparisons.
type EducationLevel int

// Education levels from lowest to highest rank.
const (
	EducationNone EducationLevel = iota
	EducationPrimary
	EducationSecondaryIncomplete
	EducationSecondaryComplete
	EducationTechnicalIncomplete
	EducationTechnicalComplete
	EducationUniversityIncomplete
	EducationUniversityComplete
	EducationProfessionalTitle
	EducationMaster
	EducationDoctorate
)

var educationLevelNames = [...]string{
	"none",
	"primary",
	"secondary_incomplete",
	"secondary_complete",
	"technical_incomplete",
	"technical_complete",
	"university_incomplete",
	"university_complete",
	"professional_title",
	"master",
	"doctorate",
}

// EducationLevels lists every level in rank order.
func EducationLevels() []EducationLevel {
	levels := make([]EducationLevel, len(educationLevelNames))
	for i := range educationLevelNames {
		levels[i] = EducationLevel(i)
	}
	return levels
}

// Rank returns the position of the level in the ordered enumeration.
func (l EducationLevel) Rank() int { return int(l) }

// Valid reports whether l is a member of the enumeration.
func (l EducationLevel) Valid() bool { return l >= EducationNone && l <= EducationDoctorate }

// String returns the canonical snake_case name of the level. Out-of-range
// values render as "none".
func (l EducationLevel) String() string {
	if !l.Valid() {
		return educationLevelNames[EducationNone]
	}
	return educationLevelNames[l]
}

// MarshalText implements encoding.TextMarshaler.
func (l EducationLevel) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler. Only canonical names are
// accepted here; free text goes through the taxonomy normalizer.
func (l *EducationLevel) UnmarshalText(text []byte) error {
	parsed, ok := ParseEducationLevel(string(text))
	if !ok {
		return fmt.Errorf("%w: education level %q", ErrUnknownTaxonomy, text)
	}
	*l = parsed
	return nil
}

// ParseEducationLevel resolves a canonical level name.
func ParseEducationLevel(name string) (EducationLevel, bool) {
	name = strings.TrimSpace(name)
	for i, n := range educationLevelNames {
		if n == name {
			return EducationLevel(i), true
		}
	}
	return EducationNone, false
}

// SeniorityLevel is the ordered seniority ladder.
type SeniorityLevel int

// Seniority tiers from lowest to highest.
const (
	SeniorityIndividualContributor SeniorityLevel = iota
	SeniorityCoordinator
	SenioritySupervisory
	SeniorityManagerial
	SeniorityExecutive
)

var seniorityNames = [...]string{
	"individual_contributor",
	"coordinator",
	"supervisory",
	"managerial",
	"executive",
}

// SeniorityLevels lists every tier in ascending order.
func SeniorityLevels() []SeniorityLevel {
	levels := make([]SeniorityLevel, len(seniorityNames))
	for i := range seniorityNames {
		levels[i] = SeniorityLevel(i)
	}
	return levels
}

// Valid reports whether s is a member of the ladder.
func (s SeniorityLevel) Valid() bool {
	return s >= SeniorityIndividualContributor && s <= SeniorityExecutive
}

// IsLeadership reports whether the tier counts as a leadership position.
func (s SeniorityLevel) IsLeadership() bool { return s >= SenioritySupervisory }

func (s SeniorityLevel) String() string {
	if !s.Valid() {
		return seniorityNames[SeniorityIndividualContributor]
	}
	return seniorityNames[s]
}

// MarshalText implements encoding.TextMarshaler.
func (s SeniorityLevel) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SeniorityLevel) UnmarshalText(text []byte) error {
	parsed, ok := ParseSeniorityLevel(string(text))
	if !ok {
		return fmt.Errorf("%w: seniority %q", ErrUnknownTaxonomy, text)
	}
	*s = parsed
	return nil
}

// ParseSeniorityLevel resolves a canonical seniority name.
func ParseSeniorityLevel(name string) (SeniorityLevel, bool) {
	name = strings.TrimSpace(name)
	for i, n := range seniorityNames {
		if n == name {
			return SeniorityLevel(i), true
		}
	}
	return SeniorityIndividualContributor, false
}

// RoleType is the closed set of experience role categories.
type RoleType string

// Role categories.
const (
	RoleElectedHigh           RoleType = "elected_high"
	RoleElectedMid            RoleType = "elected_mid"
	RolePublicExecHigh        RoleType = "public_exec_high"
	RolePublicExecMid         RoleType = "public_exec_mid"
	RolePrivateExecHigh       RoleType = "private_exec_high"
	RolePrivateExecMid        RoleType = "private_exec_mid"
	RoleTechnicalProfessional RoleType = "technical_professional"
	RoleAcademia              RoleType = "academia"
	RoleInternational         RoleType = "international"
	RolePartisan              RoleType = "partisan"
)

// RoleTypes lists every role category.
func RoleTypes() []RoleType {
	return []RoleType{
		RoleElectedHigh, RoleElectedMid,
		RolePublicExecHigh, RolePublicExecMid,
		RolePrivateExecHigh, RolePrivateExecMid,
		RoleTechnicalProfessional, RoleAcademia,
		RoleInternational, RolePartisan,
	}
}

// Valid reports whether r is a member of the closed set.
func (r RoleType) Valid() bool {
	for _, known := range RoleTypes() {
		if r == known {
			return true
		}
	}
	return false
}

// Cargo is the office a candidate runs for.
type Cargo string

// Offices with their own relevance weighting.
const (
	CargoPresident        Cargo = "president"
	CargoVicePresident    Cargo = "vice_president"
	CargoSenator          Cargo = "senator"
	CargoDeputy           Cargo = "deputy"
	CargoAndeanParliament Cargo = "andean_parliament"
	CargoRegionalGovernor Cargo = "regional_governor"
	CargoMayor            Cargo = "mayor"
	CargoOther            Cargo = "other"
)

// Cargos lists every office.
func Cargos() []Cargo {
	return []Cargo{
		CargoPresident, CargoVicePresident, CargoSenator, CargoDeputy,
		CargoAndeanParliament, CargoRegionalGovernor, CargoMayor, CargoOther,
	}
}

// Valid reports whether c is a known office.
func (c Cargo) Valid() bool {
	for _, known := range Cargos() {
		if c == known {
			return true
		}
	}
	return false
}

// IsPresidential reports whether the office uses the presidential presets.
func (c Cargo) IsPresidential() bool { return c == CargoPresident }

// CivilSentenceType sub-types civil sentences by severity.
type CivilSentenceType string

// Civil sentence sub-types, most severe first. CivilOther is the
// resolution for text no rule recognises.
const (
	CivilFamilyViolence    CivilSentenceType = "family_violence"
	CivilSupportObligation CivilSentenceType = "support_obligation"
	CivilLabor             CivilSentenceType = "labor"
	CivilContractual       CivilSentenceType = "contractual"
	CivilOther             CivilSentenceType = "other"
)

// CivilSentenceTypes lists every sub-type.
func CivilSentenceTypes() []CivilSentenceType {
	return []CivilSentenceType{
		CivilFamilyViolence, CivilSupportObligation, CivilLabor, CivilContractual, CivilOther,
	}
}

// CompanyIssueType categorises legal issues of companies linked to a candidate.
type CompanyIssueType string

// Company issue categories, most severe first.
const (
	CompanyIssueCriminal      CompanyIssueType = "criminal"
	CompanyIssueEnvironmental CompanyIssueType = "environmental"
	CompanyIssueLabor         CompanyIssueType = "labor"
	CompanyIssueConsumer      CompanyIssueType = "consumer"
)

// CompanyIssueTypes lists every company issue category.
func CompanyIssueTypes() []CompanyIssueType {
	return []CompanyIssueType{
		CompanyIssueCriminal, CompanyIssueEnvironmental, CompanyIssueLabor, CompanyIssueConsumer,
	}
}

// TrajectoryType tags an entry of the political trajectory.
type TrajectoryType string

// Political trajectory tags.
const (
	TrajectoryElectedOffice   TrajectoryType = "elected_office"
	TrajectoryAppointedOffice TrajectoryType = "appointed_office"
	TrajectoryPartyOffice     TrajectoryType = "party_office"
	TrajectoryCandidacy       TrajectoryType = "candidacy"
	TrajectoryAffiliation     TrajectoryType = "affiliation"
	TrajectoryUnknown         TrajectoryType = "unknown"
)
