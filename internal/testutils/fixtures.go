// Package testutils provides candidate fixtures and in-memory
// infrastructure for tests across the module.
package testutils

import "github.com/ahrav/go-ballot/internal/domain"

// ReferenceYear is the reference year used by fixtures.
const ReferenceYear = 2026

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// MinimalCandidate returns a record with an id and nothing else.
func MinimalCandidate(id string) domain.CandidateRecord {
	return domain.CandidateRecord{ID: id}
}

// SeasonedLegislator returns a deputy candidate with a doctorate, twenty
// unique years as an elected legislator, one firm criminal sentence and a
// detailed asset declaration.
func SeasonedLegislator(id string) domain.CandidateRecord {
	return domain.CandidateRecord{
		ID:        id,
		FullName:  "Ana Quispe Mamani",
		Party:     "Partido Nacional",
		Cargo:     "Diputado",
		BirthYear: 1966,
		Education: []domain.EducationEntry{
			{Level: "Doctorado", Degree: "Doctor en Ciencia Política", Institution: "PUCP", Year: 2001},
		},
		Experience: []domain.ExperienceEntry{
			{
				Position:     "Congresista de la República",
				Organization: "Congreso de la República",
				StartYear:    2006,
				IsCurrent:    true,
				RoleType:     "elected_high",
				Seniority:    "executive",
			},
		},
		PenalSentences: []domain.PenalSentence{{Crime: "Peculado", Firm: true, Year: 2015}},
		Assets:         DetailedAssets(),
		DataSource:     "jne",
		Verified:       true,
	}
}

// DetailedAssets returns a declaration that grades as detailed.
func DetailedAssets() *domain.AssetDeclaration {
	return &domain.AssetDeclaration{
		Declared: true,
		Items: []domain.AssetItem{
			{Kind: "inmueble", Description: "Casa en Lima", Value: Ptr(350000.0)},
			{Kind: "vehiculo", Description: "Camioneta", Value: Ptr(60000.0)},
			{Kind: "ahorro", Description: "Depósito a plazo", Value: Ptr(25000.0)},
		},
		Income:        Ptr(180000.0),
		DeclaredYear:  2025,
		HasIncomeData: true,
	}
}

// TroubledCandidate returns a mayor candidate with penalties in every
// integrity category.
func TroubledCandidate(id string) domain.CandidateRecord {
	return domain.CandidateRecord{
		ID:    id,
		Cargo: "Alcalde Provincial",
		Education: []domain.EducationEntry{
			{Level: "Secundaria completa"},
		},
		Experience: []domain.ExperienceEntry{
			{Position: "Gerente General", Organization: "Transportes del Sur SAC", StartYear: 2010, EndYear: 2018},
			{Position: "Regidor", Organization: "Municipalidad Provincial de Arequipa", StartYear: 2015, EndYear: 2019},
		},
		PenalSentences: []domain.PenalSentence{
			{Crime: "Colusión", Firm: true},
			{Crime: "Falsedad genérica", Firm: false},
			{Crime: "Peculado", Firm: true},
		},
		CivilSentences: []domain.CivilSentence{
			{Type: "Violencia familiar"},
			{Type: "Alimentos"},
			{Type: "Alimentos"},
		},
		PartyResignations: 4,
		Aggregates: domain.Aggregates{
			CompanyIssues:        &domain.CompanyIssues{Criminal: 3, Environmental: 1, Labor: 5, Consumer: 2},
			IncumbentPerformance: &domain.IncumbentPerformance{EthicsSanctions: 2, AttendanceRate: Ptr(0.5)},
			Voting:               &domain.VotingRecord{InFavor: 4, Against: 1},
			Tax:                  &domain.TaxStatus{NotLocatable: true, ActiveCoactiveDebts: 5},
			RegulatorySanctions:  3,
		},
	}
}

// PresidentialCandidate returns a presidential candidate with a
// plan-viability score.
func PresidentialCandidate(id string, planViability float64) domain.CandidateRecord {
	rec := SeasonedLegislator(id)
	rec.Cargo = "Presidente de la República"
	rec.PenalSentences = nil
	rec.Aggregates.PlanViability = Ptr(planViability)
	return rec
}
