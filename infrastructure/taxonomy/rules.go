package taxonomy

import "github.com/ahrav/go-ballot/internal/domain"

// Rule maps text to Value when the text contains at least one Any keyword,
// at least one With keyword (if With is non-empty) and no Without keyword.
// Keywords are matched at word starts after folding.
type Rule[T comparable] struct {
	Value   T
	Any     []string
	With    []string
	Without []string
}

type compiledRule[T comparable] struct {
	value   T
	any     keywords
	with    keywords
	without keywords
}

func (r compiledRule[T]) match(folded string) bool {
	if !r.any.matchIn(folded) {
		return false
	}
	if len(r.with) > 0 && !r.with.matchIn(folded) {
		return false
	}
	return !r.without.matchIn(folded)
}

// RuleSet is an ordered, compiled rule list. The first matching rule wins.
type RuleSet[T comparable] []compiledRule[T]

// Compile folds every keyword of rules, preserving order.
func Compile[T comparable](rules []Rule[T]) RuleSet[T] {
	out := make(RuleSet[T], 0, len(rules))
	for _, r := range rules {
		out = append(out, compiledRule[T]{
			value:   r.Value,
			any:     newKeywords(r.Any),
			with:    newKeywords(r.With),
			without: newKeywords(r.Without),
		})
	}
	return out
}

// Resolve returns the value of the first rule matching folded text.
func (rs RuleSet[T]) Resolve(folded string) (T, bool) {
	for _, r := range rs {
		if r.match(folded) {
			return r.value, true
		}
	}
	var zero T
	return zero, false
}

// incompleteMarkers flag studies that were started but not finished.
var incompleteMarkers = []string{
	"incomplet", "trunc", "inconclus", "en curso", "cursando", "no concluid",
	"sin concluir", "estudiante", "egresado sin", "abandon",
}

var postgraduateKeywords = []string{
	"doctor", "phd", "ph d", "maestr", "magister", "master", "mba", "posgrado", "postgrado",
}

// DefaultEducationRules lists education rules from most to least specific.
func DefaultEducationRules() []Rule[domain.EducationLevel] {
	return []Rule[domain.EducationLevel]{
		{Value: domain.EducationDoctorate, Any: []string{"doctor", "phd", "ph d"}, Without: incompleteMarkers},
		{Value: domain.EducationMaster, Any: []string{"maestr", "magister", "master", "mba"}, Without: incompleteMarkers},
		// Unfinished postgraduate studies still imply a first degree.
		{Value: domain.EducationUniversityComplete, Any: postgraduateKeywords},
		{
			Value:   domain.EducationUniversityIncomplete,
			Any:     []string{"universitari", "bachiller", "licenciatura", "ingenier", "pregrado", "university"},
			With:    incompleteMarkers,
			Without: []string{"no universitari"},
		},
		{
			Value: domain.EducationTechnicalIncomplete,
			Any:   []string{"tecnic", "no universitari", "instituto", "technical"},
			With:  incompleteMarkers,
		},
		{Value: domain.EducationTechnicalComplete, Any: []string{"tecnic", "no universitari", "instituto", "technical"}},
		{Value: domain.EducationProfessionalTitle, Any: []string{"titulo", "titulado", "licenciado", "licenciada"}},
		{
			Value:   domain.EducationProfessionalTitle,
			Any:     []string{"abogad", "ingenier", "contador publico", "medico", "profesional", "professional"},
			Without: []string{"bachiller", "egresad", "estudiante"},
		},
		{
			Value:   domain.EducationUniversityComplete,
			Any:     []string{"bachiller", "universitari", "licenciatura", "grado academico", "pregrado", "university"},
			Without: []string{"no universitari"},
		},
		{Value: domain.EducationSecondaryIncomplete, Any: []string{"secundari", "secondary"}, With: incompleteMarkers},
		{Value: domain.EducationSecondaryComplete, Any: []string{"secundari", "secondary"}},
		{Value: domain.EducationPrimary, Any: []string{"primari", "primary"}},
		{Value: domain.EducationNone, Any: []string{"sin instruccion", "sin estudios", "ninguno", "ninguna", "none"}},
	}
}

// DefaultLegacyEducation is the closed vocabulary of older upstream
// exports, keyed by the raw legacy value.
func DefaultLegacyEducation() []LegacyEntry[domain.EducationLevel] {
	return []LegacyEntry[domain.EducationLevel]{
		{"SIN_INSTRUCCION", domain.EducationNone},
		{"PRIMARIA", domain.EducationPrimary},
		{"PRIMARIA_COMPLETA", domain.EducationPrimary},
		{"PRIMARIA_INCOMPLETA", domain.EducationPrimary},
		{"SECUNDARIA_INCOMPLETA", domain.EducationSecondaryIncomplete},
		{"SECUNDARIA", domain.EducationSecondaryComplete},
		{"SECUNDARIA_COMPLETA", domain.EducationSecondaryComplete},
		{"TECNICO_INCOMPLETO", domain.EducationTechnicalIncomplete},
		{"TECNICO", domain.EducationTechnicalComplete},
		{"TECNICO_COMPLETO", domain.EducationTechnicalComplete},
		{"UNIVERSITARIO_INCOMPLETO", domain.EducationUniversityIncomplete},
		{"UNIVERSITARIO", domain.EducationUniversityComplete},
		{"BACHILLER", domain.EducationUniversityComplete},
		{"TITULO_PROFESIONAL", domain.EducationProfessionalTitle},
		{"TITULADO", domain.EducationProfessionalTitle},
		{"MAESTRIA", domain.EducationMaster},
		{"MAGISTER", domain.EducationMaster},
		{"DOCTORADO", domain.EducationDoctorate},
		{"DOCTOR", domain.EducationDoctorate},
	}
}

// LegacyEntry maps one legacy vocabulary key to a member.
type LegacyEntry[T comparable] struct {
	Key   string
	Value T
}

var publicOrganizations = []string{
	"ministerio", "gobierno regional", "gobierno", "municipalidad", "municipio", "congreso",
	"poder judicial", "fiscalia", "ministerio publico", "ejercito", "marina de guerra",
	"fuerza aerea", "fuerzas armadas", "policia", "pnp", "essalud", "sunat", "reniec", "jne",
	"onpe", "contraloria", "defensoria", "superintendencia", "sunarp", "osinergmin",
	"instituto nacional", "direccion regional", "ugel", "prefectura", "estado peruano",
	"sector publico", "presidencia del consejo", "tribunal constitucional", "banco central",
}

var academicOrganizations = []string{
	"universidad", "instituto superior", "instituto tecnologico", "colegio", "escuela",
	"academia", "centro de investigacion", "university",
}

var executiveTitles = []string{
	"gerente", "director", "directora", "presidente", "administrador", "jefe", "jefa",
	"ceo", "propietario", "fundador",
}

// RoleRule classifies an experience entry. Every non-empty keyword list
// must match: Titles against the position, Organizations against the
// organization, Anywhere against either. No Exclude keyword may appear in
// the position.
type RoleRule struct {
	Role          domain.RoleType
	Titles        []string
	Organizations []string
	Anywhere      []string
	Exclude       []string
}

// DefaultRoleRules lists role rules from most to least specific. Rule
// order is part of the contract: a position matching several rules takes
// the role of the first.
func DefaultRoleRules() []RoleRule {
	return []RoleRule{
		{
			Role: domain.RoleElectedMid,
			Titles: []string{
				"teniente alcalde", "regidor", "concejal", "consejero regional",
				"vicegobernador", "vicepresidente regional",
			},
		},
		{
			Role: domain.RoleElectedHigh,
			Titles: []string{
				"congresista", "senador", "diputado", "parlamentario andino", "alcalde",
				"gobernador regional", "presidente regional", "presidente del gobierno regional",
				"presidente de la republica", "gobernador",
			},
		},
		{
			Role: domain.RolePublicExecHigh,
			Titles: []string{
				"viceministro", "ministro", "embajador", "superintendente", "contralor",
				"defensor del pueblo", "fiscal de la nacion", "vocal supremo", "juez supremo",
				"presidente del consejo de ministros", "prefecto",
			},
		},
		{
			Role: domain.RoleInternational,
			Anywhere: []string{
				"naciones unidas", "onu", "pnud", "unesco", "unicef", "banco mundial",
				"banco interamericano", "bid", "oea", "cepal", "fao", "oit", "oms", "ops",
				"comunidad andina", "fondo monetario", "cooperacion internacional", "usaid",
				"union europea", "organismo internacional",
			},
		},
		{
			Role:   domain.RolePartisan,
			Titles: []string{"dirigente partidario", "secretario general partidario", "personero", "militante"},
		},
		{
			Role:          domain.RolePartisan,
			Organizations: []string{"partido", "movimiento regional", "alianza electoral", "comite electoral"},
		},
		{
			Role: domain.RolePublicExecHigh,
			Titles: []string{
				"director", "directora", "jefe", "jefa", "comandante", "gerente", "presidente",
				"secretario general", "general de brigada", "general de division", "coronel",
			},
			Organizations: publicOrganizations,
		},
		{Role: domain.RolePublicExecMid, Organizations: publicOrganizations},
		{
			Role: domain.RoleAcademia,
			Titles: []string{
				"rector", "vicerrector", "decano", "docente", "profesor", "catedratico",
				"investigador", "director de escuela",
			},
		},
		{Role: domain.RoleAcademia, Organizations: academicOrganizations, Exclude: executiveTitles},
		{
			Role: domain.RolePrivateExecHigh,
			Titles: []string{
				"gerente general", "ceo", "director ejecutivo", "director general",
				"presidente del directorio", "presidente ejecutivo", "propietario", "fundador",
				"dueno", "socio gerente", "titular gerente", "empresario", "chief",
			},
		},
		{
			Role: domain.RolePrivateExecMid,
			Titles: []string{
				"subgerente", "gerente", "subdirector", "director", "directora", "jefe", "jefa",
				"administrador", "administradora", "manager",
			},
		},
	}
}

// SeniorityRule assigns Level when the position contains a Titles keyword
// and no Exclude keyword.
type SeniorityRule struct {
	Level   domain.SeniorityLevel
	Titles  []string
	Exclude []string
}

// DefaultSeniorityRules is the seniority ladder, highest tier first except
// for deputy titles that would otherwise match an executive keyword.
func DefaultSeniorityRules() []SeniorityRule {
	return []SeniorityRule{
		{Level: domain.SeniorityManagerial, Titles: []string{"teniente alcalde", "vicegobernador"}},
		{
			Level: domain.SeniorityExecutive,
			Titles: []string{
				"presidente", "ministro", "viceministro", "alcalde", "gobernador", "gerente general",
				"ceo", "director general", "director ejecutivo", "rector", "congresista", "senador",
				"diputado", "parlamentario andino", "jefe de gabinete", "propietario", "fundador",
				"secretario general", "embajador", "superintendente", "contralor", "dueno",
				"titular gerente", "socio gerente",
			},
		},
		{
			Level: domain.SeniorityManagerial,
			Titles: []string{
				"gerente", "subgerente", "director", "directora", "subdirector", "decano",
				"vicerrector", "administrador", "administradora", "comandante", "regidor",
				"concejal", "consejero regional", "vicepresidente", "manager",
			},
		},
		{
			Level: domain.SenioritySupervisory,
			Titles: []string{
				"jefe", "jefa", "coordinador", "coordinadora", "supervisor", "supervisora",
				"encargado", "encargada", "responsable de", "lider", "head",
			},
		},
		{
			Level: domain.SeniorityCoordinator,
			Titles: []string{
				"especialista", "analista", "asesor", "asesora", "consultor", "consultora",
				"auditor", "auditora", "specialist", "analyst",
			},
		},
	}
}

// DefaultCargoRules resolves the office text of a candidacy.
func DefaultCargoRules() []Rule[domain.Cargo] {
	return []Rule[domain.Cargo]{
		{Value: domain.CargoAndeanParliament, Any: []string{"parlamento andino", "parlamentario andino", "andean"}},
		{Value: domain.CargoRegionalGovernor, Any: []string{"gobernador", "presidente regional", "gobierno regional"}},
		{Value: domain.CargoMayor, Any: []string{"alcalde", "mayor"}},
		{Value: domain.CargoVicePresident, Any: []string{"vicepresidente", "vice presidente", "vice president"}},
		{Value: domain.CargoPresident, Any: []string{"presidente", "president", "presidencia"}},
		{Value: domain.CargoSenator, Any: []string{"senador", "senado", "senator"}},
		{Value: domain.CargoDeputy, Any: []string{"diputado", "diputados", "congresista", "congreso", "deputy"}},
	}
}

// DefaultCivilRules sub-types civil sentence text, most severe first.
func DefaultCivilRules() []Rule[domain.CivilSentenceType] {
	return []Rule[domain.CivilSentenceType]{
		{
			Value: domain.CivilFamilyViolence,
			Any:   []string{"violencia familiar", "violencia contra la mujer", "violencia domestica", "maltrato", "agresion"},
		},
		{
			Value: domain.CivilSupportObligation,
			Any:   []string{"alimentos", "alimentaria", "alimenticia", "pension de alimentos", "asistencia familiar"},
		},
		{
			Value: domain.CivilLabor,
			Any:   []string{"laboral", "beneficios sociales", "despido", "remuneracion", "trabajador"},
		},
		{
			Value: domain.CivilContractual,
			Any:   []string{"contrat", "obligacion de dar", "pago", "incumplimiento", "deuda", "indemnizacion", "desalojo"},
		},
	}
}

// DefaultTrajectoryRules tags political trajectory entries.
func DefaultTrajectoryRules() []Rule[domain.TrajectoryType] {
	return []Rule[domain.TrajectoryType]{
		{Value: domain.TrajectoryCandidacy, Any: []string{"candidat", "postulacion", "postulante"}},
		{Value: domain.TrajectoryAffiliation, Any: []string{"afiliacion", "afiliado", "militancia", "militante", "affiliation"}},
		{Value: domain.TrajectoryElectedOffice, Any: []string{"eleccion popular", "electo", "elegido", "cargo electivo", "elected"}},
		{Value: domain.TrajectoryAppointedOffice, Any: []string{"designado", "designacion", "confianza", "appointed", "cargo publico"}},
		{Value: domain.TrajectoryPartyOffice, Any: []string{"partidario", "partido", "dirigente", "party"}},
	}
}
