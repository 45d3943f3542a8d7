package taxonomy

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-ballot/internal/domain"
)

// validate is the package-level validator instance.
var validate = validator.New()

// ErrEmptyRules indicates a normalizer or classifier built without rules.
var ErrEmptyRules = errors.New("rule table is empty")

// Config tunes the normalizer's legacy-vocabulary fallback.
type Config struct {
	// MaxEditDistance bounds typo tolerance when matching legacy keys.
	// Zero disables fuzzy matching.
	MaxEditDistance int `yaml:"max_edit_distance" json:"max_edit_distance" validate:"min=0,max=3"`

	// MinFuzzyLength is the shortest folded input eligible for fuzzy
	// matching; shorter strings are too ambiguous.
	MinFuzzyLength int `yaml:"min_fuzzy_length" json:"min_fuzzy_length" validate:"min=1"`
}

// DefaultConfig returns the normalizer defaults.
func DefaultConfig() Config {
	return Config{MaxEditDistance: 2, MinFuzzyLength: 5}
}

type legacyKey[T comparable] struct {
	folded string
	value  T
}

// Normalizer resolves raw taxonomy text. It is immutable after
// construction and safe for concurrent use.
type Normalizer struct {
	config     Config
	education  RuleSet[domain.EducationLevel]
	legacy     []legacyKey[domain.EducationLevel]
	cargo      RuleSet[domain.Cargo]
	civil      RuleSet[domain.CivilSentenceType]
	trajectory RuleSet[domain.TrajectoryType]
}

// NewNormalizer builds a Normalizer from the default rule tables.
func NewNormalizer(config Config) (*Normalizer, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid normalizer config: %w", err)
	}

	legacy := DefaultLegacyEducation()
	if len(legacy) == 0 {
		return nil, ErrEmptyRules
	}
	keys := make([]legacyKey[domain.EducationLevel], 0, len(legacy))
	for _, e := range legacy {
		keys = append(keys, legacyKey[domain.EducationLevel]{folded: Fold(e.Key), value: e.Value})
	}

	return &Normalizer{
		config:     config,
		education:  Compile(DefaultEducationRules()),
		legacy:     keys,
		cargo:      Compile(DefaultCargoRules()),
		civil:      Compile(DefaultCivilRules()),
		trajectory: Compile(DefaultTrajectoryRules()),
	}, nil
}

// EducationLevel resolves an education description. text is the free-text
// level or degree, legacy the older closed-vocabulary value. Resolution
// order: canonical name, ordered rules over text, legacy lookup of legacy
// then text, fuzzy legacy lookup, and finally EducationNone.
func (n *Normalizer) EducationLevel(text, legacy string) domain.EducationLevel {
	for _, raw := range [...]string{text, legacy} {
		if level, ok := domain.ParseEducationLevel(canonicalKey(raw)); ok {
			return level
		}
	}

	folded := Fold(text)
	if level, ok := n.education.Resolve(folded); ok {
		return level
	}

	foldedLegacy := Fold(legacy)
	for _, candidate := range [...]string{foldedLegacy, folded} {
		if level, ok := n.lookupLegacy(candidate); ok {
			return level
		}
	}
	// Legacy values sometimes carry free text too.
	if level, ok := n.education.Resolve(foldedLegacy); ok {
		return level
	}
	for _, candidate := range [...]string{foldedLegacy, folded} {
		if level, ok := n.fuzzyLegacy(candidate); ok {
			return level
		}
	}
	return domain.EducationNone
}

func (n *Normalizer) lookupLegacy(folded string) (domain.EducationLevel, bool) {
	if folded == "" {
		return domain.EducationNone, false
	}
	for _, k := range n.legacy {
		if k.folded == folded {
			return k.value, true
		}
	}
	return domain.EducationNone, false
}

// fuzzyLegacy returns the legacy key closest to folded within the
// configured edit distance. Ties go to the key listed first.
func (n *Normalizer) fuzzyLegacy(folded string) (domain.EducationLevel, bool) {
	if n.config.MaxEditDistance == 0 || utf8.RuneCountInString(folded) < n.config.MinFuzzyLength {
		return domain.EducationNone, false
	}

	best, bestDist := domain.EducationNone, n.config.MaxEditDistance+1
	for _, k := range n.legacy {
		if d := levenshtein.ComputeDistance(folded, k.folded); d < bestDist {
			best, bestDist = k.value, d
		}
	}
	return best, bestDist <= n.config.MaxEditDistance
}

// AdjustForCompletion applies the entry's completion flags to a resolved
// level. An explicit "not completed" downgrades a complete level to its
// incomplete counterpart; an explicit title upgrades a completed
// university degree to a professional title.
func AdjustForCompletion(level domain.EducationLevel, completed, hasTitle *bool) domain.EducationLevel {
	if completed != nil && !*completed {
		switch level {
		case domain.EducationSecondaryComplete:
			return domain.EducationSecondaryIncomplete
		case domain.EducationTechnicalComplete:
			return domain.EducationTechnicalIncomplete
		case domain.EducationUniversityComplete, domain.EducationProfessionalTitle:
			return domain.EducationUniversityIncomplete
		}
		return level
	}
	if hasTitle != nil && *hasTitle && level == domain.EducationUniversityComplete {
		return domain.EducationProfessionalTitle
	}
	return level
}

// Cargo resolves the office text of a candidacy, defaulting to CargoOther.
func (n *Normalizer) Cargo(text string) domain.Cargo {
	if c := domain.Cargo(canonicalKey(text)); c.Valid() {
		return c
	}
	if c, ok := n.cargo.Resolve(Fold(text)); ok {
		return c
	}
	return domain.CargoOther
}

// CivilSentenceType sub-types a civil sentence from its type and matter
// text, defaulting to CivilOther.
func (n *Normalizer) CivilSentenceType(typeText, matter string) domain.CivilSentenceType {
	key := domain.CivilSentenceType(canonicalKey(typeText))
	for _, known := range domain.CivilSentenceTypes() {
		if key == known {
			return key
		}
	}
	if t, ok := n.civil.Resolve(strings.TrimSpace(Fold(typeText) + " " + Fold(matter))); ok {
		return t
	}
	return domain.CivilOther
}

// TrajectoryType tags a political trajectory entry, defaulting to
// TrajectoryUnknown.
func (n *Normalizer) TrajectoryType(text string) domain.TrajectoryType {
	switch t := domain.TrajectoryType(canonicalKey(text)); t {
	case domain.TrajectoryElectedOffice, domain.TrajectoryAppointedOffice, domain.TrajectoryPartyOffice,
		domain.TrajectoryCandidacy, domain.TrajectoryAffiliation:
		return t
	}
	if t, ok := n.trajectory.Resolve(Fold(text)); ok {
		return t
	}
	return domain.TrajectoryUnknown
}

// StructuredRole resolves a pre-classified role value. It reports false
// when the value is absent or not a member of the closed set, in which
// case heuristic classification applies.
func StructuredRole(value string) (domain.RoleType, bool) {
	r := domain.RoleType(canonicalKey(value))
	return r, r.Valid()
}

// StructuredSeniority resolves a pre-classified seniority value.
func StructuredSeniority(value string) (domain.SeniorityLevel, bool) {
	return domain.ParseSeniorityLevel(canonicalKey(value))
}
