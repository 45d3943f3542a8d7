package taxonomy

import (
	"fmt"

	"github.com/ahrav/go-ballot/internal/domain"
)

type compiledRoleRule struct {
	role          domain.RoleType
	titles        keywords
	organizations keywords
	anywhere      keywords
	exclude       keywords
}

func (r compiledRoleRule) match(position, organization string) bool {
	constrained := false
	if len(r.titles) > 0 {
		if !r.titles.matchIn(position) {
			return false
		}
		constrained = true
	}
	if len(r.organizations) > 0 {
		if !r.organizations.matchIn(organization) {
			return false
		}
		constrained = true
	}
	if len(r.anywhere) > 0 {
		if !r.anywhere.matchIn(position) && !r.anywhere.matchIn(organization) {
			return false
		}
		constrained = true
	}
	return constrained && !r.exclude.matchIn(position)
}

type compiledSeniorityRule struct {
	level   domain.SeniorityLevel
	titles  keywords
	exclude keywords
}

// Classification is the result of classifying one position.
type Classification struct {
	Role      domain.RoleType
	Seniority domain.SeniorityLevel
	// RoleMatched and SeniorityMatched are false when the default applied.
	RoleMatched      bool
	SeniorityMatched bool
}

// Classifier assigns role categories and seniority tiers to free-text
// positions using ordered keyword rules. The first matching rule wins.
// Classifier is immutable and safe for concurrent use.
type Classifier struct {
	roles     []compiledRoleRule
	seniority []compiledSeniorityRule
}

// NewClassifier compiles the given rule tables.
func NewClassifier(roles []RoleRule, seniority []SeniorityRule) (*Classifier, error) {
	if len(roles) == 0 || len(seniority) == 0 {
		return nil, ErrEmptyRules
	}

	c := &Classifier{
		roles:     make([]compiledRoleRule, 0, len(roles)),
		seniority: make([]compiledSeniorityRule, 0, len(seniority)),
	}
	for i, r := range roles {
		if !r.Role.Valid() {
			return nil, fmt.Errorf("role rule %d: %w: %q", i, domain.ErrUnknownTaxonomy, r.Role)
		}
		if len(r.Titles)+len(r.Organizations)+len(r.Anywhere) == 0 {
			return nil, fmt.Errorf("role rule %d (%s): %w", i, r.Role, ErrEmptyRules)
		}
		c.roles = append(c.roles, compiledRoleRule{
			role:          r.Role,
			titles:        newKeywords(r.Titles),
			organizations: newKeywords(r.Organizations),
			anywhere:      newKeywords(r.Anywhere),
			exclude:       newKeywords(r.Exclude),
		})
	}
	for i, r := range seniority {
		if !r.Level.Valid() {
			return nil, fmt.Errorf("seniority rule %d: %w: %d", i, domain.ErrUnknownTaxonomy, r.Level)
		}
		c.seniority = append(c.seniority, compiledSeniorityRule{
			level:   r.Level,
			titles:  newKeywords(r.Titles),
			exclude: newKeywords(r.Exclude),
		})
	}
	return c, nil
}

// DefaultClassifier returns a Classifier over the default rule tables.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultRoleRules(), DefaultSeniorityRules())
	if err != nil {
		panic(fmt.Sprintf("default classifier rules are invalid: %v", err))
	}
	return c
}

// Role returns the role category of a position, defaulting to
// technical-professional.
func (c *Classifier) Role(position, organization string) (domain.RoleType, bool) {
	p, o := Fold(position), Fold(organization)
	for _, r := range c.roles {
		if r.match(p, o) {
			return r.role, true
		}
	}
	return domain.RoleTechnicalProfessional, false
}

// Seniority returns the seniority tier of a position, defaulting to
// individual contributor.
func (c *Classifier) Seniority(position string) (domain.SeniorityLevel, bool) {
	p := Fold(position)
	for _, r := range c.seniority {
		if r.titles.matchIn(p) && !r.exclude.matchIn(p) {
			return r.level, true
		}
	}
	return domain.SeniorityIndividualContributor, false
}

// Classify runs both classifiers.
func (c *Classifier) Classify(position, organization string) Classification {
	role, roleOK := c.Role(position, organization)
	seniority, seniorityOK := c.Seniority(position)
	return Classification{
		Role:             role,
		Seniority:        seniority,
		RoleMatched:      roleOK,
		SeniorityMatched: seniorityOK,
	}
}
