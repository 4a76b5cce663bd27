package extract

import "strings"

// Heuristics classifies identifiers by naming convention. Each predicate is
// pure and may be replaced independently.
type Heuristics struct {
	IsModel      func(name string) bool
	IsEntity     func(name string) bool
	IsRepository func(name string) bool
}

var (
	DefaultModelSuffixes      = []string{"model", "entity", "dto", "schema", "document"}
	DefaultEntitySuffixes     = []string{"entity", "model"}
	DefaultRepositorySuffixes = []string{"repository", "repo", "model", "service"}
)

// SuffixMatcher returns a case-insensitive suffix predicate.
func SuffixMatcher(suffixes ...string) func(string) bool {
	lowered := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			lowered = append(lowered, s)
		}
	}
	return func(name string) bool {
		name = strings.ToLower(name)
		for _, s := range lowered {
			if strings.HasSuffix(name, s) {
				return true
			}
		}
		return false
	}
}

// DefaultHeuristics returns the built-in naming conventions.
func DefaultHeuristics() Heuristics {
	return NewHeuristics(nil, nil, nil)
}

// NewHeuristics builds suffix heuristics; a nil list keeps the default.
func NewHeuristics(model, entity, repository []string) Heuristics {
	if model == nil {
		model = DefaultModelSuffixes
	}
	if entity == nil {
		entity = DefaultEntitySuffixes
	}
	if repository == nil {
		repository = DefaultRepositorySuffixes
	}
	return Heuristics{
		IsModel:      SuffixMatcher(model...),
		IsEntity:     SuffixMatcher(entity...),
		IsRepository: SuffixMatcher(repository...),
	}
}

// modelLike reports whether name reads as a domain model or entity.
func (h Heuristics) modelLike(name string) bool {
	return h.IsModel(name) || h.IsEntity(name)
}
