package scope

// DefaultSuffixes is the design document naming convention.
var DefaultSuffixes = []string{
	"-rest-api-design.md",
	"-rest-api-design.html",
}

// DefaultIgnore holds names never treated as input: dependency folders and
// the tools' own outputs.
var DefaultIgnore = []string{
	"node_modules",
	"api-statistics-report.md",
	"api-endpoints-data.json",
	"api-endpoints-data.yaml",
	"design-analysis-report.json",
}

// DefaultRules returns the rules used when nothing is configured.
func DefaultRules() Rules {
	return NewRuleBuilder().Build()
}

// RuleBuilder helps build selection rules.
type RuleBuilder struct {
	rules Rules
}

// NewRuleBuilder creates a rule builder seeded with the default suffixes
// and ignore list.
func NewRuleBuilder() *RuleBuilder {
	return &RuleBuilder{
		rules: Rules{
			Suffixes: append([]string(nil), DefaultSuffixes...),
			Ignore:   append([]string(nil), DefaultIgnore...),
		},
	}
}

// WithSuffixes replaces the accepted suffixes.
func (b *RuleBuilder) WithSuffixes(suffixes ...string) *RuleBuilder {
	if len(suffixes) > 0 {
		b.rules.Suffixes = append([]string(nil), suffixes...)
	}
	return b
}

// WithIgnore adds names to the ignore list.
func (b *RuleBuilder) WithIgnore(names ...string) *RuleBuilder {
	b.rules.Ignore = append(b.rules.Ignore, names...)
	return b
}

// WithIncludePatterns adds include patterns.
func (b *RuleBuilder) WithIncludePatterns(patterns ...string) *RuleBuilder {
	b.rules.IncludePatterns = append(b.rules.IncludePatterns, patterns...)
	return b
}

// WithExcludePatterns adds exclude patterns.
func (b *RuleBuilder) WithExcludePatterns(patterns ...string) *RuleBuilder {
	b.rules.ExcludePatterns = append(b.rules.ExcludePatterns, patterns...)
	return b
}

// Build returns the built rules.
func (b *RuleBuilder) Build() Rules {
	return b.rules
}
