package scope

// Rules defines which files in a directory are design documents.
type Rules struct {
	// Suffixes a file name must end with (any of them).
	Suffixes []string `yaml:"suffixes" json:"suffixes"`
	// Ignore lists exact file names that are never selected.
	Ignore []string `yaml:"ignore" json:"ignore"`
	// IncludePatterns, when set, must match the file name.
	IncludePatterns []string `yaml:"include_patterns" json:"include_patterns"`
	// ExcludePatterns reject matching file names.
	ExcludePatterns []string `yaml:"exclude_patterns" json:"exclude_patterns"`
}
