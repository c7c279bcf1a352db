package prompt

// strategyFile is the YAML shape of a strategy definition on disk.
type strategyFile struct {
	Strategy struct {
		Name        string `yaml:"name"`
		Language    string `yaml:"language"`
		TitleSuffix string `yaml:"title_suffix"`
	} `yaml:"strategy"`
	Template string `yaml:"template"`
}

// templateData is what a strategy template renders against.
type templateData struct {
	Title      string
	Difficulty string
	Tags       string
	Content    string
	Language   string
}
