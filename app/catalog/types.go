package catalog

// Problem is one problem record fetched from the catalog. It is owned by a
// single pipeline run and discarded when the run completes.
type Problem struct {
	Title      string
	TitleSlug  string
	Content    string
	Difficulty string // normalized to easy|medium|hard
	Topics     []string
	Metadata   Metadata
}

// Metadata carries informational catalog fields that never influence
// generation, only logging and prompts.
type Metadata struct {
	AcceptanceRate float64
	Topics         []string
	Companies      []string
}

// Filters narrows the random problem query. Zero values mean no filter.
type Filters struct {
	Difficulty string
	Topics     []string
	Companies  []string
}
