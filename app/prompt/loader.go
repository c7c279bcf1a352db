package prompt

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/blog-forge/app/catalog"
)

//go:embed default.yaml
var defaultStrategyYAML []byte

// Strategy builds the generation instruction and post title for one kind of
// blog post. Building is a pure function of the problem record.
type Strategy struct {
	Name        string
	Language    string
	titleSuffix string
	tmpl        *template.Template
}

// BuildPrompt renders the instruction string for a problem. Deterministic:
// the same problem always yields the same instruction.
func (s *Strategy) BuildPrompt(problem *catalog.Problem) (string, error) {
	var b strings.Builder
	err := s.tmpl.Execute(&b, templateData{
		Title:      problem.Title,
		Difficulty: problem.Difficulty,
		Tags:       strings.Join(problem.Topics, ", "),
		Content:    problem.Content,
		Language:   s.Language,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}
	return b.String(), nil
}

// BuildTitle derives the post title from the problem title.
func (s *Strategy) BuildTitle(problemTitle string) string {
	return fmt.Sprintf("%s - %s", problemTitle, s.titleSuffix)
}

// Store holds the loaded strategies keyed by name.
type Store struct {
	strategies map[string]*Strategy
}

// NewStore loads strategy files from dir, always including the embedded
// default. Files in dir may override the default by reusing its name.
func NewStore(dir string) (*Store, error) {
	store := &Store{strategies: make(map[string]*Strategy)}

	def, err := parseStrategy(defaultStrategyYAML)
	if err != nil {
		return nil, fmt.Errorf("invalid embedded default strategy: %w", err)
	}
	store.strategies[def.Name] = def

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return store, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find strategy files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find strategy files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read strategy %s: %w", file, err)
		}

		strategy, err := parseStrategy(data)
		if err != nil {
			return nil, fmt.Errorf("invalid strategy %s: %w", file, err)
		}

		store.strategies[strategy.Name] = strategy
		slog.Debug("Loaded prompt strategy", "name", strategy.Name, "file", file)
	}

	return store, nil
}

// Get returns the named strategy.
func (s *Store) Get(name string) (*Strategy, error) {
	strategy, ok := s.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown prompt strategy: %s", name)
	}
	return strategy, nil
}

// Names returns the loaded strategy names.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	return names
}

func parseStrategy(data []byte) (*Strategy, error) {
	var file strategyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if file.Strategy.Name == "" {
		return nil, fmt.Errorf("strategy name is required")
	}
	if file.Template == "" {
		return nil, fmt.Errorf("strategy template is required")
	}
	if file.Strategy.Language == "" {
		file.Strategy.Language = "Go"
	}
	if file.Strategy.TitleSuffix == "" {
		file.Strategy.TitleSuffix = file.Strategy.Language + " Solution"
	}

	tmpl, err := template.New(file.Strategy.Name).Parse(file.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &Strategy{
		Name:        file.Strategy.Name,
		Language:    file.Strategy.Language,
		titleSuffix: file.Strategy.TitleSuffix,
		tmpl:        tmpl,
	}, nil
}
