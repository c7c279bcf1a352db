package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/blog-forge/app/catalog"
	"github.com/lysyi3m/blog-forge/app/cfg"
	"github.com/lysyi3m/blog-forge/app/generator"
	"github.com/lysyi3m/blog-forge/app/prompt"
	"github.com/lysyi3m/blog-forge/app/publisher"
)

// CatalogClient fetches one problem record per call.
type CatalogClient interface {
	FetchProblem(ctx context.Context, filters catalog.Filters) (*catalog.Problem, error)
}

// Generator turns an instruction into sanitized post content.
type Generator interface {
	Generate(ctx context.Context, instruction string) (string, error)
}

// PublisherFactory resolves a publish target, with an optional platform
// override.
type PublisherFactory interface {
	Create(platform string) (publisher.Publisher, error)
}

var _ CatalogClient = (*catalog.Client)(nil)
var _ Generator = (*generator.Client)(nil)
var _ PublisherFactory = (*publisher.Factory)(nil)

// Options narrows one run. Zero values fall back to configuration defaults.
type Options struct {
	Difficulty string
	Topics     []string
	Companies  []string
	Platform   string
}

// Pipeline is the generate-blog-post use case: fetch a problem, build the
// instruction, generate content, publish. Each Run is independent and owns
// no mutable state, so concurrent runs are safe and unordered.
type Pipeline struct {
	cfg      *cfg.Cfg
	catalog  CatalogClient
	gen      Generator
	factory  PublisherFactory
	strategy *prompt.Strategy
}

func New(c *cfg.Cfg, catalogClient CatalogClient, gen Generator, factory PublisherFactory, strategy *prompt.Strategy) *Pipeline {
	return &Pipeline{
		cfg:      c,
		catalog:  catalogClient,
		gen:      gen,
		factory:  factory,
		strategy: strategy,
	}
}

// Run executes one generation: exactly one catalog read, one completion
// request (with its internal retries), one publish write. Collaborator
// errors propagate unchanged so callers can discriminate on type.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*publisher.Result, error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	problem, err := p.catalog.FetchProblem(ctx, catalog.Filters{
		Difficulty: opts.Difficulty,
		Topics:     opts.Topics,
		Companies:  opts.Companies,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Selected problem",
		"title", problem.Title,
		"difficulty", problem.Difficulty,
		"acceptance_rate", fmt.Sprintf("%.2f%%", problem.Metadata.AcceptanceRate),
		"topics", problem.Topics)

	instruction, err := p.strategy.BuildPrompt(problem)
	if err != nil {
		return nil, err
	}

	content, err := p.gen.Generate(ctx, instruction)
	if err != nil {
		return nil, err
	}

	target, err := p.factory.Create(opts.Platform)
	if err != nil {
		return nil, err
	}

	result, err := target.Publish(ctx, publisher.Post{
		Title:  p.strategy.BuildTitle(problem.Title),
		Body:   content,
		Status: publisher.StatusPublished,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Published post",
		"platform", result.Platform,
		"post_id", result.ID,
		"url", result.URL,
		"status", result.Status)

	return result, nil
}
