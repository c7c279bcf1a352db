package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lysyi3m/blog-forge/app/catalog"
	appcfg "github.com/lysyi3m/blog-forge/app/cfg"
	"github.com/lysyi3m/blog-forge/app/generator"
	"github.com/lysyi3m/blog-forge/app/prompt"
	"github.com/lysyi3m/blog-forge/app/publisher"
)

type fakeCatalog struct {
	problem *catalog.Problem
	err     error
	calls   int
}

func (f *fakeCatalog) FetchProblem(ctx context.Context, filters catalog.Filters) (*catalog.Problem, error) {
	f.calls++
	return f.problem, f.err
}

type fakeGenerator struct {
	content        string
	err            error
	calls          int
	gotInstruction string
}

func (f *fakeGenerator) Generate(ctx context.Context, instruction string) (string, error) {
	f.calls++
	f.gotInstruction = instruction
	return f.content, f.err
}

type fakePublisher struct {
	result  *publisher.Result
	err     error
	calls   int
	gotPost publisher.Post
}

func (f *fakePublisher) Platform() string {
	return "fake"
}

func (f *fakePublisher) Publish(ctx context.Context, post publisher.Post) (*publisher.Result, error) {
	f.calls++
	f.gotPost = post
	return f.result, f.err
}

type fakeFactory struct {
	pub         publisher.Publisher
	err         error
	gotPlatform string
}

func (f *fakeFactory) Create(platform string) (publisher.Publisher, error) {
	f.gotPlatform = platform
	return f.pub, f.err
}

func pipelineCfg() *appcfg.Cfg {
	return &appcfg.Cfg{
		DeepSeekAPIKey: "key",
		BlogPlatform:   "wordpress",
		WPURL:          "https://blog.example.com",
		WPUsername:     "admin",
		WPAppPass:      "pass",
		ScheduleTimes:  []appcfg.ScheduleEntry{{Hour: 0, Minute: 0}},
	}
}

func goStrategy(t *testing.T) *prompt.Strategy {
	t.Helper()
	store, err := prompt.NewStore("/nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	strategy, err := store.Get("go")
	if err != nil {
		t.Fatal(err)
	}
	return strategy
}

func TestRun_EndToEnd(t *testing.T) {
	cat := &fakeCatalog{problem: &catalog.Problem{
		Title:      "Two Sum",
		Content:    "<p>Given an array...</p>",
		Difficulty: "easy",
		Topics:     []string{"Array", "Hash Table"},
	}}
	gen := &fakeGenerator{content: "<h1>Two Sum</h1>"}
	pub := &fakePublisher{result: &publisher.Result{ID: "42", Platform: "fake", Status: "publish"}}
	factory := &fakeFactory{pub: pub}

	p := New(pipelineCfg(), cat, gen, factory, goStrategy(t))

	result, err := p.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.ID != "42" {
		t.Errorf("Expected result ID '42', got %q", result.ID)
	}
	if cat.calls != 1 || gen.calls != 1 || pub.calls != 1 {
		t.Errorf("Expected one call each, got catalog=%d generator=%d publisher=%d", cat.calls, gen.calls, pub.calls)
	}

	if !strings.Contains(gen.gotInstruction, "Two Sum") {
		t.Error("Instruction should reference the problem title")
	}
	if !strings.Contains(pub.gotPost.Title, "Two Sum") {
		t.Errorf("Post title should contain the problem title, got %q", pub.gotPost.Title)
	}
	if pub.gotPost.Body != "<h1>Two Sum</h1>" {
		t.Errorf("Post body should be the generated content, got %q", pub.gotPost.Body)
	}
	if pub.gotPost.Status != publisher.StatusPublished {
		t.Errorf("Expected published status, got %s", pub.gotPost.Status)
	}
}

func TestRun_NoProblemShortCircuits(t *testing.T) {
	cat := &fakeCatalog{err: catalog.ErrNoProblem}
	gen := &fakeGenerator{}
	pub := &fakePublisher{}
	factory := &fakeFactory{pub: pub}

	p := New(pipelineCfg(), cat, gen, factory, goStrategy(t))

	_, err := p.Run(context.Background(), Options{})
	if !errors.Is(err, catalog.ErrNoProblem) {
		t.Fatalf("Expected ErrNoProblem, got %v", err)
	}

	if gen.calls != 0 {
		t.Error("Generator must not be called when the catalog returns nothing")
	}
	if pub.calls != 0 {
		t.Error("Publisher must not be called when the catalog returns nothing")
	}
}

func TestRun_PlatformOverride(t *testing.T) {
	cat := &fakeCatalog{problem: &catalog.Problem{
		Title:      "Two Sum",
		Content:    "c",
		Difficulty: "easy",
		Topics:     []string{"Array"},
	}}
	pub := &fakePublisher{result: &publisher.Result{ID: "1"}}
	factory := &fakeFactory{pub: pub}

	p := New(pipelineCfg(), cat, &fakeGenerator{content: "body"}, factory, goStrategy(t))

	if _, err := p.Run(context.Background(), Options{Platform: "ghost"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if factory.gotPlatform != "ghost" {
		t.Errorf("Expected platform override 'ghost' passed to factory, got %q", factory.gotPlatform)
	}
}

func TestRun_InvalidConfigFailsFast(t *testing.T) {
	c := pipelineCfg()
	c.WPAppPass = ""

	cat := &fakeCatalog{}
	p := New(c, cat, &fakeGenerator{}, &fakeFactory{}, goStrategy(t))

	if _, err := p.Run(context.Background(), Options{}); err == nil {
		t.Fatal("Expected configuration error")
	}
	if cat.calls != 0 {
		t.Error("Catalog must not be called when configuration is invalid")
	}
}

func TestRun_GeneratorErrorPropagates(t *testing.T) {
	cat := &fakeCatalog{problem: &catalog.Problem{
		Title:      "Two Sum",
		Content:    "c",
		Difficulty: "easy",
		Topics:     []string{"Array"},
	}}
	genErr := errors.New("completion failed")
	pub := &fakePublisher{}
	factory := &fakeFactory{pub: pub}

	p := New(pipelineCfg(), cat, &fakeGenerator{err: genErr}, factory, goStrategy(t))

	_, err := p.Run(context.Background(), Options{})
	if !errors.Is(err, genErr) {
		t.Fatalf("Expected generator error to propagate unchanged, got %v", err)
	}
	if pub.calls != 0 {
		t.Error("Publisher must not be called when generation fails")
	}
}

func TestRun_FencedCompletionPublishedClean(t *testing.T) {
	completion := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Here's a blog post for you:\n` + "```" + `html\n<h1>Two Sum</h1>\n` + "```" + `"}}]}`))
	}))
	defer completion.Close()

	c := pipelineCfg()
	c.DeepSeekURL = completion.URL
	c.Model = "deepseek-chat"
	c.Temperature = 0.7
	c.MaxTokens = 2000
	c.RequestTimeout = 5
	c.MaxRetries = 1
	c.RetryDelay = 0

	cat := &fakeCatalog{problem: &catalog.Problem{
		Title:      "Two Sum",
		Content:    "<p>Given an array...</p>",
		Difficulty: "easy",
		Topics:     []string{"Array"},
	}}
	pub := &fakePublisher{result: &publisher.Result{ID: "1", Platform: "fake"}}
	factory := &fakeFactory{pub: pub}

	p := New(c, cat, generator.NewClient(c, completion.Client()), factory, goStrategy(t))

	if _, err := p.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if pub.gotPost.Body != "<h1>Two Sum</h1>" {
		t.Errorf("Expected fenced completion published clean, got body %q", pub.gotPost.Body)
	}
	if !strings.Contains(pub.gotPost.Title, "Two Sum") {
		t.Errorf("Expected post title to carry the problem title, got %q", pub.gotPost.Title)
	}
}
