package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const randomQuestionQuery = `
query randomQuestion($categorySlug: String, $filters: QuestionListFilterInput) {
    randomQuestion(categorySlug: $categorySlug, filters: $filters) {
        title
        titleSlug
        content
        difficulty
        acRate
        topicTags {
            name
            slug
        }
        companyTags {
            name
        }
    }
}`

type Client struct {
	url        string
	userAgent  string
	httpClient *http.Client
}

func NewClient(url string, userAgent string, httpClient *http.Client) *Client {
	return &Client{
		url:        url,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

type tag struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type rawProblem struct {
	Title       *string  `json:"title"`
	TitleSlug   string   `json:"titleSlug"`
	Content     *string  `json:"content"`
	Difficulty  *string  `json:"difficulty"`
	AcRate      *float64 `json:"acRate"`
	TopicTags   []tag    `json:"topicTags"`
	CompanyTags []tag    `json:"companyTags"`
}

type queryResponse struct {
	Data struct {
		RandomQuestion *rawProblem `json:"randomQuestion"`
	} `json:"data"`
}

// FetchProblem issues a single random-question query with the given filters.
// It returns ErrNoProblem when the catalog matches nothing and an
// IncompleteProblemError when the returned record is missing required fields.
func (c *Client) FetchProblem(ctx context.Context, filters Filters) (*Problem, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	body, err := json.Marshal(map[string]any{
		"query":     randomQuestionQuery,
		"variables": buildVariables(filters),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog query: %w", err)
	}

	req, err := http.NewRequestWithContext(timeoutCtx, "POST", c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}

	var decoded queryResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to parse catalog response: %w", err)
	}

	raw := decoded.Data.RandomQuestion
	if raw == nil {
		return nil, ErrNoProblem
	}

	problem, err := raw.validate()
	if err != nil {
		return nil, err
	}

	slog.Debug("Fetched problem from catalog",
		"title", problem.Title,
		"difficulty", problem.Difficulty,
		"acceptance_rate", problem.Metadata.AcceptanceRate)

	return problem, nil
}

func buildVariables(filters Filters) map[string]any {
	inner := map[string]any{}
	if filters.Difficulty != "" {
		inner["difficulty"] = strings.ToUpper(filters.Difficulty)
	}
	if len(filters.Topics) > 0 {
		inner["tags"] = filters.Topics
	}
	if len(filters.Companies) > 0 {
		inner["companies"] = filters.Companies
	}

	return map[string]any{
		"categorySlug": "",
		"filters":      inner,
	}
}

func (r *rawProblem) validate() (*Problem, error) {
	var missing []string
	if r.Title == nil || *r.Title == "" {
		missing = append(missing, "title")
	}
	if r.Content == nil || *r.Content == "" {
		missing = append(missing, "content")
	}
	if r.Difficulty == nil || *r.Difficulty == "" {
		missing = append(missing, "difficulty")
	}
	if r.TopicTags == nil {
		missing = append(missing, "topicTags")
	}
	if r.AcRate == nil {
		missing = append(missing, "acRate")
	}

	if len(missing) > 0 {
		return nil, &IncompleteProblemError{Missing: missing}
	}

	topics := make([]string, 0, len(r.TopicTags))
	for _, t := range r.TopicTags {
		topics = append(topics, t.Name)
	}

	companies := make([]string, 0, len(r.CompanyTags))
	for _, t := range r.CompanyTags {
		companies = append(companies, t.Name)
	}

	return &Problem{
		Title:      *r.Title,
		TitleSlug:  r.TitleSlug,
		Content:    *r.Content,
		Difficulty: strings.ToLower(*r.Difficulty),
		Topics:     topics,
		Metadata: Metadata{
			AcceptanceRate: *r.AcRate,
			Topics:         topics,
			Companies:      companies,
		},
	}, nil
}
