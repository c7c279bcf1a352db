package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(server.URL, "Test Agent", server.Client())
	return client, server
}

func TestFetchProblem_Success(t *testing.T) {
	var captured map[string]any

	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"randomQuestion": {
			"title": "Two Sum",
			"titleSlug": "two-sum",
			"content": "<p>Given an array of integers...</p>",
			"difficulty": "EASY",
			"acRate": 48.5,
			"topicTags": [{"name": "Array", "slug": "array"}, {"name": "Hash Table", "slug": "hash-table"}],
			"companyTags": [{"name": "Google"}]
		}}}`))
	})
	defer server.Close()

	problem, err := client.FetchProblem(context.Background(), Filters{
		Difficulty: "easy",
		Topics:     []string{"array"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if problem.Title != "Two Sum" {
		t.Errorf("Expected title 'Two Sum', got %q", problem.Title)
	}
	if problem.Difficulty != "easy" {
		t.Errorf("Expected normalized difficulty 'easy', got %q", problem.Difficulty)
	}
	if len(problem.Topics) != 2 || problem.Topics[0] != "Array" {
		t.Errorf("Unexpected topics: %v", problem.Topics)
	}
	if problem.Metadata.AcceptanceRate != 48.5 {
		t.Errorf("Expected acceptance rate 48.5, got %f", problem.Metadata.AcceptanceRate)
	}
	if len(problem.Metadata.Companies) != 1 || problem.Metadata.Companies[0] != "Google" {
		t.Errorf("Unexpected companies: %v", problem.Metadata.Companies)
	}

	// Difficulty is upper-cased on the wire
	variables := captured["variables"].(map[string]any)
	filters := variables["filters"].(map[string]any)
	if filters["difficulty"] != "EASY" {
		t.Errorf("Expected wire difficulty 'EASY', got %v", filters["difficulty"])
	}
}

func TestFetchProblem_NoMatch(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"randomQuestion": null}}`))
	})
	defer server.Close()

	_, err := client.FetchProblem(context.Background(), Filters{})
	if !errors.Is(err, ErrNoProblem) {
		t.Errorf("Expected ErrNoProblem, got %v", err)
	}
}

func TestFetchProblem_IncompleteRecord(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": {"randomQuestion": {
			"title": "Two Sum",
			"titleSlug": "two-sum",
			"difficulty": "EASY",
			"topicTags": []
		}}}`))
	})
	defer server.Close()

	_, err := client.FetchProblem(context.Background(), Filters{})

	var incomplete *IncompleteProblemError
	if !errors.As(err, &incomplete) {
		t.Fatalf("Expected IncompleteProblemError, got %v", err)
	}

	// content and acRate are absent
	if len(incomplete.Missing) != 2 {
		t.Errorf("Expected 2 missing fields, got %v", incomplete.Missing)
	}
}

func TestFetchProblem_HTTPError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	_, err := client.FetchProblem(context.Background(), Filters{})
	if err == nil {
		t.Error("Expected error for HTTP 502")
	}
}
