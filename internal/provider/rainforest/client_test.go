package rainforest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/dealscout/internal/domain"
	"github.com/kitbuilder587/dealscout/internal/provider"
)

type nopLimiter struct{}

func (nopLimiter) Acquire() {}

func testClient(t *testing.T, url string) *Client {
	t.Helper()
	return New(Config{
		APIKey:  "test-key",
		BaseURL: url,
		Timeout: 5 * time.Second,
		Retry: provider.RetryConfig{
			MaxAttempts:    5,
			InitialBackoff: time.Millisecond,
			Growth:         1.1,
			MaxJitter:      time.Millisecond,
		},
	}, nopLimiter{}, zap.NewNop(), nil)
}

func TestClient_FetchPage_Success(t *testing.T) {
	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"api_key":       r.URL.Query().Get("api_key"),
			"type":          r.URL.Query().Get("type"),
			"amazon_domain": r.URL.Query().Get("amazon_domain"),
			"search_term":   r.URL.Query().Get("search_term"),
			"page":          r.URL.Query().Get("page"),
		}
		json.NewEncoder(w).Encode(searchResponse{
			SearchResults: []rawResult{
				{ASIN: "B001", Title: "Headphones", Rating: f64(4.5)},
				{ASIN: "B002"},
			},
		})
	}))
	defer server.Close()

	products, err := testClient(t, server.URL).FetchPage(context.Background(), "headphones", 3)
	if err != nil {
		t.Fatalf("FetchPage() unexpected error = %v", err)
	}

	if len(products) != 2 {
		t.Fatalf("FetchPage() = %d products, want 2", len(products))
	}
	if products[0].ID != "B001" || products[0].Name != "Headphones" {
		t.Errorf("first product = %+v", products[0])
	}

	want := map[string]string{
		"api_key":       "test-key",
		"type":          "search",
		"amazon_domain": "amazon.com",
		"search_term":   "headphones",
		"page":          "3",
	}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query param %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestClient_FetchPage_DropsItemsWithoutASIN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{
			SearchResults: []rawResult{{ASIN: "B001"}, {Title: "no id"}},
		})
	}))
	defer server.Close()

	products, err := testClient(t, server.URL).FetchPage(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("FetchPage() unexpected error = %v", err)
	}
	if len(products) != 1 {
		t.Errorf("FetchPage() = %d products, want 1", len(products))
	}
}

func TestClient_FetchPage_RetriesThenSucceeds(t *testing.T) {
	const failures = 2

	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= failures {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(searchResponse{SearchResults: []rawResult{{ASIN: "B001"}}})
	}))
	defer server.Close()

	products, err := testClient(t, server.URL).FetchPage(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("FetchPage() unexpected error = %v", err)
	}
	if len(products) != 1 {
		t.Errorf("FetchPage() = %d products, want 1", len(products))
	}
	if attempts != failures+1 {
		t.Errorf("attempts = %d, want %d", attempts, failures+1)
	}
}

func TestClient_FetchPage_ExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>Bad Gateway</html>"))
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).FetchPage(context.Background(), "q", 1)

	var upErr *provider.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("FetchPage() error = %v, want *UpstreamError", err)
	}
	if attempts != 5 {
		t.Errorf("attempts = %d, want exactly 5", attempts)
	}
	if upErr.StatusCode != http.StatusBadGateway || upErr.Attempts != 5 {
		t.Errorf("UpstreamError = %+v", upErr)
	}
}

func TestClient_FetchPage_LogicalFailureIsFatal(t *testing.T) {
	attempts := 0
	success := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		json.NewEncoder(w).Encode(searchResponse{
			RequestInfo: &requestInfo{Success: &success, Message: "invalid api key"},
		})
	}))
	defer server.Close()

	_, err := testClient(t, server.URL).FetchPage(context.Background(), "q", 1)

	var upErr *provider.UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("FetchPage() error = %v, want *UpstreamError", err)
	}
	if upErr.Retryable {
		t.Error("logical failure inside 2xx must not be retried")
	}
	if upErr.Body != "invalid api key" {
		t.Errorf("Body = %q, want provider message", upErr.Body)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestClient_FetchPage_MissingCredentials(t *testing.T) {
	client := New(Config{}, nopLimiter{}, zap.NewNop(), nil)

	if client.Configured() {
		t.Error("Configured() = true without an API key")
	}

	_, err := client.FetchPage(context.Background(), "q", 1)
	if !errors.Is(err, domain.ErrMissingCredentials) {
		t.Errorf("FetchPage() error = %v, want ErrMissingCredentials", err)
	}
}

func f64(v float64) *float64 { return &v }
