// cmd/server/server_test.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valpere/RecipeScrapexter/internal/config"
	apperrors "github.com/valpere/RecipeScrapexter/internal/errors"
	"github.com/valpere/RecipeScrapexter/internal/monitoring"
	"github.com/valpere/RecipeScrapexter/internal/scraper"
	"github.com/valpere/RecipeScrapexter/internal/utils"
	"github.com/valpere/RecipeScrapexter/pkg/api"
)

const soupURL = "https://example.com/soup"

const soupPage = `<html><head>
<script type="application/ld+json">
{"@context": "https://schema.org", "@type": "Recipe", "name": "Tomato Soup",
 "recipeIngredient": ["4 tomatoes"], "recipeInstructions": ["Simmer."]}
</script></head><body></body></html>`

type stubFetcher map[string]string

func (f stubFetcher) Fetch(ctx context.Context, url string) (*scraper.Page, error) {
	if url == "https://example.com/down" {
		return nil, apperrors.NewStatusError(url, http.StatusServiceUnavailable)
	}
	html, ok := f[url]
	if !ok {
		return nil, apperrors.NewStatusError(url, http.StatusNotFound)
	}
	return &scraper.Page{URL: url, FinalURL: url, HTML: html, StatusCode: http.StatusOK}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func setupTestServer(t *testing.T, mutate func(*config.Config)) (*httptest.Server, *server) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	metrics := monitoring.NewMetrics()
	client, err := api.NewClient(context.Background(), cfg,
		api.WithFetcher(stubFetcher{soupURL: soupPage, "https://example.com/plain": "<html><body><p>hi</p></body></html>"}),
		api.WithMetrics(metrics))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	health := monitoring.NewHealthManager("test", time.Second)
	client.RegisterHealthChecks(health)

	srv := newServer(client, cfg.Server, metrics, health, utils.NewNopLogger())
	ts := httptest.NewServer(setupRoutes(srv))
	t.Cleanup(ts.Close)
	return ts, srv
}

func post(t *testing.T, url, body string, headers ...string) (*http.Response, envelope) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("response is not an envelope: %v. Body: %s", err, data)
	}
	return resp, env
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	var health monitoring.SystemHealth
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("failed to decode health: %v", err)
	}
	if health.Status != monitoring.HealthStatusHealthy || health.Version != "test" {
		t.Errorf("unexpected health: %+v", health)
	}
}

func TestImportEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	resp, env := post(t, ts.URL+"/api/v1/import", `{"url": "`+soupURL+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.StatusCode, env.Error)
	}
	if !env.Success || env.Error != "" {
		t.Errorf("unexpected envelope: %+v", env)
	}
	var recipe api.Recipe
	if err := json.Unmarshal(env.Data, &recipe); err != nil {
		t.Fatalf("data is not a recipe: %v", err)
	}
	if recipe.Title != "Tomato Soup" || recipe.SourceURL != soupURL {
		t.Errorf("unexpected recipe: %+v", recipe)
	}
	if got := resp.Header.Get("X-Recipe-Strategy"); got != "json-ld" {
		t.Errorf("X-Recipe-Strategy = %q", got)
	}
}

func TestImportEndpointErrors(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{"bad json", `{"url": `, http.StatusBadRequest, "invalid JSON body"},
		{"invalid url", `{"url": "not-a-url"}`, http.StatusBadRequest, apperrors.ErrInvalidURL.Error()},
		{"no recipe", `{"url": "https://example.com/plain"}`, http.StatusUnprocessableEntity, ""},
		{"not found", `{"url": "https://example.com/missing"}`, http.StatusBadGateway, "failed to fetch URL: 404 Not Found"},
		{"upstream down", `{"url": "https://example.com/down"}`, http.StatusBadGateway, "503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := post(t, ts.URL+"/api/v1/import", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d (%s)", tt.status, resp.StatusCode, env.Error)
			}
			if env.Success || env.Error == "" {
				t.Errorf("expected failure envelope, got %+v", env)
			}
			if !strings.Contains(env.Error, tt.errMsg) {
				t.Errorf("error %q should contain %q", env.Error, tt.errMsg)
			}
		})
	}
}

func TestImportEndpointStore(t *testing.T) {
	ts, _ := setupTestServer(t, func(cfg *config.Config) {
		cfg.Storage.Driver = "sqlite"
		cfg.Storage.DSN = filepath.Join(t.TempDir(), "recipes.db")
	})

	resp, env := post(t, ts.URL+"/api/v1/import?store=true", `{"url": "`+soupURL+`"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.StatusCode, env.Error)
	}
	if got := resp.Header.Get("X-Recipe-Slug"); got != "tomato-soup" {
		t.Errorf("X-Recipe-Slug = %q", got)
	}
	if resp.Header.Get("X-Recipe-ID") == "" {
		t.Error("X-Recipe-ID missing")
	}
}

func TestImportEndpointStoreWithoutStorage(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	resp, env := post(t, ts.URL+"/api/v1/import?store=true", `{"url": "`+soupURL+`"}`)
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("expected status 501, got %d", resp.StatusCode)
	}
	if env.Error != api.ErrNoStore.Error() {
		t.Errorf("error = %q", env.Error)
	}
}

func TestParseEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	body, _ := json.Marshal(api.ParseRequest{HTML: soupPage, SourceURL: soupURL})
	resp, env := post(t, ts.URL+"/api/v1/parse", string(body))
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("expected success, got %d: %s", resp.StatusCode, env.Error)
	}

	resp, env = post(t, ts.URL+"/api/v1/parse", `{"html": "<p>nothing</p>"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", resp.StatusCode)
	}
	if env.Error != apperrors.ErrNoRecipe.Error() {
		t.Errorf("error = %q", env.Error)
	}

	resp, _ = post(t, ts.URL+"/api/v1/parse", `{"html": ""}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty html: expected status 400, got %d", resp.StatusCode)
	}

	resp, _ = post(t, ts.URL+"/api/v1/parse", `{"html": "<p>x</p>", "source_url": "relative/path"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad source_url: expected status 400, got %d", resp.StatusCode)
	}
}

func TestBodyLimit(t *testing.T) {
	ts, _ := setupTestServer(t, func(cfg *config.Config) { cfg.Server.MaxBodyBytes = 64 })

	body, _ := json.Marshal(api.ParseRequest{HTML: soupPage})
	resp, _ := post(t, ts.URL+"/api/v1/parse", string(body))
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status 413, got %d", resp.StatusCode)
	}
}

func TestAuthMiddleware(t *testing.T) {
	ts, _ := setupTestServer(t, func(cfg *config.Config) { cfg.Server.APIKey = "valid_api_key_123" })
	body := `{"url": "` + soupURL + `"}`

	tests := []struct {
		name    string
		headers []string
		status  int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"bad format", []string{"Authorization", "Token valid_api_key_123"}, http.StatusUnauthorized},
		{"wrong key", []string{"Authorization", "Bearer nope"}, http.StatusUnauthorized},
		{"bearer", []string{"Authorization", "Bearer valid_api_key_123"}, http.StatusOK},
		{"header", []string{"X-API-Key", "valid_api_key_123"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := post(t, ts.URL+"/api/v1/import", body, tt.headers...)
			if resp.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health check failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health must not require auth, got %d", resp.StatusCode)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	ts, srv := setupTestServer(t, func(cfg *config.Config) {
		cfg.Server.RateLimit = 0.001
		cfg.Server.RateBurst = 2
	})
	body := `{"url": "` + soupURL + `"}`

	for i := 0; i < 2; i++ {
		if resp, env := post(t, ts.URL+"/api/v1/import", body); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d: %s", i, resp.StatusCode, env.Error)
		}
	}
	resp, env := post(t, ts.URL+"/api/v1/import", body)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", resp.StatusCode)
	}
	if env.Error != "rate limit exceeded" || resp.Header.Get("Retry-After") == "" {
		t.Errorf("unexpected 429 response: %+v", env)
	}

	// reloading settings without a limit lifts it
	cfg := config.Default().Server
	srv.apply(cfg)
	if resp, _ := post(t, ts.URL+"/api/v1/import", body); resp.StatusCode != http.StatusOK {
		t.Errorf("after reload: expected status 200, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t, nil)
	post(t, ts.URL+"/api/v1/import", `{"url": "`+soupURL+`"}`)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	io.Copy(&buf, resp.Body)
	for _, want := range []string{
		`recipescrapexter_http_requests_total{method="POST",route="/api/v1/import",status_code="200"} 1`,
		`recipescrapexter_extractions_total{strategy="json-ld"} 1`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("metrics should contain %q", want)
		}
	}
}

func TestNotFoundAndMethod(t *testing.T) {
	ts, _ := setupTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/api/v1/import")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET import: expected 405, got %d", resp.StatusCode)
	}

	resp, env := post(t, ts.URL+"/api/v1/scrapers", `{}`)
	if resp.StatusCode != http.StatusNotFound || env.Success {
		t.Errorf("unknown route: got %d %+v", resp.StatusCode, env)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(context.Canceled); got != http.StatusInternalServerError {
		t.Errorf("statusFor(context.Canceled) = %d", got)
	}
	if got := statusFor(apperrors.ErrNoTitle); got != http.StatusUnprocessableEntity {
		t.Errorf("statusFor(ErrNoTitle) = %d", got)
	}
}
