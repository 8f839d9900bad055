package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/deadly-nightshade/medguard/internal/model"
)

// searchProvider is one search tier. Providers return whatever they can;
// the Searcher treats errors and empty result sets the same way.
type searchProvider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error)
}

// Searcher resolves queries through a primary provider with a
// fallback-on-empty second tier. It never returns an error: an empty slice
// is the first-class "no evidence found" outcome.
type Searcher struct {
	providers  []searchProvider
	maxResults int
}

// NewSearcher builds the two-tier searcher. Without a Google API key the
// primary tier is skipped and only the keyless fallback runs.
func NewSearcher(cfg model.SearchConfig) *Searcher {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	var providers []searchProvider
	if cfg.APIKey != "" && cfg.EngineID != "" {
		providers = append(providers, newGoogleSearch(cfg))
	}
	providers = append(providers, newWikipediaSearch(cfg))

	return &Searcher{providers: providers, maxResults: maxResults}
}

// Search tries each tier in order and returns the first non-empty result set
func (s *Searcher) Search(ctx context.Context, query string) []model.SearchResult {
	if query == "" {
		return nil
	}

	for _, p := range s.providers {
		results, err := p.Search(ctx, query, s.maxResults)
		if err != nil {
			logrus.WithError(err).WithField("provider", p.Name()).Debug("search tier failed")
			continue
		}
		if len(results) > 0 {
			return results
		}
	}

	return nil
}

// googleSearch queries the Google Custom Search JSON API
type googleSearch struct {
	httpClient *http.Client
	apiKey     string
	engineID   string
}

func newGoogleSearch(cfg model.SearchConfig) *googleSearch {
	return &googleSearch{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		engineID:   cfg.EngineID,
	}
}

func (g *googleSearch) Name() string { return "google" }

type googleSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func (g *googleSearch) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	if maxResults > 10 {
		maxResults = 10 // API maximum per page
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResults))

	endpoint := "https://www.googleapis.com/customsearch/v1?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google search status %d", resp.StatusCode)
	}

	var parsed googleSearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	results := make([]model.SearchResult, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		results = append(results, model.SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

// wikipediaSearch queries the keyless Wikipedia OpenSearch API, used when
// the primary tier is unconfigured or comes back empty
type wikipediaSearch struct {
	httpClient *http.Client
}

func newWikipediaSearch(cfg model.SearchConfig) *wikipediaSearch {
	return &wikipediaSearch{httpClient: &http.Client{Timeout: cfg.Timeout}}
}

func (w *wikipediaSearch) Name() string { return "wikipedia" }

func (w *wikipediaSearch) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(maxResults))
	params.Set("format", "json")

	endpoint := "https://en.wikipedia.org/w/api.php?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia search status %d", resp.StatusCode)
	}

	// OpenSearch replies with a positional array:
	// [query, [titles...], [descriptions...], [urls...]]
	var raw []json.RawMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("unexpected opensearch shape")
	}

	var titles, descriptions, urls []string
	if err := json.Unmarshal(raw[1], &titles); err != nil {
		return nil, fmt.Errorf("decode titles: %w", err)
	}
	_ = json.Unmarshal(raw[2], &descriptions)
	if err := json.Unmarshal(raw[3], &urls); err != nil {
		return nil, fmt.Errorf("decode urls: %w", err)
	}

	var results []model.SearchResult
	for i := range titles {
		if i >= len(urls) || i >= maxResults {
			break
		}
		snippet := ""
		if i < len(descriptions) {
			snippet = descriptions[i]
		}
		results = append(results, model.SearchResult{
			Title:   titles[i],
			Link:    urls[i],
			Snippet: snippet,
		})
	}
	return results, nil
}
