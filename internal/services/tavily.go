package services

import (
	"context"
	"net/http"

	"github.com/rahul4469/propmate/internal/config"
	"github.com/rahul4469/propmate/internal/models"
	"go.uber.org/zap"
)

const (
	MinSearchResults = 1
	MaxSearchResults = 20
)

// SearchClient calls the Tavily search API.
type SearchClient struct {
	settings config.Source
	provider *providerClient
}

// NewSearchClient creates a search client. Settings are resolved on every call,
// so a key added to the environment later is picked up without a restart.
func NewSearchClient(settings config.Source, httpClient *http.Client, logger *zap.Logger) *SearchClient {
	return &SearchClient{
		settings: settings,
		provider: newProviderClient("Tavily", httpClient, logger),
	}
}

// Request to Tavily
type tavilySearchRequest struct {
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	SearchDepth       string `json:"search_depth"`
	IncludeAnswer     bool   `json:"include_answer"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

// Response from Tavily. Older payloads use source/snippet instead of title/content.
// Items stay loosely typed so one odd field does not lose the whole page.
type tavilySearchResponse struct {
	Results []map[string]any `json:"results"`
}

// ClampMaxResults bounds a caller's result count to what the provider accepts.
func ClampMaxResults(n int) int {
	return max(MinSearchResults, min(n, MaxSearchResults))
}

// SearchWeb runs a basic-depth search and returns normalized results in
// provider order. A response without results is an empty list, not an error.
func (c *SearchClient) SearchWeb(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	apiKey, err := config.TavilyAPIKey(c.settings)
	if err != nil {
		return nil, err
	}

	reqBody := tavilySearchRequest{
		Query:             query,
		MaxResults:        ClampMaxResults(maxResults),
		SearchDepth:       "basic",
		IncludeAnswer:     false,
		IncludeRawContent: false,
	}

	var resp tavilySearchResponse
	url := config.TavilyBaseURL(c.settings) + "/search"
	if err := c.provider.postJSON(ctx, url, apiKey, SearchTimeout, reqBody, &resp); err != nil {
		return nil, err
	}

	out := make([]models.SearchResult, 0, len(resp.Results))
	for _, item := range resp.Results {
		out = append(out, models.SearchResult{
			Title:   firstNonEmpty(scalarText(item["title"]), scalarText(item["source"])),
			Content: firstNonEmpty(scalarText(item["content"]), scalarText(item["snippet"])),
			URL:     scalarText(item["url"]),
		})
	}

	c.provider.logger.Debug("search completed",
		zap.String("query", query),
		zap.Int("max_results", reqBody.MaxResults),
		zap.Int("results", len(out)),
	)
	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
