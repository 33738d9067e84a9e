// Package session holds the per-visitor state machines: property analysis,
// loan calculator with bank offers, and the assistant chat.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rahul4469/propmate/internal/logging"
	"github.com/rahul4469/propmate/internal/models"
	"github.com/rahul4469/propmate/internal/views"
	"go.uber.org/zap"
)

// PropertySearchResults is how many listings are attached to each analysis.
const PropertySearchResults = 6

// Searcher runs a web search.
type Searcher interface {
	SearchWeb(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error)
}

// PropertyController values properties and keeps the session's analysis history.
type PropertyController struct {
	searcher Searcher
	logger   *zap.Logger
	now      func() time.Time

	mu           sync.Mutex
	history      []models.PropertyAnalysis // newest first
	count        int
	inFlight     int
	lastAnalysis time.Duration
	lastWebFetch time.Duration
}

func NewPropertyController(searcher Searcher, logger *zap.Logger) *PropertyController {
	return &PropertyController{
		searcher: searcher,
		logger:   logging.OrNop(logger),
		now:      time.Now,
	}
}

// Analyze values in, attaches live listings when search is available, and
// prepends the result to the history. Search failures never fail the analysis.
func (c *PropertyController) Analyze(ctx context.Context, in models.PropertyInput) models.PropertyAnalysis {
	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()

	start := time.Now()
	value := in.EstimatedValue()

	analysis := models.PropertyAnalysis{
		Location:        in.Location,
		Area:            in.Area,
		Bedrooms:        in.Bedrooms,
		Bathrooms:       in.Bathrooms,
		Floor:           in.Floor,
		InvestmentScore: models.InvestmentScore(value),
		EstimatedValue:  views.FormatRupeesInt(value),
		AreaGrowth:      models.DefaultAreaGrowth,
		AIInsights:      models.DefaultAIInsights,
		MarketInsights:  models.DefaultMarketInsights,
		SearchResults:   []models.SearchResult{},
		CreatedAt:       c.now(),
	}

	webStart := time.Now()
	query := fmt.Sprintf("%d BHK in %s around %s", analysis.Bedrooms, analysis.Location, analysis.EstimatedValue)
	results, err := c.searcher.SearchWeb(ctx, query, PropertySearchResults)
	if err != nil {
		c.logger.Warn("listing search failed, continuing without web data",
			zap.String("kind", models.KindOf(err).String()),
			zap.Error(err),
		)
	} else if results != nil {
		analysis.SearchResults = results
	}
	webElapsed := time.Since(webStart)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append([]models.PropertyAnalysis{analysis}, c.history...)
	c.count++
	c.inFlight--
	c.lastWebFetch = webElapsed
	c.lastAnalysis = time.Since(start)

	c.logger.Info("property analyzed",
		zap.String("location", analysis.Location),
		zap.Int64("value", value),
		zap.Int("score", analysis.InvestmentScore),
		zap.Int("listings", len(analysis.SearchResults)),
		zap.Duration("duration", c.lastAnalysis),
	)
	return analysis
}

// History returns a copy of the analyses, newest first.
func (c *PropertyController) History() []models.PropertyAnalysis {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.PropertyAnalysis, len(c.history))
	copy(out, c.history)
	return out
}

func (c *PropertyController) AnalysisCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// IsAnalyzing reports whether an analysis is running.
func (c *PropertyController) IsAnalyzing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// Durations returns the last analysis and web fetch durations.
func (c *PropertyController) Durations() (analysis, webFetch time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAnalysis, c.lastWebFetch
}
