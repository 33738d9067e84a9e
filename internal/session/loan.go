package session

import (
	"context"
	"sync"
	"time"

	"github.com/rahul4469/propmate/internal/logging"
	"github.com/rahul4469/propmate/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	// LoanOffersQuery is the fixed search used to discover bank offers.
	LoanOffersQuery = "latest home loan interest rates from HDFC, SBI, ICICI, Axis Bank in India"

	// LoanSearchResults bounds the snippets passed to offer extraction.
	LoanSearchResults = 5
)

// OfferExtractor turns search snippets into structured bank offers.
type OfferExtractor interface {
	ExtractLoanOffers(ctx context.Context, results []models.SearchResult) ([]models.LoanOffer, error)
}

// LoanController owns the EMI calculator inputs and the fetched bank offers.
// At most one offer fetch runs per session.
type LoanController struct {
	searcher  Searcher
	extractor OfferExtractor
	logger    *zap.Logger

	fetch   *semaphore.Weighted
	bg      sync.WaitGroup
	tracker *sync.WaitGroup // optional, joined by background fetches

	mu        sync.Mutex
	params    models.LoanParameters
	offers    []models.LoanOffer
	fetching  bool
	lastFetch time.Duration
}

func NewLoanController(searcher Searcher, extractor OfferExtractor, logger *zap.Logger) *LoanController {
	return &LoanController{
		searcher:  searcher,
		extractor: extractor,
		logger:    logging.OrNop(logger),
		fetch:     semaphore.NewWeighted(1),
		params:    models.DefaultLoanParameters(),
		offers:    []models.LoanOffer{},
	}
}

// SetPrincipal clamps v into the allowed principal range.
func (c *LoanController) SetPrincipal(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Principal = models.ClampPrincipal(v)
}

// SetTenureYears clamps v into the allowed tenure range, truncating fractions.
func (c *LoanController) SetTenureYears(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.TenureYears = models.ClampTenureYears(v)
}

// SetAnnualRate clamps v into the allowed rate range.
func (c *LoanController) SetAnnualRate(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.AnnualRatePercent = models.ClampAnnualRate(v)
}

func (c *LoanController) Params() models.LoanParameters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// Offers returns a copy of the last fetched offers.
func (c *LoanController) Offers() []models.LoanOffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.LoanOffer, len(c.offers))
	copy(out, c.offers)
	return out
}

func (c *LoanController) IsFetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching
}

func (c *LoanController) LastFetchDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastFetch
}

// FetchLoanOffers searches for current bank offers and extracts them. Provider
// failures leave the offers empty and are only logged. It returns
// models.ErrFetchInProgress when a fetch is already running.
func (c *LoanController) FetchLoanOffers(ctx context.Context) ([]models.LoanOffer, error) {
	if !c.fetch.TryAcquire(1) {
		return nil, models.ErrFetchInProgress
	}
	defer c.fetch.Release(1)
	return c.runFetch(ctx), nil
}

// StartFetchLoanOffers begins a fetch in the background and returns at once.
// The fetch outlives ctx cancellation; use Wait to block until it finishes.
func (c *LoanController) StartFetchLoanOffers(ctx context.Context) error {
	if !c.fetch.TryAcquire(1) {
		return models.ErrFetchInProgress
	}

	c.mu.Lock()
	c.fetching = true
	c.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	c.bg.Add(1)
	if c.tracker != nil {
		c.tracker.Add(1)
	}
	go func() {
		defer c.bg.Done()
		if c.tracker != nil {
			defer c.tracker.Done()
		}
		defer c.fetch.Release(1)
		c.runFetch(detached)
	}()
	return nil
}

// Wait blocks until background fetches have finished.
func (c *LoanController) Wait() {
	c.bg.Wait()
}

// runFetch is called with the fetch semaphore held.
func (c *LoanController) runFetch(ctx context.Context) []models.LoanOffer {
	start := time.Now()

	c.mu.Lock()
	c.fetching = true
	c.offers = []models.LoanOffer{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.fetching = false
		c.lastFetch = time.Since(start)
		c.mu.Unlock()
	}()

	offers := c.searchAndExtract(ctx)

	c.mu.Lock()
	c.offers = offers
	c.mu.Unlock()

	c.logger.Info("loan offers fetched",
		zap.Int("offers", len(offers)),
		zap.Duration("duration", time.Since(start)),
	)

	out := make([]models.LoanOffer, len(offers))
	copy(out, offers)
	return out
}

func (c *LoanController) searchAndExtract(ctx context.Context) []models.LoanOffer {
	results, err := c.searcher.SearchWeb(ctx, LoanOffersQuery, LoanSearchResults)
	if err != nil {
		c.logger.Warn("loan offer search failed",
			zap.String("kind", models.KindOf(err).String()),
			zap.Error(err),
		)
		return []models.LoanOffer{}
	}

	extracted, err := c.extractor.ExtractLoanOffers(ctx, results)
	if err != nil {
		c.logger.Warn("loan offer extraction failed",
			zap.String("kind", models.KindOf(err).String()),
			zap.Error(err),
		)
		return []models.LoanOffer{}
	}
	if extracted == nil {
		return []models.LoanOffer{}
	}
	return extracted
}
