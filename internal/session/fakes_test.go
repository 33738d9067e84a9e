package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rahul4469/propmate/internal/models"
)

type searchCall struct {
	query      string
	maxResults int
}

// fakeSearcher returns fixed results, optionally holding each call until release is closed.
type fakeSearcher struct {
	results []models.SearchResult
	err     error
	release chan struct{}
	started chan struct{}

	calls atomic.Int32
	mu    sync.Mutex
	last  searchCall
}

func (f *fakeSearcher) SearchWeb(ctx context.Context, query string, maxResults int) ([]models.SearchResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.last = searchCall{query: query, maxResults: maxResults}
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.results, f.err
}

func (f *fakeSearcher) lastCall() searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

type fakeExtractor struct {
	offers  []models.LoanOffer
	err     error
	panicOn bool

	calls atomic.Int32
	mu    sync.Mutex
	input []models.SearchResult
}

func (f *fakeExtractor) ExtractLoanOffers(_ context.Context, results []models.SearchResult) ([]models.LoanOffer, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.input = results
	f.mu.Unlock()
	if f.panicOn {
		panic("extractor exploded")
	}
	return f.offers, f.err
}

type fakeReplier struct {
	reply string
	err   error

	mu      sync.Mutex
	query   string
	history []models.ChatMessage
}

func (f *fakeReplier) GenerateReply(_ context.Context, query string, history []models.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.query = query
	f.history = history
	return f.reply, f.err
}

func (f *fakeReplier) lastHistory() []models.ChatMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.history
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func providerErr(kind models.ErrorKind, msg string) error {
	return &models.ProviderError{Kind: kind, Provider: "test", Message: msg}
}
