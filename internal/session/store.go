package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rahul4469/propmate/internal/logging"
	"github.com/rahul4469/propmate/internal/models"
	"github.com/rahul4469/propmate/internal/views"
	"go.uber.org/zap"
)

// DefaultIdleTimeout is how long an untouched session is kept.
const DefaultIdleTimeout = 2 * time.Hour

// Session is one visitor's state. Controllers are safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	Property *PropertyController
	Loan     *LoanController
	Chat     *ChatController

	mu       sync.Mutex
	lastSeen time.Time
}

// Timings collects the last recorded durations from every controller.
func (s *Session) Timings() views.Timings {
	analysis, webFetch := s.Property.Durations()
	return views.Timings{
		Analysis:  analysis,
		WebFetch:  webFetch,
		LoanFetch: s.Loan.LastFetchDuration(),
		Chat:      s.Chat.LastDuration(),
	}
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

// Dependencies are the provider clients shared by every session.
type Dependencies struct {
	Searcher  Searcher
	Replier   ReplyGenerator
	Extractor OfferExtractor
}

// Store keeps sessions in memory and drops those idle longer than the timeout.
type Store struct {
	deps   Dependencies
	idle   time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	done      chan struct{}
	sweeper   sync.WaitGroup
	fetches   sync.WaitGroup // background loan fetches of every session, evicted or not
	closeOnce sync.Once
}

// NewStore creates a store and starts its expiry sweeper. Call Close to stop it.
func NewStore(deps Dependencies, idle time.Duration, logger *zap.Logger) *Store {
	return newStore(deps, idle, logger, time.Now)
}

func newStore(deps Dependencies, idle time.Duration, logger *zap.Logger, now func() time.Time) *Store {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	s := &Store{
		deps:     deps,
		idle:     idle,
		logger:   logging.OrNop(logger),
		now:      now,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}

	s.sweeper.Add(1)
	go s.sweepLoop(max(idle/4, time.Second))
	return s
}

// Create starts a new session with the chat greeting in place.
func (s *Store) Create() *Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Property:  NewPropertyController(s.deps.Searcher, s.logger),
		Loan:      NewLoanController(s.deps.Searcher, s.deps.Extractor, s.logger),
		Chat:      NewChatController(s.deps.Replier, s.logger),
		lastSeen:  now,
	}
	sess.Loan.tracker = &s.fetches
	sess.Chat.Start()

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.logger.Debug("session created", zap.String("session_id", sess.ID))
	return sess
}

// Get returns the session and marks it as seen.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, models.ErrSessionNotFound
	}

	now := s.now()
	if now.Sub(sess.LastSeen()) > s.idle {
		s.Delete(id)
		return nil, models.ErrSessionExpired
	}
	sess.touch(now)
	return sess, nil
}

// ExpiresAt reports when sess will be dropped if left untouched.
func (s *Store) ExpiresAt(sess *Session) time.Time {
	return sess.LastSeen().Add(s.idle)
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the sweeper and waits for background loan fetches to finish,
// including those of sessions that expired while fetching.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.sweeper.Wait()
	s.fetches.Wait()
}

func (s *Store) sweepLoop(interval time.Duration) {
	defer s.sweeper.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.logger.Info("expired sessions removed", zap.Int("count", n), zap.Int("remaining", s.Len()))
			}
		}
	}
}

// sweep removes every session idle longer than the timeout.
func (s *Store) sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastSeen()) > s.idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
