package lotofacil

import (
	"context"
	"sync"
)

// Session orchestrates generations for one user session: it owns the session
// history, serializes generations and records every game it hands out.
type Session struct {
	id      string
	client  *GenerationClient
	history HistoryStore
	locker  Locker
	logger  Logger

	// one generation at a time per session
	mu sync.Mutex
}

// NewSession creates a session with a fresh id.
// A nil history uses an in-memory history.
func NewSession(client *GenerationClient, history HistoryStore, logger Logger) *Session {
	return NewSessionWithID(NewSessionID(), client, history, logger)
}

// NewSessionWithID creates a session bound to an existing session id
func NewSessionWithID(id string, client *GenerationClient, history HistoryStore, logger Logger) *Session {
	if history == nil {
		history = NewMemoryHistory()
	}
	if logger == nil {
		logger = &DefaultLogger{}
	}
	if client == nil {
		client = NewGenerationClient(nil, logger)
	}
	return &Session{
		id:      id,
		client:  client,
		history: history,
		logger:  logger,
	}
}

// SetLocker installs a cross-process lock taken around each generation.
// The lock is advisory: when it cannot be acquired the generation still runs.
func (s *Session) SetLocker(locker Locker) { s.locker = locker }

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Client returns the generation client used by the session
func (s *Session) Client() *GenerationClient { return s.client }

// Generate returns exactly count games for strategy and appends them to the
// session history. The only error it returns is a validation error, raised
// before any backend call.
func (s *Session) Generate(ctx context.Context, count int, strategy Strategy) ([]Game, error) {
	// validate before touching history or backend
	if _, err := NewGenerationRequest(count, strategy, nil); err != nil {
		s.logger.Debug("Generate rejected: session=%s, count=%d, strategy=%s, error=%v", s.id, count, strategy, err)
		return nil, err
	}

	ctx = ContextWithSessionID(ctx, s.id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if release := s.acquire(ctx); release != nil {
		defer release()
	}

	snapshot, err := s.history.Snapshot(ctx)
	if err != nil {
		// exclusion is advisory; generate without it
		s.logger.Error("Session history unavailable, generating without exclusions: session=%s, error=%v", s.id, err)
		snapshot = nil
	}

	req, err := NewGenerationRequest(count, strategy, snapshot)
	if err != nil {
		return nil, err
	}

	games := s.client.Generate(ctx, req)

	for i := range games {
		if err := s.history.Record(ctx, games[i].Numbers); err != nil {
			s.logger.Error("Failed to record game in session history: session=%s, numbers=%s, error=%v",
				s.id, games[i].Format(), err)
		}
	}

	s.logger.Info("Session %s generated %d games with strategy %s (history=%d)",
		s.id, len(games), strategy, len(snapshot)+len(games))

	out := make([]Game, len(games))
	for i := range games {
		out[i] = games[i].Clone()
	}
	return out, nil
}

// QuickGame generates a single BALANCED game
func (s *Session) QuickGame(ctx context.Context) (Game, error) {
	games, err := s.Generate(ctx, 1, StrategyBalanced)
	if err != nil {
		return Game{}, err
	}
	return games[0], nil
}

// History returns the combinations produced in this session, oldest first
func (s *Session) History(ctx context.Context) ([][]int, error) {
	return s.history.Snapshot(ctx)
}

// acquire takes the distributed session lock, returning nil when there is none
func (s *Session) acquire(ctx context.Context) func() {
	if s.locker == nil {
		return nil
	}

	release, err := s.locker.Acquire(ctx, s.id)
	if err != nil {
		s.logger.Error("Session lock not acquired, continuing unlocked: session=%s, error=%v", s.id, err)
		return nil
	}

	return func() {
		// release even if the caller's context is already done
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("Failed to release session lock: session=%s, error=%v", s.id, err)
		}
	}
}
