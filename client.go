package lotofacil

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GenerationClient obtains games from a GenerationBackend and substitutes
// locally generated games whenever the backend fails or its answer is unusable.
// Generate never fails for a valid request.
type GenerationClient struct {
	backend  GenerationBackend
	fallback *FallbackGenerator
	monitor  *GenerationMonitor
	logger   Logger
}

// NewGenerationClient creates a client; a nil backend always falls back
func NewGenerationClient(backend GenerationBackend, logger Logger) *GenerationClient {
	if logger == nil {
		logger = &DefaultLogger{}
	}
	return &GenerationClient{
		backend:  backend,
		fallback: NewFallbackGenerator(nil),
		monitor:  NewGenerationMonitor(),
		logger:   logger,
	}
}

// SetFallbackSource replaces the random source of the fallback path
func (c *GenerationClient) SetFallbackSource(source RandomSource) {
	c.fallback = NewFallbackGenerator(source)
}

// SetLogger sets a custom logger for the client
func (c *GenerationClient) SetLogger(logger Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Monitor returns the client's generation monitor
func (c *GenerationClient) Monitor() *GenerationMonitor { return c.monitor }

// Generate returns exactly req.Count() games satisfying the combination
// invariant, from the backend when possible and from the fallback otherwise.
func (c *GenerationClient) Generate(ctx context.Context, req *GenerationRequest) []Game {
	start := time.Now()

	payload, err := c.produce(ctx, req)
	if err != nil {
		// a backend may reject its own envelope before handing back a payload
		outcome := OutcomeTransportFailure
		if IsSchemaViolation(err) {
			outcome = OutcomeSchemaViolation
		}
		c.logger.Error("Generation backend failed, using local fallback: count=%d, strategy=%s, error=%v",
			req.Count(), req.Strategy(), err)
		return c.fallbackGames(req, outcome, start)
	}

	games, err := ParseGames(payload, req.Count())
	if err != nil {
		c.logger.Error("Generation backend answer rejected, using local fallback: count=%d, strategy=%s, error=%v",
			req.Count(), req.Strategy(), err)
		return c.fallbackGames(req, OutcomeSchemaViolation, start)
	}

	c.monitor.RecordGeneration(OutcomeBackend, len(games), time.Since(start))
	c.logger.Debug("Generated %d games with strategy=%s in %v", len(games), req.Strategy(), time.Since(start))
	return games
}

// produce calls the backend, turning a panic into a transport failure
func (c *GenerationClient) produce(ctx context.Context, req *GenerationRequest) (payload []byte, err error) {
	if c.backend == nil {
		return nil, ErrTransportFailure.WithDetails("no generation backend configured")
	}

	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = ErrTransportFailure.WithDetails(fmt.Sprintf("backend panic: %v", r))
		}
	}()

	return c.backend.Produce(ctx, req)
}

func (c *GenerationClient) fallbackGames(req *GenerationRequest, outcome GenerationOutcome, start time.Time) []Game {
	games := c.fallback.Generate(req.Count(), req.Strategy())
	c.monitor.RecordGeneration(outcome, len(games), time.Since(start))
	return games
}

// ParseGames strips code fences from payload, decodes it as a JSON array of
// games and validates the batch as a whole.
func ParseGames(payload []byte, count int) ([]Game, error) {
	text := StripCodeFence(string(payload))
	if text == "" {
		return nil, ErrSchemaViolation.WithDetails("empty payload")
	}

	var games []Game
	if err := json.Unmarshal([]byte(text), &games); err != nil {
		return nil, ErrSchemaViolation.WithDetails("payload is not a JSON array of games").WithCause(err)
	}

	if err := validateBatch(games, count); err != nil {
		return nil, err
	}
	return games, nil
}

// validateBatch is fail-closed: one invalid game rejects the whole batch.
// A producer that breaks the contract for one game is not trusted for the rest.
func validateBatch(games []Game, count int) error {
	if len(games) != count {
		return ErrSchemaViolation.WithDetails(fmt.Sprintf("expected %d games, got %d", count, len(games)))
	}

	for i := range games {
		if err := games[i].Validate(); err != nil {
			return ErrSchemaViolation.WithDetails(fmt.Sprintf("game %d: %v", i, err)).WithCause(err)
		}
	}
	return nil
}
