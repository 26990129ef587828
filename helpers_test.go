package lotofacil

import (
	"context"
	"encoding/json"
	"sync"
)

// testNumbers returns a valid combination starting at start (1 <= start <= 11)
func testNumbers(start int) []int {
	numbers := make([]int, GameSize)
	for i := range numbers {
		numbers[i] = start + i
	}
	return numbers
}

func testGame(start int, strategy Strategy) Game {
	return Game{
		Numbers:     testNumbers(start),
		Probability: "1 em 3.268.760",
		Strategy:    strategy,
		Methodology: "Análise de Moldura",
		Analysis:    "Moldura com 10 dezenas e divisão 8/7.",
	}
}

// testPayload encodes count valid games the way a well-behaved backend would
func testPayload(count int, strategy Strategy) []byte {
	games := make([]Game, count)
	for i := range games {
		games[i] = testGame(1+i%11, strategy)
	}
	data, _ := json.Marshal(games)
	return data
}

// recordingBackend returns a fixed answer and remembers the requests it saw
type recordingBackend struct {
	mu       sync.Mutex
	requests []*GenerationRequest
	payload  func(req *GenerationRequest) []byte
	err      error
}

func (b *recordingBackend) Produce(_ context.Context, req *GenerationRequest) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.requests = append(b.requests, req)
	if b.err != nil {
		return nil, b.err
	}
	if b.payload == nil {
		return testPayload(req.Count(), req.Strategy()), nil
	}
	return b.payload(req), nil
}

func (b *recordingBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

// failingSource always errors, forcing the fallback onto its math/rand path
type failingSource struct{}

func (failingSource) GenerateInRange(int, int) (int, error) {
	return 0, ErrSystemError
}

// outOfRangeSource returns values outside the ticket range
type outOfRangeSource struct{}

func (outOfRangeSource) GenerateInRange(int, int) (int, error) {
	return 99, nil
}

// constantSource always returns the same valid number
type constantSource struct{ n int }

func (s constantSource) GenerateInRange(int, int) (int, error) {
	return s.n, nil
}
