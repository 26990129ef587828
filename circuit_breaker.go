package lotofacil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

// CircuitBreakerBackend 带熔断器的生成后端
//
// While the breaker is open, Produce fails immediately and the client goes
// straight to the local fallback instead of waiting on a dead backend.
type CircuitBreakerBackend struct {
	backend GenerationBackend

	mu      sync.RWMutex
	breaker *gobreaker.CircuitBreaker
	logger  Logger
	config  *CircuitBreakerConfig
}

// NewCircuitBreakerBackend 创建带熔断器的生成后端
func NewCircuitBreakerBackend(backend GenerationBackend, config *CircuitBreakerConfig, logger Logger) *CircuitBreakerBackend {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	c := &CircuitBreakerBackend{
		backend: backend,
		logger:  logger,
		config:  config,
	}
	if config.Enabled {
		c.breaker = c.newBreaker()
	}
	return c
}

func (c *CircuitBreakerBackend) newBreaker() *gobreaker.CircuitBreaker {
	config := c.config
	logger := c.logger

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 当请求数达到最小要求且失败率超过阈值时触发熔断
			return counts.Requests >= config.MinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// a cancelled caller says nothing about backend health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if config.OnStateChange {
				logger.Info("Circuit breaker '%s' state changed from %s to %s", name, from, to)
			}
		},
	})
}

// Produce forwards to the wrapped backend through the breaker
func (c *CircuitBreakerBackend) Produce(ctx context.Context, req *GenerationRequest) ([]byte, error) {
	c.mu.RLock()
	breaker := c.breaker
	c.mu.RUnlock()

	if breaker == nil {
		return c.backend.Produce(ctx, req)
	}

	result, err := breaker.Execute(func() (any, error) {
		return c.backend.Produce(ctx, req)
	})
	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState):
			return nil, ErrCircuitBreakerOpen.WithDetails("circuit breaker is open, requests are being rejected")
		case errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, ErrCircuitBreakerOpen.WithDetails("too many requests, circuit breaker is half-open")
		}
		return nil, err
	}

	return result.([]byte), nil
}

// State 获取熔断器状态
func (c *CircuitBreakerBackend) State() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.breaker == nil {
		return "disabled"
	}

	switch c.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Counts 获取熔断器统计信息
func (c *CircuitBreakerBackend) Counts() gobreaker.Counts {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.breaker == nil {
		return gobreaker.Counts{}
	}
	return c.breaker.Counts()
}

// Reset 重置熔断器 (gobreaker 没有 Reset 方法，重新创建实例)
func (c *CircuitBreakerBackend) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.breaker == nil {
		return
	}
	c.breaker = c.newBreaker()
	c.logger.Info("Circuit breaker '%s' has been reset (recreated)", c.config.Name)
}

// Health 熔断器健康检查
func (c *CircuitBreakerBackend) Health() map[string]any {
	result := map[string]any{
		"circuit_breaker_enabled": c.config.Enabled,
		"timestamp":               time.Now().Unix(),
	}

	state := c.State()
	result["state"] = state
	if state == "disabled" {
		result["healthy"] = true
		return result
	}

	counts := c.Counts()
	result["requests"] = counts.Requests
	result["total_successes"] = counts.TotalSuccesses
	result["total_failures"] = counts.TotalFailures
	result["consecutive_failures"] = counts.ConsecutiveFailures

	if counts.Requests > 0 {
		result["failure_rate"] = float64(counts.TotalFailures) / float64(counts.Requests)
	} else {
		result["failure_rate"] = 0.0
	}

	healthy := true
	switch state {
	case "open":
		healthy = false
	case "half-open":
		// 半开状态下，如果连续失败次数过多，认为不健康
		healthy = counts.ConsecutiveFailures <= 2
	}
	result["healthy"] = healthy

	return result
}
