package lotofacil

import (
	"sync"
	"sync/atomic"
	"time"
)

// GenerationMetrics 生成性能指标
type GenerationMetrics struct {
	// 生成请求统计
	TotalGenerations  int64 `json:"total_generations"`  // 总生成请求数
	BackendSuccesses  int64 `json:"backend_successes"`  // 后端成功次数
	Fallbacks         int64 `json:"fallbacks"`          // 回退次数
	TransportFailures int64 `json:"transport_failures"` // 传输失败次数
	SchemaViolations  int64 `json:"schema_violations"`  // 响应格式错误次数
	GamesProduced     int64 `json:"games_produced"`     // 生成的游戏总数

	// 性能统计
	AverageLatency int64 `json:"average_latency"` // 平均耗时(纳秒)
	TotalLatency   int64 `json:"total_latency"`   // 总耗时(纳秒)

	// 时间戳
	StartTime      int64 `json:"start_time"`
	LastUpdateTime int64 `json:"last_update_time"`
}

// FallbackRate 获取回退率 (百分比)
func (m *GenerationMetrics) FallbackRate() float64 {
	total := atomic.LoadInt64(&m.TotalGenerations)
	if total == 0 {
		return 0.0
	}
	return float64(atomic.LoadInt64(&m.Fallbacks)) / float64(total) * 100.0
}

// Reset 重置性能指标
func (m *GenerationMetrics) Reset() {
	atomic.StoreInt64(&m.TotalGenerations, 0)
	atomic.StoreInt64(&m.BackendSuccesses, 0)
	atomic.StoreInt64(&m.Fallbacks, 0)
	atomic.StoreInt64(&m.TransportFailures, 0)
	atomic.StoreInt64(&m.SchemaViolations, 0)
	atomic.StoreInt64(&m.GamesProduced, 0)
	atomic.StoreInt64(&m.AverageLatency, 0)
	atomic.StoreInt64(&m.TotalLatency, 0)
	atomic.StoreInt64(&m.StartTime, time.Now().UnixNano())
	atomic.StoreInt64(&m.LastUpdateTime, time.Now().UnixNano())
}

// GenerationOutcome classifies how a generation was satisfied
type GenerationOutcome int

const (
	OutcomeBackend GenerationOutcome = iota
	OutcomeTransportFailure
	OutcomeSchemaViolation
)

// GenerationMonitor 性能监控器
type GenerationMonitor struct {
	metrics *GenerationMetrics
	mu      sync.RWMutex
	enabled bool
}

// NewGenerationMonitor 创建新的性能监控器
func NewGenerationMonitor() *GenerationMonitor {
	m := &GenerationMonitor{
		metrics: &GenerationMetrics{},
		enabled: true,
	}
	m.metrics.Reset()
	return m
}

// Enable 启用性能监控
func (m *GenerationMonitor) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = true
}

// Disable 禁用性能监控
func (m *GenerationMonitor) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = false
}

// IsEnabled 检查是否启用了性能监控
func (m *GenerationMonitor) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// RecordGeneration 记录一次生成
func (m *GenerationMonitor) RecordGeneration(outcome GenerationOutcome, games int, duration time.Duration) {
	if !m.IsEnabled() {
		return
	}

	atomic.AddInt64(&m.metrics.TotalGenerations, 1)
	atomic.AddInt64(&m.metrics.GamesProduced, int64(games))
	atomic.AddInt64(&m.metrics.TotalLatency, int64(duration))

	switch outcome {
	case OutcomeBackend:
		atomic.AddInt64(&m.metrics.BackendSuccesses, 1)
	case OutcomeTransportFailure:
		atomic.AddInt64(&m.metrics.Fallbacks, 1)
		atomic.AddInt64(&m.metrics.TransportFailures, 1)
	case OutcomeSchemaViolation:
		atomic.AddInt64(&m.metrics.Fallbacks, 1)
		atomic.AddInt64(&m.metrics.SchemaViolations, 1)
	}

	total := atomic.LoadInt64(&m.metrics.TotalGenerations)
	totalLatency := atomic.LoadInt64(&m.metrics.TotalLatency)
	atomic.StoreInt64(&m.metrics.AverageLatency, totalLatency/total)
	atomic.StoreInt64(&m.metrics.LastUpdateTime, time.Now().UnixNano())
}

// Metrics 获取性能指标的副本
func (m *GenerationMonitor) Metrics() GenerationMetrics {
	return GenerationMetrics{
		TotalGenerations:  atomic.LoadInt64(&m.metrics.TotalGenerations),
		BackendSuccesses:  atomic.LoadInt64(&m.metrics.BackendSuccesses),
		Fallbacks:         atomic.LoadInt64(&m.metrics.Fallbacks),
		TransportFailures: atomic.LoadInt64(&m.metrics.TransportFailures),
		SchemaViolations:  atomic.LoadInt64(&m.metrics.SchemaViolations),
		GamesProduced:     atomic.LoadInt64(&m.metrics.GamesProduced),
		AverageLatency:    atomic.LoadInt64(&m.metrics.AverageLatency),
		TotalLatency:      atomic.LoadInt64(&m.metrics.TotalLatency),
		StartTime:         atomic.LoadInt64(&m.metrics.StartTime),
		LastUpdateTime:    atomic.LoadInt64(&m.metrics.LastUpdateTime),
	}
}

// ResetMetrics 重置性能指标
func (m *GenerationMonitor) ResetMetrics() { m.metrics.Reset() }
