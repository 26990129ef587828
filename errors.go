package lotofacil

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"strings"
	"time"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 错误代码常量
const (
	// 系统级错误 (1000-1999)
	ErrCodeSystem        ErrorCode = "LOTOFACIL_1000"
	ErrCodeConfigInvalid ErrorCode = "LOTOFACIL_1001"

	// 参数校验错误 (2000-2999)
	ErrCodeInvalidParameters       ErrorCode = "LOTOFACIL_2000"
	ErrCodeInvalidCount            ErrorCode = "LOTOFACIL_2001"
	ErrCodeInvalidStrategy         ErrorCode = "LOTOFACIL_2002"
	ErrCodeInvalidGeneratorTimeout ErrorCode = "LOTOFACIL_2003"
	ErrCodeInvalidRetryAttempts    ErrorCode = "LOTOFACIL_2004"
	ErrCodeInvalidRetryInterval    ErrorCode = "LOTOFACIL_2005"
	ErrCodeInvalidHistoryTTL       ErrorCode = "LOTOFACIL_2006"
	ErrCodeInvalidHistoryBackend   ErrorCode = "LOTOFACIL_2007"
	ErrCodeInvalidRateLimit        ErrorCode = "LOTOFACIL_2008"

	// 远程生成服务错误 (3000-3999)
	ErrCodeTransportFailure   ErrorCode = "LOTOFACIL_3000"
	ErrCodeBackendStatus      ErrorCode = "LOTOFACIL_3001"
	ErrCodeRateLimited        ErrorCode = "LOTOFACIL_3002"
	ErrCodeCircuitBreakerOpen ErrorCode = "LOTOFACIL_3003"
	ErrCodeMissingAPIKey      ErrorCode = "LOTOFACIL_3004"

	// 响应格式错误 (4000-4999)
	ErrCodeSchemaViolation ErrorCode = "LOTOFACIL_4000"
	ErrCodeInvalidGame     ErrorCode = "LOTOFACIL_4001"

	// 会话历史与锁错误 (5000-5999)
	ErrCodeHistoryUnavailable    ErrorCode = "LOTOFACIL_5000"
	ErrCodeLockAcquisitionFailed ErrorCode = "LOTOFACIL_5001"
	ErrCodeLockReleaseFailure    ErrorCode = "LOTOFACIL_5002"
)

// ErrorKind groups error codes into the taxonomy callers care about
type ErrorKind string

const (
	KindSystem     ErrorKind = "system"
	KindValidation ErrorKind = "validation"
	KindTransport  ErrorKind = "transport"
	KindSchema     ErrorKind = "schema"
)

// ErrorSeverity 错误严重程度
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "critical"
	SeverityHigh     ErrorSeverity = "high"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityLow      ErrorSeverity = "low"
	SeverityInfo     ErrorSeverity = "info"
)

// Error 增强的错误类型
type Error struct {
	Code       ErrorCode      `json:"code"`
	Kind       ErrorKind      `json:"kind"`
	Message    string         `json:"message"`
	Details    string         `json:"details,omitempty"`
	Severity   ErrorSeverity  `json:"severity"`
	Timestamp  time.Time      `json:"timestamp"`
	SessionID  string         `json:"session_id,omitempty"`
	Operation  string         `json:"operation,omitempty"`
	StackTrace string         `json:"stack_trace,omitempty"`
	Cause      error          `json:"-"`
	Retryable  bool           `json:"retryable"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap 接口
func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error carrying the same code
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// clone copies the error so the predefined sentinels are never mutated
func (e *Error) clone() *Error {
	c := *e
	c.Timestamp = time.Now()
	if e.Metadata != nil {
		c.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// WithCause 添加原因错误
func (e *Error) WithCause(cause error) *Error {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetails 添加详细信息
func (e *Error) WithDetails(details string) *Error {
	c := e.clone()
	c.Details = details
	return c
}

// WithSessionID 添加会话ID
func (e *Error) WithSessionID(sessionID string) *Error {
	c := e.clone()
	c.SessionID = sessionID
	return c
}

// WithOperation 添加操作信息
func (e *Error) WithOperation(operation string) *Error {
	c := e.clone()
	c.Operation = operation
	return c
}

// WithMetadata 添加元数据
func (e *Error) WithMetadata(key string, value any) *Error {
	c := e.clone()
	if c.Metadata == nil {
		c.Metadata = make(map[string]any)
	}
	c.Metadata[key] = value
	return c
}

// WithStackTrace 添加堆栈跟踪
func (e *Error) WithStackTrace() *Error {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	c := e.clone()
	c.StackTrace = string(buf[:n])
	return c
}

// NewError 创建新的错误
func NewError(code ErrorCode, kind ErrorKind, message string) *Error {
	return &Error{
		Code:      code,
		Kind:      kind,
		Message:   message,
		Severity:  SeverityMedium,
		Timestamp: time.Now(),
	}
}

// NewRetryableError 创建可重试的错误
func NewRetryableError(code ErrorCode, kind ErrorKind, message string) *Error {
	err := NewError(code, kind, message)
	err.Retryable = true
	return err
}

// NewCriticalError 创建严重错误
func NewCriticalError(code ErrorCode, kind ErrorKind, message string) *Error {
	err := NewError(code, kind, message)
	err.Severity = SeverityCritical
	return err.WithStackTrace()
}

// 预定义的错误实例
var (
	// 系统级错误
	ErrSystemError   = NewCriticalError(ErrCodeSystem, KindSystem, "system error occurred")
	ErrConfigInvalid = NewCriticalError(ErrCodeConfigInvalid, KindSystem, "configuration is invalid")

	// 参数校验错误
	ErrInvalidParameters       = NewError(ErrCodeInvalidParameters, KindValidation, "invalid parameters provided")
	ErrInvalidCount            = NewError(ErrCodeInvalidCount, KindValidation, "invalid count: must be greater than 0")
	ErrInvalidStrategy         = NewError(ErrCodeInvalidStrategy, KindValidation, "invalid strategy: unknown strategy id")
	ErrInvalidGeneratorTimeout = NewError(ErrCodeInvalidGeneratorTimeout, KindValidation, "invalid generator timeout: must be between 1s and 5m")
	ErrInvalidRetryAttempts    = NewError(ErrCodeInvalidRetryAttempts, KindValidation, "invalid retry attempts: must be between 0 and 5")
	ErrInvalidRetryInterval    = NewError(ErrCodeInvalidRetryInterval, KindValidation, "invalid retry interval: cannot be negative")
	ErrInvalidHistoryTTL       = NewError(ErrCodeInvalidHistoryTTL, KindValidation, "invalid history TTL: must be between 1m and 7d")
	ErrInvalidHistoryBackend   = NewError(ErrCodeInvalidHistoryBackend, KindValidation, "invalid history backend: must be memory or redis")
	ErrInvalidRateLimit        = NewError(ErrCodeInvalidRateLimit, KindValidation, "invalid rate limit: cannot be negative")

	// 远程生成服务错误
	ErrTransportFailure   = NewRetryableError(ErrCodeTransportFailure, KindTransport, "generation backend unreachable")
	ErrBackendStatus      = NewError(ErrCodeBackendStatus, KindTransport, "generation backend returned an error status")
	ErrRateLimited        = NewError(ErrCodeRateLimited, KindTransport, "generation backend rate limit wait failed")
	ErrCircuitBreakerOpen = NewRetryableError(ErrCodeCircuitBreakerOpen, KindTransport, "circuit breaker is open")
	ErrMissingAPIKey      = NewError(ErrCodeMissingAPIKey, KindTransport, "generation backend API key is not configured")

	// 响应格式错误
	ErrSchemaViolation = NewError(ErrCodeSchemaViolation, KindSchema, "backend response violates the game schema")
	ErrInvalidGame     = NewError(ErrCodeInvalidGame, KindSchema, "game violates the combination invariant")

	// 会话历史与锁错误
	ErrHistoryUnavailable    = NewRetryableError(ErrCodeHistoryUnavailable, KindSystem, "session history unavailable")
	ErrLockAcquisitionFailed = NewRetryableError(ErrCodeLockAcquisitionFailed, KindSystem, "failed to acquire session lock")
	ErrLockReleaseFailure    = NewError(ErrCodeLockReleaseFailure, KindSystem, "failed to release session lock")
)

// kindOf returns the taxonomy kind of err, or "" when err is not an *Error
func kindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsValidationError reports whether err is a caller-input error
func IsValidationError(err error) bool { return kindOf(err) == KindValidation }

// IsTransportFailure reports whether err came from reaching the generation backend
func IsTransportFailure(err error) bool { return kindOf(err) == KindTransport }

// IsSchemaViolation reports whether err came from an unusable backend payload
func IsSchemaViolation(err error) bool { return kindOf(err) == KindSchema }

// ErrorHandler 错误处理器接口
type ErrorHandler interface {
	HandleError(ctx context.Context, err error) error
	ShouldRetry(err error) bool
	GetRetryDelay(attempt int, err error) time.Duration
}

// DefaultErrorHandler 默认错误处理器
type DefaultErrorHandler struct {
	logger        Logger
	baseDelay     time.Duration
	maxDelay      time.Duration
	backoffFactor float64
}

// NewDefaultErrorHandler 创建默认错误处理器
func NewDefaultErrorHandler(logger Logger, baseDelay time.Duration) *DefaultErrorHandler {
	if baseDelay <= 0 {
		baseDelay = DefaultGeneratorRetryInterval
	}
	return &DefaultErrorHandler{
		logger:        logger,
		baseDelay:     baseDelay,
		maxDelay:      MaxRetryDelay,
		backoffFactor: 2.0,
	}
}

type sessionIDKey struct{}

// ContextWithSessionID attaches a session id that error handling copies into *Error
func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// SessionIDFromContext returns the session id set by ContextWithSessionID
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

// HandleError 处理错误
func (h *DefaultErrorHandler) HandleError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var lerr *Error
	if !errors.As(err, &lerr) {
		// 包装普通错误
		lerr = ErrTransportFailure.WithDetails(err.Error()).WithCause(err)
		lerr.Retryable = IsRetryableError(err)
	}

	if id := SessionIDFromContext(ctx); id != "" {
		lerr = lerr.WithSessionID(id)
	}

	h.logError(lerr)
	return lerr
}

// ShouldRetry 判断是否应该重试
func (h *DefaultErrorHandler) ShouldRetry(err error) bool {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Retryable
	}
	return IsRetryableError(err)
}

// GetRetryDelay 获取重试延迟
func (h *DefaultErrorHandler) GetRetryDelay(attempt int, err error) time.Duration {
	if attempt <= 0 {
		return h.baseDelay
	}

	// 指数退避算法
	delay := time.Duration(float64(h.baseDelay) * math.Pow(h.backoffFactor, float64(attempt-1)))

	// 添加抖动 (±25%)
	jitter := time.Duration(float64(delay) * 0.25 * (2*rand.Float64() - 1))
	delay += jitter

	if delay > h.maxDelay {
		delay = h.maxDelay
	}
	return delay
}

// logError 记录错误日志
func (h *DefaultErrorHandler) logError(err *Error) {
	if h.logger == nil {
		return
	}

	switch err.Severity {
	case SeverityCritical, SeverityHigh:
		h.logger.Error("%s error (session=%s): %s", err.Severity, err.SessionID, err.Error())
	case SeverityLow, SeverityInfo:
		h.logger.Info("%s error (session=%s): %s", err.Severity, err.SessionID, err.Error())
	default:
		h.logger.Debug("backend error (session=%s, retryable=%t): %s", err.SessionID, err.Retryable, err.Error())
	}
}

// IsRetryableError 检查是否为可重试错误
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	// The caller gave up; retrying cannot help.
	if errors.Is(err, context.Canceled) {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"network is unreachable",
		"temporary failure",
		"server closed",
		"broken pipe",
		"i/o timeout",
		"dial tcp",
		"read tcp",
		"write tcp",
		"connection timed out",
		"no route to host",
		"host is down",
		"connection aborted",
		"unexpected eof",
		"operation timed out",
		"redis: connection pool timeout",
		"context deadline exceeded",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// ErrorRecovery 错误恢复策略
type ErrorRecovery struct {
	handler    ErrorHandler
	maxRetries int
	logger     Logger
}

// NewErrorRecovery 创建错误恢复策略
func NewErrorRecovery(handler ErrorHandler, maxRetries int, logger Logger) *ErrorRecovery {
	return &ErrorRecovery{
		handler:    handler,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// ExecuteWithRetry 执行带重试的操作
func (r *ErrorRecovery) ExecuteWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ErrTransportFailure.WithDetails("operation cancelled").WithCause(ctx.Err())
		default:
		}

		err := operation()
		if err == nil {
			if attempt > 0 {
				r.logger.Info("Operation succeeded after %d retries", attempt)
			}
			return nil
		}

		lastErr = r.handler.HandleError(ctx, err)
		if !r.handler.ShouldRetry(lastErr) {
			r.logger.Debug("Error is not retryable: %v", lastErr)
			return lastErr
		}

		if attempt < r.maxRetries {
			delay := r.handler.GetRetryDelay(attempt+1, lastErr)
			r.logger.Debug("Retrying operation in %v (attempt %d/%d)", delay, attempt+1, r.maxRetries)

			select {
			case <-ctx.Done():
				return ErrTransportFailure.WithDetails("operation cancelled during retry").WithCause(ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return ErrTransportFailure.
		WithDetails(fmt.Sprintf("operation failed after %d attempts", r.maxRetries+1)).
		WithCause(lastErr)
}
