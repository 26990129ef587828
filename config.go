package lotofacil

import (
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
)

// Config 生产环境配置结构
type Config struct {
	// 生成服务配置
	Generator *GeneratorConfig `mapstructure:"generator"`

	// 会话历史配置
	History *HistoryConfig `mapstructure:"history"`

	// Redis 配置
	Redis *RedisConfig `mapstructure:"redis"`

	// 熔断器配置
	CircuitBreaker *CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Generator == nil || c.History == nil || c.Redis == nil || c.CircuitBreaker == nil {
		return ErrConfigInvalid.WithDetails("missing configuration section")
	}

	if err := c.Generator.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}

	// Redis is only needed for the redis history backend
	if c.History.Backend == HistoryBackendRedis {
		if c.Redis.Addr == "" {
			return ErrConfigInvalid.WithDetails("redis address is required")
		}
		if c.Redis.PoolSize <= 0 {
			return ErrConfigInvalid.WithDetails("redis pool size must be positive")
		}
	}

	if c.CircuitBreaker.Enabled {
		if c.CircuitBreaker.FailureRatio <= 0 || c.CircuitBreaker.FailureRatio > 1 {
			return ErrConfigInvalid.WithDetails("circuit breaker failure ratio must be in (0,1]")
		}
	}
	return nil
}

// GeneratorConfig configures the remote generation backend
type GeneratorConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	Model         string        `mapstructure:"model"`
	APIKey        string        `mapstructure:"api_key"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	RateLimit     float64       `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst     int           `mapstructure:"rate_burst"`
}

// DefaultGeneratorConfig 返回默认生成服务配置
func DefaultGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		Endpoint:      DefaultGeneratorEndpoint,
		Model:         DefaultGeneratorModel,
		Timeout:       DefaultGeneratorTimeout,
		RetryAttempts: DefaultGeneratorRetryAttempts,
		RetryInterval: DefaultGeneratorRetryInterval,
		RateLimit:     DefaultGeneratorRateLimit,
		RateBurst:     DefaultGeneratorRateBurst,
	}
}

// Validate validates the generator configuration
func (g *GeneratorConfig) Validate() error {
	if g.Endpoint == "" || g.Model == "" {
		return ErrConfigInvalid.WithDetails("generator endpoint and model are required")
	}
	if g.Timeout < time.Second || g.Timeout > 5*time.Minute {
		return ErrInvalidGeneratorTimeout
	}
	if g.RetryAttempts < 0 || g.RetryAttempts > MaxGeneratorRetryAttempts {
		return ErrInvalidRetryAttempts
	}
	if g.RetryInterval < 0 {
		return ErrInvalidRetryInterval
	}
	if g.RateLimit < 0 || g.RateBurst < 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

// MaxCallDuration is the worst case of one backend call: every attempt runs
// to its timeout after a rate-limit wait, with the largest jittered backoff
// between attempts.
func (g *GeneratorConfig) MaxCallDuration() time.Duration {
	attempts := time.Duration(g.RetryAttempts + 1)
	total := attempts * g.Timeout

	if g.RateLimit > 0 {
		total += attempts * time.Duration(float64(time.Second)/g.RateLimit)
	}

	delay := g.RetryInterval
	if delay <= 0 {
		delay = DefaultGeneratorRetryInterval
	}
	for range g.RetryAttempts {
		total += min(delay+delay/4, MaxRetryDelay)
		delay *= 2
	}
	return total
}

// LockExpiration sizes the session lock so that it outlives the generation
// it guards; it is never shorter than DefaultLockExpiration.
func (g *GeneratorConfig) LockExpiration() time.Duration {
	return max(DefaultLockExpiration, g.MaxCallDuration()+LockExpirationMargin)
}

// HistoryConfig configures where session history lives
type HistoryConfig struct {
	Backend     string        `mapstructure:"backend"` // memory | redis
	TTL         time.Duration `mapstructure:"ttl"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// DefaultHistoryConfig 返回默认会话历史配置
func DefaultHistoryConfig() *HistoryConfig {
	return &HistoryConfig{
		Backend:     HistoryBackendMemory,
		TTL:         DefaultHistoryTTL,
		LockTimeout: DefaultLockTimeout,
	}
}

// Validate validates the history configuration
func (h *HistoryConfig) Validate() error {
	switch h.Backend {
	case HistoryBackendMemory:
		return nil
	case HistoryBackendRedis:
	default:
		return ErrInvalidHistoryBackend.WithDetails(h.Backend)
	}

	if h.TTL < MinHistoryTTL || h.TTL > MaxHistoryTTL {
		return ErrInvalidHistoryTTL
	}
	if h.LockTimeout < 0 {
		return ErrConfigInvalid.WithDetails("history lock timeout cannot be negative")
	}
	return nil
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 连接配置
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// 连接池配置
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
	MaxRetries   int `mapstructure:"max_retries"`

	// 超时配置
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`

	// TLS 配置
	TLSEnabled bool `mapstructure:"tls_enabled"`
}

// DefaultRedisConfig 返回默认的Redis配置
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:         DefaultRedisAddr,
		Password:     DefaultRedisPassword,
		DB:           DefaultRedisDB,
		PoolSize:     DefaultRedisPoolSize,
		MinIdleConns: DefaultRedisMinIdleConns,
		MaxRetries:   DefaultRedisMaxRetries,
		DialTimeout:  DefaultRedisDialTimeout,
		ReadTimeout:  DefaultRedisReadTimeout,
		WriteTimeout: DefaultRedisWriteTimeout,
		PoolTimeout:  DefaultRedisPoolTimeout,
	}
}

// NewRedisClientFromConfig 从配置创建Redis客户端
func NewRedisClientFromConfig(config *RedisConfig) *redis.Client {
	if config == nil {
		config = DefaultRedisConfig()
	}

	options := &redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
	}
	if config.TLSEnabled {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return redis.NewClient(options)
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Name          string        `mapstructure:"name"`
	MaxRequests   uint32        `mapstructure:"max_requests"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FailureRatio  float64       `mapstructure:"failure_ratio"`
	MinRequests   uint32        `mapstructure:"min_requests"`
	OnStateChange bool          `mapstructure:"on_state_change"`
}

// DefaultCircuitBreakerConfig 返回默认熔断器配置
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Enabled:       true,
		Name:          DefaultCircuitBreakerName,
		MaxRequests:   DefaultCircuitBreakerMaxRequests,
		Interval:      DefaultCircuitBreakerInterval,
		Timeout:       DefaultCircuitBreakerTimeout,
		FailureRatio:  DefaultCircuitBreakerFailureRatio,
		MinRequests:   DefaultCircuitBreakerMinRequests,
		OnStateChange: DefaultCircuitBreakerOnStateChange,
	}
}

// DefaultConfig 返回完整的默认配置
func DefaultConfig() *Config {
	return &Config{
		Generator:      DefaultGeneratorConfig(),
		History:        DefaultHistoryConfig(),
		Redis:          DefaultRedisConfig(),
		CircuitBreaker: DefaultCircuitBreakerConfig(),
	}
}

// ConfigManager 配置管理器
type ConfigManager struct {
	viper  *viper.Viper
	mu     sync.RWMutex
	config *Config
	logger Logger
}

// NewConfigManager 创建配置管理器
func NewConfigManager() *ConfigManager {
	v := viper.New()

	// 设置配置文件名和路径
	v.SetConfigName("lotofacil")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/lotofacil")
	v.AddConfigPath("$HOME/.lotofacil")

	// 设置环境变量前缀
	v.SetEnvPrefix("LOTOFACIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the key is also accepted under the names the hosted web app used
	_ = v.BindEnv("generator.api_key", "LOTOFACIL_GENERATOR_API_KEY", "GEMINI_API_KEY", "API_KEY")

	return &ConfigManager{
		viper:  v,
		logger: NewSilentLogger(),
	}
}

// NewConfigManagerFromFile 创建读取指定配置文件的配置管理器
func NewConfigManagerFromFile(path string) *ConfigManager {
	cm := NewConfigManager()
	cm.viper.SetConfigFile(path)
	return cm
}

// NewDefaultConfigManager 创建默认配置管理器 (不读取文件)
func NewDefaultConfigManager() *ConfigManager {
	cm := NewConfigManager()
	cm.setDefaults()
	cm.config = DefaultConfig()
	return cm
}

// SetLogger sets the logger used to report reload problems
func (cm *ConfigManager) SetLogger(logger Logger) {
	if logger != nil {
		cm.logger = logger
	}
}

// LoadConfig 加载配置
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	cm.setDefaults()

	if err := cm.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// 配置文件不存在时使用默认配置
	}

	config, err := cm.decode()
	if err != nil {
		return nil, err
	}

	cm.mu.Lock()
	cm.config = config
	cm.mu.Unlock()
	return config, nil
}

// decode unmarshals and validates the current viper state
func (cm *ConfigManager) decode() (*Config, error) {
	config := &Config{}
	if err := cm.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// setDefaults 设置默认配置值
func (cm *ConfigManager) setDefaults() {
	d := DefaultConfig()

	// 生成服务默认配置
	cm.viper.SetDefault("generator.endpoint", d.Generator.Endpoint)
	cm.viper.SetDefault("generator.model", d.Generator.Model)
	cm.viper.SetDefault("generator.api_key", "")
	cm.viper.SetDefault("generator.timeout", d.Generator.Timeout.String())
	cm.viper.SetDefault("generator.retry_attempts", d.Generator.RetryAttempts)
	cm.viper.SetDefault("generator.retry_interval", d.Generator.RetryInterval.String())
	cm.viper.SetDefault("generator.rate_limit", d.Generator.RateLimit)
	cm.viper.SetDefault("generator.rate_burst", d.Generator.RateBurst)

	// 会话历史默认配置
	cm.viper.SetDefault("history.backend", d.History.Backend)
	cm.viper.SetDefault("history.ttl", d.History.TTL.String())
	cm.viper.SetDefault("history.lock_timeout", d.History.LockTimeout.String())

	// Redis 默认配置
	cm.viper.SetDefault("redis.addr", d.Redis.Addr)
	cm.viper.SetDefault("redis.password", d.Redis.Password)
	cm.viper.SetDefault("redis.db", d.Redis.DB)
	cm.viper.SetDefault("redis.pool_size", d.Redis.PoolSize)
	cm.viper.SetDefault("redis.min_idle_conns", d.Redis.MinIdleConns)
	cm.viper.SetDefault("redis.max_retries", d.Redis.MaxRetries)
	cm.viper.SetDefault("redis.dial_timeout", d.Redis.DialTimeout.String())
	cm.viper.SetDefault("redis.read_timeout", d.Redis.ReadTimeout.String())
	cm.viper.SetDefault("redis.write_timeout", d.Redis.WriteTimeout.String())
	cm.viper.SetDefault("redis.pool_timeout", d.Redis.PoolTimeout.String())
	cm.viper.SetDefault("redis.tls_enabled", false)

	// 熔断器默认配置
	cm.viper.SetDefault("circuit_breaker.enabled", d.CircuitBreaker.Enabled)
	cm.viper.SetDefault("circuit_breaker.name", d.CircuitBreaker.Name)
	cm.viper.SetDefault("circuit_breaker.max_requests", d.CircuitBreaker.MaxRequests)
	cm.viper.SetDefault("circuit_breaker.interval", d.CircuitBreaker.Interval.String())
	cm.viper.SetDefault("circuit_breaker.timeout", d.CircuitBreaker.Timeout.String())
	cm.viper.SetDefault("circuit_breaker.failure_ratio", d.CircuitBreaker.FailureRatio)
	cm.viper.SetDefault("circuit_breaker.min_requests", d.CircuitBreaker.MinRequests)
	cm.viper.SetDefault("circuit_breaker.on_state_change", d.CircuitBreaker.OnStateChange)
}

// WatchConfig 监听配置变化; invalid reloads are logged and ignored
func (cm *ConfigManager) WatchConfig(callback func(*Config)) {
	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		config, err := cm.decode()
		if err != nil {
			cm.logger.Error("Ignoring config change from %s: %v", e.Name, err)
			return
		}

		cm.mu.Lock()
		cm.config = config
		cm.mu.Unlock()

		cm.logger.Info("Configuration reloaded from %s", e.Name)
		if callback != nil {
			callback(config)
		}
	})
	cm.viper.WatchConfig()
}

// GetConfig 获取当前配置
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ReloadConfig 重新加载配置
func (cm *ConfigManager) ReloadConfig() (*Config, error) { return cm.LoadConfig() }
