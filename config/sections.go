package config

import (
	"fmt"
	"time"

	"github.com/dep2p/go-pingnode/internal/core/security"
)

// ============================================================================
//                              Swarm
// ============================================================================

// SwarmConfig 连接管理配置
type SwarmConfig struct {
	// IdleTimeout 无流连接的保留时间，0 表示不限
	IdleTimeout Duration `json:"idle_timeout"`

	DialTimeout        Duration `json:"dial_timeout"`
	NegotiationTimeout Duration `json:"negotiation_timeout"`

	EventBuffer          int `json:"event_buffer"`
	MaxIncomingPerSecond int `json:"max_incoming_per_second"`
}

// DefaultSwarmConfig 返回默认连接管理配置
func DefaultSwarmConfig() SwarmConfig {
	return SwarmConfig{
		IdleTimeout:        0,
		DialTimeout:        Duration(15 * time.Second),
		NegotiationTimeout: Duration(20 * time.Second),
		EventBuffer:        256,
	}
}

// Validate 验证连接管理配置
func (c SwarmConfig) Validate() error {
	switch {
	case c.IdleTimeout < 0:
		return fmt.Errorf("%w: swarm.idle_timeout must not be negative", ErrInvalidConfig)
	case c.DialTimeout <= 0:
		return fmt.Errorf("%w: swarm.dial_timeout must be positive", ErrInvalidConfig)
	case c.NegotiationTimeout <= 0:
		return fmt.Errorf("%w: swarm.negotiation_timeout must be positive", ErrInvalidConfig)
	case c.EventBuffer < 0:
		return fmt.Errorf("%w: swarm.event_buffer must not be negative", ErrInvalidConfig)
	case c.MaxIncomingPerSecond < 0:
		return fmt.Errorf("%w: swarm.max_incoming_per_second must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ============================================================================
//                              Security
// ============================================================================

// SecurityConfig 安全传输配置
type SecurityConfig struct {
	// Order 出站提议顺序，可选 "tls"、"noise"
	Order []string `json:"order"`
}

// DefaultSecurityConfig 返回默认安全配置
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{Order: security.DefaultConfig().Order}
}

// Validate 验证安全配置，规则与安全层一致
func (c SecurityConfig) Validate() error {
	if err := (security.Config{Order: c.Order}).Validate(); err != nil {
		return fmt.Errorf("%w: security.order: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ============================================================================
//                              Ping
// ============================================================================

// PingConfig 存活探测配置
type PingConfig struct {
	Interval    Duration `json:"interval"`
	Timeout     Duration `json:"timeout"`
	MaxFailures int      `json:"max_failures"`
	PayloadSize int      `json:"payload_size"`
}

// DefaultPingConfig 返回默认探测配置
func DefaultPingConfig() PingConfig {
	return PingConfig{
		Interval:    Duration(15 * time.Second),
		Timeout:     Duration(20 * time.Second),
		MaxFailures: 3,
		PayloadSize: 32,
	}
}

// Validate 验证探测配置
func (c PingConfig) Validate() error {
	switch {
	case c.Interval <= 0:
		return fmt.Errorf("%w: ping.interval must be positive", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: ping.timeout must be positive", ErrInvalidConfig)
	case c.MaxFailures < 0:
		return fmt.Errorf("%w: ping.max_failures must not be negative", ErrInvalidConfig)
	case c.PayloadSize <= 0:
		return fmt.Errorf("%w: ping.payload_size must be positive", ErrInvalidConfig)
	}
	return nil
}
