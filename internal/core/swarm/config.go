package swarm

import (
	"fmt"
	"time"
)

// Config Swarm 配置
type Config struct {
	// IdleTimeout 无流连接的最长保留时间，0 表示不限
	IdleTimeout time.Duration

	// DialTimeout 建立原始连接的超时
	DialTimeout time.Duration

	// EventBuffer 事件通道缓冲
	EventBuffer int

	// MaxIncomingPerSecond 每秒接受的入站连接上限，0 表示不限
	MaxIncomingPerSecond int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		IdleTimeout: 0,
		DialTimeout: 15 * time.Second,
		EventBuffer: 256,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.IdleTimeout < 0 {
		return fmt.Errorf("%w: negative idle timeout", ErrInvalidConfig)
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("%w: dial timeout must be positive", ErrInvalidConfig)
	}
	if c.EventBuffer < 0 {
		return fmt.Errorf("%w: negative event buffer", ErrInvalidConfig)
	}
	if c.MaxIncomingPerSecond < 0 {
		return fmt.Errorf("%w: negative incoming rate", ErrInvalidConfig)
	}
	return nil
}
