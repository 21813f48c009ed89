package ping

import (
	"fmt"
	"time"
)

// Config 探测配置
type Config struct {
	// Interval 两次探测之间的等待
	Interval time.Duration

	// Timeout 单次探测等待回显的时限
	Timeout time.Duration

	// MaxFailures 允许的连续失败次数，超过后关闭连接
	MaxFailures int

	// PayloadSize 探测负载字节数
	PayloadSize int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Interval:    15 * time.Second,
		Timeout:     20 * time.Second,
		MaxFailures: 3,
		PayloadSize: 32,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.MaxFailures < 0 {
		return fmt.Errorf("%w: negative max failures", ErrInvalidConfig)
	}
	if c.PayloadSize <= 0 {
		return fmt.Errorf("%w: payload size must be positive", ErrInvalidConfig)
	}
	return nil
}
