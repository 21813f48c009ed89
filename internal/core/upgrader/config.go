package upgrader

import "time"

// Config 升级器配置
type Config struct {
	// NegotiationTimeout 安全与多路复用协商的总时限
	NegotiationTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{NegotiationTimeout: 20 * time.Second}
}
