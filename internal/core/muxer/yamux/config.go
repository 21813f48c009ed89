package yamux

import (
	"io"
	"time"

	"github.com/hashicorp/yamux"
)

// Config yamux 会话配置
type Config struct {
	AcceptBacklog          int
	EnableKeepAlive        bool
	KeepAliveInterval      time.Duration
	ConnectionWriteTimeout time.Duration
	MaxStreamWindowSize    uint32
	StreamOpenTimeout      time.Duration
	StreamCloseTimeout     time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		AcceptBacklog:          256,
		EnableKeepAlive:        true,
		KeepAliveInterval:      30 * time.Second,
		ConnectionWriteTimeout: 10 * time.Second,
		MaxStreamWindowSize:    256 * 1024,
		StreamOpenTimeout:      75 * time.Second,
		StreamCloseTimeout:     5 * time.Minute,
	}
}

func (c Config) toYamux() *yamux.Config {
	yc := yamux.DefaultConfig()
	if c.AcceptBacklog > 0 {
		yc.AcceptBacklog = c.AcceptBacklog
	}
	yc.EnableKeepAlive = c.EnableKeepAlive
	if c.KeepAliveInterval > 0 {
		yc.KeepAliveInterval = c.KeepAliveInterval
	}
	if c.ConnectionWriteTimeout > 0 {
		yc.ConnectionWriteTimeout = c.ConnectionWriteTimeout
	}
	if c.MaxStreamWindowSize > 0 {
		yc.MaxStreamWindowSize = c.MaxStreamWindowSize
	}
	yc.StreamOpenTimeout = c.StreamOpenTimeout
	yc.StreamCloseTimeout = c.StreamCloseTimeout
	// yamux 自带日志关闭，错误通过返回值和会话关闭体现
	yc.LogOutput = io.Discard
	return yc
}
