// Package config 提供节点配置
//
// 配置来源的优先级：命令行参数 > 环境变量 > JSON 文件 > 默认值。
//
//	cfg, err := config.Load("node.json")
//	if err != nil { ... }
//	if err := cfg.ApplyEnv(); err != nil { ... }
//	if err := cfg.Validate(); err != nil { ... }
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidConfig 配置无效
var ErrInvalidConfig = errors.New("invalid config")

// Config 节点配置
type Config struct {
	// ListenAddrs 监听地址（multiaddr）
	ListenAddrs []string `json:"listen_addrs"`

	Identity IdentityConfig `json:"identity"`
	Swarm    SwarmConfig    `json:"swarm"`
	Security SecurityConfig `json:"security"`
	Ping     PingConfig     `json:"ping"`
	Metrics  MetricsConfig  `json:"metrics"`
}

// IdentityConfig 身份配置
type IdentityConfig struct {
	// KeyFile 私钥文件，为空时每次启动生成临时身份
	KeyFile string `json:"key_file,omitempty"`
}

// MetricsConfig 指标导出配置
type MetricsConfig struct {
	Enable     bool   `json:"enable"`
	ListenAddr string `json:"listen_addr"`
}

// NewConfig 返回默认配置
func NewConfig() *Config {
	return &Config{
		ListenAddrs: []string{"/ip4/0.0.0.0/tcp/0"},
		Swarm:       DefaultSwarmConfig(),
		Security:    DefaultSecurityConfig(),
		Ping:        DefaultPingConfig(),
		Metrics: MetricsConfig{
			ListenAddr: "127.0.0.1:9464",
		},
	}
}

// FromJSON 在默认值之上解析 JSON，缺省字段保持默认
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Load 读取 JSON 配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return FromJSON(data)
}

// Validate 验证配置
func (c *Config) Validate() error {
	if len(c.ListenAddrs) == 0 {
		return fmt.Errorf("%w: at least one listen address is required", ErrInvalidConfig)
	}
	if err := c.Swarm.Validate(); err != nil {
		return err
	}
	if err := c.Security.Validate(); err != nil {
		return err
	}
	if err := c.Ping.Validate(); err != nil {
		return err
	}

	// 空闲超时必须容得下一轮完整的探测，否则 ping 会被空闲检测打断
	idle := c.Swarm.IdleTimeout.Duration()
	if idle != 0 && idle <= c.Ping.Interval.Duration()+c.Ping.Timeout.Duration() {
		return fmt.Errorf("%w: swarm.idle_timeout (%s) must be 0 or greater than ping.interval + ping.timeout (%s)",
			ErrInvalidConfig, idle, c.Ping.Interval.Duration()+c.Ping.Timeout.Duration())
	}

	if c.Metrics.Enable && c.Metrics.ListenAddr == "" {
		return fmt.Errorf("%w: metrics.listen_addr is required when metrics are enabled", ErrInvalidConfig)
	}
	return nil
}
