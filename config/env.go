package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// 环境变量
const (
	EnvListenAddrs    = "PINGNODE_LISTEN_ADDRS"
	EnvIdentityKey    = "PINGNODE_IDENTITY_KEY_FILE"
	EnvIdleTimeout    = "PINGNODE_IDLE_TIMEOUT"
	EnvPingInterval   = "PINGNODE_PING_INTERVAL"
	EnvMetricsAddress = "PINGNODE_METRICS_ADDR"
)

// ApplyEnv 用环境变量覆盖配置
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvListenAddrs); ok && v != "" {
		var addrs []string
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				addrs = append(addrs, a)
			}
		}
		c.ListenAddrs = addrs
	}
	if v, ok := lookup(EnvIdentityKey); ok {
		c.Identity.KeyFile = v
	}
	if v, ok := lookup(EnvIdleTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvIdleTimeout, err)
		}
		c.Swarm.IdleTimeout = Duration(d)
	}
	if v, ok := lookup(EnvPingInterval); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPingInterval, err)
		}
		c.Ping.Interval = Duration(d)
	}
	if v, ok := lookup(EnvMetricsAddress); ok && v != "" {
		c.Metrics.Enable = true
		c.Metrics.ListenAddr = v
	}
	return nil
}
