package metrics

import (
	"context"

	"go.uber.org/fx"
)

// Config 指标配置
type Config struct {
	// Enable 是否启动 HTTP 导出
	Enable bool

	// ListenAddr 导出地址，例如 127.0.0.1:9464
	ListenAddr string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Enable:     false,
		ListenAddr: "127.0.0.1:9464",
	}
}

// Params 模块依赖
type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *Config `optional:"true"`
}

// Provide 提供指标集合，按配置挂载导出服务
func Provide(p Params) *Metrics {
	cfg := DefaultConfig()
	if p.Config != nil {
		cfg = *p.Config
	}

	m := New()
	if !cfg.Enable {
		return m
	}

	srv := NewServer(m, cfg.ListenAddr)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error { return srv.Start() },
		OnStop:  srv.Stop,
	})
	return m
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(Provide),
	)
}
