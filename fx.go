package pingnode

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-pingnode/config"
	"github.com/dep2p/go-pingnode/internal/core/identity"
	"github.com/dep2p/go-pingnode/internal/core/metrics"
	"github.com/dep2p/go-pingnode/internal/core/muxer/yamux"
	"github.com/dep2p/go-pingnode/internal/core/protocol/ping"
	"github.com/dep2p/go-pingnode/internal/core/security"
	"github.com/dep2p/go-pingnode/internal/core/swarm"
	"github.com/dep2p/go-pingnode/internal/core/transport/tcp"
	"github.com/dep2p/go-pingnode/internal/core/upgrader"
)

// ════════════════════════════════════════════════════════════════════════════
//                              Fx 组装
// ════════════════════════════════════════════════════════════════════════════

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//
//	Identity → TCP → Security → Yamux → Upgrader → Ping → Swarm → Metrics
func buildFxApp(cfg *config.Config, o *options, n *Node) *fx.App {
	modules := []fx.Option{
		// 配置注入
		fx.Supply(&identity.Config{KeyFile: cfg.Identity.KeyFile}),
		fx.Supply(&security.Config{Order: cfg.Security.Order}),
		fx.Supply(&upgrader.Config{NegotiationTimeout: cfg.Swarm.NegotiationTimeout.Duration()}),
		fx.Supply(swarmConfig(cfg)),
		fx.Supply(pingConfig(cfg)),
		fx.Supply(&metrics.Config{Enable: cfg.Metrics.Enable, ListenAddr: cfg.Metrics.ListenAddr}),

		// 核心模块
		identity.Module(),
		tcp.Module(),
		security.Module(),
		yamux.Module(),
		upgrader.Module(),
		ping.Module(),
		swarm.Module(),
		metrics.Module(),
	}

	if o.identity != nil {
		modules = append(modules, fx.Supply(fx.Annotated{Name: "preset_identity", Target: o.identity}))
	}

	// 用户扩展
	modules = append(modules, o.fxOptions...)

	modules = append(modules,
		fx.Populate(&n.identity, &n.swarm, &n.metrics),
		// 关闭 Fx 自身的日志输出
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	return fx.New(modules...)
}

func swarmConfig(cfg *config.Config) *swarm.Config {
	return &swarm.Config{
		IdleTimeout:          cfg.Swarm.IdleTimeout.Duration(),
		DialTimeout:          cfg.Swarm.DialTimeout.Duration(),
		EventBuffer:          cfg.Swarm.EventBuffer,
		MaxIncomingPerSecond: cfg.Swarm.MaxIncomingPerSecond,
	}
}

func pingConfig(cfg *config.Config) *ping.Config {
	return &ping.Config{
		Interval:    cfg.Ping.Interval.Duration(),
		Timeout:     cfg.Ping.Timeout.Duration(),
		MaxFailures: cfg.Ping.MaxFailures,
		PayloadSize: cfg.Ping.PayloadSize,
	}
}

// resolveConfig 合并配置与选项并验证
func resolveConfig(o *options) (*config.Config, error) {
	cfg := config.NewConfig()
	if o.config != nil {
		c := *o.config
		cfg = &c
	}
	if len(o.listenAddrs) > 0 {
		cfg.ListenAddrs = o.listenAddrs
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
