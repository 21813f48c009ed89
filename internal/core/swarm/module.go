package swarm

import (
	"context"

	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
)

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Identity   pkgif.Identity
	Upgrader   pkgif.Upgrader
	Transport  pkgif.Transport
	Behaviours []pkgif.Behaviour `group:"behaviours"`
	Config     *Config           `optional:"true"`
}

// ProvideSwarm 提供 Swarm
func ProvideSwarm(lc fx.Lifecycle, in ModuleInput) (*Swarm, error) {
	cfg := DefaultConfig()
	if in.Config != nil {
		cfg = *in.Config
	}

	s, err := New(in.Identity.PeerID(), cfg, in.Upgrader, []pkgif.Transport{in.Transport}, in.Behaviours)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return s.Close()
		},
	})
	return s, nil
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("swarm",
		fx.Provide(ProvideSwarm),
	)
}
