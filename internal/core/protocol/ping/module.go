package ping

import (
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
)

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Config *Config `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Ping      *Behaviour
	Behaviour pkgif.Behaviour `group:"behaviours"`
}

// ProvideBehaviour 提供 ping 行为
func ProvideBehaviour(in ModuleInput) (ModuleOutput, error) {
	cfg := DefaultConfig()
	if in.Config != nil {
		cfg = *in.Config
	}
	b, err := New(cfg)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Ping: b, Behaviour: b}, nil
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("ping",
		fx.Provide(ProvideBehaviour),
	)
}
