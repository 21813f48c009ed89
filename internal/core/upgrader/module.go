package upgrader

import (
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
)

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Identity pkgif.Identity
	Security []pkgif.SecureTransport `name:"security_transports"`
	Muxers   []pkgif.StreamMuxer     `name:"stream_muxers"`
	Config   *Config                 `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Upgrader    *Upgrader
	UpgraderAPI pkgif.Upgrader
}

// ProvideUpgrader 提供升级器
func ProvideUpgrader(in ModuleInput) (ModuleOutput, error) {
	cfg := DefaultConfig()
	if in.Config != nil {
		cfg = *in.Config
	}
	u, err := New(in.Identity, cfg, in.Security, in.Muxers)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Upgrader: u, UpgraderAPI: u}, nil
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("upgrader",
		fx.Provide(ProvideUpgrader),
	)
}
