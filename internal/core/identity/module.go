package identity

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-pingnode/internal/util/logger"
	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
)

var log = logger.Logger("identity")

// Config 身份来源
type Config struct {
	// KeyFile 私钥文件路径，为空时每次启动生成临时身份
	KeyFile string
}

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	Config   *Config   `optional:"true"`
	Identity *Identity `name:"preset_identity" optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Identity    *Identity
	IdentityAPI pkgif.Identity
}

// ProvideIdentity 按优先级提供身份：预置身份 > 密钥文件 > 临时生成
func ProvideIdentity(in ModuleInput) (ModuleOutput, error) {
	id := in.Identity
	if id == nil {
		var err error
		if in.Config != nil && in.Config.KeyFile != "" {
			id, err = LoadOrGenerate(in.Config.KeyFile)
		} else {
			id, err = Generate()
		}
		if err != nil {
			return ModuleOutput{}, err
		}
	}

	log.Debug("identity ready", "peer", id.PeerID().String())
	return ModuleOutput{Identity: id, IdentityAPI: id}, nil
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("identity",
		fx.Provide(ProvideIdentity),
	)
}
