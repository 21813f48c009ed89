package pingnode

import (
	"errors"

	"go.uber.org/fx"

	"github.com/dep2p/go-pingnode/config"
	"github.com/dep2p/go-pingnode/internal/core/identity"
)

// Option 节点选项
type Option func(*options) error

type options struct {
	config      *config.Config
	identity    *identity.Identity
	listenAddrs []string
	fxOptions   []fx.Option
}

// WithConfig 使用完整配置，后续选项在其之上覆盖
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg
		return nil
	}
}

// WithIdentity 使用给定身份，忽略配置中的密钥文件
func WithIdentity(id *identity.Identity) Option {
	return func(o *options) error {
		if id == nil {
			return errors.New("identity is nil")
		}
		o.identity = id
		return nil
	}
}

// WithListenAddrs 覆盖监听地址
func WithListenAddrs(addrs ...string) Option {
	return func(o *options) error {
		o.listenAddrs = append([]string(nil), addrs...)
		return nil
	}
}

// WithFxOptions 追加 fx 选项，用于替换或扩展内部组件
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
