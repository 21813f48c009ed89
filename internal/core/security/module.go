package security

import (
	"fmt"
	"strings"

	"go.uber.org/fx"

	noiseimpl "github.com/dep2p/go-pingnode/internal/core/security/noise"
	tlsimpl "github.com/dep2p/go-pingnode/internal/core/security/tls"
	"github.com/dep2p/go-pingnode/internal/util/logger"
	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
)

var log = logger.Logger("security")

// 配置中使用的协议名
const (
	NameTLS   = "tls"
	NameNoise = "noise"
)

// Config 安全层配置
type Config struct {
	// Order 协议提议顺序
	Order []string
}

// DefaultConfig 默认 TLS 优先，其次 Noise
func DefaultConfig() Config {
	return Config{Order: []string{NameTLS, NameNoise}}
}

// Validate 校验协议名
func (c Config) Validate() error {
	if len(c.Order) == 0 {
		return ErrNoSecurity
	}
	seen := make(map[string]bool, len(c.Order))
	for _, name := range c.Order {
		name = strings.ToLower(name)
		if name != NameTLS && name != NameNoise {
			return fmt.Errorf("%w: %q", ErrUnknownSecurity, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: %q", ErrDuplicateSecurity, name)
		}
		seen[name] = true
	}
	return nil
}

// New 按配置顺序创建安全传输
func New(cfg Config, id pkgif.Identity) ([]pkgif.SecureTransport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	out := make([]pkgif.SecureTransport, 0, len(cfg.Order))
	for _, name := range cfg.Order {
		var (
			st  pkgif.SecureTransport
			err error
		)
		switch strings.ToLower(name) {
		case NameTLS:
			st, err = tlsimpl.New(id)
		case NameNoise:
			st, err = noiseimpl.New(id)
		}
		if err != nil {
			return nil, fmt.Errorf("create %s transport: %w", name, err)
		}
		out = append(out, st)
	}

	log.Debug("security transports ready", "order", cfg.Order)
	return out, nil
}

// ModuleInput 模块输入
type ModuleInput struct {
	fx.In

	Identity pkgif.Identity
	Config   *Config `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Transports []pkgif.SecureTransport `name:"security_transports"`
}

// ProvideTransports 提供有序的安全传输列表
func ProvideTransports(in ModuleInput) (ModuleOutput, error) {
	cfg := DefaultConfig()
	if in.Config != nil {
		cfg = *in.Config
	}
	transports, err := New(cfg, in.Identity)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Transports: transports}, nil
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("security",
		fx.Provide(ProvideTransports),
	)
}
