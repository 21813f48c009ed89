package yamux

import (
	"net"

	"github.com/hashicorp/yamux"
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/protocolids"
	"github.com/dep2p/go-pingnode/pkg/types"
)

// ID yamux 协议标识
const ID = protocolids.Yamux

// Transport yamux 多路复用协议
type Transport struct {
	cfg *yamux.Config
}

var _ pkgif.StreamMuxer = (*Transport)(nil)

// New 创建 yamux 传输
func New(cfg Config) (*Transport, error) {
	yc := cfg.toYamux()
	if err := yamux.VerifyConfig(yc); err != nil {
		return nil, err
	}
	return &Transport{cfg: yc}, nil
}

// ID 返回协议标识
func (t *Transport) ID() types.ProtocolID {
	return ID
}

// NewConn 在安全连接上建立会话
func (t *Transport) NewConn(nc net.Conn, isServer bool) (pkgif.MuxedConn, error) {
	var (
		sess *yamux.Session
		err  error
	)
	if isServer {
		sess, err = yamux.Server(nc, t.cfg)
	} else {
		sess, err = yamux.Client(nc, t.cfg)
	}
	if err != nil {
		return nil, err
	}
	return &conn{sess: sess}, nil
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Muxers []pkgif.StreamMuxer `name:"stream_muxers"`
}

// Module 返回 fx 模块
func Module() fx.Option {
	return fx.Module("muxer/yamux",
		fx.Supply(DefaultConfig()),
		fx.Provide(func(cfg Config) (ModuleOutput, error) {
			t, err := New(cfg)
			if err != nil {
				return ModuleOutput{}, err
			}
			return ModuleOutput{Muxers: []pkgif.StreamMuxer{t}}, nil
		}),
	)
}
