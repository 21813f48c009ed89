package ping

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-pingnode/internal/util/logger"
	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/protocolids"
	"github.com/dep2p/go-pingnode/pkg/types"
)

var log = logger.Logger("ping")

// ID ping 协议标识
const ID = protocolids.Ping

// responderIdleTimeout 响应端单次读取的最长等待
const responderIdleTimeout = 60 * time.Second

// Event 一次探测的结果
type Event struct {
	Peer   types.PeerID
	ConnID string
	// RTT 成功时的往返时间
	RTT time.Duration
	// Err 失败时为 *Failure
	Err error
}

// Success 探测是否成功
func (e Event) Success() bool {
	return e.Err == nil
}

// Behaviour ping 协议行为
type Behaviour struct {
	cfg   Config
	clock clock.Clock
}

var _ pkgif.Behaviour = (*Behaviour)(nil)

// Option 行为选项
type Option func(*Behaviour)

// WithClock 替换时钟，测试用
func WithClock(c clock.Clock) Option {
	return func(b *Behaviour) {
		b.clock = c
	}
}

// New 创建 ping 行为
func New(cfg Config, opts ...Option) (*Behaviour, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Behaviour{cfg: cfg, clock: clock.New()}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Protocol 返回协议标识
func (b *Behaviour) Protocol() types.ProtocolID {
	return ID
}

// Config 返回配置
func (b *Behaviour) Config() Config {
	return b.cfg
}

// NewHandler 为新连接创建处理器
func (b *Behaviour) NewHandler(conn pkgif.ProtocolConn) pkgif.ConnHandler {
	return newHandler(b, conn)
}
