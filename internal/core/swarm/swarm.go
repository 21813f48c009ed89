package swarm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	ma "github.com/multiformats/go-multiaddr"
	mss "github.com/multiformats/go-multistream"
	"go.uber.org/multierr"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-pingnode/internal/util/logger"
	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/protocolids"
	"github.com/dep2p/go-pingnode/pkg/types"
)

var log = logger.Logger("swarm")

// Swarm 连接管理器
type Swarm struct {
	localPeer types.PeerID
	cfg       Config
	clock     clock.Clock

	upgrader   pkgif.Upgrader
	transports []pkgif.Transport
	behaviours []pkgif.Behaviour

	// 入站流协议选择
	protocols *mss.MultistreamMuxer[string]

	// 入站连接限速，nil 表示不限
	limiter *rate.Limiter

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// eventsMu 保证通道关闭后不再发送
	eventsMu     sync.RWMutex
	eventsClosed bool
	events       chan Event

	mu        sync.RWMutex
	closed    bool
	conns     map[types.PeerID][]*Conn
	listeners map[ListenerID]*listener
}

// Option Swarm 选项
type Option func(*Swarm)

// WithClock 替换时钟，测试用
func WithClock(c clock.Clock) Option {
	return func(s *Swarm) {
		s.clock = c
	}
}

// New 创建 Swarm
func New(local types.PeerID, cfg Config, upgrader pkgif.Upgrader, transports []pkgif.Transport, behaviours []pkgif.Behaviour, opts ...Option) (*Swarm, error) {
	if err := local.Validate(); err != nil {
		return nil, fmt.Errorf("local peer: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if upgrader == nil {
		return nil, fmt.Errorf("%w: upgrader is nil", ErrInvalidConfig)
	}
	if len(transports) == 0 {
		return nil, fmt.Errorf("%w: no transports", ErrInvalidConfig)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Swarm{
		localPeer:  local,
		cfg:        cfg,
		clock:      clock.New(),
		upgrader:   upgrader,
		transports: transports,
		behaviours: behaviours,
		protocols:  mss.NewMultistreamMuxer[string](),
		ctx:        ctx,
		cancel:     cancel,
		events:     make(chan Event, cfg.EventBuffer),
		conns:      make(map[types.PeerID][]*Conn),
		listeners:  make(map[ListenerID]*listener),
	}
	for _, opt := range opts {
		opt(s)
	}

	seen := make(map[types.ProtocolID]bool, len(behaviours))
	for _, b := range behaviours {
		p := b.Protocol()
		if seen[p] {
			cancel()
			return nil, fmt.Errorf("%w: duplicate behaviour protocol %s", ErrInvalidConfig, p)
		}
		if p.IsEmpty() || protocolids.IsUpgrade(p) {
			cancel()
			return nil, fmt.Errorf("%w: invalid behaviour protocol %q", ErrInvalidConfig, p)
		}
		seen[p] = true
		s.protocols.AddHandler(string(p), nil)
	}

	if cfg.MaxIncomingPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MaxIncomingPerSecond), cfg.MaxIncomingPerSecond)
	}

	return s, nil
}

// LocalPeer 返回本地节点 ID
func (s *Swarm) LocalPeer() types.PeerID {
	return s.localPeer
}

// Events 返回事件通道，Close 后通道关闭
func (s *Swarm) Events() <-chan Event {
	return s.events
}

// Peers 返回所有已连接的节点
func (s *Swarm) Peers() []types.PeerID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	peers := make([]types.PeerID, 0, len(s.conns))
	for p := range s.conns {
		peers = append(peers, p)
	}
	return peers
}

// Conns 返回所有活跃连接
func (s *Swarm) Conns() []*Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Conn
	for _, cs := range s.conns {
		out = append(out, cs...)
	}
	return out
}

// ConnsToPeer 返回到指定节点的连接
func (s *Swarm) ConnsToPeer(peer types.PeerID) []*Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]*Conn(nil), s.conns[peer]...)
}

// ClosePeer 关闭到指定节点的所有连接
func (s *Swarm) ClosePeer(peer types.PeerID) error {
	var errs error
	for _, c := range s.ConnsToPeer(peer) {
		errs = multierr.Append(errs, c.Close())
	}
	return errs
}

// Close 关闭所有监听器和连接，等待后台任务结束后关闭事件通道
func (s *Swarm) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	listeners := make([]*listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	var conns []*Conn
	for _, cs := range s.conns {
		conns = append(conns, cs...)
	}
	s.mu.Unlock()

	log.Debug("closing swarm", "listeners", len(listeners), "conns", len(conns))

	s.cancel()

	var errs error
	for _, l := range listeners {
		errs = multierr.Append(errs, l.close())
	}
	for _, c := range conns {
		errs = multierr.Append(errs, c.closeWithReason(types.CloseLocal, nil))
	}

	s.wg.Wait()

	s.eventsMu.Lock()
	s.eventsClosed = true
	close(s.events)
	s.eventsMu.Unlock()
	return errs
}

// ============================================================================
//                              内部辅助
// ============================================================================

// spawn 在 Swarm 未关闭时启动受跟踪的 goroutine
func (s *Swarm) spawn(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}

// emit 投递事件，Swarm 关闭后不再阻塞
func (s *Swarm) emit(ev Event) {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()

	if s.eventsClosed {
		return
	}

	select {
	case s.events <- ev:
		return
	default:
	}

	select {
	case s.events <- ev:
	case <-s.ctx.Done():
		log.Debug("dropping event after close", "event", ev.Name())
	}
}

func (s *Swarm) dialTransport(addr ma.Multiaddr) pkgif.Transport {
	for _, t := range s.transports {
		if t.CanDial(addr) {
			return t
		}
	}
	return nil
}

func (s *Swarm) listenTransport(addr ma.Multiaddr) pkgif.Transport {
	for _, t := range s.transports {
		if t.CanListen(addr) {
			return t
		}
	}
	return nil
}

// register 登记升级完成的连接并启动其后台任务
//
// 只在受跟踪的 goroutine 中调用，因此 emit 不会晚于事件通道关闭。
func (s *Swarm) register(uc pkgif.UpgradedConn, dir types.Direction, started time.Time) (*Conn, error) {
	c := newConn(s, uc, dir)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = uc.Close()
		return nil, ErrSwarmClosed
	}
	peer := uc.RemotePeer()
	s.conns[peer] = append(s.conns[peer], c)
	num := len(s.conns[peer])
	s.mu.Unlock()

	s.emit(ConnectionEstablished{
		Peer:           peer,
		ConnID:         c.id,
		Direction:      dir,
		Endpoint:       uc.RemoteMultiaddr(),
		NumEstablished: num,
		EstablishedIn:  s.clock.Since(started),
	})

	log.Info("connection established",
		"peer", peer.ShortString(),
		"conn", c.id,
		"dir", dir.String(),
		"remote", uc.RemoteMultiaddr().String())

	// 先发出建立事件，协议事件和关闭事件都在其后
	c.start()
	return c, nil
}

// removeConn 移除连接，返回该节点剩余连接数
func (s *Swarm) removeConn(c *Conn) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs := s.conns[c.remotePeer]
	for i, other := range cs {
		if other == c {
			cs = append(cs[:i], cs[i+1:]...)
			break
		}
	}
	if len(cs) == 0 {
		delete(s.conns, c.remotePeer)
		return 0
	}
	s.conns[c.remotePeer] = cs
	return len(cs)
}
