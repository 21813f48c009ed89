package swarm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	ma "github.com/multiformats/go-multiaddr"
	mss "github.com/multiformats/go-multistream"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

// streamNegotiationTimeout 单条流协议选择的时限
const streamNegotiationTimeout = 10 * time.Second

// Conn Swarm 管理的一条连接
type Conn struct {
	swarm *Swarm
	uc    pkgif.UpgradedConn

	id         string
	remotePeer types.PeerID
	dir        types.Direction
	opened     time.Time

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool

	handlers map[types.ProtocolID]pkgif.ConnHandler

	// idleTimer 在登记时创建，IdleTimeout 为 0 时为 nil
	idleTimer *clock.Timer

	// 流计数，驱动空闲检测
	mu        sync.Mutex
	streams   int
	idleSince time.Time
}

func newConn(s *Swarm, uc pkgif.UpgradedConn, dir types.Direction) *Conn {
	ctx, cancel := context.WithCancel(s.ctx)
	now := s.clock.Now()
	c := &Conn{
		swarm:      s,
		uc:         uc,
		id:         uuid.NewString(),
		remotePeer: uc.RemotePeer(),
		dir:        dir,
		opened:     now,
		ctx:        ctx,
		cancel:     cancel,
		handlers:   make(map[types.ProtocolID]pkgif.ConnHandler, len(s.behaviours)),
		idleSince:  now,
	}
	if s.cfg.IdleTimeout > 0 {
		c.idleTimer = s.clock.Timer(s.cfg.IdleTimeout)
	}
	return c
}

// ID 返回本地唯一的连接 ID
func (c *Conn) ID() string {
	return c.id
}

// LocalPeer 返回本地节点 ID
func (c *Conn) LocalPeer() types.PeerID {
	return c.uc.LocalPeer()
}

// RemotePeer 返回远端节点 ID
func (c *Conn) RemotePeer() types.PeerID {
	return c.remotePeer
}

// Direction 返回连接方向
func (c *Conn) Direction() types.Direction {
	return c.dir
}

// LocalMultiaddr 返回本地地址
func (c *Conn) LocalMultiaddr() ma.Multiaddr {
	return c.uc.LocalMultiaddr()
}

// RemoteMultiaddr 返回远端地址
func (c *Conn) RemoteMultiaddr() ma.Multiaddr {
	return c.uc.RemoteMultiaddr()
}

// Security 返回安全协议
func (c *Conn) Security() types.ProtocolID {
	return c.uc.Security()
}

// Muxer 返回多路复用协议
func (c *Conn) Muxer() types.ProtocolID {
	return c.uc.Muxer()
}

// Opened 返回登记时间
func (c *Conn) Opened() time.Time {
	return c.opened
}

// NumStreams 返回当前打开的流数量
func (c *Conn) NumStreams() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.streams
}

// IsClosed 检查连接是否已关闭
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}

// Close 以 CloseLocal 关闭连接
func (c *Conn) Close() error {
	return c.closeWithReason(types.CloseLocal, nil)
}

// NewStream 打开一条出站流并选择协议
func (c *Conn) NewStream(ctx context.Context, proto types.ProtocolID) (pkgif.Stream, error) {
	if c.closed.Load() {
		return nil, ErrConnClosed
	}

	c.acquire()
	ms, err := c.uc.OpenStream(ctx)
	if err != nil {
		c.release()
		return nil, fmt.Errorf("open stream: %w", err)
	}
	st := &stream{MuxedStream: ms, conn: c, proto: proto}

	deadline := time.Now().Add(streamNegotiationTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = ms.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() {
		_ = ms.SetDeadline(time.Unix(1, 0))
	})
	_, err = mss.SelectOneOf([]string{string(proto)}, ms)
	stop()
	if err != nil {
		_ = st.Reset()
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("select %s: %w", proto, err)
	}
	_ = ms.SetDeadline(time.Time{})
	return st, nil
}

// ============================================================================
//                              生命周期
// ============================================================================

// start 创建协议处理器并启动后台任务
func (c *Conn) start() {
	for _, b := range c.swarm.behaviours {
		c.handlers[b.Protocol()] = b.NewHandler(&protoConn{conn: c, proto: b.Protocol()})
	}

	for _, h := range c.handlers {
		h := h
		c.swarm.spawn(func() { h.Run(c.ctx) })
	}
	c.swarm.spawn(c.acceptStreams)
	c.swarm.spawn(c.watchClose)

	if c.idleTimer != nil {
		if !c.swarm.spawn(func() { c.watchIdle(c.idleTimer, c.swarm.cfg.IdleTimeout) }) {
			c.idleTimer.Stop()
		}
	}
}

// closeWithReason 关闭连接，只有第一次调用生效
func (c *Conn) closeWithReason(reason types.CloseReason, cause error) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.cancel()
	if c.idleTimer != nil {
		c.idleTimer.Stop()
	}
	err := c.uc.Close()
	num := c.swarm.removeConn(c)

	c.swarm.emit(ConnectionClosed{
		Peer:           c.remotePeer,
		ConnID:         c.id,
		Direction:      c.dir,
		Reason:         reason,
		Err:            cause,
		NumEstablished: num,
	})

	log.Info("connection closed",
		"peer", c.remotePeer.ShortString(),
		"conn", c.id,
		"reason", reason.String(),
		"err", cause)
	return err
}

// watchClose 等待会话结束并判断关闭原因
func (c *Conn) watchClose() {
	select {
	case <-c.ctx.Done():
		return
	case <-c.uc.CloseChan():
	}

	reason := types.CloseRemoteClosed
	err := c.uc.TransportError()
	if err != nil && !errors.Is(err, io.EOF) {
		reason = types.CloseIOError
	} else {
		err = nil
	}
	_ = c.closeWithReason(reason, err)
}

// watchIdle 在连接无流超过 idle 时关闭连接
func (c *Conn) watchIdle(timer *clock.Timer, idle time.Duration) {
	defer timer.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-timer.C:
		}

		c.mu.Lock()
		busy := c.streams > 0
		since := c.idleSince
		c.mu.Unlock()

		if busy {
			timer.Reset(idle)
			continue
		}
		if remaining := idle - c.swarm.clock.Since(since); remaining > 0 {
			timer.Reset(remaining)
			continue
		}

		log.Debug("connection idle", "peer", c.remotePeer.ShortString(), "conn", c.id, "idle", idle)
		_ = c.closeWithReason(types.CloseIdle, nil)
		return
	}
}

// ============================================================================
//                              入站流
// ============================================================================

func (c *Conn) acceptStreams() {
	for {
		ms, err := c.uc.AcceptStream()
		if err != nil {
			return
		}

		c.acquire()
		st := &stream{MuxedStream: ms, conn: c}
		if !c.swarm.spawn(func() { c.handleInbound(st) }) {
			_ = st.Reset()
			return
		}
	}
}

func (c *Conn) handleInbound(st *stream) {
	_ = st.SetDeadline(time.Now().Add(streamNegotiationTimeout))
	proto, _, err := c.swarm.protocols.Negotiate(st)
	if err != nil {
		log.Debug("inbound stream negotiation failed", "peer", c.remotePeer.ShortString(), "err", err)
		_ = st.Reset()
		return
	}
	_ = st.SetDeadline(time.Time{})

	st.proto = types.ProtocolID(proto)
	h, ok := c.handlers[st.proto]
	if !ok {
		_ = st.Reset()
		return
	}
	h.HandleInbound(c.ctx, st)
}

// ============================================================================
//                              流计数
// ============================================================================

func (c *Conn) acquire() {
	c.mu.Lock()
	c.streams++
	c.mu.Unlock()
}

func (c *Conn) release() {
	c.mu.Lock()
	c.streams--
	if c.streams == 0 {
		c.idleSince = c.swarm.clock.Now()
	}
	c.mu.Unlock()
}

// ============================================================================
//                              协议视图
// ============================================================================

// protoConn 单个协议行为看到的连接
type protoConn struct {
	conn  *Conn
	proto types.ProtocolID
}

var _ pkgif.ProtocolConn = (*protoConn)(nil)

func (p *protoConn) ID() string {
	return p.conn.id
}

func (p *protoConn) RemotePeer() types.PeerID {
	return p.conn.remotePeer
}

func (p *protoConn) Direction() types.Direction {
	return p.conn.dir
}

func (p *protoConn) NewStream(ctx context.Context) (pkgif.Stream, error) {
	return p.conn.NewStream(ctx, p.proto)
}

func (p *protoConn) Emit(payload any) {
	p.conn.swarm.emit(ProtocolEvent{
		Peer:     p.conn.remotePeer,
		ConnID:   p.conn.id,
		Protocol: p.proto,
		Payload:  payload,
	})
}

func (p *protoConn) Close(reason types.CloseReason) error {
	return p.conn.closeWithReason(reason, nil)
}
