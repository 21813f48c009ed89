package ping

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

// Handler 单条连接上的 ping 处理器
type Handler struct {
	b    *Behaviour
	conn pkgif.ProtocolConn

	mu    sync.Mutex
	state State
}

var _ pkgif.ConnHandler = (*Handler)(nil)

func newHandler(b *Behaviour, conn pkgif.ProtocolConn) *Handler {
	return &Handler{b: b, conn: conn}
}

// State 返回当前状态的快照
func (h *Handler) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := h.state
	st.Payload = append([]byte(nil), h.state.Payload...)
	return st
}

// Run 发起循环，ctx 取消或连续失败超限时返回
func (h *Handler) Run(ctx context.Context) {
	cfg := h.b.cfg
	for {
		ev := h.probe(ctx)
		if ctx.Err() != nil {
			return
		}
		h.conn.Emit(ev)

		h.mu.Lock()
		exceeded := h.state.exceeded(cfg.MaxFailures)
		failures := h.state.Failures
		if !exceeded {
			h.state.Phase = Idle
		}
		h.mu.Unlock()

		if exceeded {
			log.Info("liveness exceeded, closing connection",
				"peer", h.conn.RemotePeer().ShortString(),
				"conn", h.conn.ID(),
				"failures", failures)
			_ = h.conn.Close(types.CloseLivenessExceeded)
			return
		}

		wait := h.b.clock.Timer(cfg.Interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return
		case <-wait.C:
		}
	}
}

type outcome struct {
	echo []byte
	err  error
}

// probe 执行一次探测
func (h *Handler) probe(ctx context.Context) Event {
	cfg := h.b.cfg
	ev := Event{Peer: h.conn.RemotePeer(), ConnID: h.conn.ID()}

	payload := make([]byte, cfg.PayloadSize)
	if _, err := rand.Read(payload); err != nil {
		ev.Err = h.fail(&Failure{Kind: IoError, Err: err})
		return ev
	}

	h.mu.Lock()
	h.state.begin(payload, h.b.clock.Now(), cfg.Timeout)
	h.mu.Unlock()

	pctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deadline := h.b.clock.Timer(cfg.Timeout)
	defer deadline.Stop()

	done := make(chan outcome, 1)
	go func() {
		echo, err := h.exchange(pctx, payload)
		done <- outcome{echo: echo, err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-deadline.C:
		cancel()
		<-done
		ev.Err = h.fail(&Failure{Kind: Timeout, Err: ErrTimeout})
		log.Debug("ping timed out", "peer", ev.Peer.ShortString(), "conn", ev.ConnID)
		return ev
	case <-ctx.Done():
		cancel()
		<-done
		return ev
	}

	if res.err != nil {
		ev.Err = h.fail(&Failure{Kind: IoError, Err: res.err})
		log.Debug("ping failed", "peer", ev.Peer.ShortString(), "conn", ev.ConnID, "err", res.err)
		return ev
	}

	h.mu.Lock()
	rtt, err := h.state.finish(res.echo, h.b.clock.Now())
	h.mu.Unlock()
	ev.RTT, ev.Err = rtt, err
	return ev
}

// exchange 打开流，写入负载并读取同样长度的回显
func (h *Handler) exchange(ctx context.Context, payload []byte) ([]byte, error) {
	s, err := h.conn.NewStream(ctx)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = s.Reset() })
	defer stop()

	if _, err := s.Write(payload); err != nil {
		_ = s.Reset()
		return nil, fmt.Errorf("write payload: %w", err)
	}
	echo := make([]byte, len(payload))
	if _, err := io.ReadFull(s, echo); err != nil {
		_ = s.Reset()
		return nil, fmt.Errorf("read echo: %w", err)
	}
	if err := s.Close(); err != nil && !errors.Is(err, io.EOF) {
		log.Debug("closing ping stream", "err", err)
	}
	return echo, nil
}

func (h *Handler) fail(f *Failure) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.fail(f)
}

// HandleInbound 原样回显入站流上的字节，直到对端关闭
func (h *Handler) HandleInbound(ctx context.Context, s pkgif.Stream) {
	defer s.Close()
	stop := context.AfterFunc(ctx, func() { _ = s.Reset() })
	defer stop()

	buf := make([]byte, h.b.cfg.PayloadSize)
	for {
		_ = s.SetReadDeadline(time.Now().Add(responderIdleTimeout))
		n, err := s.Read(buf)
		if n > 0 {
			if _, werr := s.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}
