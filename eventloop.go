package pingnode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-pingnode/internal/core/protocol/ping"
	"github.com/dep2p/go-pingnode/internal/core/swarm"
)

// Hook 事件钩子，在默认处理之后按注册顺序调用
type Hook func(swarm.Event)

// EventLoop 节点事件循环
//
// Run 每次只取一个事件处理，处理过程中不阻塞在网络 I/O 上。
type EventLoop struct {
	node  *Node
	out   io.Writer
	hooks []Hook

	mu    sync.Mutex
	addrs []ma.Multiaddr
}

// NewEventLoop 创建事件循环，out 为 nil 时丢弃输出
func NewEventLoop(n *Node, out io.Writer, hooks ...Hook) *EventLoop {
	if out == nil {
		out = io.Discard
	}
	return &EventLoop{node: n, out: out, hooks: hooks}
}

// ListenAddrs 返回已报告的监听地址
func (l *EventLoop) ListenAddrs() []ma.Multiaddr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ma.Multiaddr(nil), l.addrs...)
}

// Run 处理事件直到 ctx 取消或事件通道关闭
//
// ctx 取消时返回 ctx.Err()，通道关闭时返回 nil。
func (l *EventLoop) Run(ctx context.Context) error {
	events := l.node.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			l.handle(ev)
		}
	}
}

func (l *EventLoop) handle(ev swarm.Event) {
	l.node.Metrics().Observe(ev)

	switch e := ev.(type) {
	case swarm.ListenAddressReady:
		l.mu.Lock()
		l.addrs = append(l.addrs, e.Address)
		l.mu.Unlock()
		l.printf("Listening on %s\n", e.Address)

	case swarm.ListenAddressExpired:
		l.mu.Lock()
		for i, a := range l.addrs {
			if a.Equal(e.Address) {
				l.addrs = append(l.addrs[:i], l.addrs[i+1:]...)
				break
			}
		}
		l.mu.Unlock()
		log.Debug("listen address expired", "addr", e.Address.String())

	case swarm.ProtocolEvent:
		pe, ok := e.Payload.(ping.Event)
		if !ok {
			log.Debug("protocol event", "protocol", string(e.Protocol), "peer", e.Peer.ShortString())
			break
		}
		if pe.Success() {
			l.printf("ping peer=%s conn=%s rtt=%s\n", pe.Peer, pe.ConnID, pe.RTT)
			break
		}
		kind := "unknown"
		var f *ping.Failure
		if errors.As(pe.Err, &f) {
			kind = f.Kind.String()
		}
		l.printf("ping peer=%s conn=%s failure=%s err=%v\n", pe.Peer, pe.ConnID, kind, pe.Err)

	case swarm.ConnectionClosed:
		l.printf("connection closed peer=%s conn=%s reason=%s\n", e.Peer, e.ConnID, e.Reason)

	case swarm.OutgoingConnectionError:
		l.printf("dial failed addr=%s err=%v\n", e.Address, e.Err)

	default:
		log.Debug("event", "name", ev.Name())
	}

	for _, h := range l.hooks {
		h(ev)
	}
}

func (l *EventLoop) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(l.out, format, args...); err != nil {
		log.Warn("write output failed", "err", err)
	}
}
