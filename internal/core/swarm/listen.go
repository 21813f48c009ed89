package swarm

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

// acceptRetryDelay 非致命 Accept 错误后的等待
const acceptRetryDelay = 50 * time.Millisecond

// listener Swarm 持有的监听器
type listener struct {
	id ListenerID
	l  pkgif.Listener

	mu     sync.Mutex
	addrs  []ma.Multiaddr
	closed bool
}

func (l *listener) close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()
	return l.l.Close()
}

func (l *listener) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Listen 在地址上开始监听
//
// 只有地址不受支持或绑定失败时同步返回错误，实际地址通过
// ListenAddressReady 事件报告。
func (s *Swarm) Listen(addr ma.Multiaddr) (ListenerID, error) {
	t := s.listenTransport(addr)
	if t == nil {
		return "", &ListenError{Address: addr, Err: ErrUnsupportedAddress}
	}

	tl, err := t.Listen(addr)
	if err != nil {
		return "", &ListenError{Address: addr, Err: err}
	}

	l := &listener{id: ListenerID(uuid.NewString()), l: tl}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = tl.Close()
		return "", &ListenError{Address: addr, Err: ErrSwarmClosed}
	}
	s.listeners[l.id] = l
	s.mu.Unlock()

	if !s.spawn(func() { s.acceptLoop(l) }) {
		_ = l.close()
		return "", &ListenError{Address: addr, Err: ErrSwarmClosed}
	}

	log.Debug("listener started", "listener", l.id, "addr", tl.Multiaddr().String())
	return l.id, nil
}

// CloseListener 停止指定监听器
func (s *Swarm) CloseListener(id ListenerID) error {
	s.mu.RLock()
	l, ok := s.listeners[id]
	s.mu.RUnlock()
	if !ok {
		return ErrUnknownListener
	}
	return l.close()
}

// ListenAddrs 返回所有监听器的当前地址
func (s *Swarm) ListenAddrs() []ma.Multiaddr {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ma.Multiaddr
	for _, l := range s.listeners {
		l.mu.Lock()
		out = append(out, l.addrs...)
		l.mu.Unlock()
	}
	return out
}

// acceptLoop 报告监听地址并接受入站连接
func (s *Swarm) acceptLoop(l *listener) {
	addrs, err := l.l.Addrs()
	if err != nil {
		s.emit(ListenerError{Listener: l.id, Err: err})
		addrs = []ma.Multiaddr{l.l.Multiaddr()}
	}
	l.mu.Lock()
	l.addrs = addrs
	l.mu.Unlock()
	for _, a := range addrs {
		s.emit(ListenAddressReady{Listener: l.id, Address: a})
	}

	var closeErr error
accept:
	for {
		raw, err := l.l.Accept()
		if err != nil {
			if l.isClosed() || errors.Is(err, net.ErrClosed) {
				break
			}
			s.emit(ListenerError{Listener: l.id, Err: err})
			select {
			case <-s.ctx.Done():
				closeErr = err
				break accept
			case <-s.clock.After(acceptRetryDelay):
			}
			continue
		}

		if s.limiter != nil && !s.limiter.Allow() {
			_ = raw.Close()
			s.emit(IncomingConnectionError{
				Listener:   l.id,
				LocalAddr:  raw.LocalMultiaddr(),
				RemoteAddr: raw.RemoteMultiaddr(),
				Err:        ErrRateLimited,
			})
			continue
		}

		s.emit(IncomingConnection{
			Listener:   l.id,
			LocalAddr:  raw.LocalMultiaddr(),
			RemoteAddr: raw.RemoteMultiaddr(),
		})
		started := s.clock.Now()
		if !s.spawn(func() { s.upgradeInbound(l.id, raw, started) }) {
			_ = raw.Close()
		}
	}

	_ = l.close()

	s.mu.Lock()
	delete(s.listeners, l.id)
	s.mu.Unlock()

	for _, a := range addrs {
		s.emit(ListenAddressExpired{Listener: l.id, Address: a})
	}
	s.emit(ListenerClosed{Listener: l.id, Addresses: addrs, Err: closeErr})
	log.Debug("listener closed", "listener", l.id, "err", closeErr)
}

func (s *Swarm) upgradeInbound(id ListenerID, raw manet.Conn, started time.Time) {
	local, remote := raw.LocalMultiaddr(), raw.RemoteMultiaddr()

	uc, err := s.upgrader.Upgrade(s.ctx, raw, types.DirInbound, "")
	if err != nil {
		log.Debug("inbound upgrade failed", "remote", remote.String(), "err", err)
		s.emit(IncomingConnectionError{Listener: id, LocalAddr: local, RemoteAddr: remote, Err: err})
		return
	}

	if uc.RemotePeer() == s.localPeer {
		_ = uc.Close()
		s.emit(IncomingConnectionError{Listener: id, LocalAddr: local, RemoteAddr: remote, Err: ErrDialToSelf})
		return
	}

	if _, err := s.register(uc, types.DirInbound, started); err != nil {
		s.emit(IncomingConnectionError{Listener: id, LocalAddr: local, RemoteAddr: remote, Err: err})
	}
}
