package tcp

import (
	"sync/atomic"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
)

// Listener TCP 监听器
type Listener struct {
	inner     manet.Listener
	transport *Transport
	keepAlive time.Duration
	closed    atomic.Bool
}

var _ pkgif.Listener = (*Listener)(nil)

// keepAliveConn manet 包装的 TCP 连接会提升 *net.TCPConn 的方法
type keepAliveConn interface {
	SetKeepAlive(bool) error
	SetKeepAlivePeriod(time.Duration) error
}

// Accept 等待入站连接
func (l *Listener) Accept() (manet.Conn, error) {
	c, err := l.inner.Accept()
	if err != nil {
		return nil, err
	}
	setNoDelay(c)
	if tc, ok := c.(keepAliveConn); ok && l.keepAlive > 0 {
		_ = tc.SetKeepAlive(true)
		_ = tc.SetKeepAlivePeriod(l.keepAlive)
	}
	return c, nil
}

// Multiaddr 返回实际绑定地址
func (l *Listener) Multiaddr() ma.Multiaddr {
	return l.inner.Multiaddr()
}

// Addrs 返回具体地址
//
// 绑定在 0.0.0.0 或 :: 时按本机网卡展开，否则只有绑定地址本身。
func (l *Listener) Addrs() ([]ma.Multiaddr, error) {
	bound := l.inner.Multiaddr()
	if !manet.IsIPUnspecified(bound) {
		return []ma.Multiaddr{bound}, nil
	}
	ifaces, err := manet.InterfaceMultiaddrs()
	if err != nil {
		return nil, err
	}
	return manet.ResolveUnspecifiedAddress(bound, ifaces)
}

// Close 关闭监听器，重复调用返回 nil
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	l.transport.removeListener(l)
	return l.inner.Close()
}
