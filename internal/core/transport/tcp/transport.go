package tcp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	madns "github.com/multiformats/go-multiaddr-dns"
	manet "github.com/multiformats/go-multiaddr/net"
	"go.uber.org/multierr"

	"github.com/dep2p/go-pingnode/internal/util/logger"
	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
)

var log = logger.Logger("transport/tcp")

// ============================================================================
//                              Transport 实现
// ============================================================================

// Config TCP 传输配置
type Config struct {
	// KeepAlive TCP keep-alive 周期，0 使用系统默认
	KeepAlive time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{KeepAlive: 30 * time.Second}
}

// Transport TCP 传输
type Transport struct {
	cfg      Config
	resolver *madns.Resolver

	mu        sync.Mutex
	listeners map[*Listener]struct{}

	closed atomic.Bool
}

var _ pkgif.Transport = (*Transport)(nil)

// New 创建 TCP 传输
func New(cfg Config) *Transport {
	return &Transport{
		cfg:       cfg,
		resolver:  madns.DefaultResolver,
		listeners: make(map[*Listener]struct{}),
	}
}

// Protocols 返回支持的 multiaddr 协议码
func (t *Transport) Protocols() []int {
	return []int{ma.P_TCP}
}

// CanDial 支持 ip4/ip6/dns/dns4/dns6 + tcp
func (t *Transport) CanDial(addr ma.Multiaddr) bool {
	return matches(addr, true)
}

// CanListen 只支持 ip4/ip6 + tcp
func (t *Transport) CanListen(addr ma.Multiaddr) bool {
	return matches(addr, false)
}

func matches(addr ma.Multiaddr, allowDNS bool) bool {
	if addr == nil {
		return false
	}
	protos := addr.Protocols()
	if len(protos) != 2 || protos[1].Code != ma.P_TCP {
		return false
	}
	switch protos[0].Code {
	case ma.P_IP4, ma.P_IP6:
		return true
	case ma.P_DNS, ma.P_DNS4, ma.P_DNS6:
		return allowDNS
	default:
		return false
	}
}

// Dial 建立出站 TCP 连接
//
// DNS 地址先解析，按解析结果依次尝试，返回第一条成功的连接。
func (t *Transport) Dial(ctx context.Context, raddr ma.Multiaddr) (manet.Conn, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	if !t.CanDial(raddr) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddress, raddr)
	}

	targets := []ma.Multiaddr{raddr}
	if madns.Matches(raddr) {
		resolved, err := t.resolve(ctx, raddr)
		if err != nil {
			return nil, err
		}
		targets = resolved
	}

	d := manet.Dialer{Dialer: net.Dialer{KeepAlive: t.cfg.KeepAlive}}

	var errs error
	for _, target := range targets {
		conn, err := d.DialContext(ctx, target)
		if err == nil {
			setNoDelay(conn)
			log.Debug("dialed", "addr", target.String())
			return conn, nil
		}
		errs = multierr.Append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errs
}

func (t *Transport) resolve(ctx context.Context, raddr ma.Multiaddr) ([]ma.Multiaddr, error) {
	resolved, err := t.resolver.Resolve(ctx, raddr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", raddr, err)
	}
	out := resolved[:0]
	for _, a := range resolved {
		if matches(a, false) {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoResolvedAddress, raddr)
	}
	return out, nil
}

// Listen 在 ip4/ip6 TCP 地址上监听
func (t *Transport) Listen(laddr ma.Multiaddr) (pkgif.Listener, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	if !t.CanListen(laddr) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAddress, laddr)
	}

	ml, err := manet.Listen(laddr)
	if err != nil {
		return nil, err
	}

	l := &Listener{inner: ml, transport: t, keepAlive: t.cfg.KeepAlive}
	t.mu.Lock()
	t.listeners[l] = struct{}{}
	t.mu.Unlock()

	log.Debug("listening", "requested", laddr.String(), "bound", ml.Multiaddr().String())
	return l, nil
}

func (t *Transport) removeListener(l *Listener) {
	t.mu.Lock()
	delete(t.listeners, l)
	t.mu.Unlock()
}

// Close 关闭传输及其全部监听器
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	t.mu.Lock()
	ls := make([]*Listener, 0, len(t.listeners))
	for l := range t.listeners {
		ls = append(ls, l)
	}
	t.mu.Unlock()

	var errs error
	for _, l := range ls {
		errs = multierr.Append(errs, l.Close())
	}
	return errs
}

func setNoDelay(c manet.Conn) {
	if tc, ok := c.(interface{ SetNoDelay(bool) error }); ok {
		_ = tc.SetNoDelay(true)
	}
}
