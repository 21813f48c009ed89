package upgrader

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-pingnode/internal/core/identity"
	"github.com/dep2p/go-pingnode/internal/core/muxer/yamux"
	"github.com/dep2p/go-pingnode/internal/core/security"
	"github.com/dep2p/go-pingnode/internal/core/security/noise"
	tlsimpl "github.com/dep2p/go-pingnode/internal/core/security/tls"
	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

func connPair(t *testing.T) (client, server manet.Conn) {
	t.Helper()
	ln, err := manet.Listen(ma.StringCast("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan manet.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()

	client, err = manet.Dial(ln.Multiaddr())
	require.NoError(t, err)
	server = <-accepted
	require.NotNil(t, server)
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return client, server
}

type node struct {
	id *identity.Identity
	u  *Upgrader
}

func newNode(t *testing.T, order []string, timeout time.Duration, muxers ...pkgif.StreamMuxer) *node {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)

	sts, err := security.New(security.Config{Order: order}, id)
	require.NoError(t, err)

	if len(muxers) == 0 {
		ym, err := yamux.New(yamux.DefaultConfig())
		require.NoError(t, err)
		muxers = []pkgif.StreamMuxer{ym}
	}

	u, err := New(id, Config{NegotiationTimeout: timeout}, sts, muxers)
	require.NoError(t, err)
	return &node{id: id, u: u}
}

type result struct {
	conn pkgif.UpgradedConn
	err  error
}

// upgradePair 并发升级一对连接，返回 (拨号方结果, 监听方结果)
func upgradePair(t *testing.T, dialer, listener *node, expected types.PeerID) (result, result) {
	t.Helper()
	cc, sc := connPair(t)

	inbound := make(chan result, 1)
	go func() {
		c, err := listener.u.Upgrade(context.Background(), sc, types.DirInbound, "")
		inbound <- result{c, err}
	}()

	c, err := dialer.u.Upgrade(context.Background(), cc, types.DirOutbound, expected)
	out := result{c, err}
	in := <-inbound

	t.Cleanup(func() {
		for _, r := range []result{out, in} {
			if r.conn != nil {
				_ = r.conn.Close()
			}
		}
	})
	return out, in
}

type fakeMuxer struct{}

func (fakeMuxer) ID() types.ProtocolID { return "/fake/1.0.0" }

func (fakeMuxer) NewConn(net.Conn, bool) (pkgif.MuxedConn, error) {
	panic("fake muxer must never be selected")
}

// ============================================================================
//                              成功路径
// ============================================================================

func TestUpgrade_TLS(t *testing.T) {
	a := newNode(t, []string{"tls"}, time.Second)
	b := newNode(t, []string{"tls", "noise"}, time.Second)

	out, in := upgradePair(t, a, b, b.id.PeerID())
	require.NoError(t, out.err)
	require.NoError(t, in.err)

	assert.Equal(t, tlsimpl.ID, out.conn.Security())
	assert.Equal(t, tlsimpl.ID, in.conn.Security())
	assert.Equal(t, yamux.ID, out.conn.Muxer())
	assert.Equal(t, b.id.PeerID(), out.conn.RemotePeer())
	assert.Equal(t, a.id.PeerID(), in.conn.RemotePeer())
	assert.Equal(t, a.id.PeerID(), out.conn.LocalPeer())
	t.Log("✅ TLS 升级双方一致")
}

func TestUpgrade_Noise(t *testing.T) {
	a := newNode(t, []string{"noise"}, time.Second)
	b := newNode(t, []string{"tls", "noise"}, time.Second)

	out, in := upgradePair(t, a, b, "")
	require.NoError(t, out.err)
	require.NoError(t, in.err)

	assert.Equal(t, noise.ID, out.conn.Security())
	assert.Equal(t, noise.ID, in.conn.Security())
	assert.Equal(t, b.id.PeerID(), out.conn.RemotePeer())
	assert.Equal(t, a.id.PeerID(), in.conn.RemotePeer())
	t.Log("✅ Noise 升级双方一致")
}

func TestUpgrade_DialerPreferenceWins(t *testing.T) {
	a := newNode(t, []string{"noise", "tls"}, time.Second)
	b := newNode(t, []string{"tls", "noise"}, time.Second)

	out, in := upgradePair(t, a, b, "")
	require.NoError(t, out.err)
	require.NoError(t, in.err)

	assert.Equal(t, noise.ID, out.conn.Security())
	assert.Equal(t, noise.ID, in.conn.Security())
}

func TestUpgrade_StreamRoundTrip(t *testing.T) {
	a := newNode(t, []string{"tls", "noise"}, time.Second)
	b := newNode(t, []string{"tls", "noise"}, time.Second)

	out, in := upgradePair(t, a, b, "")
	require.NoError(t, out.err)
	require.NoError(t, in.err)

	go func() {
		s, err := in.conn.AcceptStream()
		if err != nil {
			return
		}
		defer s.Close()
		_, _ = io.Copy(s, s)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := out.conn.OpenStream(ctx)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Write([]byte("hello"))
	require.NoError(t, err)
	buf := make([]byte, 5)
	_, err = io.ReadFull(s, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))
	assert.NoError(t, out.conn.TransportError())
}

func TestUpgrade_RemoteCloseRecorded(t *testing.T) {
	a := newNode(t, []string{"noise"}, time.Second)
	b := newNode(t, []string{"noise"}, time.Second)

	out, in := upgradePair(t, a, b, "")
	require.NoError(t, out.err)
	require.NoError(t, in.err)

	require.NoError(t, in.conn.Close())

	select {
	case <-out.conn.CloseChan():
	case <-time.After(5 * time.Second):
		t.Fatal("session did not observe remote close")
	}
	assert.Error(t, out.conn.TransportError())
}

// ============================================================================
//                              失败路径
// ============================================================================

func TestUpgrade_NoCommonSecurity(t *testing.T) {
	a := newNode(t, []string{"noise"}, time.Second)
	b := newNode(t, []string{"tls"}, time.Second)

	out, in := upgradePair(t, a, b, "")
	require.Error(t, out.err)
	require.Error(t, in.err)

	assert.ErrorIs(t, out.err, ErrSecurityFailure)
	assert.ErrorIs(t, in.err, ErrSecurityFailure)

	var ne *NegotiationError
	require.ErrorAs(t, out.err, &ne)
	assert.Equal(t, types.DirOutbound, ne.Direction)
	assert.Equal(t, SecurityFailure, ne.Kind)
}

func TestUpgrade_PeerMismatch(t *testing.T) {
	a := newNode(t, []string{"noise"}, time.Second)
	b := newNode(t, []string{"noise"}, time.Second)
	other := newNode(t, []string{"noise"}, time.Second)

	out, _ := upgradePair(t, a, b, other.id.PeerID())
	require.Error(t, out.err)
	assert.ErrorIs(t, out.err, ErrSecurityFailure)
	assert.ErrorIs(t, out.err, identity.ErrPeerIDMismatch)
}

func TestUpgrade_NoCommonMuxer(t *testing.T) {
	a := newNode(t, []string{"noise"}, time.Second, fakeMuxer{})
	b := newNode(t, []string{"noise"}, time.Second)

	out, in := upgradePair(t, a, b, "")
	require.Error(t, out.err)
	require.Error(t, in.err)

	assert.ErrorIs(t, out.err, ErrMultiplexFailure)
	assert.ErrorIs(t, in.err, ErrMultiplexFailure)
}

func TestUpgrade_SilentPeerTimesOut(t *testing.T) {
	a := newNode(t, []string{"tls", "noise"}, 100*time.Millisecond)
	cc, _ := connPair(t)

	start := time.Now()
	_, err := a.u.Upgrade(context.Background(), cc, types.DirOutbound, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegotiationTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)

	// 失败后原始连接已关闭
	_, err = cc.Write([]byte{0})
	assert.Error(t, err)
}

func TestUpgrade_ContextCancel(t *testing.T) {
	a := newNode(t, []string{"tls"}, 10*time.Second)
	cc, _ := connPair(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := a.u.Upgrade(ctx, cc, types.DirOutbound, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNegotiationTimeout)
}

// ============================================================================
//                              构造与模块
// ============================================================================

func TestNew_Validation(t *testing.T) {
	id, err := identity.Generate()
	require.NoError(t, err)
	sts, err := security.New(security.DefaultConfig(), id)
	require.NoError(t, err)

	_, err = New(nil, DefaultConfig(), sts, []pkgif.StreamMuxer{fakeMuxer{}})
	assert.ErrorIs(t, err, ErrNilIdentity)
	_, err = New(id, DefaultConfig(), nil, []pkgif.StreamMuxer{fakeMuxer{}})
	assert.ErrorIs(t, err, ErrNoSecurityTransport)
	_, err = New(id, DefaultConfig(), sts, nil)
	assert.ErrorIs(t, err, ErrNoStreamMuxer)

	u, err := New(id, Config{}, sts, []pkgif.StreamMuxer{fakeMuxer{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().NegotiationTimeout, u.cfg.NegotiationTimeout)
}

func TestModule(t *testing.T) {
	var u pkgif.Upgrader

	app := fxtest.New(t,
		identity.Module(),
		security.Module(),
		yamux.Module(),
		Module(),
		fx.Populate(&u),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.NotNil(t, u)
}
