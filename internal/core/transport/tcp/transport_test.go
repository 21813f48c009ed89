package tcp

import (
	"context"
	"io"
	"testing"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAddr(t *testing.T, s string) ma.Multiaddr {
	t.Helper()
	a, err := ma.NewMultiaddr(s)
	require.NoError(t, err)
	return a
}

func TestCanDialCanListen(t *testing.T) {
	tr := New(DefaultConfig())

	cases := []struct {
		addr   string
		dial   bool
		listen bool
	}{
		{"/ip4/127.0.0.1/tcp/4001", true, true},
		{"/ip6/::1/tcp/4001", true, true},
		{"/dns4/example.com/tcp/4001", true, false},
		{"/ip4/127.0.0.1/udp/4001", false, false},
		{"/ip4/127.0.0.1/udp/4001/quic-v1", false, false},
		{"/ip4/127.0.0.1", false, false},
	}
	for _, c := range cases {
		addr := mustAddr(t, c.addr)
		assert.Equal(t, c.dial, tr.CanDial(addr), "dial %s", c.addr)
		assert.Equal(t, c.listen, tr.CanListen(addr), "listen %s", c.addr)
	}
	assert.False(t, tr.CanDial(nil))
}

func TestListenReportsBoundPort(t *testing.T) {
	tr := New(DefaultConfig())
	defer tr.Close()

	l, err := tr.Listen(mustAddr(t, "/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)
	defer l.Close()

	port, err := l.Multiaddr().ValueForProtocol(ma.P_TCP)
	require.NoError(t, err)
	assert.NotEqual(t, "0", port)

	addrs, err := l.Addrs()
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	assert.True(t, addrs[0].Equal(l.Multiaddr()))
}

func TestListenWildcardExpands(t *testing.T) {
	tr := New(DefaultConfig())
	defer tr.Close()

	l, err := tr.Listen(mustAddr(t, "/ip4/0.0.0.0/tcp/0"))
	require.NoError(t, err)
	defer l.Close()

	addrs, err := l.Addrs()
	require.NoError(t, err)
	require.NotEmpty(t, addrs)
	for _, a := range addrs {
		assert.False(t, manet.IsIPUnspecified(a), a.String())
	}
}

func TestDialAndAccept(t *testing.T) {
	tr := New(DefaultConfig())
	defer tr.Close()

	l, err := tr.Listen(mustAddr(t, "/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)

	accepted := make(chan manet.Conn, 1)
	go func() {
		c, err := l.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := tr.Dial(ctx, l.Multiaddr())
	require.NoError(t, err)
	defer c.Close()

	var server manet.Conn
	select {
	case server = <-accepted:
	case <-ctx.Done():
		t.Fatal("accept timed out")
	}
	defer server.Close()

	_, err = c.Write([]byte("ping"))
	require.NoError(t, err)

	buf := make([]byte, 4)
	_, err = io.ReadFull(server, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))
	assert.True(t, server.RemoteMultiaddr().Equal(c.LocalMultiaddr()))
}

func TestDialRefused(t *testing.T) {
	tr := New(DefaultConfig())
	defer tr.Close()

	// 先占用端口再释放，得到一个大概率无人监听的端口
	l, err := tr.Listen(mustAddr(t, "/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)
	addr := l.Multiaddr()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = tr.Dial(ctx, addr)
	assert.Error(t, err)
}

func TestUnsupportedAndClosed(t *testing.T) {
	tr := New(DefaultConfig())

	_, err := tr.Dial(context.Background(), mustAddr(t, "/ip4/127.0.0.1/udp/1"))
	assert.ErrorIs(t, err, ErrUnsupportedAddress)

	_, err = tr.Listen(mustAddr(t, "/dns4/localhost/tcp/0"))
	assert.ErrorIs(t, err, ErrUnsupportedAddress)

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	_, err = tr.Listen(mustAddr(t, "/ip4/127.0.0.1/tcp/0"))
	assert.ErrorIs(t, err, ErrTransportClosed)
}

func TestCloseClosesListeners(t *testing.T) {
	tr := New(DefaultConfig())

	l, err := tr.Listen(mustAddr(t, "/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := l.Accept()
		done <- err
	}()

	require.NoError(t, tr.Close())
	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("accept did not unblock")
	}
}
