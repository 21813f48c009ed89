package noise

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-pingnode/internal/core/identity"
	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

// tcpPair 返回一对已连接的 TCP 连接
func tcpPair(t *testing.T) (client, server net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, _ := ln.Accept()
		accepted <- c
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	server = <-accepted
	require.NotNil(t, server)

	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})
	return client, server
}

func newTransport(t *testing.T) (*Transport, *identity.Identity) {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	tr, err := New(id)
	require.NoError(t, err)
	return tr, id
}

type result struct {
	conn pkgif.SecureConn
	err  error
}

func handshakePair(t *testing.T, client, server *Transport, expected types.PeerID) (result, result) {
	t.Helper()
	cc, sc := tcpPair(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serverCh := make(chan result, 1)
	go func() {
		c, err := server.SecureInbound(ctx, sc)
		if err != nil {
			// 让发起方尽快失败
			_ = sc.Close()
		}
		serverCh <- result{c, err}
	}()

	c, err := client.SecureOutbound(ctx, cc, expected)
	if err != nil {
		_ = cc.Close()
	}
	return result{c, err}, <-serverCh
}

func TestHandshake_IdentitiesAreSymmetric(t *testing.T) {
	clientTr, clientID := newTransport(t)
	serverTr, serverID := newTransport(t)

	c, s := handshakePair(t, clientTr, serverTr, serverID.PeerID())
	require.NoError(t, c.err)
	require.NoError(t, s.err)

	assert.Equal(t, serverID.PeerID(), c.conn.RemotePeer())
	assert.Equal(t, clientID.PeerID(), s.conn.RemotePeer())
	assert.Equal(t, clientID.PeerID(), c.conn.LocalPeer())
	assert.Equal(t, serverID.MarshalPublicKey(), c.conn.RemotePublicKey())
	assert.Equal(t, ID, c.conn.Protocol())

	t.Log("✅ 双方从握手中得到的对端身份一致")
}

func TestHandshake_NoExpectedPeer(t *testing.T) {
	clientTr, _ := newTransport(t)
	serverTr, serverID := newTransport(t)

	c, s := handshakePair(t, clientTr, serverTr, "")
	require.NoError(t, c.err)
	require.NoError(t, s.err)
	assert.Equal(t, serverID.PeerID(), c.conn.RemotePeer())
}

func TestHandshake_PeerMismatch(t *testing.T) {
	clientTr, _ := newTransport(t)
	serverTr, _ := newTransport(t)
	_, other := newTransport(t)

	c, _ := handshakePair(t, clientTr, serverTr, other.PeerID())
	require.Error(t, c.err)
	assert.ErrorIs(t, c.err, identity.ErrPeerIDMismatch)
}

func TestSecureConn_LargeWritesAreChunked(t *testing.T) {
	clientTr, _ := newTransport(t)
	serverTr, _ := newTransport(t)

	c, s := handshakePair(t, clientTr, serverTr, "")
	require.NoError(t, c.err)
	require.NoError(t, s.err)

	data := make([]byte, 3*maxPlaintext+123)
	_, err := rand.Read(data)
	require.NoError(t, err)

	writeErr := make(chan error, 1)
	go func() {
		_, err := c.conn.Write(data)
		writeErr <- err
	}()

	got := make([]byte, len(data))
	_, err = io.ReadFull(s.conn, got)
	require.NoError(t, err)
	require.NoError(t, <-writeErr)
	assert.True(t, bytes.Equal(data, got))
}

func TestSecureConn_Bidirectional(t *testing.T) {
	clientTr, _ := newTransport(t)
	serverTr, _ := newTransport(t)

	c, s := handshakePair(t, clientTr, serverTr, "")
	require.NoError(t, c.err)
	require.NoError(t, s.err)

	_, err := c.conn.Write([]byte("hello"))
	require.NoError(t, err)
	buf := make([]byte, 5)
	_, err = io.ReadFull(s.conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	_, err = s.conn.Write([]byte("world"))
	require.NoError(t, err)
	_, err = io.ReadFull(c.conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "world", string(buf))
}

func TestPayload_Invalid(t *testing.T) {
	var p handshakePayload
	assert.ErrorIs(t, p.unmarshal(nil), ErrInvalidPayload)
	assert.ErrorIs(t, p.unmarshal([]byte{0x0a, 0x05, 0x01}), ErrInvalidPayload)

	_, _, err := verifyPayload(nil, []byte{1, 2, 3}, "")
	assert.ErrorIs(t, err, ErrInvalidStaticKey)
}

func TestVerifyPayload_BadSignature(t *testing.T) {
	tr, id := newTransport(t)

	otherStatic := make([]byte, 32)
	_, err := rand.Read(otherStatic)
	require.NoError(t, err)

	// payload 签的是 tr.static.Public，换一个静态密钥后签名不成立
	_, _, err = verifyPayload(tr.payload, otherStatic, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, peer, err := verifyPayload(tr.payload, tr.static.Public, "")
	require.NoError(t, err)
	assert.Equal(t, id.PeerID(), peer)
}
