package tls

import (
	"context"
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
	assert.Equal(t, serverID.PeerID(), s.conn.LocalPeer())
	assert.Equal(t, clientID.MarshalPublicKey(), s.conn.RemotePublicKey())
	assert.Equal(t, ID, s.conn.Protocol())

	t.Log("✅ TLS 双向认证后身份一致")
}

func TestHandshake_DataRoundTrip(t *testing.T) {
	clientTr, _ := newTransport(t)
	serverTr, _ := newTransport(t)

	c, s := handshakePair(t, clientTr, serverTr, "")
	require.NoError(t, c.err)
	require.NoError(t, s.err)

	go func() { _, _ = c.conn.Write([]byte("hello")) }()

	buf := make([]byte, 5)
	_, err := io.ReadFull(s.conn, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))
}

func TestHandshake_PeerMismatch(t *testing.T) {
	clientTr, _ := newTransport(t)
	serverTr, _ := newTransport(t)
	_, other := newTransport(t)

	c, _ := handshakePair(t, clientTr, serverTr, other.PeerID())
	require.Error(t, c.err)
	assert.ErrorIs(t, c.err, identity.ErrPeerIDMismatch)
}

func TestPeerFromCertificates(t *testing.T) {
	tr, id := newTransport(t)
	raw := tr.cert.Certificate

	peer, err := peerFromCertificates(raw, "")
	require.NoError(t, err)
	assert.Equal(t, id.PeerID(), peer)

	_, err = peerFromCertificates(nil, "")
	assert.ErrorIs(t, err, ErrNoCertificate)

	_, err = peerFromCertificates([][]byte{raw[0], raw[0]}, "")
	assert.ErrorIs(t, err, ErrTooManyCertificates)

	_, err = peerFromCertificates([][]byte{{0x30, 0x00}}, "")
	assert.Error(t, err)
}
