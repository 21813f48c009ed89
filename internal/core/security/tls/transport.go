package tls

import (
	"context"
	"crypto/ed25519"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"

	"github.com/dep2p/go-pingnode/internal/core/identity"
	"github.com/dep2p/go-pingnode/internal/util/logger"
	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/protocolids"
	"github.com/dep2p/go-pingnode/pkg/types"
)

var log = logger.Logger("security/tls")

// ID TLS 安全协议标识
const ID = protocolids.TLS

// Transport TLS 安全传输
type Transport struct {
	identity pkgif.Identity
	cert     *tls.Certificate
}

var _ pkgif.SecureTransport = (*Transport)(nil)

// New 创建 TLS 传输，证书在创建时签发一次
func New(id pkgif.Identity) (*Transport, error) {
	if id == nil {
		return nil, fmt.Errorf("tls: identity is nil")
	}
	cert, err := newCertificate(id)
	if err != nil {
		return nil, err
	}
	return &Transport{identity: id, cert: cert}, nil
}

// ID 返回协议标识
func (t *Transport) ID() types.ProtocolID {
	return ID
}

func (t *Transport) config(expected types.PeerID) *tls.Config {
	return &tls.Config{
		MinVersion:   tls.VersionTLS13,
		Certificates: []tls.Certificate{*t.cert},
		ClientAuth:   tls.RequireAnyClientCert,
		// 不走 CA 校验，身份由 VerifyPeerCertificate 从证书公钥派生
		InsecureSkipVerify: true,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			_, err := peerFromCertificates(rawCerts, expected)
			return err
		},
		SessionTicketsDisabled: true,
	}
}

// SecureInbound 服务端握手
func (t *Transport) SecureInbound(ctx context.Context, conn net.Conn) (pkgif.SecureConn, error) {
	return t.handshake(ctx, tls.Server(conn, t.config("")), false)
}

// SecureOutbound 客户端握手
func (t *Transport) SecureOutbound(ctx context.Context, conn net.Conn, expected types.PeerID) (pkgif.SecureConn, error) {
	return t.handshake(ctx, tls.Client(conn, t.config(expected)), true)
}

func (t *Transport) handshake(ctx context.Context, tc *tls.Conn, initiator bool) (pkgif.SecureConn, error) {
	if err := tc.HandshakeContext(ctx); err != nil {
		log.Debug("tls handshake failed",
			"initiator", initiator,
			"remote", tc.RemoteAddr().String(),
			"err", err)
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	state := tc.ConnectionState()
	if len(state.PeerCertificates) != 1 {
		return nil, ErrNoCertificate
	}
	pub, ok := state.PeerCertificates[0].PublicKey.(ed25519.PublicKey)
	if !ok {
		return nil, ErrUnsupportedCertKey
	}
	remoteKey := identity.MarshalPublicKey(pub)
	remotePeer, err := identity.PeerIDFromPublicKey(pub)
	if err != nil {
		return nil, err
	}

	log.Debug("tls handshake complete",
		"initiator", initiator,
		"peer", remotePeer.ShortString())

	return &secureConn{
		Conn:       tc,
		localPeer:  t.identity.PeerID(),
		remotePeer: remotePeer,
		remoteKey:  remoteKey,
	}, nil
}
