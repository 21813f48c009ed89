package tls

import (
	"crypto/tls"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

// secureConn TLS 加密连接
type secureConn struct {
	*tls.Conn

	localPeer  types.PeerID
	remotePeer types.PeerID
	remoteKey  []byte
}

var _ pkgif.SecureConn = (*secureConn)(nil)

func (c *secureConn) LocalPeer() types.PeerID {
	return c.localPeer
}

func (c *secureConn) RemotePeer() types.PeerID {
	return c.remotePeer
}

func (c *secureConn) RemotePublicKey() []byte {
	return c.remoteKey
}

func (c *secureConn) Protocol() types.ProtocolID {
	return ID
}
