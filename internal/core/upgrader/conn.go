package upgrader

import (
	"sync"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

// trackedConn 记录安全通道上第一次读失败的原因
//
// 多路复用会话结束时，swarm 据此区分对端正常关闭和 I/O 错误。
type trackedConn struct {
	pkgif.SecureConn

	mu      sync.Mutex
	readErr error
}

func (c *trackedConn) Read(p []byte) (int, error) {
	n, err := c.SecureConn.Read(p)
	if err != nil {
		c.mu.Lock()
		if c.readErr == nil {
			c.readErr = err
		}
		c.mu.Unlock()
	}
	return n, err
}

func (c *trackedConn) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

// upgradedConn 升级完成的连接
type upgradedConn struct {
	pkgif.MuxedConn

	secure   *trackedConn
	raw      manet.Conn
	security types.ProtocolID
	muxer    types.ProtocolID
}

var _ pkgif.UpgradedConn = (*upgradedConn)(nil)

func (c *upgradedConn) LocalPeer() types.PeerID {
	return c.secure.LocalPeer()
}

func (c *upgradedConn) RemotePeer() types.PeerID {
	return c.secure.RemotePeer()
}

func (c *upgradedConn) LocalMultiaddr() ma.Multiaddr {
	return c.raw.LocalMultiaddr()
}

func (c *upgradedConn) RemoteMultiaddr() ma.Multiaddr {
	return c.raw.RemoteMultiaddr()
}

func (c *upgradedConn) Security() types.ProtocolID {
	return c.security
}

func (c *upgradedConn) Muxer() types.ProtocolID {
	return c.muxer
}

func (c *upgradedConn) TransportError() error {
	return c.secure.err()
}
