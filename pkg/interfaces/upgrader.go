package interfaces

import (
	"context"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/dep2p/go-pingnode/pkg/types"
)

// Upgrader 将原始连接升级为安全、多路复用的连接
type Upgrader interface {
	// Upgrade 依次协商安全协议和多路复用协议
	//
	// 失败时原始连接已被关闭，不会返回半成品连接。
	Upgrade(ctx context.Context, conn manet.Conn, dir types.Direction, expected types.PeerID) (UpgradedConn, error)
}

// UpgradedConn 升级完成的连接
type UpgradedConn interface {
	MuxedConn

	// LocalPeer 返回本地节点 ID
	LocalPeer() types.PeerID

	// RemotePeer 返回已验证的远端节点 ID
	RemotePeer() types.PeerID

	// LocalMultiaddr 返回本地地址
	LocalMultiaddr() ma.Multiaddr

	// RemoteMultiaddr 返回远端地址
	RemoteMultiaddr() ma.Multiaddr

	// Security 返回协商出的安全协议
	Security() types.ProtocolID

	// Muxer 返回协商出的多路复用协议
	Muxer() types.ProtocolID

	// TransportError 返回安全通道上第一次读失败的错误，未失败时为 nil
	TransportError() error
}
