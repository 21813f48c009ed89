package interfaces

import (
	"context"
	"net"

	"github.com/dep2p/go-pingnode/pkg/types"
)

// SecureTransport 安全握手协议
type SecureTransport interface {
	// ID 返回协议标识，用于 multistream 协商
	ID() types.ProtocolID

	// SecureInbound 作为响应方完成握手
	SecureInbound(ctx context.Context, conn net.Conn) (SecureConn, error)

	// SecureOutbound 作为发起方完成握手
	//
	// expected 非空时，对端身份必须与之一致。
	SecureOutbound(ctx context.Context, conn net.Conn, expected types.PeerID) (SecureConn, error)
}

// SecureConn 完成握手、已认证的加密连接
type SecureConn interface {
	net.Conn

	// LocalPeer 返回本地节点 ID
	LocalPeer() types.PeerID

	// RemotePeer 返回握手中验证过的远端节点 ID
	RemotePeer() types.PeerID

	// RemotePublicKey 返回远端公钥的 protobuf 编码
	RemotePublicKey() []byte

	// Protocol 返回使用的安全协议
	Protocol() types.ProtocolID
}
