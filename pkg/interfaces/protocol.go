package interfaces

import (
	"context"

	"github.com/dep2p/go-pingnode/pkg/types"
)

// Stream 已协商协议的流
type Stream interface {
	MuxedStream

	// Protocol 返回流上协商出的协议
	Protocol() types.ProtocolID

	// RemotePeer 返回流所在连接的远端节点
	RemotePeer() types.PeerID
}

// ProtocolConn 协议行为看到的单条连接
type ProtocolConn interface {
	// ID 返回本地唯一的连接 ID
	ID() string

	// RemotePeer 返回远端节点
	RemotePeer() types.PeerID

	// Direction 返回连接方向
	Direction() types.Direction

	// NewStream 打开一条使用本协议的出站流
	NewStream(ctx context.Context) (Stream, error)

	// Emit 将协议事件交给事件循环
	Emit(payload any)

	// Close 以给定原因关闭整条连接
	Close(reason types.CloseReason) error
}

// ConnHandler 单条连接上的协议处理器
type ConnHandler interface {
	// Run 驱动出站行为，ctx 在连接关闭时取消
	Run(ctx context.Context)

	// HandleInbound 处理对端打开的本协议流，返回前需关闭流
	HandleInbound(ctx context.Context, s Stream)
}

// Behaviour 可插入连接管理器的协议行为
type Behaviour interface {
	// Protocol 返回协议标识
	Protocol() types.ProtocolID

	// NewHandler 在连接建立时创建该连接的处理器
	NewHandler(conn ProtocolConn) ConnHandler
}
