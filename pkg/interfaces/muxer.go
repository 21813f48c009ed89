package interfaces

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/dep2p/go-pingnode/pkg/types"
)

// StreamMuxer 流多路复用协议
type StreamMuxer interface {
	// ID 返回协议标识，用于 multistream 协商
	ID() types.ProtocolID

	// NewConn 在安全连接上建立多路复用会话
	NewConn(conn net.Conn, isServer bool) (MuxedConn, error)
}

// MuxedConn 多路复用会话
type MuxedConn interface {
	// OpenStream 打开新流，ctx 取消时放弃
	OpenStream(ctx context.Context) (MuxedStream, error)

	// AcceptStream 等待对端打开的流，会话关闭后返回错误
	AcceptStream() (MuxedStream, error)

	// NumStreams 返回当前打开的流数量
	NumStreams() int

	// CloseChan 会话关闭时关闭
	CloseChan() <-chan struct{}

	// IsClosed 检查会话是否已关闭
	IsClosed() bool

	// Close 关闭会话及其所有流
	Close() error
}

// MuxedStream 多路复用流
type MuxedStream interface {
	io.ReadWriteCloser

	// Reset 立即终止流的双向传输
	Reset() error

	SetDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}
