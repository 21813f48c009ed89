package swarm

import (
	"time"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-pingnode/pkg/types"
)

// ListenerID 监听器标识
type ListenerID string

// Event Swarm 事件
//
// 具体类型见本文件，消费者按类型分派。
type Event interface {
	// Name 返回事件名，用于日志
	Name() string
}

// ============================================================================
//                              监听事件
// ============================================================================

// ListenAddressReady 监听地址可用
type ListenAddressReady struct {
	Listener ListenerID
	Address  ma.Multiaddr
}

// ListenAddressExpired 监听地址失效
type ListenAddressExpired struct {
	Listener ListenerID
	Address  ma.Multiaddr
}

// ListenerClosed 监听器已停止
type ListenerClosed struct {
	Listener  ListenerID
	Addresses []ma.Multiaddr
	Err       error
}

// ListenerError 监听器出现非致命错误
type ListenerError struct {
	Listener ListenerID
	Err      error
}

// ============================================================================
//                              连接事件
// ============================================================================

// IncomingConnection 接受了一条入站原始连接，开始协商
type IncomingConnection struct {
	Listener   ListenerID
	LocalAddr  ma.Multiaddr
	RemoteAddr ma.Multiaddr
}

// IncomingConnectionError 入站连接协商失败
type IncomingConnectionError struct {
	Listener   ListenerID
	LocalAddr  ma.Multiaddr
	RemoteAddr ma.Multiaddr
	Err        error
}

// Dialing 开始拨号
type Dialing struct {
	Address ma.Multiaddr
	Peer    types.PeerID
}

// OutgoingConnectionError 出站连接失败
type OutgoingConnectionError struct {
	Address ma.Multiaddr
	Peer    types.PeerID
	Err     error
}

// ConnectionEstablished 连接已升级并登记
type ConnectionEstablished struct {
	Peer           types.PeerID
	ConnID         string
	Direction      types.Direction
	Endpoint       ma.Multiaddr
	NumEstablished int
	EstablishedIn  time.Duration
}

// ConnectionClosed 连接已关闭并移除
type ConnectionClosed struct {
	Peer           types.PeerID
	ConnID         string
	Direction      types.Direction
	Reason         types.CloseReason
	Err            error
	NumEstablished int
}

// ProtocolEvent 协议行为产生的事件
type ProtocolEvent struct {
	Peer     types.PeerID
	ConnID   string
	Protocol types.ProtocolID
	Payload  any
}

func (ListenAddressReady) Name() string      { return "listen_address_ready" }
func (ListenAddressExpired) Name() string    { return "listen_address_expired" }
func (ListenerClosed) Name() string          { return "listener_closed" }
func (ListenerError) Name() string           { return "listener_error" }
func (IncomingConnection) Name() string      { return "incoming_connection" }
func (IncomingConnectionError) Name() string { return "incoming_connection_error" }
func (Dialing) Name() string                 { return "dialing" }
func (OutgoingConnectionError) Name() string { return "outgoing_connection_error" }
func (ConnectionEstablished) Name() string   { return "connection_established" }
func (ConnectionClosed) Name() string        { return "connection_closed" }
func (ProtocolEvent) Name() string           { return "protocol_event" }
