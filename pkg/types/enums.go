package types

// ============================================================================
//                              Direction - 连接方向
// ============================================================================

// Direction 连接方向
type Direction int

const (
	// DirUnknown 未知方向
	DirUnknown Direction = iota
	// DirInbound 入站连接
	DirInbound
	// DirOutbound 出站连接
	DirOutbound
)

// String 返回方向的字符串表示
func (d Direction) String() string {
	switch d {
	case DirInbound:
		return "inbound"
	case DirOutbound:
		return "outbound"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              CloseReason - 连接关闭原因
// ============================================================================

// CloseReason 连接关闭原因
type CloseReason int

const (
	// CloseUnknown 未知原因
	CloseUnknown CloseReason = iota
	// CloseIdle 空闲超时
	CloseIdle
	// CloseRemoteClosed 对端关闭
	CloseRemoteClosed
	// CloseLivenessExceeded 连续存活探测失败超过上限
	CloseLivenessExceeded
	// CloseIOError 底层 I/O 错误
	CloseIOError
	// CloseLocal 本地主动关闭
	CloseLocal
)

// String 返回关闭原因的字符串表示
func (r CloseReason) String() string {
	switch r {
	case CloseIdle:
		return "idle"
	case CloseRemoteClosed:
		return "remote-closed"
	case CloseLivenessExceeded:
		return "liveness-exceeded"
	case CloseIOError:
		return "io-error"
	case CloseLocal:
		return "local-close"
	default:
		return "unknown"
	}
}
