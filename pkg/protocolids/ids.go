package protocolids

import "github.com/dep2p/go-pingnode/pkg/types"

// ============================================================================
//                              连接升级协议
// ============================================================================

// TLS TLS 1.3 安全传输
const TLS types.ProtocolID = "/tls/1.0.0"

// Noise Noise XX 安全传输
const Noise types.ProtocolID = "/noise"

// Yamux yamux 流多路复用
const Yamux types.ProtocolID = "/yamux/1.0.0"

// ============================================================================
//                              流协议
// ============================================================================

// Ping 存活探测协议
const Ping types.ProtocolID = "/ipfs/ping/1.0.0"

// Security 返回全部安全协议
func Security() []types.ProtocolID {
	return []types.ProtocolID{TLS, Noise}
}

// Muxers 返回全部多路复用协议
func Muxers() []types.ProtocolID {
	return []types.ProtocolID{Yamux}
}

// IsUpgrade 判断协议是否用于连接升级，这类协议不能注册为流协议
func IsUpgrade(p types.ProtocolID) bool {
	switch p {
	case TLS, Noise, Yamux:
		return true
	}
	return false
}
