package interfaces

import (
	"context"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
)

// Transport 原始字节流传输
//
// 只负责建立未加密的连接，安全和多路复用由 Upgrader 完成。
type Transport interface {
	// Dial 拨号远端地址
	Dial(ctx context.Context, raddr ma.Multiaddr) (manet.Conn, error)

	// Listen 在本地地址监听
	Listen(laddr ma.Multiaddr) (Listener, error)

	// CanDial 检查是否支持拨号该地址
	CanDial(addr ma.Multiaddr) bool

	// CanListen 检查是否支持在该地址监听
	CanListen(addr ma.Multiaddr) bool

	// Protocols 返回支持的 multiaddr 协议码
	Protocols() []int

	// Close 关闭传输
	Close() error
}

// Listener 传输层监听器
type Listener interface {
	// Accept 阻塞等待入站原始连接，监听器关闭后返回错误
	Accept() (manet.Conn, error)

	// Close 关闭监听器
	Close() error

	// Multiaddr 返回实际绑定的地址（端口已确定）
	Multiaddr() ma.Multiaddr

	// Addrs 返回可对外报告的具体地址，通配地址按网卡展开
	Addrs() ([]ma.Multiaddr, error)
}
