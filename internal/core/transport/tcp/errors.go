package tcp

import "errors"

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("transport closed")

	// ErrUnsupportedAddress 不是 TCP 地址
	ErrUnsupportedAddress = errors.New("unsupported address for tcp transport")

	// ErrNoResolvedAddress DNS 解析没有得到可拨号的地址
	ErrNoResolvedAddress = errors.New("dns resolution returned no dialable address")
)
