package swarm

import (
	"errors"
	"fmt"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-pingnode/pkg/types"
)

var (
	// ErrSwarmClosed Swarm 已关闭
	ErrSwarmClosed = errors.New("swarm closed")

	// ErrUnsupportedAddress 没有传输层支持该地址
	ErrUnsupportedAddress = errors.New("unsupported address")

	// ErrDialToSelf 尝试拨号自己
	ErrDialToSelf = errors.New("dial to self attempted")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("invalid swarm config")

	// ErrConnClosed 连接已关闭
	ErrConnClosed = errors.New("connection closed")

	// ErrUnknownListener 监听器不存在
	ErrUnknownListener = errors.New("unknown listener")

	// ErrRateLimited 入站连接超过速率限制
	ErrRateLimited = errors.New("inbound connection rate limited")
)

// DialError 拨号错误
type DialError struct {
	Address ma.Multiaddr
	Peer    types.PeerID
	Err     error
}

func (e *DialError) Error() string {
	if e.Peer.IsEmpty() {
		return fmt.Sprintf("dial %s: %v", e.Address, e.Err)
	}
	return fmt.Sprintf("dial %s (peer %s): %v", e.Address, e.Peer.ShortString(), e.Err)
}

func (e *DialError) Unwrap() error {
	return e.Err
}

// ListenError 监听错误
type ListenError struct {
	Address ma.Multiaddr
	Err     error
}

func (e *ListenError) Error() string {
	return fmt.Sprintf("listen %s: %v", e.Address, e.Err)
}

func (e *ListenError) Unwrap() error {
	return e.Err
}
