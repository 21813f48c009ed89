package upgrader

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-pingnode/pkg/types"
)

var (
	// ErrNilIdentity 身份为空
	ErrNilIdentity = errors.New("upgrader: identity is nil")

	// ErrNoSecurityTransport 没有安全传输
	ErrNoSecurityTransport = errors.New("upgrader: no security transport configured")

	// ErrNoStreamMuxer 没有多路复用器
	ErrNoStreamMuxer = errors.New("upgrader: no stream muxer configured")

	// ErrSecurityFailure 安全协议协商或握手失败
	ErrSecurityFailure = errors.New("security negotiation failed")

	// ErrMultiplexFailure 多路复用协商或会话建立失败
	ErrMultiplexFailure = errors.New("multiplexer negotiation failed")

	// ErrNegotiationTimeout 协商超时
	ErrNegotiationTimeout = errors.New("negotiation timed out")
)

// FailureKind 协商失败的类别
type FailureKind int

const (
	// SecurityFailure 安全层失败
	SecurityFailure FailureKind = iota + 1
	// MultiplexFailure 多路复用层失败
	MultiplexFailure
	// Timeout 超过协商时限
	Timeout
)

func (k FailureKind) String() string {
	switch k {
	case SecurityFailure:
		return "security"
	case MultiplexFailure:
		return "multiplex"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

func (k FailureKind) sentinel() error {
	switch k {
	case SecurityFailure:
		return ErrSecurityFailure
	case MultiplexFailure:
		return ErrMultiplexFailure
	case Timeout:
		return ErrNegotiationTimeout
	default:
		return nil
	}
}

// NegotiationError 连接升级失败
type NegotiationError struct {
	Kind      FailureKind
	Direction types.Direction
	Err       error
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("%s negotiation failed (%s): %v", e.Direction, e.Kind, e.Err)
}

func (e *NegotiationError) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is 可以按类别匹配哨兵错误
func (e *NegotiationError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
