package ping

import (
	"errors"
	"fmt"
)

var (
	// ErrPayloadMismatch 回显内容与发送内容不一致
	ErrPayloadMismatch = errors.New("ping: echo payload mismatch")

	// ErrTimeout 截止时间内没有收到回显
	ErrTimeout = errors.New("ping: timed out")

	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("ping: invalid config")
)

// FailureKind 探测失败类别
type FailureKind int

const (
	// Timeout 超时
	Timeout FailureKind = iota + 1
	// Mismatch 回显不一致
	Mismatch
	// IoError 流读写失败
	IoError
)

func (k FailureKind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case Mismatch:
		return "mismatch"
	case IoError:
		return "io"
	default:
		return "unknown"
	}
}

// Failure 一次失败的探测
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("ping %s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
