package security

import "errors"

var (
	// ErrUnknownSecurity 配置中出现未知的安全协议名
	ErrUnknownSecurity = errors.New("unknown security protocol")

	// ErrNoSecurity 没有启用任何安全协议
	ErrNoSecurity = errors.New("no security protocol enabled")

	// ErrDuplicateSecurity 同一安全协议出现多次
	ErrDuplicateSecurity = errors.New("duplicate security protocol")
)
