package noise

import "errors"

var (
	// ErrInvalidPayload 握手 payload 无法解析
	ErrInvalidPayload = errors.New("invalid noise handshake payload")

	// ErrInvalidSignature 静态密钥未被身份密钥签名
	ErrInvalidSignature = errors.New("static key not signed by identity key")

	// ErrInvalidStaticKey 对端静态密钥长度错误
	ErrInvalidStaticKey = errors.New("invalid remote static key")
)
