package identity

import "errors"

var (
	// ErrInvalidKeySize 密钥长度错误
	ErrInvalidKeySize = errors.New("invalid key size")

	// ErrUnsupportedKeyType 不支持的密钥类型
	ErrUnsupportedKeyType = errors.New("unsupported key type")

	// ErrInvalidPublicKey 公钥编码无效
	ErrInvalidPublicKey = errors.New("invalid public key encoding")

	// ErrInvalidPEM PEM 数据无效
	ErrInvalidPEM = errors.New("invalid PEM data")

	// ErrKeyNotFound 密钥文件不存在
	ErrKeyNotFound = errors.New("key file not found")

	// ErrPeerIDMismatch 对端身份与期望不一致
	ErrPeerIDMismatch = errors.New("peer ID mismatch")

	// ErrNoInlinedKey PeerID 未内联公钥
	ErrNoInlinedKey = errors.New("peer ID does not inline its public key")
)
