package interfaces

import (
	"crypto/ed25519"

	"github.com/dep2p/go-pingnode/pkg/types"
)

// Identity 节点身份
//
// 进程生命周期内不可变，可被安全传输并发只读共享。
type Identity interface {
	// PeerID 返回由公钥派生的节点 ID
	PeerID() types.PeerID

	// PublicKey 返回 Ed25519 公钥
	PublicKey() ed25519.PublicKey

	// PrivateKey 返回 Ed25519 私钥
	PrivateKey() ed25519.PrivateKey

	// MarshalPublicKey 返回公钥的 protobuf 编码
	MarshalPublicKey() []byte

	// Sign 使用私钥签名
	Sign(data []byte) ([]byte, error)
}
