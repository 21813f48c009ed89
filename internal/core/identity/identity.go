package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

// Identity 节点身份，创建后不可变
type Identity struct {
	priv      ed25519.PrivateKey
	pub       ed25519.PublicKey
	marshaled []byte
	peerID    types.PeerID
}

var _ pkgif.Identity = (*Identity)(nil)

// Generate 生成新的随机身份
func Generate() (*Identity, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return FromPrivateKey(priv)
}

// FromPrivateKey 从已有私钥构建身份
func FromPrivateKey(priv ed25519.PrivateKey) (*Identity, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKeySize
	}
	priv = append(ed25519.PrivateKey(nil), priv...)
	pub := priv.Public().(ed25519.PublicKey)

	marshaled := MarshalPublicKey(pub)
	id, err := types.PeerIDFromPublicKeyBytes(marshaled)
	if err != nil {
		return nil, err
	}

	return &Identity{
		priv:      priv,
		pub:       pub,
		marshaled: marshaled,
		peerID:    id,
	}, nil
}

// PeerID 返回节点 ID
func (i *Identity) PeerID() types.PeerID {
	return i.peerID
}

// PublicKey 返回公钥
func (i *Identity) PublicKey() ed25519.PublicKey {
	return i.pub
}

// PrivateKey 返回私钥
func (i *Identity) PrivateKey() ed25519.PrivateKey {
	return i.priv
}

// MarshalPublicKey 返回公钥的 protobuf 编码
func (i *Identity) MarshalPublicKey() []byte {
	return append([]byte(nil), i.marshaled...)
}

// Sign 签名
func (i *Identity) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(i.priv, data), nil
}

// Verify 使用 protobuf 编码的公钥验证签名
func Verify(marshaledPub, data, sig []byte) (bool, error) {
	pub, err := UnmarshalPublicKey(marshaledPub)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(pub, data, sig), nil
}
