package identity

import (
	"crypto/ed25519"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-pingnode/pkg/types"
)

// keyTypeEd25519 与 libp2p crypto.pb 中 KeyType.Ed25519 的取值一致
const keyTypeEd25519 = 1

// 公钥消息字段号
const (
	fieldKeyType protowire.Number = 1
	fieldKeyData protowire.Number = 2
)

// MarshalPublicKey 将 Ed25519 公钥编码为 {1: KeyType, 2: Data}
func MarshalPublicKey(pub ed25519.PublicKey) []byte {
	b := make([]byte, 0, 4+len(pub))
	b = protowire.AppendTag(b, fieldKeyType, protowire.VarintType)
	b = protowire.AppendVarint(b, keyTypeEd25519)
	b = protowire.AppendTag(b, fieldKeyData, protowire.BytesType)
	b = protowire.AppendBytes(b, pub)
	return b
}

// UnmarshalPublicKey 解析 MarshalPublicKey 的输出
func UnmarshalPublicKey(b []byte) (ed25519.PublicKey, error) {
	var (
		keyType uint64
		data    []byte
		seen    bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldKeyType && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, protowire.ParseError(m))
			}
			keyType, seen = v, true
			b = b[m:]
		case num == fieldKeyData && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, protowire.ParseError(m))
			}
			data = v
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, protowire.ParseError(m))
			}
			b = b[m:]
		}
	}

	if !seen || keyType != keyTypeEd25519 {
		return nil, ErrUnsupportedKeyType
	}
	if len(data) != ed25519.PublicKeySize {
		return nil, ErrInvalidKeySize
	}
	return ed25519.PublicKey(append([]byte(nil), data...)), nil
}

// PeerIDFromPublicKey 从公钥派生 PeerID
func PeerIDFromPublicKey(pub ed25519.PublicKey) (types.PeerID, error) {
	if len(pub) != ed25519.PublicKeySize {
		return "", ErrInvalidKeySize
	}
	return types.PeerIDFromPublicKeyBytes(MarshalPublicKey(pub))
}

// PublicKeyFromPeerID 从内联了公钥的 PeerID 还原公钥
func PublicKeyFromPeerID(id types.PeerID) (ed25519.PublicKey, error) {
	raw, ok := id.InlinedKey()
	if !ok {
		return nil, ErrNoInlinedKey
	}
	return UnmarshalPublicKey(raw)
}

// VerifyPeer 检查公钥编码派生出的 PeerID 是否与期望一致，expected 为空时跳过比较
func VerifyPeer(marshaled []byte, expected types.PeerID) (types.PeerID, error) {
	pub, err := UnmarshalPublicKey(marshaled)
	if err != nil {
		return "", err
	}
	id, err := PeerIDFromPublicKey(pub)
	if err != nil {
		return "", err
	}
	if !expected.IsEmpty() && id != expected {
		return "", fmt.Errorf("%w: expected %s, got %s", ErrPeerIDMismatch, expected, id)
	}
	return id, nil
}
