package types

import (
	"fmt"

	"github.com/mr-tron/base58"
	mh "github.com/multiformats/go-multihash"
)

// ============================================================================
//                              PeerID - 节点标识
// ============================================================================

// PeerID 节点标识
//
// 保存 multihash 的 base58btc 文本形式。Ed25519 公钥经 protobuf 编码后
// 长度不超过 42 字节，使用 identity multihash，文本以 "12D3KooW" 开头。
type PeerID string

// maxInlineKeyLen 不超过该长度的公钥直接内联进 identity multihash
const maxInlineKeyLen = 42

// PeerIDFromPublicKeyBytes 从 protobuf 编码后的公钥派生 PeerID
func PeerIDFromPublicKeyBytes(marshaled []byte) (PeerID, error) {
	code := uint64(mh.SHA2_256)
	if len(marshaled) <= maxInlineKeyLen {
		code = mh.IDENTITY
	}
	hash, err := mh.Sum(marshaled, code, -1)
	if err != nil {
		return "", fmt.Errorf("hash public key: %w", err)
	}
	return PeerID(base58.Encode(hash)), nil
}

// DecodePeerID 解析并校验 PeerID 文本
func DecodePeerID(s string) (PeerID, error) {
	id := PeerID(s)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate 校验文本是合法的 base58 multihash
func (id PeerID) Validate() error {
	if id == "" {
		return ErrEmptyPeerID
	}
	if _, err := id.Multihash(); err != nil {
		return err
	}
	return nil
}

// Multihash 返回解码后的 multihash
func (id PeerID) Multihash() (mh.Multihash, error) {
	raw, err := base58.Decode(string(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}
	hash, err := mh.Cast(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeerID, err)
	}
	return hash, nil
}

// InlinedKey 返回 identity multihash 中内联的公钥编码，非内联时 ok 为 false
func (id PeerID) InlinedKey() (marshaled []byte, ok bool) {
	hash, err := id.Multihash()
	if err != nil {
		return nil, false
	}
	decoded, err := mh.Decode(hash)
	if err != nil || decoded.Code != mh.IDENTITY {
		return nil, false
	}
	return decoded.Digest, true
}

// String 返回 PeerID 文本
func (id PeerID) String() string {
	return string(id)
}

// ShortString 返回用于日志的短形式
//
// 内联公钥的 ID 前缀都相同，取末尾 8 个字符。
func (id PeerID) ShortString() string {
	s := string(id)
	if len(s) <= 8 {
		return s
	}
	return "*" + s[len(s)-8:]
}

// IsEmpty 检查是否为空
func (id PeerID) IsEmpty() bool {
	return id == ""
}
