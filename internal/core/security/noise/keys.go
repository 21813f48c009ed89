package noise

import (
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
)

// curvePrivate Ed25519 私钥 -> X25519 私钥（RFC 7748 clamping）
func curvePrivate(priv ed25519.PrivateKey) []byte {
	h := sha512.Sum512(priv.Seed())
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64
	return h[:32]
}

// curvePublic Ed25519 公钥 -> X25519 公钥，u = (1 + y) / (1 - y)
func curvePublic(pub ed25519.PublicKey) ([]byte, error) {
	p, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return nil, fmt.Errorf("decode ed25519 point: %w", err)
	}
	return p.BytesMontgomery(), nil
}
