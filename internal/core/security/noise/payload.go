package noise

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// signaturePrefix 签名内容前缀
const signaturePrefix = "noise-libp2p-static-key:"

// NoiseHandshakePayload 字段号
const (
	fieldIdentityKey protowire.Number = 1
	fieldIdentitySig protowire.Number = 2
)

type handshakePayload struct {
	IdentityKey []byte
	IdentitySig []byte
}

func (p *handshakePayload) marshal() []byte {
	b := make([]byte, 0, len(p.IdentityKey)+len(p.IdentitySig)+8)
	b = protowire.AppendTag(b, fieldIdentityKey, protowire.BytesType)
	b = protowire.AppendBytes(b, p.IdentityKey)
	b = protowire.AppendTag(b, fieldIdentitySig, protowire.BytesType)
	b = protowire.AppendBytes(b, p.IdentitySig)
	return b
}

func (p *handshakePayload) unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(n))
		}
		b = b[n:]

		if typ == protowire.BytesType && (num == fieldIdentityKey || num == fieldIdentitySig) {
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(m))
			}
			if num == fieldIdentityKey {
				p.IdentityKey = append([]byte(nil), v...)
			} else {
				p.IdentitySig = append([]byte(nil), v...)
			}
			b = b[m:]
			continue
		}

		// 未知字段跳过
		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return fmt.Errorf("%w: %v", ErrInvalidPayload, protowire.ParseError(m))
		}
		b = b[m:]
	}
	if len(p.IdentityKey) == 0 || len(p.IdentitySig) == 0 {
		return ErrInvalidPayload
	}
	return nil
}

func signedData(static []byte) []byte {
	return append([]byte(signaturePrefix), static...)
}
