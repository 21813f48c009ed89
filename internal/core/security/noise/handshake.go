package noise

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/flynn/noise"

	"github.com/dep2p/go-pingnode/internal/core/identity"
	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)

// handshake 执行 XX 握手并返回加密连接
func (t *Transport) handshake(conn net.Conn, initiator bool, expected types.PeerID) (*secureConn, error) {
	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Pattern:       noise.HandshakeXX,
		Initiator:     initiator,
		StaticKeypair: t.static,
	})
	if err != nil {
		return nil, fmt.Errorf("create handshake state: %w", err)
	}

	var (
		send, recv *noise.CipherState
		remoteKey  []byte
		remotePeer types.PeerID
	)
	if initiator {
		// 先验证响应方身份，再发送自己的身份
		remotePayload, err := initiatorHello(conn, hs)
		if err != nil {
			return nil, err
		}
		if remoteKey, remotePeer, err = verifyPayload(remotePayload, hs.PeerStatic(), expected); err != nil {
			return nil, err
		}
		if send, recv, err = initiatorFinish(conn, hs, t.payload); err != nil {
			return nil, err
		}
	} else {
		remotePayload, out, in, err := responderRounds(conn, hs, t.payload)
		if err != nil {
			return nil, err
		}
		if remoteKey, remotePeer, err = verifyPayload(remotePayload, hs.PeerStatic(), ""); err != nil {
			return nil, err
		}
		send, recv = out, in
	}

	return &secureConn{
		Conn:       conn,
		send:       send,
		recv:       recv,
		localPeer:  t.identity.PeerID(),
		remotePeer: remotePeer,
		remoteKey:  remoteKey,
	}, nil
}

// initiatorHello -> e; <- e, ee, s, es
func initiatorHello(conn net.Conn, hs *noise.HandshakeState) ([]byte, error) {
	msg, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("write message 1: %w", err)
	}
	if err := writeFrame(conn, msg); err != nil {
		return nil, fmt.Errorf("send message 1: %w", err)
	}

	in, err := readFrame(conn)
	if err != nil {
		return nil, fmt.Errorf("receive message 2: %w", err)
	}
	remote, _, _, err := hs.ReadMessage(nil, in)
	if err != nil {
		return nil, fmt.Errorf("read message 2: %w", err)
	}
	return remote, nil
}

// initiatorFinish -> s, se
func initiatorFinish(conn net.Conn, hs *noise.HandshakeState, payload []byte) (send, recv *noise.CipherState, err error) {
	msg, cs1, cs2, err := hs.WriteMessage(nil, payload)
	if err != nil {
		return nil, nil, fmt.Errorf("write message 3: %w", err)
	}
	if err := writeFrame(conn, msg); err != nil {
		return nil, nil, fmt.Errorf("send message 3: %w", err)
	}
	return cs1, cs2, nil
}

// responderRounds <- e; -> e, ee, s, es; <- s, se
//
// 返回的 send 对应 cs2，recv 对应 cs1。
func responderRounds(conn net.Conn, hs *noise.HandshakeState, payload []byte) (remote []byte, send, recv *noise.CipherState, err error) {
	in, err := readFrame(conn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive message 1: %w", err)
	}
	if _, _, _, err := hs.ReadMessage(nil, in); err != nil {
		return nil, nil, nil, fmt.Errorf("read message 1: %w", err)
	}

	msg, _, _, err := hs.WriteMessage(nil, payload)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("write message 2: %w", err)
	}
	if err := writeFrame(conn, msg); err != nil {
		return nil, nil, nil, fmt.Errorf("send message 2: %w", err)
	}

	in, err = readFrame(conn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("receive message 3: %w", err)
	}
	remote, cs1, cs2, err := hs.ReadMessage(nil, in)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("read message 3: %w", err)
	}
	return remote, cs2, cs1, nil
}

// buildPayload 生成本地握手 payload
func buildPayload(id pkgif.Identity, static []byte) ([]byte, error) {
	sig, err := id.Sign(signedData(static))
	if err != nil {
		return nil, fmt.Errorf("sign static key: %w", err)
	}
	p := handshakePayload{IdentityKey: id.MarshalPublicKey(), IdentitySig: sig}
	return p.marshal(), nil
}

// verifyPayload 验证对端签名并派生 PeerID
func verifyPayload(raw, remoteStatic []byte, expected types.PeerID) ([]byte, types.PeerID, error) {
	if len(remoteStatic) != 32 {
		return nil, "", ErrInvalidStaticKey
	}

	var p handshakePayload
	if err := p.unmarshal(raw); err != nil {
		return nil, "", err
	}

	ok, err := identity.Verify(p.IdentityKey, signedData(remoteStatic), p.IdentitySig)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrInvalidSignature
	}

	peer, err := identity.VerifyPeer(p.IdentityKey, expected)
	if err != nil {
		return nil, "", err
	}
	return p.IdentityKey, peer, nil
}

func writeFrame(w io.Writer, data []byte) error {
	buf := make([]byte, 2+len(data))
	binary.BigEndian.PutUint16(buf, uint16(len(data)))
	copy(buf[2:], data)
	_, err := w.Write(buf)
	return err
}

func readFrame(r io.Reader) ([]byte, error) {
	var hdr [2]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	data := make([]byte, binary.BigEndian.Uint16(hdr[:]))
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
