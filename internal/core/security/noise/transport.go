package noise

import (
	"context"
	"fmt"
	"net"

	"github.com/flynn/noise"

	"github.com/dep2p/go-pingnode/internal/util/logger"
	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/protocolids"
	"github.com/dep2p/go-pingnode/pkg/types"
)

var log = logger.Logger("security/noise")

// ID Noise 安全协议标识
const ID = protocolids.Noise

// Transport Noise 安全传输
type Transport struct {
	identity pkgif.Identity
	static   noise.DHKey
	payload  []byte
}

var _ pkgif.SecureTransport = (*Transport)(nil)

// New 创建 Noise 传输
//
// 静态密钥与签名后的 payload 只计算一次，所有握手共享。
func New(id pkgif.Identity) (*Transport, error) {
	if id == nil {
		return nil, fmt.Errorf("noise: identity is nil")
	}

	pub, err := curvePublic(id.PublicKey())
	if err != nil {
		return nil, err
	}
	static := noise.DHKey{Private: curvePrivate(id.PrivateKey()), Public: pub}

	payload, err := buildPayload(id, static.Public)
	if err != nil {
		return nil, err
	}

	return &Transport{identity: id, static: static, payload: payload}, nil
}

// ID 返回协议标识
func (t *Transport) ID() types.ProtocolID {
	return ID
}

// SecureInbound 响应方握手
func (t *Transport) SecureInbound(ctx context.Context, conn net.Conn) (pkgif.SecureConn, error) {
	return t.run(ctx, conn, false, "")
}

// SecureOutbound 发起方握手
func (t *Transport) SecureOutbound(ctx context.Context, conn net.Conn, expected types.PeerID) (pkgif.SecureConn, error) {
	return t.run(ctx, conn, true, expected)
}

func (t *Transport) run(ctx context.Context, conn net.Conn, initiator bool, expected types.PeerID) (pkgif.SecureConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sc, err := t.handshake(conn, initiator, expected)
	if err != nil {
		log.Debug("noise handshake failed",
			"initiator", initiator,
			"remote", conn.RemoteAddr().String(),
			"err", err)
		return nil, fmt.Errorf("noise handshake: %w", err)
	}

	log.Debug("noise handshake complete",
		"initiator", initiator,
		"peer", sc.remotePeer.ShortString())
	return sc, nil
}
