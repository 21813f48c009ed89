package upgrader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	manet "github.com/multiformats/go-multiaddr/net"

	"github.com/dep2p/go-pingnode/internal/util/logger"
	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

var log = logger.Logger("upgrader")

// Upgrader 连接升级器
type Upgrader struct {
	identity pkgif.Identity
	cfg      Config

	security []pkgif.SecureTransport
	muxers   []pkgif.StreamMuxer
}

var _ pkgif.Upgrader = (*Upgrader)(nil)

// New 创建升级器，security 与 muxers 的顺序即出站提议顺序
func New(id pkgif.Identity, cfg Config, security []pkgif.SecureTransport, muxers []pkgif.StreamMuxer) (*Upgrader, error) {
	if id == nil {
		return nil, ErrNilIdentity
	}
	if len(security) == 0 {
		return nil, ErrNoSecurityTransport
	}
	if len(muxers) == 0 {
		return nil, ErrNoStreamMuxer
	}
	if cfg.NegotiationTimeout <= 0 {
		cfg.NegotiationTimeout = DefaultConfig().NegotiationTimeout
	}
	return &Upgrader{identity: id, cfg: cfg, security: security, muxers: muxers}, nil
}

// Upgrade 升级连接
//
// expected 只对出站连接有意义，为空时接受任何对端。
// 失败时 conn 已关闭，返回 *NegotiationError。
func (u *Upgrader) Upgrade(ctx context.Context, conn manet.Conn, dir types.Direction, expected types.PeerID) (pkgif.UpgradedConn, error) {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.NegotiationTimeout)
	defer cancel()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		_ = conn.Close()
		return nil, u.fail(deadline, dir, SecurityFailure, fmt.Errorf("set deadline: %w", err))
	}
	// ctx 取消时让阻塞中的读写立即返回
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})

	uc, kind, err := u.upgrade(ctx, conn, dir, expected)

	if !stop() && err == nil {
		err, kind = ctx.Err(), MultiplexFailure
		_ = uc.Close()
	}
	if err != nil {
		_ = conn.Close()
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, &NegotiationError{Kind: kind, Direction: dir, Err: err}
		}
		return nil, u.fail(deadline, dir, kind, err)
	}
	_ = conn.SetDeadline(time.Time{})

	log.Debug("connection upgraded",
		"dir", dir.String(),
		"peer", uc.RemotePeer().ShortString(),
		"security", uc.Security(),
		"muxer", uc.Muxer())
	return uc, nil
}

func (u *Upgrader) upgrade(ctx context.Context, conn manet.Conn, dir types.Direction, expected types.PeerID) (*upgradedConn, FailureKind, error) {
	isServer := dir == types.DirInbound

	st, err := u.negotiateSecurity(conn, isServer)
	if err != nil {
		return nil, SecurityFailure, fmt.Errorf("select security protocol: %w", err)
	}

	var sc pkgif.SecureConn
	if isServer {
		sc, err = st.SecureInbound(ctx, conn)
	} else {
		sc, err = st.SecureOutbound(ctx, conn, expected)
	}
	if err != nil {
		return nil, SecurityFailure, err
	}
	tracked := &trackedConn{SecureConn: sc}

	sm, err := u.negotiateMuxer(tracked, isServer)
	if err != nil {
		_ = sc.Close()
		return nil, MultiplexFailure, fmt.Errorf("select stream muxer: %w", err)
	}

	mc, err := sm.NewConn(tracked, isServer)
	if err != nil {
		_ = sc.Close()
		return nil, MultiplexFailure, fmt.Errorf("start %s session: %w", sm.ID(), err)
	}

	return &upgradedConn{
		MuxedConn: mc,
		secure:    tracked,
		raw:       conn,
		security:  st.ID(),
		muxer:     sm.ID(),
	}, 0, nil
}

func (u *Upgrader) negotiateSecurity(conn manet.Conn, isServer bool) (pkgif.SecureTransport, error) {
	ids := make([]types.ProtocolID, len(u.security))
	for i, st := range u.security {
		ids[i] = st.ID()
	}
	selected, err := negotiate(conn, ids, isServer)
	if err != nil {
		return nil, err
	}
	for _, st := range u.security {
		if st.ID() == selected {
			return st, nil
		}
	}
	return nil, fmt.Errorf("negotiated unknown security protocol %s", selected)
}

func (u *Upgrader) negotiateMuxer(sc pkgif.SecureConn, isServer bool) (pkgif.StreamMuxer, error) {
	ids := make([]types.ProtocolID, len(u.muxers))
	for i, sm := range u.muxers {
		ids[i] = sm.ID()
	}
	selected, err := negotiate(sc, ids, isServer)
	if err != nil {
		return nil, err
	}
	for _, sm := range u.muxers {
		if sm.ID() == selected {
			return sm, nil
		}
	}
	return nil, fmt.Errorf("negotiated unknown muxer %s", selected)
}

// fail 构造 NegotiationError，过了截止时间的失败一律归为超时
func (u *Upgrader) fail(deadline time.Time, dir types.Direction, kind FailureKind, err error) *NegotiationError {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) || !time.Now().Before(deadline) {
		kind = Timeout
	}
	log.Debug("connection upgrade failed", "dir", dir.String(), "kind", kind.String(), "err", err)
	return &NegotiationError{Kind: kind, Direction: dir, Err: err}
}
