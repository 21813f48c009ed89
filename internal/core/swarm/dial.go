package swarm

import (
	"context"
	"fmt"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/dep2p/go-pingnode/pkg/types"
)

// Dial 异步拨号
//
// 只有地址无法拨号或目标是自己时同步返回 *DialError，其余结果通过
// Dialing 之后的 ConnectionEstablished 或 OutgoingConnectionError 报告。
// 地址末尾的 /p2p/<peer-id> 会被用来校验对端身份。
func (s *Swarm) Dial(addr ma.Multiaddr) error {
	taddr, peer, err := types.SplitPeerAddress(addr)
	if err != nil {
		return &DialError{Address: addr, Err: err}
	}
	if peer == s.localPeer {
		return &DialError{Address: addr, Peer: peer, Err: ErrDialToSelf}
	}
	if s.dialTransport(taddr) == nil {
		return &DialError{Address: addr, Peer: peer, Err: ErrUnsupportedAddress}
	}

	if !s.spawn(func() { s.dial(addr, taddr, peer) }) {
		return &DialError{Address: addr, Peer: peer, Err: ErrSwarmClosed}
	}
	return nil
}

func (s *Swarm) dial(addr, taddr ma.Multiaddr, peer types.PeerID) {
	s.emit(Dialing{Address: addr, Peer: peer})
	started := s.clock.Now()

	fail := func(err error) {
		log.Debug("dial failed", "addr", addr.String(), "err", err)
		s.emit(OutgoingConnectionError{
			Address: addr,
			Peer:    peer,
			Err:     &DialError{Address: addr, Peer: peer, Err: err},
		})
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.DialTimeout)
	raw, err := s.dialTransport(taddr).Dial(ctx, taddr)
	cancel()
	if err != nil {
		fail(err)
		return
	}

	uc, err := s.upgrader.Upgrade(s.ctx, raw, types.DirOutbound, peer)
	if err != nil {
		fail(err)
		return
	}

	if uc.RemotePeer() == s.localPeer {
		_ = uc.Close()
		fail(ErrDialToSelf)
		return
	}

	if _, err := s.register(uc, types.DirOutbound, started); err != nil {
		fail(fmt.Errorf("register: %w", err))
	}
}
