package types

import (
	"strings"

	ma "github.com/multiformats/go-multiaddr"
)

// ============================================================================
//                              PeerAddress - 结构化地址
// ============================================================================

// ParseAddress 将文本解析为 multiaddr
//
// 失败时返回 *AddressParseError。
func ParseAddress(s string) (ma.Multiaddr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &AddressParseError{Input: s, Err: ErrEmptyAddress}
	}
	addr, err := ma.NewMultiaddr(s)
	if err != nil {
		return nil, &AddressParseError{Input: s, Err: err}
	}
	return addr, nil
}

// ParseAddresses 批量解析，遇到第一个错误即返回
func ParseAddresses(ss []string) ([]ma.Multiaddr, error) {
	out := make([]ma.Multiaddr, 0, len(ss))
	for _, s := range ss {
		addr, err := ParseAddress(s)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

// SplitPeerAddress 拆分末尾的 /p2p/<id>
//
// 没有 /p2p 组件时 peer 为空。只有 /p2p 组件而没有传输部分时 transport 为 nil。
func SplitPeerAddress(addr ma.Multiaddr) (transport ma.Multiaddr, peer PeerID, err error) {
	if addr == nil {
		return nil, "", ErrEmptyAddress
	}
	rest, last := ma.SplitLast(addr)
	if last == nil || last.Protocol().Code != ma.P_P2P {
		return addr, "", nil
	}
	peer, err = DecodePeerID(last.Value())
	if err != nil {
		return nil, "", err
	}
	return rest, peer, nil
}

// WithPeer 在地址末尾追加 /p2p/<id>
func WithPeer(addr ma.Multiaddr, peer PeerID) (ma.Multiaddr, error) {
	c, err := ma.NewComponent("p2p", peer.String())
	if err != nil {
		return nil, err
	}
	return addr.Encapsulate(c), nil
}
