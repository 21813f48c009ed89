package upgrader

import (
	"io"

	mss "github.com/multiformats/go-multistream"

	"github.com/dep2p/go-pingnode/pkg/types"
)

// negotiate 用 multistream-select 从 protos 中选出一个协议
//
// 拨号方按顺序提议，监听方只接受自己支持的协议。
func negotiate(rwc io.ReadWriteCloser, protos []types.ProtocolID, isServer bool) (types.ProtocolID, error) {
	if isServer {
		m := mss.NewMultistreamMuxer[string]()
		for _, p := range protos {
			m.AddHandler(string(p), nil)
		}
		selected, _, err := m.Negotiate(rwc)
		if err != nil {
			return "", err
		}
		return types.ProtocolID(selected), nil
	}

	selected, err := mss.SelectOneOf(types.ProtocolIDs(protos...), rwc)
	if err != nil {
		return "", err
	}
	return types.ProtocolID(selected), nil
}
