package swarm

import (
	"sync"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

// stream 计入连接流计数的流
type stream struct {
	pkgif.MuxedStream

	conn  *Conn
	proto types.ProtocolID
	once  sync.Once
}

var _ pkgif.Stream = (*stream)(nil)

func (s *stream) Protocol() types.ProtocolID {
	return s.proto
}

func (s *stream) RemotePeer() types.PeerID {
	return s.conn.remotePeer
}

func (s *stream) Close() error {
	err := s.MuxedStream.Close()
	s.done()
	return err
}

func (s *stream) Reset() error {
	err := s.MuxedStream.Reset()
	s.done()
	return err
}

func (s *stream) done() {
	s.once.Do(s.conn.release)
}
