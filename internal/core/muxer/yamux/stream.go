package yamux

import (
	"time"

	"github.com/hashicorp/yamux"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
)

// stream yamux 流
type stream struct {
	*yamux.Stream
}

var _ pkgif.MuxedStream = (*stream)(nil)

// Reset 立即终止流
//
// hashicorp/yamux 没有 RST，先让挂起的读写超时返回，再发送 FIN。
func (s *stream) Reset() error {
	_ = s.Stream.SetDeadline(time.Now())
	return s.Stream.Close()
}
