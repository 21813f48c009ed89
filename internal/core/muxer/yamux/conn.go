package yamux

import (
	"context"

	"github.com/hashicorp/yamux"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
)

// conn yamux 会话
type conn struct {
	sess *yamux.Session
}

var _ pkgif.MuxedConn = (*conn)(nil)

// OpenStream 打开流
//
// yamux 的 OpenStream 不接受 ctx，放到 goroutine 中等待，
// ctx 先结束时由该 goroutine 关闭迟到的流。
func (c *conn) OpenStream(ctx context.Context) (pkgif.MuxedStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		s   *yamux.Stream
		err error
	}
	ch := make(chan result, 1)
	go func() {
		s, err := c.sess.OpenStream()
		ch <- result{s, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		return &stream{Stream: r.s}, nil
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.s != nil {
				_ = r.s.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

// AcceptStream 等待入站流
func (c *conn) AcceptStream() (pkgif.MuxedStream, error) {
	s, err := c.sess.AcceptStream()
	if err != nil {
		return nil, err
	}
	return &stream{Stream: s}, nil
}

func (c *conn) NumStreams() int {
	return c.sess.NumStreams()
}

func (c *conn) CloseChan() <-chan struct{} {
	return c.sess.CloseChan()
}

func (c *conn) IsClosed() bool {
	return c.sess.IsClosed()
}

func (c *conn) Close() error {
	return c.sess.Close()
}
