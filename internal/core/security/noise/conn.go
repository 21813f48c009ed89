package noise

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/flynn/noise"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

const (
	maxFrameSize = 65535
	tagSize      = 16
	// maxPlaintext 单帧可承载的最大明文
	maxPlaintext = maxFrameSize - tagSize
)

// secureConn 握手完成后的加密连接
type secureConn struct {
	net.Conn

	send *noise.CipherState
	recv *noise.CipherState

	localPeer  types.PeerID
	remotePeer types.PeerID
	remoteKey  []byte

	readMu  sync.Mutex
	pending []byte

	writeMu  sync.Mutex
	writeBuf []byte
}

var _ pkgif.SecureConn = (*secureConn)(nil)

// Read 解密一帧，剩余明文留给下一次 Read
func (c *secureConn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for len(c.pending) == 0 {
		frame, err := readFrame(c.Conn)
		if err != nil {
			return 0, err
		}
		plain, err := c.recv.Decrypt(frame[:0], nil, frame)
		if err != nil {
			return 0, fmt.Errorf("decrypt: %w", err)
		}
		c.pending = plain
	}

	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

// Write 分片加密写入
func (c *secureConn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	written := 0
	for written < len(p) {
		end := written + maxPlaintext
		if end > len(p) {
			end = len(p)
		}

		buf := c.writeBuf[:0]
		buf = append(buf, 0, 0)
		buf, err := c.send.Encrypt(buf, nil, p[written:end])
		if err != nil {
			return written, fmt.Errorf("encrypt: %w", err)
		}
		binary.BigEndian.PutUint16(buf, uint16(len(buf)-2))
		c.writeBuf = buf

		if _, err := c.Conn.Write(buf); err != nil {
			return written, err
		}
		written = end
	}
	return written, nil
}

func (c *secureConn) LocalPeer() types.PeerID {
	return c.localPeer
}

func (c *secureConn) RemotePeer() types.PeerID {
	return c.remotePeer
}

func (c *secureConn) RemotePublicKey() []byte {
	return c.remoteKey
}

func (c *secureConn) Protocol() types.ProtocolID {
	return ID
}
