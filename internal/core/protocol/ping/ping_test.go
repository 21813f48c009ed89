package ping

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-pingnode/pkg/interfaces"
	"github.com/dep2p/go-pingnode/pkg/types"
)

// ============================================================================
//                              测试辅助
// ============================================================================

// pipeStream 基于 net.Pipe 的流
type pipeStream struct {
	net.Conn
}

func (s *pipeStream) Reset() error               { return s.Conn.Close() }
func (s *pipeStream) Protocol() types.ProtocolID { return ID }
func (s *pipeStream) RemotePeer() types.PeerID   { return "peer" }

var _ pkgif.Stream = (*pipeStream)(nil)

// fakeConn 记录协议事件和关闭原因，每次 NewStream 把对端交给 serve
type fakeConn struct {
	serve func(remote net.Conn)

	mu     sync.Mutex
	opened int
	closed []types.CloseReason
	events chan Event
}

func newFakeConn(serve func(remote net.Conn)) *fakeConn {
	return &fakeConn{serve: serve, events: make(chan Event, 64)}
}

func (c *fakeConn) ID() string                 { return "conn-1" }
func (c *fakeConn) RemotePeer() types.PeerID   { return "peer" }
func (c *fakeConn) Direction() types.Direction { return types.DirOutbound }

func (c *fakeConn) NewStream(context.Context) (pkgif.Stream, error) {
	local, remote := net.Pipe()
	c.mu.Lock()
	c.opened++
	c.mu.Unlock()
	go c.serve(remote)
	return &pipeStream{Conn: local}, nil
}

func (c *fakeConn) Emit(payload any) {
	c.events <- payload.(Event)
}

func (c *fakeConn) Close(reason types.CloseReason) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = append(c.closed, reason)
	return nil
}

func (c *fakeConn) closeReasons() []types.CloseReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.CloseReason(nil), c.closed...)
}

func (c *fakeConn) streamsOpened() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}

func (c *fakeConn) next(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-c.events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no ping event")
		return Event{}
	}
}

func echo(remote net.Conn) {
	defer remote.Close()
	_, _ = io.Copy(remote, remote)
}

func silent(remote net.Conn) {
	_, _ = io.Copy(io.Discard, remote)
}

func corrupt(remote net.Conn) {
	defer remote.Close()
	buf := make([]byte, 32)
	if _, err := io.ReadFull(remote, buf); err != nil {
		return
	}
	buf[0] ^= 0xff
	_, _ = remote.Write(buf)
}

func hangup(remote net.Conn) {
	_ = remote.Close()
}

func fastConfig() Config {
	return Config{
		Interval:    5 * time.Millisecond,
		Timeout:     50 * time.Millisecond,
		MaxFailures: 3,
		PayloadSize: 32,
	}
}

func runHandler(t *testing.T, cfg Config, conn *fakeConn, opts ...Option) (*Handler, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	b, err := New(cfg, opts...)
	require.NoError(t, err)

	h := b.NewHandler(conn).(*Handler)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h, cancel, done
}

// ============================================================================
//                              探测结果
// ============================================================================

func TestProbe_EchoSucceeds(t *testing.T) {
	conn := newFakeConn(echo)
	runHandler(t, fastConfig(), conn)

	ev := conn.next(t)
	require.NoError(t, ev.Err)
	assert.True(t, ev.Success())
	assert.GreaterOrEqual(t, ev.RTT, time.Duration(0))
	assert.Equal(t, types.PeerID("peer"), ev.Peer)
	assert.Equal(t, "conn-1", ev.ConnID)
	t.Logf("✅ RTT: %s", ev.RTT)
}

func TestProbe_NoEchoTimesOut(t *testing.T) {
	conn := newFakeConn(silent)
	runHandler(t, fastConfig(), conn)

	ev := conn.next(t)
	var f *Failure
	require.ErrorAs(t, ev.Err, &f)
	assert.Equal(t, Timeout, f.Kind)
	assert.ErrorIs(t, ev.Err, ErrTimeout)
}

func TestProbe_MismatchedEcho(t *testing.T) {
	conn := newFakeConn(corrupt)
	runHandler(t, fastConfig(), conn)

	ev := conn.next(t)
	var f *Failure
	require.ErrorAs(t, ev.Err, &f)
	assert.Equal(t, Mismatch, f.Kind)
	assert.ErrorIs(t, ev.Err, ErrPayloadMismatch)
}

func TestProbe_ClosedStreamIsIoError(t *testing.T) {
	conn := newFakeConn(hangup)
	runHandler(t, fastConfig(), conn)

	ev := conn.next(t)
	var f *Failure
	require.ErrorAs(t, ev.Err, &f)
	assert.Equal(t, IoError, f.Kind)
}

// ============================================================================
//                              连续失败
// ============================================================================

func TestRun_MaxFailuresClosesConnection(t *testing.T) {
	cfg := fastConfig()
	cfg.Timeout = 10 * time.Millisecond
	cfg.MaxFailures = 2

	conn := newFakeConn(silent)
	_, _, done := runHandler(t, cfg, conn)

	for i := 0; i < cfg.MaxFailures+1; i++ {
		ev := conn.next(t)
		require.Error(t, ev.Err, "probe %d", i)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler kept running after liveness exceeded")
	}
	assert.Equal(t, []types.CloseReason{types.CloseLivenessExceeded}, conn.closeReasons())

	opened := conn.streamsOpened()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, opened, conn.streamsOpened(), "no probes after close")
	assert.Empty(t, conn.events)
}

func TestRun_SuccessResetsFailures(t *testing.T) {
	var mu sync.Mutex
	n := 0
	// 交替失败和成功，永远不会连续失败两次
	serve := func(remote net.Conn) {
		mu.Lock()
		n++
		fail := n%2 == 1
		mu.Unlock()
		if fail {
			hangup(remote)
			return
		}
		echo(remote)
	}

	cfg := fastConfig()
	cfg.MaxFailures = 1
	conn := newFakeConn(serve)
	h, _, _ := runHandler(t, cfg, conn)

	for i := 0; i < 6; i++ {
		conn.next(t)
	}
	assert.Empty(t, conn.closeReasons())
	assert.LessOrEqual(t, h.State().Failures, 1)
}

// ============================================================================
//                              调度
// ============================================================================

func TestRun_FirstProbeImmediateThenInterval(t *testing.T) {
	mock := clock.NewMock()
	cfg := DefaultConfig()

	conn := newFakeConn(echo)
	runHandler(t, cfg, conn, WithClock(mock))

	ev := conn.next(t)
	require.NoError(t, ev.Err)
	assert.Equal(t, time.Duration(0), ev.RTT)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, conn.streamsOpened(), "second probe must wait for the interval")

	require.Eventually(t, func() bool {
		mock.Add(cfg.Interval)
		return conn.streamsOpened() >= 2
	}, 5*time.Second, 10*time.Millisecond)
}

// timerClock 记录创建的定时器
type timerClock struct {
	clock.Clock

	mu     sync.Mutex
	timers map[time.Duration][]*clock.Timer
}

func (c *timerClock) Timer(d time.Duration) *clock.Timer {
	t := c.Clock.Timer(d)
	c.mu.Lock()
	if c.timers == nil {
		c.timers = make(map[time.Duration][]*clock.Timer)
	}
	c.timers[d] = append(c.timers[d], t)
	c.mu.Unlock()
	return t
}

func (c *timerClock) get(d time.Duration) []*clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*clock.Timer(nil), c.timers[d]...)
}

func TestRun_TimersReleased(t *testing.T) {
	tc := &timerClock{Clock: clock.NewMock()}
	cfg := DefaultConfig()

	conn := newFakeConn(echo)
	_, cancel, done := runHandler(t, cfg, conn, WithClock(tc))

	require.NoError(t, conn.next(t).Err)
	require.Eventually(t, func() bool {
		return len(tc.get(cfg.Interval)) == 1
	}, 5*time.Second, 5*time.Millisecond)

	// 成功的探测不留下超时定时器
	timeouts := tc.get(cfg.Timeout)
	require.Len(t, timeouts, 1)
	assert.False(t, timeouts[0].Stop(), "timeout timer still pending after a successful probe")

	cancel()
	<-done
	assert.False(t, tc.get(cfg.Interval)[0].Stop(), "interval timer still pending after cancel")
}

func TestRun_StopsOnCancel(t *testing.T) {
	conn := newFakeConn(silent)
	cfg := fastConfig()
	cfg.Timeout = time.Hour

	_, cancel, done := runHandler(t, cfg, conn)
	require.Eventually(t, func() bool { return conn.streamsOpened() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Empty(t, conn.events)
	assert.Empty(t, conn.closeReasons())
}

// ============================================================================
//                              响应端
// ============================================================================

func TestHandleInbound_EchoesUntilEOF(t *testing.T) {
	b, err := New(DefaultConfig())
	require.NoError(t, err)
	h := b.NewHandler(newFakeConn(echo))

	local, remote := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.HandleInbound(context.Background(), &pipeStream{Conn: remote})
	}()

	for _, msg := range []string{"first probe", "second"} {
		_, err := local.Write([]byte(msg))
		require.NoError(t, err)
		buf := make([]byte, len(msg))
		_, err = io.ReadFull(local, buf)
		require.NoError(t, err)
		assert.Equal(t, msg, string(buf))
	}

	require.NoError(t, local.Close())
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("responder did not return on EOF")
	}
}

// ============================================================================
//                              状态与配置
// ============================================================================

func TestState_Transitions(t *testing.T) {
	var st State
	now := time.Unix(1000, 0)

	st.begin([]byte("abc"), now, time.Second)
	assert.Equal(t, AwaitingEcho, st.Phase)
	assert.Equal(t, now.Add(time.Second), st.Deadline)

	rtt, err := st.finish([]byte("abc"), now.Add(5*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Millisecond, rtt)
	assert.Equal(t, Success, st.Phase)

	st.begin([]byte("abc"), now, time.Second)
	_, err = st.finish([]byte("abd"), now)
	assert.ErrorIs(t, err, ErrPayloadMismatch)
	assert.Equal(t, Failed, st.Phase)
	assert.Equal(t, 1, st.Failures)

	assert.False(t, st.exceeded(1))
	_ = st.fail(&Failure{Kind: Timeout, Err: ErrTimeout})
	assert.True(t, st.exceeded(1))

	st.begin([]byte("x"), now, time.Second)
	_, err = st.finish([]byte("x"), now)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Failures)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := []func(*Config){
		func(c *Config) { c.Interval = 0 },
		func(c *Config) { c.Timeout = 0 },
		func(c *Config) { c.MaxFailures = -1 },
		func(c *Config) { c.PayloadSize = 0 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "case %d", i)
	}
}
