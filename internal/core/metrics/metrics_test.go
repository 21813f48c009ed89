package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-pingnode/internal/core/protocol/ping"
	"github.com/dep2p/go-pingnode/internal/core/swarm"
	"github.com/dep2p/go-pingnode/pkg/types"
)

func TestObserve_Connections(t *testing.T) {
	m := New()

	m.Observe(swarm.ConnectionEstablished{Direction: types.DirOutbound})
	m.Observe(swarm.ConnectionEstablished{Direction: types.DirInbound})
	m.Observe(swarm.ConnectionClosed{Reason: types.CloseIdle})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.connsOpened.WithLabelValues("outbound")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connsOpened.WithLabelValues("inbound")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connsClosed.WithLabelValues("idle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connsActive))
}

func TestObserve_PingAndDial(t *testing.T) {
	m := New()

	m.Observe(swarm.ProtocolEvent{Protocol: ping.ID, Payload: ping.Event{RTT: time.Millisecond}})
	m.Observe(swarm.ProtocolEvent{Protocol: ping.ID, Payload: ping.Event{
		Err: &ping.Failure{Kind: ping.Timeout, Err: ping.ErrTimeout},
	}})
	m.Observe(swarm.ProtocolEvent{Protocol: "/other", Payload: "ignored"})
	m.Observe(swarm.OutgoingConnectionError{Err: errors.New("refused")})
	m.Observe(swarm.ListenAddressReady{})
	m.Observe(swarm.ListenAddressReady{})
	m.Observe(swarm.ListenAddressExpired{})

	assert.Equal(t, 1, testutil.CollectAndCount(m.pingRTT))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pingFailures.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dialFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.listenAddrs))
}

func TestObserve_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Observe(swarm.ConnectionEstablished{})
	})
}

func TestServer_ExposesMetrics(t *testing.T) {
	m := New()
	m.Observe(swarm.OutgoingConnectionError{})

	srv := NewServer(m, "127.0.0.1:0")
	require.NoError(t, srv.Start())
	defer srv.Stop(context.Background())

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "pingnode_dial_failures_total 1"))
}

func TestModule(t *testing.T) {
	var m *Metrics
	cfg := &Config{Enable: true, ListenAddr: "127.0.0.1:0"}

	app := fxtest.New(t,
		fx.Supply(cfg),
		Module(),
		fx.Populate(&m),
	)
	app.RequireStart()
	app.RequireStop()

	require.NotNil(t, m)
}
