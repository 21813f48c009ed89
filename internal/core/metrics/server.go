package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-pingnode/internal/util/logger"
)

var log = logger.Logger("metrics")

// Server HTTP 指标导出
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// NewServer 创建导出服务，路径为 /metrics
func NewServer(m *Metrics, addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start 绑定地址并在后台服务
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", "err", err)
		}
	}()
	log.Info("metrics server listening", "addr", ln.Addr().String())
	return nil
}

// Addr 返回实际监听地址，未启动时为配置地址
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.srv.Addr
}

// Stop 关闭服务
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
