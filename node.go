package pingnode

import (
	"context"
	"fmt"
	"sync"
	"time"

	ma "github.com/multiformats/go-multiaddr"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-pingnode/config"
	"github.com/dep2p/go-pingnode/internal/core/identity"
	"github.com/dep2p/go-pingnode/internal/core/metrics"
	"github.com/dep2p/go-pingnode/internal/core/swarm"
	"github.com/dep2p/go-pingnode/internal/util/logger"
	"github.com/dep2p/go-pingnode/pkg/types"
)

var log = logger.Logger("node")

const (
	// startTimeout fx 启动超时
	startTimeout = 30 * time.Second

	// stopTimeout fx 停止超时
	stopTimeout = 15 * time.Second
)

// Node 节点
type Node struct {
	cfg *config.Config
	app *fx.App

	// 由 fx 注入
	identity *identity.Identity
	swarm    *swarm.Swarm
	metrics  *metrics.Metrics

	mu        sync.Mutex
	started   bool
	closed    bool
	listeners []swarm.ListenerID
}

// New 创建节点（不启动）
func New(opts ...Option) (*Node, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	cfg, err := resolveConfig(o)
	if err != nil {
		return nil, err
	}

	n := &Node{cfg: cfg}
	n.app = buildFxApp(cfg, o, n)
	if err := n.app.Err(); err != nil {
		return nil, fmt.Errorf("build node: %w", err)
	}
	return n, nil
}

// ID 返回本节点 ID
func (n *Node) ID() types.PeerID {
	return n.identity.PeerID()
}

// Identity 返回节点身份
func (n *Node) Identity() *identity.Identity {
	return n.identity
}

// Config 返回生效的配置
func (n *Node) Config() *config.Config {
	return n.cfg
}

// Swarm 返回连接管理器
func (n *Node) Swarm() *swarm.Swarm {
	return n.swarm
}

// Metrics 返回指标集合
func (n *Node) Metrics() *metrics.Metrics {
	return n.metrics
}

// Events 返回事件通道，Close 后关闭
func (n *Node) Events() <-chan swarm.Event {
	return n.swarm.Events()
}

// ListenAddrs 返回当前监听地址
func (n *Node) ListenAddrs() []ma.Multiaddr {
	return n.swarm.ListenAddrs()
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动 fx 生命周期并监听所有配置地址
//
// 部分地址绑定失败只记录日志，全部失败时返回错误。
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrNodeClosed
	}
	if n.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := n.app.Start(startCtx); err != nil {
		return fmt.Errorf("start node: %w", err)
	}
	n.started = true

	var errs error
	for _, s := range n.cfg.ListenAddrs {
		addr, err := types.ParseAddress(s)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		id, err := n.swarm.Listen(addr)
		if err != nil {
			log.Warn("listen failed", "addr", s, "err", err)
			errs = multierr.Append(errs, err)
			continue
		}
		n.listeners = append(n.listeners, id)
	}

	if len(n.listeners) == 0 {
		return fmt.Errorf("%w: %v", ErrNoListener, errs)
	}

	log.Info("node started", "peer", n.ID().String(), "listeners", len(n.listeners))
	return nil
}

// Dial 异步拨号
func (n *Node) Dial(addr string) error {
	a, err := types.ParseAddress(addr)
	if err != nil {
		return err
	}
	return n.DialAddr(a)
}

// DialAddr 异步拨号
func (n *Node) DialAddr(addr ma.Multiaddr) error {
	n.mu.Lock()
	started, closed := n.started, n.closed
	n.mu.Unlock()

	if closed {
		return ErrNodeClosed
	}
	if !started {
		return ErrNotStarted
	}
	return n.swarm.Dial(addr)
}

// Close 停止节点并释放所有资源
func (n *Node) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	started := n.started
	n.mu.Unlock()

	var errs error
	if started {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		errs = multierr.Append(errs, n.app.Stop(ctx))
		cancel()
	}
	// 未启动时 OnStop 不会运行，事件通道需要单独关闭
	errs = multierr.Append(errs, n.swarm.Close())

	log.Info("node closed", "peer", n.ID().String())
	return errs
}
