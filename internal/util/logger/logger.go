// Package logger 提供 pingnode 的分子系统日志
//
// 基于标准库 log/slog，每个包持有自己的子系统 Logger：
//
//	var log = logger.Logger("swarm")
//
//	log.Debug("connection established", "peer", peer.ShortString(), "conn", connID)
//
// 级别和格式通过环境变量配置：
//
//	PINGNODE_LOG_LEVEL=swarm=debug,info
//	PINGNODE_LOG_FORMAT=json
//
// 日志是旁路输出，组件不通过参数接收 Logger。
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	loggers  sync.Map // subsystem -> *slog.Logger
	handlers sync.Map // subsystem -> *subsystemHandler
)

// Logger 返回子系统的 Logger，同名多次调用返回同一实例
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	h := newHandler(subsystem, ConfigFromEnv())
	actual, loaded := loggers.LoadOrStore(subsystem, slog.New(h))
	if !loaded {
		handlers.Store(subsystem, h)
	}
	return actual.(*slog.Logger)
}

// SetLevel 运行时调整子系统级别
func SetLevel(subsystem string, level slog.Level) {
	if h, ok := handlers.Load(subsystem); ok {
		h.(*subsystemHandler).level.Set(level)
	}
}

// SetAllLevels 调整所有已创建子系统的级别
func SetAllLevels(level slog.Level) {
	handlers.Range(func(_, v any) bool {
		v.(*subsystemHandler).level.Set(level)
		return true
	})
}

// SetOutput 切换全局输出目标，已创建的 Logger 立即生效
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

// Discard 返回丢弃全部记录的 Logger（测试用）
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}
