package pingnode

import "errors"

var (
	// ErrNotStarted 节点未启动
	ErrNotStarted = errors.New("node not started")

	// ErrAlreadyStarted 节点已启动
	ErrAlreadyStarted = errors.New("node already started")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = errors.New("node closed")

	// ErrNoListener 没有任何监听地址绑定成功
	ErrNoListener = errors.New("no listen address could be bound")
)
