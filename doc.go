// Package pingnode 是一个最小的点对点节点
//
// 节点监听 TCP 地址，与其它节点协商安全（TLS 1.3 / Noise）且多路复用
// （yamux）的连接，并在每条连接上运行 /ipfs/ping/1.0.0 存活探测。
// 所有状态变化通过同一个事件通道交给 EventLoop。
//
// # 快速开始
//
//	node, err := pingnode.New(pingnode.WithListenAddrs("/ip4/0.0.0.0/tcp/0"))
//	if err != nil { ... }
//	if err := node.Start(ctx); err != nil { ... }
//	defer node.Close()
//
//	_ = node.Dial("/ip4/127.0.0.1/tcp/4001")
//	_ = pingnode.NewEventLoop(node, os.Stdout).Run(ctx)
package pingnode
