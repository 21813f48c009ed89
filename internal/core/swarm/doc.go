// Package swarm 实现连接管理器
//
// Swarm 负责监听与拨号、把原始连接交给升级器、登记升级完成的连接，
// 并为每条连接启动已注册协议行为的处理器。所有可观察的状态变化都以
// Event 的形式通过同一个通道交给唯一的消费者（事件循环）。
//
// # 连接生命周期
//
//	Dial/Accept → Upgrade → register → ConnectionEstablished
//	                                    │
//	        Idle / RemoteClosed / LivenessExceeded / IOError / LocalClose
//	                                    ↓
//	                              ConnectionClosed
//
// 每条连接有独立的锁负责流计数，连接集合只在增删时持有写锁，
// 一条连接的协商不会阻塞其它连接的 I/O。
//
// # 空闲超时
//
// 没有打开的流且持续超过 IdleTimeout 的连接以 CloseIdle 关闭。
// IdleTimeout 为 0 表示不限。
package swarm
