// Package interfaces 定义 pingnode 各层之间的契约
//
// 一个接口文件对应一个实现目录：
//   - identity.go  - 节点身份（internal/core/identity）
//   - transport.go - 原始传输（internal/core/transport/tcp）
//   - security.go  - 安全通道（internal/core/security/tls, noise）
//   - muxer.go     - 流多路复用（internal/core/muxer/yamux）
//   - upgrader.go  - 连接升级（internal/core/upgrader）
//   - protocol.go  - 连接上运行的协议行为（internal/core/protocol/ping）
//
// # 依赖方向
//
//	swarm → upgrader → security / muxer → transport
//
// 协议行为只依赖 ProtocolConn，不依赖 swarm。
package interfaces
