// Package types 定义 pingnode 的基础类型
//
// 这是最底层的包，不依赖任何其他 pingnode 包，所有类型都是值类型。
//
// # 文件组织
//
//   - peerid.go   - PeerID 节点标识
//   - address.go  - 基于 multiaddr 的 PeerAddress 解析
//   - enums.go    - Direction, CloseReason
//   - protocol.go - ProtocolID
//   - errors.go   - 公共错误
package types
