// Package protocolids 定义 pingnode 使用的全部协议 ID
//
// 协议 ID 只在本包定义，其它包引用这里的常量。
//
//   - 安全协议：/tls/1.0.0、/noise
//   - 多路复用：/yamux/1.0.0
//   - 应用协议：/ipfs/ping/1.0.0
//
// 这些 ID 与 libp2p 一致，节点可以和 libp2p 实现互通。
package protocolids
