// Package upgrader 将原始 TCP 连接升级为安全、多路复用的连接
//
// 升级流程：
//
//  1. multistream-select 协商安全协议（拨号方按配置顺序提议）
//  2. 安全握手（TLS / Noise），得到已验证的对端 PeerID
//  3. multistream-select 在加密通道上协商多路复用协议
//  4. 建立 yamux 会话，拨号方为 client
//
// 整个流程受 NegotiationTimeout 限制，失败返回 *NegotiationError，
// 原始连接随之关闭。
package upgrader
