// Package yamux 基于 hashicorp/yamux 实现流多路复用
//
// 拨号方作为 yamux client，监听方作为 server。
// 会话 keep-alive 只维持底层连接，不计入流数量，
// 连接的空闲判定只看打开的流。
package yamux
