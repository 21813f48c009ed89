// Package tcp 实现 TCP 传输
//
// 只建立原始字节流，安全层与多路复用由 upgrader 完成。
//
// # 地址格式
//
//	/ip4/1.2.3.4/tcp/4001
//	/ip6/::1/tcp/4001
//	/dns4/example.com/tcp/4001   （仅拨号，先经 DNS 解析）
//
// 监听通配地址时，Addrs 会按本机网卡展开为具体地址。
package tcp
