// Package security 组装可用的安全传输
//
// 安全协议按配置顺序排列，upgrader 出站时按此顺序提议：
//
//	tls   -> /tls/1.0.0
//	noise -> /noise
package security
