// Package noise 实现 Noise XX 安全传输
//
// 握手模式 Noise_XX_25519_ChaChaPoly_SHA256：
//
//	-> e
//	<- e, ee, s, es, payload
//	-> s, se, payload
//
// 静态 DH 密钥由 Ed25519 身份密钥转换而来（Edwards -> Montgomery）。
// payload 携带 protobuf 编码的身份公钥，以及对
// "noise-libp2p-static-key:" || static 的签名，把 DH 静态密钥绑定到身份。
//
// 握手完成后的每条消息是 2 字节大端长度前缀 + 密文，
// 明文按 65535 - 16 字节分片。
package noise
