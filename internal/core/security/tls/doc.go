// Package tls 实现 TLS 1.3 安全传输
//
// 每个节点用身份私钥直接签发一张自签名 Ed25519 证书，
// 双方都必须出示证书，远端 PeerID 由证书公钥派生，
// 不依赖 CA，也不信任证书中的任何名称字段。
package tls
