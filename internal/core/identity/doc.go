// Package identity 提供节点身份
//
// 身份是一个 Ed25519 密钥对，PeerID 由公钥派生：
//
//	PeerID = base58(multihash(protobuf{Type: Ed25519, Data: pubkey}))
//
// 编码后的公钥只有 36 字节，使用 identity multihash 内联，
// 因此可以直接从 PeerID 还原公钥。
//
// 私钥可持久化为 PKCS#8 PEM 文件，写入是原子的，权限 0600。
package identity
