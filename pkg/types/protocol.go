package types

import "strings"

// ProtocolID 协议标识符，例如 "/ipfs/ping/1.0.0"
type ProtocolID string

// String 返回协议 ID 的字符串表示
func (p ProtocolID) String() string {
	return string(p)
}

// IsEmpty 检查协议 ID 是否为空
func (p ProtocolID) IsEmpty() bool {
	return p == ""
}

// Version 返回最后一段路径作为版本
func (p ProtocolID) Version() string {
	s := string(p)
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return ""
}

// ProtocolIDs 转换为字符串切片，供 multistream 使用
func ProtocolIDs(ids ...ProtocolID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
