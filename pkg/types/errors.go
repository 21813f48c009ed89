package types

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPeerID 空节点 ID
	ErrEmptyPeerID = errors.New("empty peer ID")

	// ErrInvalidPeerID 无效的节点 ID
	ErrInvalidPeerID = errors.New("invalid peer ID")

	// ErrEmptyAddress 空地址
	ErrEmptyAddress = errors.New("empty address")
)

// AddressParseError 地址文本无法解析为 PeerAddress
type AddressParseError struct {
	Input string
	Err   error
}

func (e *AddressParseError) Error() string {
	return fmt.Sprintf("invalid address %q: %v", e.Input, e.Err)
}

func (e *AddressParseError) Unwrap() error {
	return e.Err
}
