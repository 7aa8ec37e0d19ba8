package transport

import "errors"

var (
	// ErrManagerClosed 传输管理器已关闭
	ErrManagerClosed = errors.New("transport manager closed")

	// ErrInvalidAddress 无效地址
	ErrInvalidAddress = errors.New("invalid address")
)
