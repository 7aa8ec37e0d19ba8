package muxer

import "errors"

var (
	// ErrNoSender 未提供发送端
	ErrNoSender = errors.New("muxer: nil packet sender")

	// ErrTooManyStreams 流数量超过 uint32 可表示范围
	ErrTooManyStreams = errors.New("muxer: too many streams")
)
