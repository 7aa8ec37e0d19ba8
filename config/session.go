package config

import "errors"

// SessionConfig 会话配置
type SessionConfig struct {
	// HandshakeTimeout 握手超时，0 表示一直等待（仅受 context 控制）
	HandshakeTimeout Duration `json:"handshake_timeout"`

	// DuplicateWindow 接收端记录的最近包 ID 数量，用于丢弃重复包
	// 0 表示关闭去重
	DuplicateWindow int `json:"duplicate_window"`
}

// DefaultSessionConfig 返回默认会话配置
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		HandshakeTimeout: 0,
		DuplicateWindow:  4096,
	}
}

// Validate 验证会话配置
func (c SessionConfig) Validate() error {
	if c.HandshakeTimeout < 0 {
		return errors.New("handshake_timeout must be non-negative")
	}
	if c.DuplicateWindow < 0 {
		return errors.New("duplicate_window must be non-negative")
	}
	return nil
}
