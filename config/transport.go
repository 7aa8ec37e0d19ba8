package config

import (
	"fmt"

	"github.com/dep2p/go-mquic/internal/core/wire"
)

// TransportConfig 传输层配置
type TransportConfig struct {
	// ListenAddr 接收端监听地址
	ListenAddr string `json:"listen_addr"`

	// DialLocalAddr 发送端绑定的本地地址，空表示随机端口
	DialLocalAddr string `json:"dial_local_addr,omitempty"`

	// MaxDatagramSize 单个数据报的最大字节数（含包头）
	MaxDatagramSize int `json:"max_datagram_size"`

	// ReadBufferSize SO_RCVBUF，0 表示使用系统默认
	ReadBufferSize int `json:"read_buffer_size,omitempty"`

	// WriteBufferSize SO_SNDBUF，0 表示使用系统默认
	WriteBufferSize int `json:"write_buffer_size,omitempty"`

	// ReuseAddr 是否设置 SO_REUSEADDR
	ReuseAddr bool `json:"reuse_addr"`
}

// DefaultTransportConfig 返回默认传输配置
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		ListenAddr:      "127.0.0.1:4422",
		MaxDatagramSize: wire.DefaultMaxDatagramSize, // IPv4 下 UDP 负载上限
		ReadBufferSize:  4 * 1024 * 1024,             // 4 MB：接收端突发缓冲
		WriteBufferSize: 4 * 1024 * 1024,             // 4 MB
		ReuseAddr:       false,
	}
}

// Validate 验证传输配置
func (c TransportConfig) Validate() error {
	if c.MaxDatagramSize < wire.MinDatagramSize || c.MaxDatagramSize > wire.MaxUDPPayloadSize {
		return fmt.Errorf("max_datagram_size must be in [%d, %d], got %d",
			wire.MinDatagramSize, wire.MaxUDPPayloadSize, c.MaxDatagramSize)
	}
	if c.ReadBufferSize < 0 || c.WriteBufferSize < 0 {
		return fmt.Errorf("socket buffer sizes must be non-negative")
	}
	return nil
}
