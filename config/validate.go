package config

import (
	"errors"
	"fmt"

	"github.com/dep2p/go-mquic/internal/core/wire"
)

// ValidateAll 验证整个配置的有效性
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// validateFrameFits 检查最大帧能否放进一个数据报
//
// 否则某些流会在发送时得到 ErrFrameSizeTooLarge。
func (c *Config) validateFrameFits() error {
	if c.Stream.FrameSizeMax > c.Transport.MaxDatagramSize-wire.PacketHeaderSize {
		return fmt.Errorf("frame_size_max (%d) does not fit in max_datagram_size (%d) minus packet header (%d)",
			c.Stream.FrameSizeMax, c.Transport.MaxDatagramSize, wire.PacketHeaderSize)
	}
	return nil
}

// MustValidate 验证配置，如果失败则 panic
//
// 仅用于初始化阶段或测试代码。
func MustValidate(c *Config) {
	if err := ValidateAll(c); err != nil {
		panic(fmt.Sprintf("invalid config: %v", err))
	}
}
