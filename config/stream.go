package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dep2p/go-mquic/internal/core/wire"
)

// StreamConfig 流发送配置
//
// 每条流在 [FrameSizeMin, FrameSizeMax] 内随机选取一个帧大小（含帧头）。
type StreamConfig struct {
	// FrameSizeMin 帧大小下限（含 20 字节帧头）
	FrameSizeMin int `json:"frame_size_min"`

	// FrameSizeMax 帧大小上限（含 20 字节帧头）
	FrameSizeMax int `json:"frame_size_max"`

	// Pacing 每条流相邻两个数据包之间的间隔，0 表示不限速
	Pacing Duration `json:"pacing"`

	// Seed 帧大小随机数种子，0 表示每次运行随机
	Seed uint64 `json:"seed,omitempty"`
}

// DefaultStreamConfig 返回默认流配置
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		FrameSizeMin: 1000,
		FrameSizeMax: 2000,
		Pacing:       Duration(time.Millisecond),
	}
}

// Validate 验证流配置
func (c StreamConfig) Validate() error {
	if c.FrameSizeMin <= wire.FrameHeaderSize {
		return fmt.Errorf("frame_size_min must be greater than %d, got %d", wire.FrameHeaderSize, c.FrameSizeMin)
	}
	if c.FrameSizeMax < c.FrameSizeMin {
		return fmt.Errorf("frame_size_max (%d) must be >= frame_size_min (%d)", c.FrameSizeMax, c.FrameSizeMin)
	}
	if c.Pacing < 0 {
		return errors.New("pacing must be non-negative")
	}
	return nil
}
