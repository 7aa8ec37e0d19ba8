package config

import (
	"errors"
	"time"
)

// BandwidthConfig 带宽统计配置
//
// 统计 socket 上收发的全部数据报，包括握手、ACK 和 FIN。
type BandwidthConfig struct {
	// Enabled 是否启用带宽统计
	// 默认值: true
	Enabled bool `json:"enabled"`

	// ReportInterval 周期性输出统计日志的间隔，0 表示不输出
	// 默认值: 0
	ReportInterval Duration `json:"report_interval"`
}

// DefaultBandwidthConfig 返回默认的带宽统计配置
func DefaultBandwidthConfig() BandwidthConfig {
	return BandwidthConfig{
		Enabled:        true,
		ReportInterval: Duration(0),
	}
}

// Validate 验证带宽统计配置的有效性
func (c BandwidthConfig) Validate() error {
	if c.ReportInterval < 0 {
		return errors.New("report_interval must be non-negative")
	}
	if c.ReportInterval > 0 && c.ReportInterval.Duration() < 100*time.Millisecond {
		return errors.New("report_interval must be at least 100ms")
	}
	return nil
}
