package config

import "errors"

// StatsConfig 统计配置
type StatsConfig struct {
	// EnablePrometheus 是否导出 Prometheus 指标
	EnablePrometheus bool `json:"enable_prometheus"`

	// Namespace Prometheus 指标命名空间
	Namespace string `json:"namespace"`

	// MetricsAddr promhttp 监听地址，空表示不启动 HTTP 服务
	MetricsAddr string `json:"metrics_addr,omitempty"`
}

// DefaultStatsConfig 返回默认统计配置
func DefaultStatsConfig() StatsConfig {
	return StatsConfig{
		EnablePrometheus: true,
		Namespace:        "mquic",
	}
}

// Validate 验证统计配置
func (c StatsConfig) Validate() error {
	if c.EnablePrometheus && c.Namespace == "" {
		return errors.New("namespace is required when prometheus is enabled")
	}
	return nil
}
