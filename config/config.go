// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义，
// 支持从 JSON 加载和保存。
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Stream.Pacing = config.Duration(0)
//
//	// 从 JSON 文件加载
//	cfg, err := config.LoadFile("mquic.json")
package config

// Config 是 go-mquic 的完整配置结构
//
// 配置按照功能模块组织：
//   - Transport: UDP socket 与数据报大小
//   - Stream: 分帧与发送节奏
//   - Session: 握手与接收
//   - Stats: 统计与 Prometheus 导出
//   - Bandwidth: socket 级流量统计
type Config struct {
	// Transport 传输层配置
	Transport TransportConfig `json:"transport"`

	// Stream 流发送配置
	Stream StreamConfig `json:"stream"`

	// Session 会话配置
	Session SessionConfig `json:"session"`

	// Stats 统计配置
	Stats StatsConfig `json:"stats"`

	// Bandwidth 带宽统计配置
	Bandwidth BandwidthConfig `json:"bandwidth"`
}

// NewConfig 创建默认配置
//
// 返回的配置使用所有组件的默认值，适用于大多数场景。
func NewConfig() *Config {
	return &Config{
		Transport: DefaultTransportConfig(),
		Stream:    DefaultStreamConfig(),
		Session:   DefaultSessionConfig(),
		Stats:     DefaultStatsConfig(),
		Bandwidth: DefaultBandwidthConfig(),
	}
}

// Validate 验证配置的有效性
//
// 除逐项验证外，还检查跨段约束：最大帧必须能放进一个数据报。
func (c *Config) Validate() error {
	if err := c.Transport.Validate(); err != nil {
		return err
	}
	if err := c.Stream.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Stats.Validate(); err != nil {
		return err
	}
	if err := c.Bandwidth.Validate(); err != nil {
		return err
	}
	return c.validateFrameFits()
}
