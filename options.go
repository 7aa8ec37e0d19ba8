package mquic

import (
	"fmt"
	"net"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-mquic/config"
	transportif "github.com/dep2p/go-mquic/pkg/interfaces/transport"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 统一配置，选项在其副本上修改
	config *config.Config

	// 外部提供的 socket，优先于 transport
	packetConn net.PacketConn

	// 自定义传输，默认 UDP
	transport transportif.Transport

	// 注入的时钟，测试使用 clock.NewMock()
	clock clock.Clock

	// Prometheus 注册器，nil 时不导出
	registerer prometheus.Registerer

	// 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// applyOptions 依次应用选项并验证最终配置
func applyOptions(opts []Option) (*options, error) {
	o := newOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	return o, nil
}

// ════════════════════════════════════════════════════════════════════════════
// 配置选项
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置替换默认配置
//
// 应放在其他选项之前，之后的选项在其副本上修改。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("%w: nil config", ErrInvalidOption)
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithMaxDatagramSize 设置最大数据报字节数
func WithMaxDatagramSize(n int) Option {
	return func(o *options) error {
		o.config.Transport.MaxDatagramSize = n
		return nil
	}
}

// WithFrameSizeRange 设置随机 Frame 大小范围 [minSize, maxSize]
//
// 两者相等时使用固定大小。
func WithFrameSizeRange(minSize, maxSize int) Option {
	return func(o *options) error {
		if minSize > maxSize {
			return fmt.Errorf("%w: frame size min %d > max %d", ErrInvalidOption, minSize, maxSize)
		}
		o.config.Stream.FrameSizeMin = minSize
		o.config.Stream.FrameSizeMax = maxSize
		return nil
	}
}

// WithPacing 设置每条流相邻数据包之间的间隔，0 表示不限速
func WithPacing(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("%w: negative pacing %s", ErrInvalidOption, d)
		}
		o.config.Stream.Pacing = config.Duration(d)
		return nil
	}
}

// WithSeed 设置 Frame 大小随机数种子，用于复现
func WithSeed(seed uint64) Option {
	return func(o *options) error {
		o.config.Stream.Seed = seed
		return nil
	}
}

// WithHandshakeTimeout 设置握手超时，0 表示只受 context 控制
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *options) error {
		o.config.Session.HandshakeTimeout = config.Duration(d)
		return nil
	}
}

// WithBandwidth 启用或禁用 socket 级带宽统计
func WithBandwidth(enable bool) Option {
	return func(o *options) error {
		o.config.Bandwidth.Enabled = enable
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
// 注入选项
// ════════════════════════════════════════════════════════════════════════════

// WithPacketConn 使用已打开的 socket
//
// 连接接管 pc 的所有权，Close 时关闭它。
func WithPacketConn(pc net.PacketConn) Option {
	return func(o *options) error {
		if pc == nil {
			return fmt.Errorf("%w: nil packet conn", ErrInvalidOption)
		}
		o.packetConn = pc
		return nil
	}
}

// WithTransport 使用自定义传输打开 socket
func WithTransport(t transportif.Transport) Option {
	return func(o *options) error {
		if t == nil {
			return fmt.Errorf("%w: nil transport", ErrInvalidOption)
		}
		o.transport = t
		return nil
	}
}

// WithClock 注入统计使用的时钟
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithRegisterer 把统计导出到给定的 Prometheus 注册器
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = r
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
