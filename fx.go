package mquic

import (
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-mquic/internal/core/bandwidth"
	"github.com/dep2p/go-mquic/internal/core/metrics"
	"github.com/dep2p/go-mquic/internal/core/transport"
	transportif "github.com/dep2p/go-mquic/pkg/interfaces/transport"
	"github.com/dep2p/go-mquic/pkg/lib/log"
)

var fxLogger = log.Logger("mquic/fx")

// components 一个连接从 Fx 容器取得的依赖
type components struct {
	manager   *transport.Manager
	collector *metrics.Collector
	counter   *bandwidth.Counter
	reporter  *bandwidth.Reporter
}

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 配置与注入项（Config, Transport, Clock, Registerer）
//  2. Transport → Bandwidth → Metrics
//  3. 用户扩展
func buildFxApp(o *options) (*fx.App, *components) {
	c := &components{}

	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置注入
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(o.config),
	}
	if o.transport != nil {
		modules = append(modules, fx.Supply(fx.Annotate(o.transport, fx.As(new(transportif.Transport)))))
	}
	if o.clock != nil {
		modules = append(modules, fx.Supply(fx.Annotate(o.clock, fx.As(new(clock.Clock)))))
	}
	if o.registerer != nil {
		modules = append(modules, fx.Supply(fx.Annotate(o.registerer, fx.As(new(prometheus.Registerer)))))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 核心模块
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		transport.Module(),
		bandwidth.Module(),
		metrics.Module,
	)

	// ════════════════════════════════════════════════════════════════════════
	// 3. 用户扩展
	// ════════════════════════════════════════════════════════════════════════
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 4. 组件注入与 Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		fx.Populate(&c.manager, &c.collector, &c.counter, &c.reporter),
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	fxLogger.Debug("构建 Fx 应用", "modules", len(modules))
	return fx.New(modules...), c
}
