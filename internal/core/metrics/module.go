package metrics

import (
	"context"
	"errors"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-mquic/config"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config        `optional:"true"`
	Clock      clock.Clock           `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewCollectorFromParams),
	fx.Invoke(registerPrometheus),
)

// NewCollectorFromParams 从参数创建 Collector
func NewCollectorFromParams(p Params) *Collector {
	return NewCollector(p.Clock)
}

// registerPrometheus 在生命周期内注册 Prometheus 导出器
func registerPrometheus(lc fx.Lifecycle, p Params, c *Collector) {
	cfg := config.DefaultStatsConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Stats
	}
	if !cfg.EnablePrometheus || p.Registerer == nil {
		return
	}

	pc := NewPrometheusCollector(cfg.Namespace, c)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if err := p.Registerer.Register(pc); err != nil {
				var are prometheus.AlreadyRegisteredError
				if errors.As(err, &are) {
					logger.Debug("Prometheus 导出器已注册")
					return nil
				}
				return err
			}
			return nil
		},
		OnStop: func(_ context.Context) error {
			p.Registerer.Unregister(pc)
			return nil
		},
	})
}
