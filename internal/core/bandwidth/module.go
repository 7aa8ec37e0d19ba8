package bandwidth

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-mquic/config"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 统一配置（可选）
	Config *config.Config `optional:"true"`

	// Clock 时钟（可选）
	Clock clock.Clock `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
//
// 带宽统计关闭时 Counter 为 nil，NewMeteredConn 会原样返回连接。
type ModuleOutput struct {
	fx.Out

	Counter  *Counter
	Reporter *Reporter
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) ModuleOutput {
	cfg := config.DefaultBandwidthConfig()
	if input.Config != nil {
		cfg = input.Config.Bandwidth
	}
	if !cfg.Enabled {
		return ModuleOutput{}
	}

	counter := NewCounter(input.Clock)
	return ModuleOutput{
		Counter:  counter,
		Reporter: NewReporter(counter, input.Clock),
	}
}

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("bandwidth",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

type lifecycleInput struct {
	fx.In

	LC       fx.Lifecycle
	Reporter *Reporter
	Config   *config.Config `optional:"true"`
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	if input.Reporter == nil {
		return
	}
	cfg := config.DefaultBandwidthConfig()
	if input.Config != nil {
		cfg = input.Config.Bandwidth
	}

	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			input.Reporter.Start(cfg.ReportInterval.Duration())
			return nil
		},
		OnStop: func(_ context.Context) error {
			input.Reporter.Stop()
			input.Reporter.Log()
			return nil
		},
	})
}
