package metrics

import (
	"go.uber.org/fx"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Traffic *TrafficCounter
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideTrafficCounter),
	)
}

// ProvideTrafficCounter 提供 TrafficCounter 实例
func ProvideTrafficCounter() Result {
	return Result{
		Traffic: NewTrafficCounter(),
	}
}
