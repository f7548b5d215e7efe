package shutdown

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-ion/internal/core/bp"
	"github.com/dep2p/go-ion/internal/core/cfdp"
	"github.com/dep2p/go-ion/internal/core/ltp"
	"github.com/dep2p/go-ion/internal/core/mem"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Params Fx 模块输入参数
type Params struct {
	fx.In

	BpRegistry   *bp.Registry
	CfdpRegistry *cfdp.Registry
	LtpRegistry  *ltp.Registry
	SdrRegistry  *mem.SdrRegistry
	PsmRegistry  *mem.PsmRegistry
}

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Coordinator *Coordinator
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("core/shutdown",
		fx.Provide(ProvideCoordinator),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideCoordinator 提供关停协调器
func ProvideCoordinator(params Params) Result {
	return Result{
		Coordinator: NewCoordinator(
			params.BpRegistry,
			params.CfdpRegistry,
			params.LtpRegistry,
			params.SdrRegistry,
			params.PsmRegistry,
		),
	}
}

// registerLifecycle 应用停止时执行关停
func registerLifecycle(lc fx.Lifecycle, c *Coordinator) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return c.Shutdown()
		},
	})
}
