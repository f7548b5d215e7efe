package ion

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-ion/internal/core/bp"
	"github.com/dep2p/go-ion/internal/core/cfdp"
	"github.com/dep2p/go-ion/internal/core/ltp"
	"github.com/dep2p/go-ion/internal/core/mem"
	"github.com/dep2p/go-ion/internal/core/metrics"
	"github.com/dep2p/go-ion/internal/core/shutdown"
)

// buildFxApp 构建 Fx 应用
//
// 组装全部内部模块并把注册表、流量计数器与关停协调器回填到
// Stack。注册表在此只是容器，代理实例由 Stack 的获取方法按需
// 创建。
func buildFxApp(s *Stack) *fx.App {
	modules := []fx.Option{
		// ════════════════════════════════════════════════════════════════════
		// 核心模块
		// ════════════════════════════════════════════════════════════════════
		metrics.Module(),
		bp.Module(),
		cfdp.Module(),
		ltp.Module(),
		mem.Module(),

		// 关停协调器（应用停止时按固定顺序清场）
		shutdown.Module(),

		// Stack 组件回填
		fx.Populate(
			&s.bpReg,
			&s.cfdpReg,
			&s.ltpReg,
			&s.sdrReg,
			&s.psmReg,
			&s.traffic,
			&s.coord,
		),
	}

	// 用户扩展
	modules = append(modules, s.cfg.userFxOptions...)

	// 禁用 Fx 日志输出（避免干扰用户日志）
	modules = append(modules,
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	return fx.New(modules...)
}
