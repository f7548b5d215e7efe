package mem

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-ion/internal/core/registry"
)

// ============================================================================
// Fx 模块
// ============================================================================

// SdrRegistry 按 (节点号, SDR 名称) 索引的 SDR 代理注册表
type SdrRegistry = registry.Registry[SdrKey, *SdrProxy]

// PsmRegistry 按 (节点号, 工作内存键) 索引的 PSM 代理注册表
type PsmRegistry = registry.Registry[PsmKey, *PsmProxy]

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	SdrRegistry *SdrRegistry
	PsmRegistry *PsmRegistry
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("core/mem",
		fx.Provide(ProvideRegistries),
	)
}

// ProvideRegistries 提供进程级 SDR/PSM 代理注册表
func ProvideRegistries() Result {
	return Result{
		SdrRegistry: registry.New[SdrKey, *SdrProxy](),
		PsmRegistry: registry.New[PsmKey, *PsmProxy](),
	}
}
