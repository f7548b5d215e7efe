package cfdp

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-ion/internal/core/registry"
	"github.com/dep2p/go-ion/pkg/types"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Registry 按对端实体号索引的 CFDP 代理注册表
type Registry = registry.Registry[types.EntityNumber, *Proxy]

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Registry *Registry
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("core/cfdp",
		fx.Provide(ProvideRegistry),
	)
}

// ProvideRegistry 提供进程级 CFDP 代理注册表
func ProvideRegistry() Result {
	return Result{
		Registry: registry.New[types.EntityNumber, *Proxy](),
	}
}
