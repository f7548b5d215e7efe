package ltp

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-ion/internal/core/registry"
	"github.com/dep2p/go-ion/pkg/types"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Registry 按节点号索引的 LTP 代理注册表
type Registry = registry.Registry[types.NodeNumber, *Proxy]

// Result Fx 模块输出结果
type Result struct {
	fx.Out

	Registry *Registry
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("core/ltp",
		fx.Provide(ProvideRegistry),
	)
}

// ProvideRegistry 提供进程级 LTP 代理注册表
func ProvideRegistry() Result {
	return Result{
		Registry: registry.New[types.NodeNumber, *Proxy](),
	}
}
