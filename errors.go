package ion

import (
	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
)

// ============================================================================
//                              错误再导出
// ============================================================================

// 前置条件与运行期错误，便于调用方用 errors.Is 判别。
var (
	// ErrNotAttached 代理尚未附着到引擎
	ErrNotAttached = pkgif.ErrNotAttached

	// ErrNotOpen 会话未打开或已关闭
	ErrNotOpen = pkgif.ErrNotOpen

	// ErrConflictingOptions 互斥的选项被同时指定
	ErrConflictingOptions = pkgif.ErrConflictingOptions

	// ErrDetainedRequired 操作需要 detained 模式的端点
	ErrDetainedRequired = pkgif.ErrDetainedRequired

	// ErrAlreadyMonitoring 已有采样在运行
	ErrAlreadyMonitoring = pkgif.ErrAlreadyMonitoring

	// ErrTimeout 阻塞调用超时
	ErrTimeout = pkgif.ErrTimeout

	// ErrStackClosed Stack 已关闭
	ErrStackClosed = pkgif.ErrStackClosed
)
