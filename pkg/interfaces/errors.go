// Package interfaces 定义 go-ion 公共接口
//
// 本文件定义公共错误。
package interfaces

import "errors"

// ============================================================================
//                              本地前置条件错误
// ============================================================================

var (
	// ErrNotAttached 代理尚未附着到引擎
	ErrNotAttached = errors.New("not attached to engine, call Attach first")

	// ErrNotOpen 会话未打开（已关闭或从未打开）
	ErrNotOpen = errors.New("session not open")

	// ErrKeyNotFound 指定键从未打开过会话
	ErrKeyNotFound = errors.New("session key not found")

	// ErrConflictingOptions 超时与按字节聚合接收互斥
	ErrConflictingOptions = errors.New("timeout and chunk size cannot be combined")

	// ErrDetainedRequired 非 detained 会话不能设置托管重传定时器
	ErrDetainedRequired = errors.New("session not detained, custodial timer not allowed")

	// ErrAlreadyMonitoring 已有一个内存监控会话在运行
	ErrAlreadyMonitoring = errors.New("memory already being monitored")

	// ErrTimeout 调用在期限内未完成（包装层本地合成，非引擎错误）
	ErrTimeout = errors.New("call timed out")

	// ErrStackClosed 协议栈已关闭
	ErrStackClosed = errors.New("stack closed")
)

// ============================================================================
//                              引擎错误哨兵
// ============================================================================

var (
	// ErrEngineInterrupted 引擎调用被显式中断
	ErrEngineInterrupted = errors.New("engine call interrupted")

	// ErrEngineNotBlocked 会话当前没有阻塞调用可中断（良性条件）
	ErrEngineNotBlocked = errors.New("session not blocked")

	// ErrEngineClosed 会话在引擎侧被并发关闭
	ErrEngineClosed = errors.New("engine session closed")

	// ErrNoSpace 引擎存储空间不足
	ErrNoSpace = errors.New("engine out of storage space")

	// ErrNoRoute 引擎找不到路由
	ErrNoRoute = errors.New("no route to destination")
)
