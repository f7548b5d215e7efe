package types

import "fmt"

// ============================================================================
//                              节点与会话标识
// ============================================================================

// NodeNumber DTN 节点号（ipn 命名空间中的节点编号）
type NodeNumber uint64

// String 返回节点号的字符串表示
func (n NodeNumber) String() string {
	return fmt.Sprintf("%d", uint64(n))
}

// EntityNumber CFDP 对端实体号
type EntityNumber uint64

// String 返回实体号的字符串表示
func (e EntityNumber) String() string {
	return fmt.Sprintf("%d", uint64(e))
}

// ClientID LTP 客户应用标识
type ClientID uint64

// EngineNumber LTP 引擎号（发送目的地）
type EngineNumber uint64

// EID BP 端点标识符，例如 "ipn:1.1"
type EID string

// String 返回 EID 字符串
func (e EID) String() string {
	return string(e)
}

// ============================================================================
//                              SessionHandle - 会话句柄
// ============================================================================

// SessionHandle 引擎签发的不透明会话句柄
//
// 句柄由外部引擎在 open 时分配（通常是引擎内部状态对象的地址或整数），
// 由且仅由一个会话对象持有。关闭后句柄归零，包装层不得再以旧句柄
// 关联任何存活会话（引擎可能在内部复用该值）。
type SessionHandle uintptr

// InvalidHandle 无效句柄（会话关闭后的取值）
const InvalidHandle SessionHandle = 0

// Valid 检查句柄是否有效
func (h SessionHandle) Valid() bool {
	return h != InvalidHandle
}
