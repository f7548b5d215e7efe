// Package interfaces 定义 go-ion 公共接口
//
// 本文件定义外部 DTN 引擎的边界接口。引擎是不透明的本地协作者：
// 它的阻塞调用可能无限期阻塞，会话以不透明句柄标识。
package interfaces

import (
	"github.com/dep2p/go-ion/pkg/types"
)

// ============================================================================
//                              BP 引擎
// ============================================================================

// BpOpenOptions 打开 BP 端点时传给引擎的选项
type BpOpenOptions struct {
	// Detained 以 detained 模式打开（引擎保留 bundle 直到确认，
	// 托管重传定时器依赖此模式）
	Detained bool

	// MemCtrl 启用引擎内存控制
	MemCtrl bool
}

// BpSendOptions 单次 BP 发送的选项
type BpSendOptions struct {
	// TTL bundle 生存期（秒）
	TTL int

	// Priority 服务类别
	Priority types.BpPriority

	// ReportEID 状态报告投递端点（空表示不投递）
	ReportEID types.EID

	// Custody 托管开关
	Custody types.BpCustody

	// ReportFlags 状态报告请求标志
	ReportFlags types.BpReportFlags

	// AckRequested 请求端到端应用确认
	AckRequested bool

	// RetxTimer 托管重传定时器（秒），0 表示不建定时器
	RetxTimer int

	// SubPriority 次优先级（ordinal）
	SubPriority int

	// Criticality 扩展服务类别标志
	Criticality int
}

// BpEngine BP（bundle 中继）引擎边界
//
// Receive 是单次阻塞接收：返回一个入站 bundle 的载荷，或在被
// Interrupt 打断时返回 ErrEngineInterrupted、在会话被并发关闭时
// 返回 ErrEngineClosed。
type BpEngine interface {
	// Attach 加入引擎的 BP 运行时
	Attach() error

	// Detach 离开引擎的 BP 运行时
	Detach() error

	// Open 打开端点，返回引擎签发的会话句柄
	Open(eid types.EID, opts BpOpenOptions) (types.SessionHandle, error)

	// Send 通过句柄发送一个 bundle，失败时报错（无空间、无路由、被中断）
	Send(h types.SessionHandle, dest types.EID, payload []byte, opts BpSendOptions) error

	// Receive 阻塞接收一个入站 bundle
	Receive(h types.SessionHandle) ([]byte, error)

	// Interrupt 中止该句柄上阻塞的调用，尽力而为，不得阻塞。
	// 会话空闲时可返回 ErrEngineNotBlocked（良性）。
	Interrupt(h types.SessionHandle) error

	// Close 释放会话句柄
	Close(h types.SessionHandle) error
}

// ============================================================================
//                              CFDP 引擎
// ============================================================================

// CfdpOpenOptions 打开 CFDP 实体时传给引擎的底层 BP 参数
type CfdpOpenOptions struct {
	// TTL 承载 PDU 的 bundle 生存期（秒）
	TTL int

	// Priority 服务类别
	Priority types.BpPriority

	// SubPriority 次优先级（ordinal）
	SubPriority int

	// ReportFlags 状态报告请求标志
	ReportFlags types.BpReportFlags

	// Criticality 扩展服务类别标志
	Criticality int
}

// CfdpTransferOptions 单次文件传输的选项
type CfdpTransferOptions struct {
	// Mode 可靠性模式
	Mode types.CfdpMode

	// ClosureLatency 闭合时延
	ClosureLatency types.CfdpClosure

	// SegMetadata 分段元数据选项
	SegMetadata types.CfdpSegMetadata
}

// CfdpEngine CFDP（文件传输）引擎边界
//
// NextEvent 阻塞拉取下一个引擎事件；(CfdpNoEvent, nil, nil) 是良性的
// 空轮询结果。InterruptEvents 专门打断阻塞中的 NextEvent。
type CfdpEngine interface {
	// Attach 加入引擎的 CFDP 运行时
	Attach() error

	// Detach 离开引擎的 CFDP 运行时
	Detach() error

	// Open 面向对端实体打开传输参数句柄
	Open(peer types.EntityNumber, opts CfdpOpenOptions) (types.SessionHandle, error)

	// Send 触发向对端发送文件
	Send(h types.SessionHandle, sourceFile, destFile string, opts CfdpTransferOptions) error

	// Request 请求对端把文件发给本节点
	Request(h types.SessionHandle, sourceFile, destFile string, opts CfdpTransferOptions) error

	// Cancel 取消当前事务
	Cancel(h types.SessionHandle) error

	// Suspend 挂起当前事务
	Suspend(h types.SessionHandle) error

	// Resume 恢复当前事务
	Resume(h types.SessionHandle) error

	// Report 请求当前事务的进度报告
	Report(h types.SessionHandle) error

	// AddUserMessage 在下一个事务的所有 PDU 上附加用户消息
	AddUserMessage(h types.SessionHandle, msg string) error

	// AddFilestoreRequest 在下一个事务上附加文件仓库请求
	AddFilestoreRequest(h types.SessionHandle, action types.CfdpFilestoreAction, file1, file2 string) error

	// NextEvent 阻塞拉取下一个事件（种类 + 参数包）
	NextEvent() (types.CfdpEvent, types.EventParams, error)

	// InterruptEvents 打断阻塞中的 NextEvent，不得阻塞
	InterruptEvents() error

	// Close 释放实体句柄
	Close(h types.SessionHandle) error
}

// ============================================================================
//                              LTP 引擎
// ============================================================================

// LtpEngine LTP（点对点链路传输）引擎边界
type LtpEngine interface {
	// Attach 加入引擎的 LTP 运行时
	Attach() error

	// Detach 离开引擎的 LTP 运行时
	Detach() error

	// Open 为客户应用打开服务访问点
	Open(client types.ClientID) (types.SessionHandle, error)

	// Send 向目的引擎发送数据
	Send(h types.SessionHandle, dest types.EngineNumber, payload []byte) error

	// Receive 阻塞接收一个入站数据单元
	Receive(h types.SessionHandle) ([]byte, error)

	// Interrupt 中止该句柄上阻塞的调用，尽力而为，不得阻塞
	Interrupt(h types.SessionHandle) error

	// Close 释放访问点句柄
	Close(h types.SessionHandle) error
}

// ============================================================================
//                              内存引擎
// ============================================================================

// MemEngine SDR/PSM 内存自省边界
//
// dump 调用是同步的、相对快速的；失败不应终止采样循环，
// 采样器把错误作为该时刻的样本记录。
type MemEngine interface {
	// SdrDump 转储指定 SDR 的当前状态
	SdrDump(sdrName string) (types.MemDump, error)

	// PsmDump 转储指定 PSM 分区的当前状态
	PsmDump(wmKey int) (types.MemDump, error)
}

// ============================================================================
//                              引擎集合
// ============================================================================

// EngineSet 一个节点可用的全部引擎边界
//
// 未配置的协议族保持 nil，对应的代理获取操作会报错。
type EngineSet struct {
	// BP BP 引擎
	BP BpEngine

	// CFDP CFDP 引擎
	CFDP CfdpEngine

	// LTP LTP 引擎
	LTP LtpEngine

	// Mem SDR/PSM 内存引擎
	Mem MemEngine
}
