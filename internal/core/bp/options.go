package bp

import (
	"time"

	"github.com/dep2p/go-ion/pkg/types"
)

// ============================================================================
//                              端点选项
// ============================================================================

// Options 端点默认参数
//
// 打开端点时指定的参数作为该端点的默认值；Send/Receive 可以
// 按调用覆盖其中一部分。
type Options struct {
	// TTL 经由该端点发出的 bundle 的生存期（秒）
	TTL int

	// Priority 服务类别
	Priority types.BpPriority

	// ReportEID 状态报告投递端点
	ReportEID types.EID

	// Custody 托管开关
	Custody types.BpCustody

	// ReportFlags 状态报告请求标志
	ReportFlags types.BpReportFlags

	// AckRequested 请求端到端应用确认
	AckRequested bool

	// RetxTimer 托管重传定时器（秒）。大于 0 时端点以 detained
	// 模式打开（引擎保留 bundle 直到确认）
	RetxTimer int

	// ChunkSize 分块大小（字节）。发送时把载荷拆成固定大小的
	// bundle；接收时按字节聚合到至少该长度
	ChunkSize int

	// RecvTimeout 接收超时。零值表示无界等待
	RecvTimeout time.Duration

	// MemCtrl 启用引擎内存控制
	MemCtrl bool
}

// defaultOptions 返回端点默认参数
func defaultOptions() Options {
	return Options{
		TTL:      3600,
		Priority: types.StdPriority,
		Custody:  types.NoCustodyRequested,
	}
}

// Option 端点参数选项函数
type Option func(*Options)

// WithTTL 设置 bundle 生存期（秒）
func WithTTL(seconds int) Option {
	return func(o *Options) { o.TTL = seconds }
}

// WithPriority 设置服务类别
func WithPriority(p types.BpPriority) Option {
	return func(o *Options) { o.Priority = p }
}

// WithReportEID 设置状态报告投递端点
func WithReportEID(eid types.EID) Option {
	return func(o *Options) { o.ReportEID = eid }
}

// WithCustody 设置托管开关
func WithCustody(c types.BpCustody) Option {
	return func(o *Options) { o.Custody = c }
}

// WithReportFlags 设置状态报告请求标志
func WithReportFlags(f types.BpReportFlags) Option {
	return func(o *Options) { o.ReportFlags = f }
}

// WithAckRequested 请求端到端应用确认
func WithAckRequested(ack bool) Option {
	return func(o *Options) { o.AckRequested = ack }
}

// WithRetxTimer 设置托管重传定时器（秒），隐含 detained 模式
func WithRetxTimer(seconds int) Option {
	return func(o *Options) { o.RetxTimer = seconds }
}

// WithChunkSize 设置分块大小（字节）
func WithChunkSize(n int) Option {
	return func(o *Options) { o.ChunkSize = n }
}

// WithRecvTimeout 设置接收超时
func WithRecvTimeout(d time.Duration) Option {
	return func(o *Options) { o.RecvTimeout = d }
}

// WithMemCtrl 启用引擎内存控制
func WithMemCtrl(on bool) Option {
	return func(o *Options) { o.MemCtrl = on }
}
