package cfdp

import (
	"github.com/dep2p/go-ion/pkg/types"
)

// ============================================================================
//                              实体选项
// ============================================================================

// Options 实体默认参数
//
// 打开实体时固化底层 bundle 参数；传输参数（模式、闭合时延、
// 分段元数据）作为该实体的默认值，Send/Request 可以按调用覆盖。
type Options struct {
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

	// Mode 可靠性模式
	Mode types.CfdpMode

	// ClosureLatency 闭合时延
	ClosureLatency types.CfdpClosure

	// SegMetadata 分段元数据选项
	SegMetadata types.CfdpSegMetadata
}

// defaultOptions 返回实体默认参数
func defaultOptions() Options {
	return Options{
		TTL:            3600,
		Priority:       types.StdPriority,
		Mode:           types.CfdpBpReliable,
		ClosureLatency: types.CfdpNoClosure,
		SegMetadata:    types.CfdpNoSegMetadata,
	}
}

// Option 实体参数选项函数
type Option func(*Options)

// WithTTL 设置承载 PDU 的 bundle 生存期（秒）
func WithTTL(seconds int) Option {
	return func(o *Options) { o.TTL = seconds }
}

// WithPriority 设置服务类别
func WithPriority(p types.BpPriority) Option {
	return func(o *Options) { o.Priority = p }
}

// WithSubPriority 设置次优先级
func WithSubPriority(n int) Option {
	return func(o *Options) { o.SubPriority = n }
}

// WithReportFlags 设置状态报告请求标志
func WithReportFlags(f types.BpReportFlags) Option {
	return func(o *Options) { o.ReportFlags = f }
}

// WithCriticality 设置扩展服务类别标志
func WithCriticality(c int) Option {
	return func(o *Options) { o.Criticality = c }
}

// WithMode 设置可靠性模式
func WithMode(m types.CfdpMode) Option {
	return func(o *Options) { o.Mode = m }
}

// WithClosureLatency 设置闭合时延
func WithClosureLatency(c types.CfdpClosure) Option {
	return func(o *Options) { o.ClosureLatency = c }
}

// WithSegMetadata 设置分段元数据选项
func WithSegMetadata(s types.CfdpSegMetadata) Option {
	return func(o *Options) { o.SegMetadata = s }
}
