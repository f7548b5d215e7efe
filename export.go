package ion

import (
	"github.com/dep2p/go-ion/internal/core/bp"
	"github.com/dep2p/go-ion/internal/core/cfdp"
	"github.com/dep2p/go-ion/internal/core/ltp"
	"github.com/dep2p/go-ion/internal/core/mem"
	"github.com/dep2p/go-ion/internal/core/metrics"
	"github.com/dep2p/go-ion/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

// 标识类型
type (
	// NodeNumber DTN 节点号
	NodeNumber = types.NodeNumber

	// EntityNumber CFDP 对端实体号
	EntityNumber = types.EntityNumber

	// ClientID LTP 客户应用标识
	ClientID = types.ClientID

	// EngineNumber LTP 引擎号
	EngineNumber = types.EngineNumber

	// EID BP 端点标识符
	EID = types.EID
)

// 协议族代理与会话
type (
	// BpProxy BP 协议族代理
	BpProxy = bp.Proxy

	// BpEndpoint 已打开的 BP 端点
	BpEndpoint = bp.Endpoint

	// BpOption BP 端点参数选项
	BpOption = bp.Option

	// CfdpProxy CFDP 协议族代理
	CfdpProxy = cfdp.Proxy

	// CfdpEntity 已打开的 CFDP 对端实体
	CfdpEntity = cfdp.Entity

	// CfdpOption CFDP 实体参数选项
	CfdpOption = cfdp.Option

	// CfdpHandler CFDP 事件处理器
	CfdpHandler = cfdp.Handler

	// LtpProxy LTP 协议族代理
	LtpProxy = ltp.Proxy

	// LtpAccessPoint 已打开的 LTP 服务访问点
	LtpAccessPoint = ltp.AccessPoint

	// SdrProxy SDR 自省代理
	SdrProxy = mem.SdrProxy

	// PsmProxy PSM 自省代理
	PsmProxy = mem.PsmProxy

	// MemResults 内存采样结果
	MemResults = mem.Results

	// MemSample 一个时刻的内存采样值
	MemSample = mem.Sample

	// TrafficCounter 数据面流量计数器
	TrafficCounter = metrics.TrafficCounter

	// TrafficStats 流量统计快照
	TrafficStats = metrics.Stats
)

// ════════════════════════════════════════════════════════════════════════════
//                              选项再导出
// ════════════════════════════════════════════════════════════════════════════

// BP 端点选项
var (
	// WithBpTTL 设置 bundle 生存期（秒）
	WithBpTTL = bp.WithTTL

	// WithBpPriority 设置服务类别
	WithBpPriority = bp.WithPriority

	// WithBpReportEID 设置状态报告投递端点
	WithBpReportEID = bp.WithReportEID

	// WithBpCustody 设置托管开关
	WithBpCustody = bp.WithCustody

	// WithBpReportFlags 设置状态报告请求标志
	WithBpReportFlags = bp.WithReportFlags

	// WithBpAckRequested 请求端到端应用确认
	WithBpAckRequested = bp.WithAckRequested

	// WithBpRetxTimer 设置托管重传定时器（秒），隐含 detained 模式
	WithBpRetxTimer = bp.WithRetxTimer

	// WithBpChunkSize 设置分块大小（字节）
	WithBpChunkSize = bp.WithChunkSize

	// WithBpRecvTimeout 设置接收超时
	WithBpRecvTimeout = bp.WithRecvTimeout

	// WithBpMemCtrl 启用引擎内存控制
	WithBpMemCtrl = bp.WithMemCtrl
)

// CFDP 实体选项
var (
	// WithCfdpTTL 设置承载 PDU 的 bundle 生存期（秒）
	WithCfdpTTL = cfdp.WithTTL

	// WithCfdpPriority 设置服务类别
	WithCfdpPriority = cfdp.WithPriority

	// WithCfdpSubPriority 设置次优先级
	WithCfdpSubPriority = cfdp.WithSubPriority

	// WithCfdpReportFlags 设置状态报告请求标志
	WithCfdpReportFlags = cfdp.WithReportFlags

	// WithCfdpCriticality 设置扩展服务类别标志
	WithCfdpCriticality = cfdp.WithCriticality

	// WithCfdpMode 设置可靠性模式
	WithCfdpMode = cfdp.WithMode

	// WithCfdpClosureLatency 设置闭合时延
	WithCfdpClosureLatency = cfdp.WithClosureLatency

	// WithCfdpSegMetadata 设置分段元数据选项
	WithCfdpSegMetadata = cfdp.WithSegMetadata
)

// 采样序列名称
const (
	// SeriesSummary 使用概要序列
	SeriesSummary = mem.SeriesSummary

	// SeriesSmallPool 小池空闲块序列
	SeriesSmallPool = mem.SeriesSmallPool

	// SeriesLargePool 大池空闲块序列
	SeriesLargePool = mem.SeriesLargePool
)
