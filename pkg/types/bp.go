package types

// ============================================================================
//                              BpCustody - 托管开关
// ============================================================================

// BpCustody BP 托管（custody）开关
type BpCustody int

const (
	// NoCustodyRequested 不请求托管
	NoCustodyRequested BpCustody = iota
	// SourceCustodyOptional 源端托管可选
	SourceCustodyOptional
	// SourceCustodyRequired 源端托管必选
	SourceCustodyRequired
)

// String 返回托管开关的字符串表示
func (c BpCustody) String() string {
	switch c {
	case SourceCustodyOptional:
		return "optional"
	case SourceCustodyRequired:
		return "required"
	default:
		return "none"
	}
}

// ============================================================================
//                              BpPriority - 服务类别
// ============================================================================

// BpPriority BP 服务类别（class of service）
type BpPriority int

const (
	// BulkPriority 批量优先级
	BulkPriority BpPriority = iota
	// StdPriority 标准优先级
	StdPriority
	// ExpeditedPriority 加急优先级
	ExpeditedPriority
)

// String 返回优先级的字符串表示
func (p BpPriority) String() string {
	switch p {
	case BulkPriority:
		return "bulk"
	case ExpeditedPriority:
		return "expedited"
	default:
		return "standard"
	}
}

// ============================================================================
//                              BpReportFlags - 状态报告标志
// ============================================================================

// BpReportFlags BP 状态报告请求标志（可按位组合）
type BpReportFlags int

const (
	// NoReports 不请求任何报告
	NoReports BpReportFlags = 0
	// ReceivedReport 请求"已接收"报告
	ReceivedReport BpReportFlags = 1 << (iota - 1)
	// CustodyReport 请求"已托管"报告
	CustodyReport
	// ForwardedReport 请求"已转发"报告
	ForwardedReport
	// DeliveredReport 请求"已交付"报告
	DeliveredReport
	// DeletedReport 请求"已删除"报告
	DeletedReport
)

// ============================================================================
//                              BpEcs - 扩展服务类别
// ============================================================================

// BpEcs BP 扩展服务类别标志（extended class of service）
//
//   - EcsMinimumLatency: 在所有路由上转发
//   - EcsBestEffort: 使用不可靠汇聚层发送
//   - EcsFlowLabelPresent: 流标签为 0 时忽略
//   - EcsReliable: 使用可靠汇聚层发送
type BpEcs int

const (
	// EcsMinimumLatency 最小时延
	EcsMinimumLatency BpEcs = 1 << iota
	// EcsBestEffort 尽力而为
	EcsBestEffort
	// EcsFlowLabelPresent 携带流标签
	EcsFlowLabelPresent
	// EcsReliable 可靠传输
	EcsReliable
)

// EcsReliableStreaming 可靠流式传输
const EcsReliableStreaming = EcsBestEffort | EcsReliable
