package types

// ============================================================================
//                              CfdpMode - 传输模式
// ============================================================================

// CfdpMode CFDP 可靠性模式
//
//   - CfdpCLReliable: 可靠性由汇聚层提供
//   - CfdpUnreliable: 不提供可靠性
//   - CfdpBpReliable: 可靠性由 BP 托管传输提供
type CfdpMode int

const (
	// CfdpCLReliable 汇聚层可靠
	CfdpCLReliable CfdpMode = iota
	// CfdpUnreliable 不可靠
	CfdpUnreliable
	// CfdpBpReliable BP 托管可靠
	CfdpBpReliable
)

// ============================================================================
//                              CfdpClosure - 闭合时延
// ============================================================================

// CfdpClosure EOF PDU 发送后等待对端 Finish PDU 的时长（秒）。
// 为 0 表示不请求闭合。需要其他秒数时直接传入数值即可。
type CfdpClosure int

const (
	// CfdpNoClosure 不请求闭合
	CfdpNoClosure CfdpClosure = 0
	// CfdpClosure1Sec 1 秒
	CfdpClosure1Sec CfdpClosure = 1
	// CfdpClosure1Min 1 分钟
	CfdpClosure1Min CfdpClosure = 60
	// CfdpClosure5Min 5 分钟
	CfdpClosure5Min CfdpClosure = 300
	// CfdpClosure1Hr 1 小时
	CfdpClosure1Hr CfdpClosure = 3600
)

// ============================================================================
//                              CfdpSegMetadata - 分段元数据
// ============================================================================

// CfdpSegMetadata PDU 分段元数据选项
type CfdpSegMetadata int

const (
	// CfdpNoSegMetadata 不附加元数据
	CfdpNoSegMetadata CfdpSegMetadata = iota
	// CfdpSegMetadataTime 在所有 PDU 上附加当前时间字符串
	CfdpSegMetadataTime
)

// ============================================================================
//                              CfdpFilestoreAction - 文件仓库动作
// ============================================================================

// CfdpFilestoreAction CFDP 文件仓库请求动作
type CfdpFilestoreAction int

const (
	// FilestoreCreateFile 创建文件
	FilestoreCreateFile CfdpFilestoreAction = iota
	// FilestoreDeleteFile 删除文件
	FilestoreDeleteFile
	// FilestoreRenameFile 重命名文件
	FilestoreRenameFile
	// FilestoreAppendFile 追加文件
	FilestoreAppendFile
	// FilestoreReplaceFile 替换文件
	FilestoreReplaceFile
	// FilestoreCreateDir 创建目录
	FilestoreCreateDir
	// FilestoreRemoveDir 删除目录
	FilestoreRemoveDir
	// FilestoreDenyFile 拒绝文件
	FilestoreDenyFile
	// FilestoreDenyDir 拒绝目录
	FilestoreDenyDir
)

// ============================================================================
//                              CfdpEvent - 事件种类
// ============================================================================

// CfdpEvent CFDP 引擎事件种类（见 CCSDS CFDP 3.5.6）
type CfdpEvent int

const (
	// CfdpNoEvent 无事件（良性的空轮询结果，不是错误）
	CfdpNoEvent CfdpEvent = iota
	// CfdpTransactionInd 事务开始指示
	CfdpTransactionInd
	// CfdpEofSentInd EOF 已发送指示
	CfdpEofSentInd
	// CfdpTransactionFinishedInd 事务完成指示
	CfdpTransactionFinishedInd
	// CfdpMetadataRecvInd 元数据已接收指示
	CfdpMetadataRecvInd
	// CfdpFileSegmentInd 文件分段已接收指示
	CfdpFileSegmentInd
	// CfdpEofRecvInd EOF 已接收指示
	CfdpEofRecvInd
	// CfdpSuspendedInd 事务已挂起指示
	CfdpSuspendedInd
	// CfdpResumedInd 事务已恢复指示
	CfdpResumedInd
	// CfdpReportInd 进度报告指示
	CfdpReportInd
	// CfdpFaultInd 故障指示
	CfdpFaultInd
	// CfdpAbandonedInd 事务已放弃指示
	CfdpAbandonedInd
)

// CfdpAllEvents 通配事件种类：注册在该种类上的处理器对所有事件生效
const CfdpAllEvents CfdpEvent = 100

// String 返回事件种类的字符串表示
func (e CfdpEvent) String() string {
	switch e {
	case CfdpNoEvent:
		return "no_event"
	case CfdpTransactionInd:
		return "transaction"
	case CfdpEofSentInd:
		return "eof_sent"
	case CfdpTransactionFinishedInd:
		return "transaction_finished"
	case CfdpMetadataRecvInd:
		return "metadata_recv"
	case CfdpFileSegmentInd:
		return "file_segment"
	case CfdpEofRecvInd:
		return "eof_recv"
	case CfdpSuspendedInd:
		return "suspended"
	case CfdpResumedInd:
		return "resumed"
	case CfdpReportInd:
		return "report"
	case CfdpFaultInd:
		return "fault"
	case CfdpAbandonedInd:
		return "abandoned"
	case CfdpAllEvents:
		return "all"
	default:
		return "unknown"
	}
}

// EventParams 事件参数包，内容随事件种类而定
type EventParams map[string]interface{}

// ============================================================================
//                              CfdpCondition - 故障条件
// ============================================================================

// CfdpCondition CFDP 故障条件码
type CfdpCondition int

const (
	// CfdpNoError 无错误
	CfdpNoError CfdpCondition = iota
	// CfdpAckLimitReached ACK 重试次数耗尽
	CfdpAckLimitReached
	// CfdpKeepAliveLimitReached Keep-alive 次数耗尽
	CfdpKeepAliveLimitReached
	// CfdpInvalidTransMode 无效传输模式
	CfdpInvalidTransMode
	// CfdpFilestoreReject 文件仓库拒绝
	CfdpFilestoreReject
	// CfdpChecksumFail 校验和错误
	CfdpChecksumFail
	// CfdpFilesizeError 文件大小错误
	CfdpFilesizeError
	// CfdpNakLimitReached NAK 重试次数耗尽
	CfdpNakLimitReached
	// CfdpInactivityDetected 检测到不活动
	CfdpInactivityDetected
	// CfdpInvalidFileStruct 无效文件结构
	CfdpInvalidFileStruct
	// CfdpCheckLimitReached 检查次数耗尽
	CfdpCheckLimitReached
	// CfdpSuspendRequested 请求挂起
	CfdpSuspendRequested
	// CfdpCancelRequested 请求取消
	CfdpCancelRequested
)
