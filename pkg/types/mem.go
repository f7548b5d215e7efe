package types

// ============================================================================
//                              内存转储类型
// ============================================================================

// PoolStats 内存池统计，键为统计项名称
type PoolStats map[string]uint64

// MemDump 一次 SDR/PSM 内存转储的结果
//
// 与引擎的 dump 调用一一对应：使用概要、小池空闲块统计、
// 大池空闲块统计。
type MemDump struct {
	// Summary 使用概要
	Summary PoolStats

	// SmallPool 小池空闲块统计
	SmallPool PoolStats

	// LargePool 大池空闲块统计
	LargePool PoolStats
}
