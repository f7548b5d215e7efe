// Package metrics 实现数据面流量计数
package metrics

import (
	"sync"
	"sync/atomic"
)

// TrafficCounter 流量计数器
//
// TrafficCounter 跟踪经由本地引擎发送和接收的数据单元。
// 使用原子操作实现并发安全的计数器；按会话键（端点 EID、
// LTP 客户号）分级统计。
type TrafficCounter struct {
	// 全局计数器（使用 atomic）
	totalIn  atomic.Int64
	totalOut atomic.Int64
	unitsIn  atomic.Int64
	unitsOut atomic.Int64

	// 会话级计数器
	sessionMu  sync.RWMutex
	sessionIn  map[string]*atomic.Int64
	sessionOut map[string]*atomic.Int64
}

// Stats 一组流量统计
type Stats struct {
	// BytesIn 接收字节数
	BytesIn int64

	// BytesOut 发送字节数
	BytesOut int64

	// UnitsIn 接收数据单元数
	UnitsIn int64

	// UnitsOut 发送数据单元数
	UnitsOut int64
}

// NewTrafficCounter 创建新的 TrafficCounter
func NewTrafficCounter() *TrafficCounter {
	return &TrafficCounter{
		sessionIn:  make(map[string]*atomic.Int64),
		sessionOut: make(map[string]*atomic.Int64),
	}
}

// LogSent 记录一次发送
func (tc *TrafficCounter) LogSent(sessionKey string, size int64) {
	tc.totalOut.Add(size)
	tc.unitsOut.Add(1)
	tc.counter(&tc.sessionOut, sessionKey).Add(size)
}

// LogRecv 记录一次接收
func (tc *TrafficCounter) LogRecv(sessionKey string, size int64) {
	tc.totalIn.Add(size)
	tc.unitsIn.Add(1)
	tc.counter(&tc.sessionIn, sessionKey).Add(size)
}

// counter 获取会话级计数器，不存在时创建
func (tc *TrafficCounter) counter(m *map[string]*atomic.Int64, key string) *atomic.Int64 {
	tc.sessionMu.RLock()
	c, ok := (*m)[key]
	tc.sessionMu.RUnlock()
	if ok {
		return c
	}

	tc.sessionMu.Lock()
	defer tc.sessionMu.Unlock()

	if c, ok = (*m)[key]; ok {
		return c
	}
	c = new(atomic.Int64)
	(*m)[key] = c
	return c
}

// GetTotals 返回全局统计
func (tc *TrafficCounter) GetTotals() Stats {
	return Stats{
		BytesIn:  tc.totalIn.Load(),
		BytesOut: tc.totalOut.Load(),
		UnitsIn:  tc.unitsIn.Load(),
		UnitsOut: tc.unitsOut.Load(),
	}
}

// GetForSession 返回单个会话键的字节统计
func (tc *TrafficCounter) GetForSession(sessionKey string) Stats {
	tc.sessionMu.RLock()
	defer tc.sessionMu.RUnlock()

	var s Stats
	if c, ok := tc.sessionIn[sessionKey]; ok {
		s.BytesIn = c.Load()
	}
	if c, ok := tc.sessionOut[sessionKey]; ok {
		s.BytesOut = c.Load()
	}
	return s
}

// Reset 清零全部计数
func (tc *TrafficCounter) Reset() {
	tc.totalIn.Store(0)
	tc.totalOut.Store(0)
	tc.unitsIn.Store(0)
	tc.unitsOut.Store(0)

	tc.sessionMu.Lock()
	defer tc.sessionMu.Unlock()

	tc.sessionIn = make(map[string]*atomic.Int64)
	tc.sessionOut = make(map[string]*atomic.Int64)
}
