package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTrafficCounter_Totals 测试全局计数
func TestTrafficCounter_Totals(t *testing.T) {
	tc := NewTrafficCounter()

	tc.LogSent("ipn:1.1", 100)
	tc.LogSent("ipn:1.1", 50)
	tc.LogRecv("ipn:1.2", 30)

	s := tc.GetTotals()
	assert.Equal(t, int64(150), s.BytesOut)
	assert.Equal(t, int64(30), s.BytesIn)
	assert.Equal(t, int64(2), s.UnitsOut)
	assert.Equal(t, int64(1), s.UnitsIn)
}

// TestTrafficCounter_PerSession 测试会话级计数
func TestTrafficCounter_PerSession(t *testing.T) {
	tc := NewTrafficCounter()

	tc.LogSent("ipn:1.1", 10)
	tc.LogRecv("ipn:1.1", 20)
	tc.LogSent("ipn:1.2", 5)

	s := tc.GetForSession("ipn:1.1")
	assert.Equal(t, int64(10), s.BytesOut)
	assert.Equal(t, int64(20), s.BytesIn)

	// 未知会话返回零值
	assert.Equal(t, Stats{}, tc.GetForSession("ipn:9.9"))
}

// TestTrafficCounter_Concurrent 并发记录不丢计数
func TestTrafficCounter_Concurrent(t *testing.T) {
	tc := NewTrafficCounter()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tc.LogSent("k", 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1600), tc.GetTotals().BytesOut)
	assert.Equal(t, int64(1600), tc.GetForSession("k").BytesOut)
}

// TestTrafficCounter_Reset 测试清零
func TestTrafficCounter_Reset(t *testing.T) {
	tc := NewTrafficCounter()
	tc.LogSent("a", 10)
	tc.Reset()

	assert.Equal(t, Stats{}, tc.GetTotals())
	assert.Equal(t, Stats{}, tc.GetForSession("a"))
}
