package runner

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
)

// TestDo_Success 测试无期限调用的结果传递
func TestDo_Success(t *testing.T) {
	v, err := Do(func() ([]byte, error) {
		return []byte("payload"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), v)
}

// TestDo_Error 测试错误经结果槽原样上抛
func TestDo_Error(t *testing.T) {
	boom := errors.New("engine failure")

	_, err := Do(func() ([]byte, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

// TestDoTimeout_CompletesInTime 期限内完成时结果正常返回
func TestDoTimeout_CompletesInTime(t *testing.T) {
	v, err := DoTimeout(func() (int, error) {
		return 42, nil
	}, time.Second, func() {
		t.Error("interrupt should not fire when call completes in time")
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

// TestDoTimeout_Expires 期限到达时返回 ErrTimeout 并发出中断
func TestDoTimeout_Expires(t *testing.T) {
	var interrupted atomic.Bool
	release := make(chan struct{})

	start := time.Now()
	_, err := DoTimeout(func() (int, error) {
		<-release
		return 0, pkgif.ErrEngineInterrupted
	}, 50*time.Millisecond, func() {
		interrupted.Store(true)
		close(release)
	})
	elapsed := time.Since(start)

	require.ErrorIs(t, err, pkgif.ErrTimeout)
	assert.True(t, interrupted.Load(), "超时必须触发中断请求")
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond, "超时后必须立即返回，不等待工作协程")
}

// TestDoTimeout_LateOutcomeDiscarded 迟到的结果不会阻塞工作协程
func TestDoTimeout_LateOutcomeDiscarded(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})

	_, err := DoTimeout(func() (int, error) {
		defer close(done)
		<-release
		return 99, nil
	}, 20*time.Millisecond, func() {
		close(release)
	})
	require.ErrorIs(t, err, pkgif.ErrTimeout)

	// 工作协程向容量 1 的槽写入后必须能退出
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker goroutine leaked after timeout")
	}
}

// TestDoTimeout_ErrorCarriesCallContext 超时错误携带调用 ID 与期限
func TestDoTimeout_ErrorCarriesCallContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	_, err := DoTimeout(func() (int, error) {
		<-release
		return 0, pkgif.ErrEngineInterrupted
	}, 20*time.Millisecond, nil)

	// 包装后的错误仍可用 errors.Is 判别，上下文里能看到期限
	require.ErrorIs(t, err, pkgif.ErrTimeout)
	assert.Contains(t, err.Error(), "timed out after")
}

// TestDoTimeout_ZeroMeansUnbounded timeout <= 0 退化为无界等待
func TestDoTimeout_ZeroMeansUnbounded(t *testing.T) {
	v, err := DoTimeout(func() (string, error) {
		time.Sleep(30 * time.Millisecond)
		return "slow", nil
	}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "slow", v)
}
