package mem

import (
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
)

// waitForSamples 等待采样循环至少完成 n 次转储
func waitForSamples(t *testing.T, engine *FakeMemEngine, n int) {
	t.Helper()

	require.Eventually(t, func() bool {
		return engine.SdrCalls() >= n
	}, time.Second, time.Millisecond)
	// 留出时隙让采样循环挂上周期定时器
	time.Sleep(10 * time.Millisecond)
}

func newTestSdrProxy(t *testing.T) (*SdrProxy, *FakeMemEngine, *clock.Mock) {
	t.Helper()

	engine := NewFakeMemEngine()
	mock := clock.NewMock()
	p := NewSdrProxy(1, "ion", engine, mock)
	t.Cleanup(func() { _ = p.Close() })
	return p, engine, mock
}

func TestSdrProxy_Dump(t *testing.T) {
	p, engine, _ := newTestSdrProxy(t)

	dump, err := p.Dump()
	require.NoError(t, err)
	require.EqualValues(t, 1024, dump.Summary["used"])
	require.Equal(t, 1, engine.SdrCalls())
}

func TestSdrProxy_DumpError(t *testing.T) {
	p, engine, _ := newTestSdrProxy(t)

	boom := errors.New("sdr unavailable")
	engine.SetErr(boom)

	_, err := p.Dump()
	require.ErrorIs(t, err, boom)
}

func TestPsmProxy_Dump(t *testing.T) {
	engine := NewFakeMemEngine()
	p := NewPsmProxy(1, 65281, engine, clock.NewMock())

	dump, err := p.Dump()
	require.NoError(t, err)
	require.EqualValues(t, 16, dump.SmallPool["free_blocks"])
	require.Equal(t, 1, engine.PsmCalls())
}

func TestSampler_SecondStartRejected(t *testing.T) {
	p, _, _ := newTestSdrProxy(t)

	require.NoError(t, p.StartMonitoring(1, 0, false))
	require.ErrorIs(t, p.StartMonitoring(1, 0, false), pkgif.ErrAlreadyMonitoring)
	require.True(t, p.Monitoring())
}

func TestSampler_InvalidRate(t *testing.T) {
	p, _, _ := newTestSdrProxy(t)

	require.Error(t, p.StartMonitoring(0, 0, false))
	require.Error(t, p.StartMonitoring(-1, 0, false))
	require.False(t, p.Monitoring())
}

func TestSampler_CollectsSamples(t *testing.T) {
	p, engine, mock := newTestSdrProxy(t)

	require.NoError(t, p.StartMonitoring(1, 0, false))

	// 启动即采第一拍，之后每推进一个周期采一拍
	waitForSamples(t, engine, 1)
	mock.Add(time.Second)
	waitForSamples(t, engine, 2)
	mock.Add(time.Second)
	waitForSamples(t, engine, 3)

	results, err := p.StopMonitoring()
	require.NoError(t, err)
	require.False(t, p.Monitoring())

	require.Len(t, results[SeriesSummary], 3)
	require.Len(t, results[SeriesSmallPool], 3)
	require.Len(t, results[SeriesLargePool], 3)
	for _, sample := range results[SeriesSummary] {
		require.NoError(t, sample.Err)
		require.EqualValues(t, 1024, sample.Stats["used"])
	}
}

func TestSampler_ErrorRecordedAsSample(t *testing.T) {
	p, engine, mock := newTestSdrProxy(t)

	boom := errors.New("dump failed")
	engine.SetErr(boom)

	require.NoError(t, p.StartMonitoring(1, 0, false))
	waitForSamples(t, engine, 1)

	// 转储失败不终止采样循环
	engine.SetErr(nil)
	mock.Add(time.Second)
	waitForSamples(t, engine, 2)

	results, err := p.StopMonitoring()
	require.NoError(t, err)

	var failed, succeeded int
	for _, sample := range results[SeriesSummary] {
		if sample.Err != nil {
			require.ErrorIs(t, sample.Err, boom)
			failed++
		} else {
			succeeded++
		}
	}
	require.Equal(t, 1, failed)
	require.Equal(t, 1, succeeded)
}

func TestSampler_WindowFlush(t *testing.T) {
	p, engine, mock := newTestSdrProxy(t)

	// 1 Hz 采样，2 秒窗口：第三拍前窗口期满，前两拍被清空
	require.NoError(t, p.StartMonitoring(1, 2*time.Second, true))
	waitForSamples(t, engine, 1)
	mock.Add(time.Second)
	waitForSamples(t, engine, 2)
	mock.Add(time.Second)
	waitForSamples(t, engine, 3)

	results, err := p.StopMonitoring()
	require.NoError(t, err)
	require.Len(t, results[SeriesSummary], 1)
}

func TestSampler_StopIdleNoop(t *testing.T) {
	p, _, _ := newTestSdrProxy(t)

	results, err := p.StopMonitoring()
	require.NoError(t, err)
	require.Nil(t, results)
}

func TestSampler_ClearResults(t *testing.T) {
	p, engine, _ := newTestSdrProxy(t)

	require.NoError(t, p.StartMonitoring(1, 0, false))
	waitForSamples(t, engine, 1)

	p.ClearResults()

	results, err := p.StopMonitoring()
	require.NoError(t, err)
	require.Empty(t, results[SeriesSummary])
}

func TestSampler_RestartAfterStop(t *testing.T) {
	p, engine, _ := newTestSdrProxy(t)

	require.NoError(t, p.StartMonitoring(1, 0, false))
	waitForSamples(t, engine, 1)
	_, err := p.StopMonitoring()
	require.NoError(t, err)

	// 停止后可以重新启动
	require.NoError(t, p.StartMonitoring(2, 0, false))
	_, err = p.StopMonitoring()
	require.NoError(t, err)
}

func TestSampler_CloseStopsMonitoring(t *testing.T) {
	p, engine, _ := newTestSdrProxy(t)

	require.NoError(t, p.StartMonitoring(1, 0, false))
	waitForSamples(t, engine, 1)

	require.NoError(t, p.Close())
	require.False(t, p.Monitoring())
}
