package ion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-ion/internal/core/bp"
	"github.com/dep2p/go-ion/internal/core/cfdp"
	"github.com/dep2p/go-ion/internal/core/ltp"
	"github.com/dep2p/go-ion/internal/core/mem"
	"github.com/dep2p/go-ion/pkg/types"
)

// testEngines 全部协议族的假引擎
type testEngines struct {
	bp   *bp.FakeBpEngine
	cfdp *cfdp.FakeCfdpEngine
	ltp  *ltp.FakeLtpEngine
	mem  *mem.FakeMemEngine
}

func newTestStack(t *testing.T) (*Stack, *testEngines) {
	t.Helper()

	engines := &testEngines{
		bp:   bp.NewFakeBpEngine(),
		cfdp: cfdp.NewFakeCfdpEngine(),
		ltp:  ltp.NewFakeLtpEngine(),
		mem:  mem.NewFakeMemEngine(),
	}

	stack, err := New(context.Background(),
		WithBpEngine(engines.bp),
		WithCfdpEngine(engines.cfdp),
		WithLtpEngine(engines.ltp),
		WithMemEngine(engines.mem),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close() })
	return stack, engines
}

func TestStack_MissingEngine(t *testing.T) {
	stack, err := New(context.Background())
	require.NoError(t, err)
	defer stack.Close()

	_, err = stack.BP(1)
	require.Error(t, err)
	_, err = stack.CFDP(2)
	require.Error(t, err)
	_, err = stack.LTP(1)
	require.Error(t, err)
	_, err = stack.SDR(1, "ion")
	require.Error(t, err)
	_, err = stack.PSM(1, 65281)
	require.Error(t, err)
}

func TestStack_ProxySingletons(t *testing.T) {
	stack, engines := newTestStack(t)

	first, err := stack.BP(1)
	require.NoError(t, err)
	second, err := stack.BP(1)
	require.NoError(t, err)
	require.Same(t, first, second)

	// 每次获取都重新附着
	require.Equal(t, 2, engines.bp.AttachCount())

	other, err := stack.BP(2)
	require.NoError(t, err)
	require.NotSame(t, first, other)

	sdr1, err := stack.SDR(1, "ion")
	require.NoError(t, err)
	sdr2, err := stack.SDR(1, "ion")
	require.NoError(t, err)
	require.Same(t, sdr1, sdr2)

	sdrOther, err := stack.SDR(1, "backup")
	require.NoError(t, err)
	require.NotSame(t, sdr1, sdrOther)
}

func TestStack_BpRoundTrip(t *testing.T) {
	stack, _ := newTestStack(t)

	proxy, err := stack.BP(1)
	require.NoError(t, err)

	tx, err := proxy.Open("ipn:1.1")
	require.NoError(t, err)
	rx, err := proxy.Open("ipn:1.2", WithBpTTL(300))
	require.NoError(t, err)

	payload := []byte("end to end")
	require.NoError(t, tx.Send("ipn:1.2", payload))

	got, err := rx.Receive(WithBpRecvTimeout(time.Second))
	require.NoError(t, err)
	require.Equal(t, payload, got)

	// 数据面流量出现在计数器里
	totals := stack.Traffic().GetTotals()
	require.EqualValues(t, len(payload), totals.BytesOut)
	require.EqualValues(t, len(payload), totals.BytesIn)
}

func TestStack_CfdpTransfer(t *testing.T) {
	stack, engines := newTestStack(t)

	proxy, err := stack.CFDP(2)
	require.NoError(t, err)

	ett, err := proxy.Open(2, WithCfdpMode(types.CfdpUnreliable))
	require.NoError(t, err)

	done := make(chan bool, 1)
	go func() {
		done <- ett.WaitForTransactionEnd(time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	engines.cfdp.PushEvent(types.CfdpTransactionFinishedInd, nil)

	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("transaction waiter not released")
	}
}

func TestStack_ShutdownSequence(t *testing.T) {
	stack, engines := newTestStack(t)

	bpProxy, err := stack.BP(1)
	require.NoError(t, err)
	_, err = bpProxy.Open("ipn:1.1")
	require.NoError(t, err)

	cfdpProxy, err := stack.CFDP(2)
	require.NoError(t, err)
	_, err = cfdpProxy.Open(2)
	require.NoError(t, err)

	ltpProxy, err := stack.LTP(1)
	require.NoError(t, err)
	_, err = ltpProxy.Open(1)
	require.NoError(t, err)

	sdr, err := stack.SDR(1, "ion")
	require.NoError(t, err)
	require.NoError(t, sdr.StartMonitoring(1, 0, false))

	require.NoError(t, stack.Shutdown())

	require.Equal(t, 0, len(bpProxy.OpenEndpoints()))
	require.Equal(t, 0, len(cfdpProxy.OpenEntities()))
	require.Equal(t, 0, len(ltpProxy.OpenAccessPoints()))
	require.False(t, sdr.Monitoring())
	require.Equal(t, 1, engines.bp.DetachCount())

	// 关停后重新获取代理会重新附着
	again, err := stack.BP(1)
	require.NoError(t, err)
	require.True(t, again.Attached())
}

func TestStack_CloseIdempotent(t *testing.T) {
	stack, _ := newTestStack(t)

	require.NoError(t, stack.Close())
	require.NoError(t, stack.Close())

	_, err := stack.BP(1)
	require.ErrorIs(t, err, ErrStackClosed)
}
