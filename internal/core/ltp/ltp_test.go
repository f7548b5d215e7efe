package ltp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-ion/internal/core/metrics"
	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
)

func newTestProxy(t *testing.T) (*Proxy, *FakeLtpEngine) {
	t.Helper()

	engine := NewFakeLtpEngine()
	p := NewProxy(1, engine, nil)
	require.NoError(t, p.Attach())
	return p, engine
}

func TestProxy_OpenRequiresAttach(t *testing.T) {
	p := NewProxy(1, NewFakeLtpEngine(), nil)

	_, err := p.Open(1)
	require.ErrorIs(t, err, pkgif.ErrNotAttached)
}

func TestProxy_AccessPointsPerClient(t *testing.T) {
	p, _ := newTestProxy(t)

	// 代理按节点号唯一，节点上的各客户应用在其下各开一个访问点
	require.EqualValues(t, 1, p.NodeNumber())

	first, err := p.Open(1)
	require.NoError(t, err)
	second, err := p.Open(2)
	require.NoError(t, err)
	require.NotSame(t, first, second)
	require.EqualValues(t, 1, first.ClientID())
	require.EqualValues(t, 2, second.ClientID())
	require.Equal(t, 2, len(p.OpenAccessPoints()))
}

func TestProxy_OpenIdempotentPerClient(t *testing.T) {
	p, _ := newTestProxy(t)

	first, err := p.Open(1)
	require.NoError(t, err)
	second, err := p.Open(1)
	require.NoError(t, err)
	require.Same(t, first, second)

	other, err := p.Open(4)
	require.NoError(t, err)
	require.NotSame(t, first, other)
	require.True(t, p.IsClientOpen(4))
}

func TestProxy_CloseIdempotent(t *testing.T) {
	p, _ := newTestProxy(t)

	sap, err := p.Open(1)
	require.NoError(t, err)

	require.NoError(t, p.Close(sap))
	require.False(t, sap.IsOpen())
	require.False(t, p.IsClientOpen(1))

	// 重复关闭为空操作
	require.NoError(t, p.Close(sap))
	require.NoError(t, sap.Close())
}

func TestAccessPoint_RoundTrip(t *testing.T) {
	p, _ := newTestProxy(t)

	sap, err := p.Open(1)
	require.NoError(t, err)

	payload := []byte("ltp data unit")
	require.NoError(t, sap.Send(5, payload))

	got, err := sap.Receive()
	require.NoError(t, err)
	require.Equal(t, payload, got)

	require.NoError(t, sap.TxResult())
	lastRx, lastErr := sap.RxResult()
	require.NoError(t, lastErr)
	require.Equal(t, payload, lastRx)
}

func TestAccessPoint_SendFailureRecorded(t *testing.T) {
	p, engine := newTestProxy(t)

	sap, err := p.Open(1)
	require.NoError(t, err)

	engine.SendErr = pkgif.ErrNoSpace
	err = sap.Send(5, []byte("data"))
	require.ErrorIs(t, err, pkgif.ErrNoSpace)
	require.ErrorIs(t, sap.TxResult(), pkgif.ErrNoSpace)
}

func TestAccessPoint_ReceiveTimeout(t *testing.T) {
	p, _ := newTestProxy(t)

	sap, err := p.Open(1)
	require.NoError(t, err)

	start := time.Now()
	_, err = sap.ReceiveTimeout(50 * time.Millisecond)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, pkgif.ErrTimeout)
	require.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	require.Less(t, elapsed, 500*time.Millisecond)
}

func TestAccessPoint_InterruptUnblocksReceive(t *testing.T) {
	p, _ := newTestProxy(t)

	sap, err := p.Open(1)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, rerr := sap.Receive()
		errCh <- rerr
	}()

	// 等接收者真正阻塞后再中断
	require.Eventually(t, func() bool {
		if sap.Interrupt() != nil {
			return false
		}
		select {
		case <-errCh:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestAccessPoint_OperationsAfterClose(t *testing.T) {
	p, _ := newTestProxy(t)

	sap, err := p.Open(1)
	require.NoError(t, err)
	require.NoError(t, sap.Close())

	require.ErrorIs(t, sap.Send(5, []byte("late")), pkgif.ErrNotOpen)
	_, err = sap.Receive()
	require.ErrorIs(t, err, pkgif.ErrNotOpen)
	require.ErrorIs(t, sap.Interrupt(), pkgif.ErrNotOpen)
}

func TestAccessPoint_TrafficAccounting(t *testing.T) {
	engine := NewFakeLtpEngine()
	tc := metrics.NewTrafficCounter()
	p := NewProxy(1, engine, tc)
	require.NoError(t, p.Attach())

	sap, err := p.Open(1)
	require.NoError(t, err)

	require.NoError(t, sap.Send(5, make([]byte, 64)))
	_, err = sap.Receive()
	require.NoError(t, err)

	totals := tc.GetTotals()
	require.EqualValues(t, 64, totals.BytesOut)
	require.EqualValues(t, 64, totals.BytesIn)
	require.EqualValues(t, 64, tc.GetForSession("ltp:1").BytesOut)
}

func TestProxy_CloseAll(t *testing.T) {
	p, _ := newTestProxy(t)

	_, err := p.Open(1)
	require.NoError(t, err)
	_, err = p.Open(2)
	require.NoError(t, err)

	require.NoError(t, p.CloseAll())
	require.Equal(t, 0, len(p.OpenAccessPoints()))
}
