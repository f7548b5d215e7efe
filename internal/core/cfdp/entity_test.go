package cfdp

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/types"
)

func openTestEntity(t *testing.T) (*Entity, *FakeCfdpEngine) {
	t.Helper()

	p, engine := newTestProxy(t)
	ett, err := p.Open(2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ett.Close() })
	return ett, engine
}

func tempFile(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("file body"), 0o644))
	return path
}

func TestEntity_SendRequiresSourceFile(t *testing.T) {
	ett, engine := openTestEntity(t)

	err := ett.Send(filepath.Join(t.TempDir(), "absent"), "")
	require.Error(t, err)
	require.Empty(t, engine.Sends)
}

func TestEntity_SendDefaultsDestToSource(t *testing.T) {
	ett, engine := openTestEntity(t)

	src := tempFile(t, "out.bin")
	require.NoError(t, ett.Send(src, ""))

	require.Len(t, engine.Sends, 1)
	call := engine.Sends[0]
	require.Equal(t, src, call.SourceFile)
	require.Equal(t, src, call.DestFile)
	require.Equal(t, types.CfdpBpReliable, call.Opts.Mode)
}

func TestEntity_SendPerCallOverrides(t *testing.T) {
	ett, engine := openTestEntity(t)

	src := tempFile(t, "out.bin")
	require.NoError(t, ett.Send(src, "inbound.bin",
		WithMode(types.CfdpUnreliable),
		WithClosureLatency(types.CfdpClosure1Min),
	))

	call := engine.Sends[0]
	require.Equal(t, "inbound.bin", call.DestFile)
	require.Equal(t, types.CfdpUnreliable, call.Opts.Mode)
	require.Equal(t, types.CfdpClosure1Min, call.Opts.ClosureLatency)

	// 覆盖只对单次调用生效
	require.NoError(t, ett.Send(src, ""))
	require.Equal(t, types.CfdpBpReliable, engine.Sends[1].Opts.Mode)
}

func TestEntity_RequestSkipsLocalCheck(t *testing.T) {
	ett, engine := openTestEntity(t)

	// 源文件位于对端，本地不存在也要发起
	require.NoError(t, ett.Request("remote/data.bin", ""))
	require.Len(t, engine.Requests, 1)
	require.Equal(t, "remote/data.bin", engine.Requests[0].DestFile)
}

func TestEntity_ControlOperations(t *testing.T) {
	ett, engine := openTestEntity(t)

	require.NoError(t, ett.Cancel())
	require.NoError(t, ett.Suspend())
	require.NoError(t, ett.Resume())
	require.NoError(t, ett.Report())
	require.NoError(t, ett.AddUserMessage("mission meta"))
	require.NoError(t, ett.AddFilestoreRequest(types.FilestoreCreateDir, "/data", ""))

	require.Len(t, engine.Cancels, 1)
	require.Len(t, engine.Suspends, 1)
	require.Len(t, engine.Resumes, 1)
	require.Len(t, engine.Reports, 1)
	require.Equal(t, []string{"mission meta"}, engine.UserMsgs)
	require.Equal(t, []types.CfdpFilestoreAction{types.FilestoreCreateDir}, engine.Filestores)
}

func TestEntity_OperationsAfterClose(t *testing.T) {
	ett, _ := openTestEntity(t)
	require.NoError(t, ett.Close())

	require.ErrorIs(t, ett.Send("any", ""), pkgif.ErrNotOpen)
	require.ErrorIs(t, ett.Request("any", ""), pkgif.ErrNotOpen)
	require.ErrorIs(t, ett.Cancel(), pkgif.ErrNotOpen)
	require.ErrorIs(t, ett.Report(), pkgif.ErrNotOpen)
}

func TestEntity_EventDispatch(t *testing.T) {
	ett, engine := openTestEntity(t)

	var mu sync.Mutex
	var exact, wildcard []types.CfdpEvent

	ett.RegisterEventHandler(types.CfdpEofSentInd, func(evt types.CfdpEvent, _ types.EventParams) {
		mu.Lock()
		exact = append(exact, evt)
		mu.Unlock()
	})
	ett.RegisterEventHandler(types.CfdpAllEvents, func(evt types.CfdpEvent, _ types.EventParams) {
		mu.Lock()
		wildcard = append(wildcard, evt)
		mu.Unlock()
	})

	engine.PushEvent(types.CfdpTransactionInd, nil)
	engine.PushEvent(types.CfdpEofSentInd, types.EventParams{"size": 128})

	// 精确处理器只收到自己的种类，通配处理器收到全部
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(exact) == 1 && len(wildcard) == 2
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	require.Equal(t, []types.CfdpEvent{types.CfdpEofSentInd}, exact)
	require.Equal(t, []types.CfdpEvent{types.CfdpTransactionInd, types.CfdpEofSentInd}, wildcard)
	mu.Unlock()
}

func TestEntity_HandlerPanicRecovered(t *testing.T) {
	ett, engine := openTestEntity(t)

	var mu sync.Mutex
	var seen int

	ett.RegisterEventHandler(types.CfdpFaultInd, func(types.CfdpEvent, types.EventParams) {
		panic("handler bug")
	})
	ett.RegisterEventHandler(types.CfdpAllEvents, func(types.CfdpEvent, types.EventParams) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	// panic 的处理器不拖垮监视循环，后续事件照常分发
	engine.PushEvent(types.CfdpFaultInd, nil)
	engine.PushEvent(types.CfdpReportInd, nil)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return seen == 2
	}, time.Second, 10*time.Millisecond)
}

func TestEntity_WaitForTransactionEnd(t *testing.T) {
	ett, engine := openTestEntity(t)

	results := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		go func() {
			results <- ett.WaitForTransactionEnd(time.Second)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	engine.PushEvent(types.CfdpTransactionFinishedInd, nil)

	// 两个并发等待者都看到成功结局
	for i := 0; i < 2; i++ {
		select {
		case ok := <-results:
			require.True(t, ok)
		case <-time.After(time.Second):
			t.Fatal("waiter not released")
		}
	}
}

func TestEntity_WaitAbandonedTransaction(t *testing.T) {
	ett, engine := openTestEntity(t)

	done := make(chan bool, 1)
	go func() {
		done <- ett.WaitForTransactionEnd(time.Second)
	}()

	time.Sleep(20 * time.Millisecond)
	engine.PushEvent(types.CfdpAbandonedInd, nil)

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("waiter not released")
	}
}

func TestEntity_WaitTimeout(t *testing.T) {
	ett, _ := openTestEntity(t)

	start := time.Now()
	ok := ett.WaitForTransactionEnd(50 * time.Millisecond)
	require.False(t, ok)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestEntity_NoStaleResultAcrossTransactions(t *testing.T) {
	ett, engine := openTestEntity(t)

	// 第一笔事务完成
	engine.PushEvent(types.CfdpTransactionFinishedInd, nil)

	// 信号已被消费并换代：完成之后才到的等待者等的是下一笔事务
	require.Eventually(t, func() bool {
		return !ett.WaitForTransactionEnd(10 * time.Millisecond)
	}, time.Second, 10*time.Millisecond)
}
