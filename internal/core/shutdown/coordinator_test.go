package shutdown

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-ion/internal/core/bp"
	"github.com/dep2p/go-ion/internal/core/cfdp"
	"github.com/dep2p/go-ion/internal/core/ltp"
	"github.com/dep2p/go-ion/internal/core/mem"
	"github.com/dep2p/go-ion/internal/core/registry"
	"github.com/dep2p/go-ion/pkg/types"
)

// fixture 一个装配好全部协议族的关停环境
type fixture struct {
	coord *Coordinator

	bpEngine   *bp.FakeBpEngine
	cfdpEngine *cfdp.FakeCfdpEngine
	ltpEngine  *ltp.FakeLtpEngine
	memEngine  *mem.FakeMemEngine

	bpProxy   *bp.Proxy
	cfdpProxy *cfdp.Proxy
	ltpProxy  *ltp.Proxy
	sdrProxy  *mem.SdrProxy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		bpEngine:   bp.NewFakeBpEngine(),
		cfdpEngine: cfdp.NewFakeCfdpEngine(),
		ltpEngine:  ltp.NewFakeLtpEngine(),
		memEngine:  mem.NewFakeMemEngine(),
	}

	bpReg := registry.New[types.NodeNumber, *bp.Proxy]()
	cfdpReg := registry.New[types.EntityNumber, *cfdp.Proxy]()
	ltpReg := registry.New[types.NodeNumber, *ltp.Proxy]()
	sdrReg := registry.New[mem.SdrKey, *mem.SdrProxy]()
	psmReg := registry.New[mem.PsmKey, *mem.PsmProxy]()

	var err error
	f.bpProxy, err = bpReg.GetOrCreate(1, func(types.NodeNumber) (*bp.Proxy, error) {
		return bp.NewProxy(1, f.bpEngine, nil), nil
	})
	require.NoError(t, err)
	require.NoError(t, f.bpProxy.Attach())

	f.cfdpProxy, err = cfdpReg.GetOrCreate(2, func(types.EntityNumber) (*cfdp.Proxy, error) {
		return cfdp.NewProxy(2, f.cfdpEngine), nil
	})
	require.NoError(t, err)
	require.NoError(t, f.cfdpProxy.Attach())

	f.ltpProxy, err = ltpReg.GetOrCreate(1, func(types.NodeNumber) (*ltp.Proxy, error) {
		return ltp.NewProxy(1, f.ltpEngine, nil), nil
	})
	require.NoError(t, err)
	require.NoError(t, f.ltpProxy.Attach())

	f.sdrProxy, err = sdrReg.GetOrCreate(mem.SdrKey{Node: 1, Name: "ion"},
		func(mem.SdrKey) (*mem.SdrProxy, error) {
			return mem.NewSdrProxy(1, "ion", f.memEngine, clock.NewMock()), nil
		})
	require.NoError(t, err)

	f.coord = NewCoordinator(bpReg, cfdpReg, ltpReg, sdrReg, psmReg)
	return f
}

func TestCoordinator_ShutdownClosesEverything(t *testing.T) {
	f := newFixture(t)

	_, err := f.bpProxy.Open("ipn:1.1")
	require.NoError(t, err)
	_, err = f.cfdpProxy.Open(2)
	require.NoError(t, err)
	_, err = f.ltpProxy.Open(1)
	require.NoError(t, err)
	require.NoError(t, f.sdrProxy.StartMonitoring(1, 0, false))

	require.NoError(t, f.coord.Shutdown())

	require.Equal(t, 0, len(f.bpProxy.OpenEndpoints()))
	require.Equal(t, 0, len(f.cfdpProxy.OpenEntities()))
	require.Equal(t, 0, len(f.ltpProxy.OpenAccessPoints()))
	require.False(t, f.sdrProxy.Monitoring())

	// 在途事务先被取消再关闭
	require.Len(t, f.cfdpEngine.Cancels, 1)

	// 逐族解除附着
	require.False(t, f.bpProxy.Attached())
	require.False(t, f.cfdpProxy.Attached())
	require.False(t, f.ltpProxy.Attached())
	require.Equal(t, 1, f.bpEngine.DetachCount())
	require.Equal(t, 1, f.cfdpEngine.DetachCount())
	require.Equal(t, 1, f.ltpEngine.DetachCount())
}

func TestCoordinator_ShutdownIdempotent(t *testing.T) {
	f := newFixture(t)

	_, err := f.bpProxy.Open("ipn:1.1")
	require.NoError(t, err)

	require.NoError(t, f.coord.Shutdown())
	// 第二次关停没有可关的对象，也不再重复解除附着
	require.NoError(t, f.coord.Shutdown())
	require.Equal(t, 1, f.bpEngine.DetachCount())
}

func TestCoordinator_ShutdownEmptyRegistries(t *testing.T) {
	bpReg := registry.New[types.NodeNumber, *bp.Proxy]()
	cfdpReg := registry.New[types.EntityNumber, *cfdp.Proxy]()
	ltpReg := registry.New[types.NodeNumber, *ltp.Proxy]()
	sdrReg := registry.New[mem.SdrKey, *mem.SdrProxy]()
	psmReg := registry.New[mem.PsmKey, *mem.PsmProxy]()

	coord := NewCoordinator(bpReg, cfdpReg, ltpReg, sdrReg, psmReg)
	require.NoError(t, coord.Shutdown())
}

func TestCoordinator_HookSignalsIdempotent(t *testing.T) {
	f := newFixture(t)

	unhook := f.coord.HookSignals()
	again := f.coord.HookSignals()
	require.NotNil(t, again)

	unhook()
	// 卸载后可以重新安装
	unhook2 := f.coord.HookSignals()
	unhook2()
}
