package mem

import (
	"sync"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/types"
)

// ============================================================================
// 测试用假引擎
// ============================================================================

// FakeMemEngine 返回固定转储内容的内存引擎
//
// DumpErr 非 nil 时转储调用直接失败。仅用于测试。
type FakeMemEngine struct {
	mu sync.Mutex

	// 下一次转储返回的内容
	Dump types.MemDump

	// 注入的转储错误
	DumpErr error

	sdrCalls int
	psmCalls int
}

// NewFakeMemEngine 创建假内存引擎
func NewFakeMemEngine() *FakeMemEngine {
	return &FakeMemEngine{
		Dump: types.MemDump{
			Summary:   types.PoolStats{"used": 1024, "free": 4096},
			SmallPool: types.PoolStats{"free_blocks": 16},
			LargePool: types.PoolStats{"free_blocks": 4},
		},
	}
}

// SetDump 替换转储内容
func (e *FakeMemEngine) SetDump(d types.MemDump) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Dump = d
}

// SetErr 注入转储错误，nil 表示恢复正常
func (e *FakeMemEngine) SetErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.DumpErr = err
}

// SdrCalls 返回 SdrDump 被调用的次数
func (e *FakeMemEngine) SdrCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.sdrCalls
}

// PsmCalls 返回 PsmDump 被调用的次数
func (e *FakeMemEngine) PsmCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.psmCalls
}

// SdrDump 实现 MemEngine
func (e *FakeMemEngine) SdrDump(string) (types.MemDump, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sdrCalls++
	if e.DumpErr != nil {
		return types.MemDump{}, e.DumpErr
	}
	return e.Dump, nil
}

// PsmDump 实现 MemEngine
func (e *FakeMemEngine) PsmDump(int) (types.MemDump, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.psmCalls++
	if e.DumpErr != nil {
		return types.MemDump{}, e.DumpErr
	}
	return e.Dump, nil
}

var _ pkgif.MemEngine = (*FakeMemEngine)(nil)
