package bp

import (
	"sync"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/types"
)

// ============================================================================
// 测试用假引擎
// ============================================================================

// fakeSession 假引擎中单个会话的状态
type fakeSession struct {
	eid types.EID

	// 入站队列（FIFO）
	queue [][]byte

	// 当前阻塞在 Receive 中的调用数
	waiting int

	// 未消费的中断数
	interrupts int

	closed bool
}

// FakeBpEngine 进程内回环 BP 引擎
//
// Send 把载荷投入目的 EID 的入站队列；Receive 阻塞等待本端点
// 队列非空。Interrupt 只在有调用真正阻塞时生效，否则返回
// ErrEngineNotBlocked，与真实引擎的语义一致。仅用于测试。
type FakeBpEngine struct {
	mu   sync.Mutex
	cond *sync.Cond

	attachCount int
	detachCount int
	nextHandle  types.SessionHandle

	// handle -> 会话
	sessions map[types.SessionHandle]*fakeSession

	// eid -> 会话（回环投递用）
	byEID map[types.EID]*fakeSession

	// 注入的发送错误，非 nil 时 Send 直接失败
	SendErr error
}

// NewFakeBpEngine 创建回环 BP 引擎
func NewFakeBpEngine() *FakeBpEngine {
	e := &FakeBpEngine{
		nextHandle: 1,
		sessions:   make(map[types.SessionHandle]*fakeSession),
		byEID:      make(map[types.EID]*fakeSession),
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// AttachCount 返回 Attach 被调用的次数
func (e *FakeBpEngine) AttachCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.attachCount
}

// DetachCount 返回 Detach 被调用的次数
func (e *FakeBpEngine) DetachCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.detachCount
}

// Attach 实现 BpEngine
func (e *FakeBpEngine) Attach() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.attachCount++
	return nil
}

// Detach 实现 BpEngine
func (e *FakeBpEngine) Detach() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.detachCount++
	return nil
}

// Open 实现 BpEngine
func (e *FakeBpEngine) Open(eid types.EID, _ pkgif.BpOpenOptions) (types.SessionHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.nextHandle
	e.nextHandle++

	s := &fakeSession{eid: eid}
	e.sessions[h] = s
	e.byEID[eid] = s
	return h, nil
}

// Send 实现 BpEngine：回环投递到目的 EID 的队列
func (e *FakeBpEngine) Send(h types.SessionHandle, dest types.EID, payload []byte, _ pkgif.BpSendOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.SendErr != nil {
		return e.SendErr
	}
	if _, ok := e.sessions[h]; !ok {
		return pkgif.ErrEngineClosed
	}
	target, ok := e.byEID[dest]
	if !ok || target.closed {
		return pkgif.ErrNoRoute
	}

	buf := make([]byte, len(payload))
	copy(buf, payload)
	target.queue = append(target.queue, buf)
	e.cond.Broadcast()
	return nil
}

// Receive 实现 BpEngine：阻塞等待本端点队列非空
func (e *FakeBpEngine) Receive(h types.SessionHandle) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[h]
	if !ok {
		return nil, pkgif.ErrEngineClosed
	}

	for len(s.queue) == 0 {
		if s.closed {
			return nil, pkgif.ErrEngineClosed
		}
		if s.interrupts > 0 {
			s.interrupts--
			return nil, pkgif.ErrEngineInterrupted
		}
		s.waiting++
		e.cond.Wait()
		s.waiting--
	}

	data := s.queue[0]
	s.queue = s.queue[1:]
	return data, nil
}

// Interrupt 实现 BpEngine：只打断真正阻塞中的 Receive
func (e *FakeBpEngine) Interrupt(h types.SessionHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[h]
	if !ok {
		return pkgif.ErrEngineClosed
	}
	if s.waiting == 0 {
		return pkgif.ErrEngineNotBlocked
	}

	s.interrupts++
	e.cond.Broadcast()
	return nil
}

// Close 实现 BpEngine：释放句柄并唤醒阻塞的接收者
func (e *FakeBpEngine) Close(h types.SessionHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[h]
	if !ok {
		return pkgif.ErrEngineClosed
	}

	s.closed = true
	delete(e.sessions, h)
	delete(e.byEID, s.eid)
	e.cond.Broadcast()
	return nil
}

var _ pkgif.BpEngine = (*FakeBpEngine)(nil)
