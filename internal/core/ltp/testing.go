package ltp

import (
	"sync"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/types"
)

// ============================================================================
// 测试用假引擎
// ============================================================================

// fakeSap 假引擎中单个访问点的状态
type fakeSap struct {
	client types.ClientID

	queue [][]byte

	waiting    int
	interrupts int

	closed bool
}

// FakeLtpEngine 进程内回环 LTP 引擎
//
// Send 把数据投回发送访问点自己的入站队列（链路回环），
// Receive 阻塞等待队列非空。Interrupt 只在有调用真正阻塞时
// 生效。仅用于测试。
type FakeLtpEngine struct {
	mu   sync.Mutex
	cond *sync.Cond

	attachCount int
	detachCount int
	nextHandle  types.SessionHandle

	saps map[types.SessionHandle]*fakeSap

	// 注入的发送错误，非 nil 时 Send 直接失败
	SendErr error
}

// NewFakeLtpEngine 创建回环 LTP 引擎
func NewFakeLtpEngine() *FakeLtpEngine {
	e := &FakeLtpEngine{
		nextHandle: 1,
		saps:       make(map[types.SessionHandle]*fakeSap),
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// AttachCount 返回 Attach 被调用的次数
func (e *FakeLtpEngine) AttachCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.attachCount
}

// DetachCount 返回 Detach 被调用的次数
func (e *FakeLtpEngine) DetachCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.detachCount
}

// Attach 实现 LtpEngine
func (e *FakeLtpEngine) Attach() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.attachCount++
	return nil
}

// Detach 实现 LtpEngine
func (e *FakeLtpEngine) Detach() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.detachCount++
	return nil
}

// Open 实现 LtpEngine
func (e *FakeLtpEngine) Open(client types.ClientID) (types.SessionHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.nextHandle
	e.nextHandle++
	e.saps[h] = &fakeSap{client: client}
	return h, nil
}

// Send 实现 LtpEngine：回环投递到本访问点的队列
func (e *FakeLtpEngine) Send(h types.SessionHandle, _ types.EngineNumber, payload []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.SendErr != nil {
		return e.SendErr
	}
	s, ok := e.saps[h]
	if !ok {
		return pkgif.ErrEngineClosed
	}

	buf := make([]byte, len(payload))
	copy(buf, payload)
	s.queue = append(s.queue, buf)
	e.cond.Broadcast()
	return nil
}

// Receive 实现 LtpEngine：阻塞等待队列非空
func (e *FakeLtpEngine) Receive(h types.SessionHandle) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.saps[h]
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

// Interrupt 实现 LtpEngine：只打断真正阻塞中的 Receive
func (e *FakeLtpEngine) Interrupt(h types.SessionHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.saps[h]
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

// Close 实现 LtpEngine：释放句柄并唤醒阻塞的接收者
func (e *FakeLtpEngine) Close(h types.SessionHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.saps[h]
	if !ok {
		return pkgif.ErrEngineClosed
	}

	s.closed = true
	delete(e.saps, h)
	e.cond.Broadcast()
	return nil
}

var _ pkgif.LtpEngine = (*FakeLtpEngine)(nil)
