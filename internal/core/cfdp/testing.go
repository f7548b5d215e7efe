package cfdp

import (
	"sync"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/types"
)

// ============================================================================
// 测试用假引擎
// ============================================================================

// fakeEvent 事件队列中的一项
type fakeEvent struct {
	kind   types.CfdpEvent
	params types.EventParams
}

// transferCall 一次 Send/Request 调用的记录
type transferCall struct {
	Handle     types.SessionHandle
	SourceFile string
	DestFile   string
	Opts       pkgif.CfdpTransferOptions
}

// FakeCfdpEngine 进程内假 CFDP 引擎
//
// NextEvent 阻塞等待 PushEvent 注入的事件；InterruptEvents 唤醒
// 阻塞中的拉取并让其返回 ErrEngineInterrupted。控制面调用只做
// 记录，供断言使用。仅用于测试。
type FakeCfdpEngine struct {
	mu   sync.Mutex
	cond *sync.Cond

	attachCount int
	detachCount int
	nextHandle  types.SessionHandle

	// handle -> 对端实体号
	sessions map[types.SessionHandle]types.EntityNumber

	events     []fakeEvent
	waiting    int
	interrupts int

	// 调用记录
	Sends      []transferCall
	Requests   []transferCall
	Cancels    []types.SessionHandle
	Suspends   []types.SessionHandle
	Resumes    []types.SessionHandle
	Reports    []types.SessionHandle
	UserMsgs   []string
	Filestores []types.CfdpFilestoreAction

	// 注入的控制面错误，非 nil 时 Send/Request/Cancel 等直接失败
	CallErr error
}

// NewFakeCfdpEngine 创建假 CFDP 引擎
func NewFakeCfdpEngine() *FakeCfdpEngine {
	e := &FakeCfdpEngine{
		nextHandle: 1,
		sessions:   make(map[types.SessionHandle]types.EntityNumber),
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// PushEvent 向事件队列注入一个事件
func (e *FakeCfdpEngine) PushEvent(kind types.CfdpEvent, params types.EventParams) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.events = append(e.events, fakeEvent{kind: kind, params: params})
	e.cond.Broadcast()
}

// AttachCount 返回 Attach 被调用的次数
func (e *FakeCfdpEngine) AttachCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.attachCount
}

// DetachCount 返回 Detach 被调用的次数
func (e *FakeCfdpEngine) DetachCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.detachCount
}

// Attach 实现 CfdpEngine
func (e *FakeCfdpEngine) Attach() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.attachCount++
	return nil
}

// Detach 实现 CfdpEngine
func (e *FakeCfdpEngine) Detach() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.detachCount++
	return nil
}

// Open 实现 CfdpEngine
func (e *FakeCfdpEngine) Open(peer types.EntityNumber, _ pkgif.CfdpOpenOptions) (types.SessionHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.nextHandle
	e.nextHandle++
	e.sessions[h] = peer
	return h, nil
}

func (e *FakeCfdpEngine) checkSession(h types.SessionHandle) error {
	if e.CallErr != nil {
		return e.CallErr
	}
	if _, ok := e.sessions[h]; !ok {
		return pkgif.ErrEngineClosed
	}
	return nil
}

// Send 实现 CfdpEngine
func (e *FakeCfdpEngine) Send(h types.SessionHandle, sourceFile, destFile string, opts pkgif.CfdpTransferOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkSession(h); err != nil {
		return err
	}
	e.Sends = append(e.Sends, transferCall{Handle: h, SourceFile: sourceFile, DestFile: destFile, Opts: opts})
	return nil
}

// Request 实现 CfdpEngine
func (e *FakeCfdpEngine) Request(h types.SessionHandle, sourceFile, destFile string, opts pkgif.CfdpTransferOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkSession(h); err != nil {
		return err
	}
	e.Requests = append(e.Requests, transferCall{Handle: h, SourceFile: sourceFile, DestFile: destFile, Opts: opts})
	return nil
}

// Cancel 实现 CfdpEngine
func (e *FakeCfdpEngine) Cancel(h types.SessionHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkSession(h); err != nil {
		return err
	}
	e.Cancels = append(e.Cancels, h)
	return nil
}

// Suspend 实现 CfdpEngine
func (e *FakeCfdpEngine) Suspend(h types.SessionHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkSession(h); err != nil {
		return err
	}
	e.Suspends = append(e.Suspends, h)
	return nil
}

// Resume 实现 CfdpEngine
func (e *FakeCfdpEngine) Resume(h types.SessionHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkSession(h); err != nil {
		return err
	}
	e.Resumes = append(e.Resumes, h)
	return nil
}

// Report 实现 CfdpEngine
func (e *FakeCfdpEngine) Report(h types.SessionHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkSession(h); err != nil {
		return err
	}
	e.Reports = append(e.Reports, h)
	return nil
}

// AddUserMessage 实现 CfdpEngine
func (e *FakeCfdpEngine) AddUserMessage(h types.SessionHandle, msg string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkSession(h); err != nil {
		return err
	}
	e.UserMsgs = append(e.UserMsgs, msg)
	return nil
}

// AddFilestoreRequest 实现 CfdpEngine
func (e *FakeCfdpEngine) AddFilestoreRequest(h types.SessionHandle, action types.CfdpFilestoreAction, file1, file2 string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkSession(h); err != nil {
		return err
	}
	e.Filestores = append(e.Filestores, action)
	return nil
}

// NextEvent 实现 CfdpEngine：阻塞等待事件或中断
func (e *FakeCfdpEngine) NextEvent() (types.CfdpEvent, types.EventParams, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for len(e.events) == 0 {
		if e.interrupts > 0 {
			e.interrupts--
			return types.CfdpNoEvent, nil, pkgif.ErrEngineInterrupted
		}
		e.waiting++
		e.cond.Wait()
		e.waiting--
	}

	ev := e.events[0]
	e.events = e.events[1:]
	return ev.kind, ev.params, nil
}

// InterruptEvents 实现 CfdpEngine：唤醒所有阻塞中的 NextEvent
func (e *FakeCfdpEngine) InterruptEvents() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// 每个阻塞中的拉取各消费一次中断
	if e.waiting > 1 {
		e.interrupts += e.waiting
	} else {
		e.interrupts++
	}
	e.cond.Broadcast()
	return nil
}

// Close 实现 CfdpEngine
func (e *FakeCfdpEngine) Close(h types.SessionHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[h]; !ok {
		return pkgif.ErrEngineClosed
	}
	delete(e.sessions, h)
	return nil
}

var _ pkgif.CfdpEngine = (*FakeCfdpEngine)(nil)
