package cfdp

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/types"
)

// Handler 事件处理器
//
// 由实体的事件监视 goroutine 调用，处理器内不得调用会阻塞
// 监视循环的操作（如 WaitForTransactionEnd）。
type Handler func(event types.CfdpEvent, params types.EventParams)

// Entity 单个已打开的 CFDP 对端实体
//
// 实体由 Proxy.Open 创建，按对端实体号在代理内唯一。创建时启动
// 事件监视 goroutine；关闭时先打断事件拉取并等待监视循环退出，
// 再释放引擎句柄，最后以失败结局唤醒所有事务等待者。
type Entity struct {
	proxy *Proxy
	peer  types.EntityNumber

	// 打开时固化的默认参数
	opts Options

	mu     sync.RWMutex
	handle types.SessionHandle

	// 事件处理器：种类 -> 处理器，CfdpAllEvents 为通配
	handlers map[types.CfdpEvent]Handler

	// 事务结束信号
	endTx *txSignal

	// 监视循环退出后关闭
	done chan struct{}
}

func newEntity(p *Proxy, peer types.EntityNumber, h types.SessionHandle, o Options) *Entity {
	e := &Entity{
		proxy:    p,
		peer:     peer,
		opts:     o,
		handle:   h,
		handlers: make(map[types.CfdpEvent]Handler),
		endTx:    newTxSignal(),
		done:     make(chan struct{}),
	}
	go e.monitorEvents()
	return e
}

// Peer 返回对端实体号
func (e *Entity) Peer() types.EntityNumber {
	return e.peer
}

// IsOpen 返回实体句柄是否仍然有效
func (e *Entity) IsOpen() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.handle.Valid()
}

func (e *Entity) handleValue() types.SessionHandle {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.handle
}

// invalidate 使句柄失效，返回失效前的值
//
// 只允许 Proxy.Close 调用；监视循环据此退出。
func (e *Entity) invalidate() types.SessionHandle {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.handle
	e.handle = types.InvalidHandle
	return h
}

// Close 关闭实体
//
// 等价于 proxy.Close(e)，幂等。
func (e *Entity) Close() error {
	return e.proxy.Close(e)
}

// effective 在实体默认参数上套用单次调用的覆盖项
func (e *Entity) effective(opts []Option) Options {
	o := e.opts
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (e *Entity) transferOptions(opts []Option) pkgif.CfdpTransferOptions {
	o := e.effective(opts)
	return pkgif.CfdpTransferOptions{
		Mode:           o.Mode,
		ClosureLatency: o.ClosureLatency,
		SegMetadata:    o.SegMetadata,
	}
}

// Send 向对端实体发送文件
//
// destFile 为空时沿用 sourceFile 作为对端文件名。源文件必须
// 存在于本地，缺失时立即失败而不触发引擎。
func (e *Entity) Send(sourceFile, destFile string, opts ...Option) error {
	if !e.IsOpen() {
		return pkgif.ErrNotOpen
	}

	if _, err := os.Stat(sourceFile); err != nil {
		return fmt.Errorf("cfdp send: source file %s: %w", sourceFile, err)
	}
	if destFile == "" {
		destFile = sourceFile
	}

	if err := e.proxy.engine.Send(e.handleValue(), sourceFile, destFile, e.transferOptions(opts)); err != nil {
		return fmt.Errorf("cfdp send %s to entity %d: %w", sourceFile, e.peer, err)
	}

	logger.Info("文件传输已发起", "peer", e.peer, "source", sourceFile, "dest", destFile)
	return nil
}

// Request 请求对端实体把文件发给本节点
//
// sourceFile 位于对端，不做本地存在性检查。destFile 为空时沿用
// sourceFile 作为本地文件名。
func (e *Entity) Request(sourceFile, destFile string, opts ...Option) error {
	if !e.IsOpen() {
		return pkgif.ErrNotOpen
	}

	if destFile == "" {
		destFile = sourceFile
	}

	if err := e.proxy.engine.Request(e.handleValue(), sourceFile, destFile, e.transferOptions(opts)); err != nil {
		return fmt.Errorf("cfdp request %s from entity %d: %w", sourceFile, e.peer, err)
	}

	logger.Info("文件获取已发起", "peer", e.peer, "source", sourceFile, "dest", destFile)
	return nil
}

// Cancel 取消当前事务
func (e *Entity) Cancel() error {
	if !e.IsOpen() {
		return pkgif.ErrNotOpen
	}
	if err := e.proxy.engine.Cancel(e.handleValue()); err != nil {
		return fmt.Errorf("cfdp cancel on entity %d: %w", e.peer, err)
	}
	return nil
}

// Suspend 挂起当前事务
func (e *Entity) Suspend() error {
	if !e.IsOpen() {
		return pkgif.ErrNotOpen
	}
	if err := e.proxy.engine.Suspend(e.handleValue()); err != nil {
		return fmt.Errorf("cfdp suspend on entity %d: %w", e.peer, err)
	}
	return nil
}

// Resume 恢复当前事务
func (e *Entity) Resume() error {
	if !e.IsOpen() {
		return pkgif.ErrNotOpen
	}
	if err := e.proxy.engine.Resume(e.handleValue()); err != nil {
		return fmt.Errorf("cfdp resume on entity %d: %w", e.peer, err)
	}
	return nil
}

// Report 请求当前事务的进度报告
//
// 报告以事件形式经监视循环送达。
func (e *Entity) Report() error {
	if !e.IsOpen() {
		return pkgif.ErrNotOpen
	}
	if err := e.proxy.engine.Report(e.handleValue()); err != nil {
		return fmt.Errorf("cfdp report on entity %d: %w", e.peer, err)
	}
	return nil
}

// AddUserMessage 在下一个事务的所有 PDU 上附加用户消息
func (e *Entity) AddUserMessage(msg string) error {
	if !e.IsOpen() {
		return pkgif.ErrNotOpen
	}
	if err := e.proxy.engine.AddUserMessage(e.handleValue(), msg); err != nil {
		return fmt.Errorf("cfdp add user message on entity %d: %w", e.peer, err)
	}
	return nil
}

// AddFilestoreRequest 在下一个事务上附加文件仓库请求
func (e *Entity) AddFilestoreRequest(action types.CfdpFilestoreAction, file1, file2 string) error {
	if !e.IsOpen() {
		return pkgif.ErrNotOpen
	}
	if err := e.proxy.engine.AddFilestoreRequest(e.handleValue(), action, file1, file2); err != nil {
		return fmt.Errorf("cfdp filestore request on entity %d: %w", e.peer, err)
	}
	return nil
}

// RegisterEventHandler 注册事件处理器
//
// 同一种类重复注册时覆盖；注册在 CfdpAllEvents 上的处理器对
// 所有事件生效，与精确种类的处理器先后都会被调用。
func (e *Entity) RegisterEventHandler(event types.CfdpEvent, fn Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.handlers[event] = fn
}

// WaitForTransactionEnd 阻塞等待当前事务结束
//
// 事务完成返回 true，被放弃、超时或实体被关闭返回 false。
// timeout <= 0 表示无界等待。
func (e *Entity) WaitForTransactionEnd(timeout time.Duration) bool {
	return e.endTx.wait(timeout)
}

// ============================================================================
//                              事件监视
// ============================================================================

// monitorEvents 事件监视循环，实体存活期间持续运行
func (e *Entity) monitorEvents() {
	defer close(e.done)

	for e.IsOpen() {
		evt, params, err := e.proxy.engine.NextEvent()
		if err != nil {
			// 中断后回到循环条件，关闭中的实体在此退出
			if errors.Is(err, pkgif.ErrEngineInterrupted) {
				continue
			}
			logger.Error("事件拉取失败，监视循环退出", "peer", e.peer, "error", err)
			return
		}

		if evt == types.CfdpNoEvent {
			continue
		}

		e.dispatch(evt, params)

		switch evt {
		case types.CfdpTransactionFinishedInd:
			e.endTx.signal(true)
		case types.CfdpAbandonedInd:
			e.endTx.signal(false)
		}
	}
}

// dispatch 把事件交给精确种类处理器和通配处理器
func (e *Entity) dispatch(evt types.CfdpEvent, params types.EventParams) {
	e.mu.RLock()
	exact := e.handlers[evt]
	wildcard := e.handlers[types.CfdpAllEvents]
	e.mu.RUnlock()

	if exact != nil {
		e.invoke(exact, evt, params)
	}
	if wildcard != nil {
		e.invoke(wildcard, evt, params)
	}
}

// invoke 调用单个处理器，处理器 panic 不拖垮监视循环
func (e *Entity) invoke(fn Handler, evt types.CfdpEvent, params types.EventParams) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("事件处理器 panic", "peer", e.peer, "event", evt, "panic", r)
		}
	}()
	fn(evt, params)
}
