package bp

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-ion/internal/core/metrics"
	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/lib/log"
	"github.com/dep2p/go-ion/pkg/types"
)

var logger = log.Logger("core/bp")

// Proxy 某节点 BP 协议族的代理
//
// 同一节点号在进程范围内只有一个 Proxy（由注册表保证）。
// endpoints 只包含句柄仍然有效的端点；attached 在首次 Attach
// 成功前和 Detach 后为 false。
type Proxy struct {
	// 节点号，构造后不可变
	nodeNbr types.NodeNumber

	// 引擎边界
	engine pkgif.BpEngine

	// 流量计数器（可选）
	traffic *metrics.TrafficCounter

	mu sync.RWMutex

	// 是否已附着到引擎
	attached bool

	// 已打开端点：eid -> Endpoint
	endpoints map[types.EID]*Endpoint
}

// NewProxy 创建 BP 代理
//
// 不要直接调用，使用 Stack.BP 以获得进程级单例。
func NewProxy(nodeNbr types.NodeNumber, engine pkgif.BpEngine, traffic *metrics.TrafficCounter) *Proxy {
	return &Proxy{
		nodeNbr:   nodeNbr,
		engine:    engine,
		traffic:   traffic,
		endpoints: make(map[types.EID]*Endpoint),
	}
}

// NodeNumber 返回节点号
func (p *Proxy) NodeNumber() types.NodeNumber {
	return p.nodeNbr
}

// Attached 返回是否已附着到引擎
func (p *Proxy) Attached() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.attached
}

// Attach 附着到引擎的 BP 运行时
//
// 意图上幂等：重复调用再次进入引擎，引擎失败原样上抛。
func (p *Proxy) Attach() error {
	if err := p.engine.Attach(); err != nil {
		return fmt.Errorf("bp attach: %w", err)
	}

	p.mu.Lock()
	p.attached = true
	p.mu.Unlock()

	logger.Debug("已附着到 BP 引擎", "node", p.nodeNbr)
	return nil
}

// Detach 解除与引擎的附着
func (p *Proxy) Detach() error {
	if err := p.engine.Detach(); err != nil {
		return fmt.Errorf("bp detach: %w", err)
	}

	p.mu.Lock()
	p.attached = false
	p.mu.Unlock()

	logger.Debug("已解除 BP 引擎附着", "node", p.nodeNbr)
	return nil
}

// IsEndpointOpen 检查某 EID 在本代理中是否已打开
func (p *Proxy) IsEndpointOpen(eid types.EID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.endpoints[eid]
	return ok
}

// OpenEndpoints 返回当前已打开端点的快照
func (p *Proxy) OpenEndpoints() []*Endpoint {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*Endpoint, 0, len(p.endpoints))
	for _, ept := range p.endpoints {
		out = append(out, ept)
	}
	return out
}

// Open 打开端点
//
// 该 EID 已有存活端点时原样返回现有实例，忽略新提供的参数
// （按键幂等）。否则向引擎申请会话句柄并注册新端点。
// 前置条件：已附着。
func (p *Proxy) Open(eid types.EID, opts ...Option) (*Endpoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.attached {
		return nil, pkgif.ErrNotAttached
	}

	// 按键幂等：保留首次打开时的参数
	if ept, ok := p.endpoints[eid]; ok {
		return ept, nil
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	// retx_timer > 0 的端点以 detained 模式打开（引擎保留 bundle
	// 直到确认，托管重传定时器依赖此模式）
	detained := o.RetxTimer > 0

	h, err := p.engine.Open(eid, pkgif.BpOpenOptions{
		Detained: detained,
		MemCtrl:  o.MemCtrl,
	})
	if err != nil {
		return nil, fmt.Errorf("bp open %s: %w", eid, err)
	}

	ept := newEndpoint(p, eid, h, o, detained)
	p.endpoints[eid] = ept

	logger.Info("端点已打开", "node", p.nodeNbr, "eid", eid, "detained", detained)
	return ept, nil
}

// Close 关闭端点
//
// 先中断该端点上可能在途的阻塞接收（保证引擎侧 close 不与未决
// 阻塞调用竞争），再释放会话句柄。端点已被其他路径关闭时为空
// 操作。无论引擎 close 是否成功，映射表项都被移除：句柄已被
// 释放后包装层不得残留对应表项。
func (p *Proxy) Close(ept *Endpoint) error {
	if ept == nil {
		return pkgif.ErrNotOpen
	}

	p.mu.RLock()
	attached := p.attached
	p.mu.RUnlock()
	if !attached {
		return pkgif.ErrNotAttached
	}

	eid := ept.EID()

	p.mu.Lock()
	registered, ok := p.endpoints[eid]
	if !ok || registered != ept {
		p.mu.Unlock()
		// 已被其他路径关闭
		if !ept.IsOpen() {
			return nil
		}
		return fmt.Errorf("close endpoint %s: %w", eid, pkgif.ErrKeyNotFound)
	}
	// 无条件移除表项
	delete(p.endpoints, eid)
	p.mu.Unlock()

	if !ept.IsOpen() {
		return nil
	}

	// 先中断未决的阻塞接收；空闲时的"未阻塞"条件是良性的
	if err := p.interrupt(ept); err != nil {
		logger.Warn("关闭前中断失败", "eid", eid, "error", err)
	}

	h := ept.handleValue()
	ept.cleanup()

	if err := p.engine.Close(h); err != nil {
		logger.Warn("引擎关闭端点失败，表项已移除", "eid", eid, "error", err)
		return fmt.Errorf("bp close %s: %w", eid, err)
	}

	logger.Info("端点已关闭", "node", p.nodeNbr, "eid", eid)
	return nil
}

// Interrupt 中断端点上阻塞的接收
//
// 端点未打开时报 ErrNotOpen。本调用不阻塞；端点空闲时引擎的
// "未阻塞"条件被容忍。
func (p *Proxy) Interrupt(ept *Endpoint) error {
	if ept == nil || !ept.IsOpen() {
		return pkgif.ErrNotOpen
	}

	p.mu.RLock()
	registered, ok := p.endpoints[ept.EID()]
	p.mu.RUnlock()
	if !ok || registered != ept {
		return fmt.Errorf("interrupt endpoint %s: %w", ept.EID(), pkgif.ErrNotOpen)
	}

	return p.interrupt(ept)
}

// interrupt 发出引擎中断，容忍良性的"未阻塞"条件
func (p *Proxy) interrupt(ept *Endpoint) error {
	err := p.engine.Interrupt(ept.handleValue())
	if err == nil {
		return nil
	}
	if errors.Is(err, pkgif.ErrEngineNotBlocked) {
		logger.Debug("端点当前未阻塞，中断为空操作", "eid", ept.EID())
		return nil
	}
	return fmt.Errorf("bp interrupt %s: %w", ept.EID(), err)
}

// CloseAll 关闭全部已打开端点
//
// 先取快照再迭代：单个端点的 close 会并发修改映射表，
// 快照使迭代不受影响。错误聚合后返回，不中断迭代。
func (p *Proxy) CloseAll() error {
	var errs error
	for _, ept := range p.OpenEndpoints() {
		errs = multierr.Append(errs, p.Close(ept))
	}
	return errs
}

// InterruptAll 中断全部已打开端点
func (p *Proxy) InterruptAll() error {
	var errs error
	for _, ept := range p.OpenEndpoints() {
		errs = multierr.Append(errs, p.Interrupt(ept))
	}
	return errs
}
