package cfdp

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/lib/log"
	"github.com/dep2p/go-ion/pkg/types"
)

var logger = log.Logger("core/cfdp")

// Proxy 某对端实体号 CFDP 协议族的代理
//
// 同一对端实体号在进程范围内只有一个 Proxy（由注册表保证）。
// entities 只包含句柄仍然有效的实体。
type Proxy struct {
	// 对端实体号，构造后不可变
	entityNbr types.EntityNumber

	// 引擎边界
	engine pkgif.CfdpEngine

	mu sync.RWMutex

	// 是否已附着到引擎
	attached bool

	// 已打开实体：对端实体号 -> Entity
	entities map[types.EntityNumber]*Entity
}

// NewProxy 创建 CFDP 代理
//
// 不要直接调用，使用 Stack.CFDP 以获得进程级单例。
func NewProxy(entityNbr types.EntityNumber, engine pkgif.CfdpEngine) *Proxy {
	return &Proxy{
		entityNbr: entityNbr,
		engine:    engine,
		entities:  make(map[types.EntityNumber]*Entity),
	}
}

// EntityNumber 返回代理的对端实体号
func (p *Proxy) EntityNumber() types.EntityNumber {
	return p.entityNbr
}

// Attached 返回是否已附着到引擎
func (p *Proxy) Attached() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.attached
}

// Attach 附着到引擎的 CFDP 运行时
func (p *Proxy) Attach() error {
	if err := p.engine.Attach(); err != nil {
		return fmt.Errorf("cfdp attach: %w", err)
	}

	p.mu.Lock()
	p.attached = true
	p.mu.Unlock()

	logger.Debug("已附着到 CFDP 引擎", "entity", p.entityNbr)
	return nil
}

// Detach 解除与引擎的附着
func (p *Proxy) Detach() error {
	if err := p.engine.Detach(); err != nil {
		return fmt.Errorf("cfdp detach: %w", err)
	}

	p.mu.Lock()
	p.attached = false
	p.mu.Unlock()

	logger.Debug("已解除 CFDP 引擎附着", "entity", p.entityNbr)
	return nil
}

// IsEntityOpen 检查某对端实体在本代理中是否已打开
func (p *Proxy) IsEntityOpen(peer types.EntityNumber) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.entities[peer]
	return ok
}

// OpenEntities 返回当前已打开实体的快照
func (p *Proxy) OpenEntities() []*Entity {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*Entity, 0, len(p.entities))
	for _, ett := range p.entities {
		out = append(out, ett)
	}
	return out
}

// Open 打开对端实体
//
// 该对端已有存活实体时原样返回现有实例，忽略新提供的参数
// （按键幂等）。否则向引擎申请句柄、创建实体并启动事件监视。
// 前置条件：已附着。
func (p *Proxy) Open(peer types.EntityNumber, opts ...Option) (*Entity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.attached {
		return nil, pkgif.ErrNotAttached
	}

	if ett, ok := p.entities[peer]; ok {
		return ett, nil
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	h, err := p.engine.Open(peer, pkgif.CfdpOpenOptions{
		TTL:         o.TTL,
		Priority:    o.Priority,
		SubPriority: o.SubPriority,
		ReportFlags: o.ReportFlags,
		Criticality: o.Criticality,
	})
	if err != nil {
		return nil, fmt.Errorf("cfdp open entity %d: %w", peer, err)
	}

	ett := newEntity(p, peer, h, o)
	p.entities[peer] = ett

	logger.Info("CFDP 实体已打开", "peer", peer, "mode", o.Mode)
	return ett, nil
}

// Close 关闭实体
//
// 关闭顺序：先使句柄失效并打断事件拉取，等监视循环退出后再
// 释放引擎句柄，最后以失败结局唤醒所有事务等待者。实体已被
// 其他路径关闭时为空操作；无论引擎 close 是否成功，映射表项
// 都被移除。
func (p *Proxy) Close(ett *Entity) error {
	if ett == nil {
		return pkgif.ErrNotOpen
	}

	peer := ett.Peer()

	p.mu.Lock()
	registered, ok := p.entities[peer]
	if !ok || registered != ett {
		p.mu.Unlock()
		if !ett.IsOpen() {
			return nil
		}
		return fmt.Errorf("close entity %d: %w", peer, pkgif.ErrKeyNotFound)
	}
	delete(p.entities, peer)
	p.mu.Unlock()

	if !ett.IsOpen() {
		return nil
	}

	// 句柄先失效，监视循环在下一次循环条件检查时退出
	h := ett.invalidate()

	if err := p.engine.InterruptEvents(); err != nil {
		logger.Warn("打断事件拉取失败", "peer", peer, "error", err)
	}
	<-ett.done

	err := p.engine.Close(h)

	// 唤醒等待者：实体关闭即事务不会再有结局
	ett.endTx.signal(false)

	if err != nil {
		logger.Warn("引擎关闭实体失败，表项已移除", "peer", peer, "error", err)
		return fmt.Errorf("cfdp close entity %d: %w", peer, err)
	}

	logger.Info("CFDP 实体已关闭", "peer", peer)
	return nil
}

// CloseAll 关闭全部已打开实体
//
// 先取快照再迭代，错误聚合后返回，不中断迭代。
func (p *Proxy) CloseAll() error {
	var errs error
	for _, ett := range p.OpenEntities() {
		errs = multierr.Append(errs, p.Close(ett))
	}
	return errs
}

// CancelAll 取消全部已打开实体上的在途事务
func (p *Proxy) CancelAll() error {
	var errs error
	for _, ett := range p.OpenEntities() {
		errs = multierr.Append(errs, ett.Cancel())
	}
	return errs
}
