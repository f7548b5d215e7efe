package ltp

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

var logger = log.Logger("core/ltp")

// Proxy 某节点 LTP 协议族的代理
//
// 同一节点号在进程范围内只有一个 Proxy（由注册表保证），
// 节点上的各客户应用在其下各有一个访问点。saps 只包含句柄
// 仍然有效的服务访问点。
type Proxy struct {
	// 节点号，构造后不可变
	nodeNbr types.NodeNumber

	// 引擎边界
	engine pkgif.LtpEngine

	// 流量计数器（可选）
	traffic *metrics.TrafficCounter

	mu sync.RWMutex

	// 是否已附着到引擎
	attached bool

	// 已打开访问点：客户应用标识 -> AccessPoint
	saps map[types.ClientID]*AccessPoint
}

// NewProxy 创建 LTP 代理
//
// 不要直接调用，使用 Stack.LTP 以获得进程级单例。
func NewProxy(nodeNbr types.NodeNumber, engine pkgif.LtpEngine, traffic *metrics.TrafficCounter) *Proxy {
	return &Proxy{
		nodeNbr: nodeNbr,
		engine:  engine,
		traffic: traffic,
		saps:    make(map[types.ClientID]*AccessPoint),
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

// Attach 附着到引擎的 LTP 运行时
func (p *Proxy) Attach() error {
	if err := p.engine.Attach(); err != nil {
		return fmt.Errorf("ltp attach: %w", err)
	}

	p.mu.Lock()
	p.attached = true
	p.mu.Unlock()

	logger.Debug("已附着到 LTP 引擎", "node", p.nodeNbr)
	return nil
}

// Detach 解除与引擎的附着
func (p *Proxy) Detach() error {
	if err := p.engine.Detach(); err != nil {
		return fmt.Errorf("ltp detach: %w", err)
	}

	p.mu.Lock()
	p.attached = false
	p.mu.Unlock()

	logger.Debug("已解除 LTP 引擎附着", "node", p.nodeNbr)
	return nil
}

// IsClientOpen 检查某客户应用的访问点在本代理中是否已打开
func (p *Proxy) IsClientOpen(client types.ClientID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.saps[client]
	return ok
}

// OpenAccessPoints 返回当前已打开访问点的快照
func (p *Proxy) OpenAccessPoints() []*AccessPoint {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*AccessPoint, 0, len(p.saps))
	for _, sap := range p.saps {
		out = append(out, sap)
	}
	return out
}

// Open 为客户应用打开服务访问点
//
// 该客户已有存活访问点时原样返回现有实例（按键幂等）。
// 前置条件：已附着。
func (p *Proxy) Open(client types.ClientID) (*AccessPoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.attached {
		return nil, pkgif.ErrNotAttached
	}

	if sap, ok := p.saps[client]; ok {
		return sap, nil
	}

	h, err := p.engine.Open(client)
	if err != nil {
		return nil, fmt.Errorf("ltp open client %d: %w", client, err)
	}

	sap := newAccessPoint(p, client, h)
	p.saps[client] = sap

	logger.Info("LTP 访问点已打开", "client", client)
	return sap, nil
}

// Close 关闭访问点
//
// 先中断可能在途的阻塞接收，再释放句柄。访问点已被其他路径
// 关闭时为空操作；无论引擎 close 是否成功，映射表项都被移除。
func (p *Proxy) Close(sap *AccessPoint) error {
	if sap == nil {
		return pkgif.ErrNotOpen
	}

	client := sap.ClientID()

	p.mu.Lock()
	registered, ok := p.saps[client]
	if !ok || registered != sap {
		p.mu.Unlock()
		if !sap.IsOpen() {
			return nil
		}
		return fmt.Errorf("close access point %d: %w", client, pkgif.ErrKeyNotFound)
	}
	delete(p.saps, client)
	p.mu.Unlock()

	if !sap.IsOpen() {
		return nil
	}

	if err := p.interrupt(sap); err != nil {
		logger.Warn("关闭前中断失败", "client", client, "error", err)
	}

	h := sap.handleValue()
	sap.cleanup()

	if err := p.engine.Close(h); err != nil {
		logger.Warn("引擎关闭访问点失败，表项已移除", "client", client, "error", err)
		return fmt.Errorf("ltp close client %d: %w", client, err)
	}

	logger.Info("LTP 访问点已关闭", "client", client)
	return nil
}

// Interrupt 中断访问点上阻塞的接收
func (p *Proxy) Interrupt(sap *AccessPoint) error {
	if sap == nil || !sap.IsOpen() {
		return pkgif.ErrNotOpen
	}

	p.mu.RLock()
	registered, ok := p.saps[sap.ClientID()]
	p.mu.RUnlock()
	if !ok || registered != sap {
		return fmt.Errorf("interrupt access point %d: %w", sap.ClientID(), pkgif.ErrNotOpen)
	}

	return p.interrupt(sap)
}

// interrupt 发出引擎中断，容忍良性的"未阻塞"条件
func (p *Proxy) interrupt(sap *AccessPoint) error {
	err := p.engine.Interrupt(sap.handleValue())
	if err == nil {
		return nil
	}
	if errors.Is(err, pkgif.ErrEngineNotBlocked) {
		logger.Debug("访问点当前未阻塞，中断为空操作", "client", sap.ClientID())
		return nil
	}
	return fmt.Errorf("ltp interrupt client %d: %w", sap.ClientID(), err)
}

// CloseAll 关闭全部已打开访问点
func (p *Proxy) CloseAll() error {
	var errs error
	for _, sap := range p.OpenAccessPoints() {
		errs = multierr.Append(errs, p.Close(sap))
	}
	return errs
}

// InterruptAll 中断全部已打开访问点
func (p *Proxy) InterruptAll() error {
	var errs error
	for _, sap := range p.OpenAccessPoints() {
		errs = multierr.Append(errs, p.Interrupt(sap))
	}
	return errs
}
