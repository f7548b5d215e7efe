package mem

import (
	"fmt"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/types"
)

// ============================================================================
//                              SDR 代理
// ============================================================================

// SdrKey SDR 代理的注册表键
type SdrKey struct {
	Node types.NodeNumber
	Name string
}

// SdrProxy 某节点单个 SDR 的自省代理
type SdrProxy struct {
	*sampler

	node    types.NodeNumber
	sdrName string
	engine  pkgif.MemEngine
}

// NewSdrProxy 创建 SDR 代理
//
// 不要直接调用，使用 Stack.SDR 以获得进程级单例。
func NewSdrProxy(node types.NodeNumber, sdrName string, engine pkgif.MemEngine, clk clock.Clock) *SdrProxy {
	p := &SdrProxy{
		node:    node,
		sdrName: sdrName,
		engine:  engine,
	}
	p.sampler = newSampler(fmt.Sprintf("sdr:%s", sdrName), p.Dump, clk)
	return p
}

// NodeNumber 返回节点号
func (p *SdrProxy) NodeNumber() types.NodeNumber {
	return p.node
}

// Name 返回 SDR 名称
func (p *SdrProxy) Name() string {
	return p.sdrName
}

// Dump 转储 SDR 的当前状态
func (p *SdrProxy) Dump() (types.MemDump, error) {
	dump, err := p.engine.SdrDump(p.sdrName)
	if err != nil {
		return types.MemDump{}, fmt.Errorf("sdr dump %s: %w", p.sdrName, err)
	}
	return dump, nil
}

// ============================================================================
//                              PSM 代理
// ============================================================================

// PsmKey PSM 代理的注册表键
type PsmKey struct {
	Node  types.NodeNumber
	WmKey int
}

// PsmProxy 某节点单个 PSM 分区的自省代理
type PsmProxy struct {
	*sampler

	node   types.NodeNumber
	wmKey  int
	engine pkgif.MemEngine
}

// NewPsmProxy 创建 PSM 代理
//
// 不要直接调用，使用 Stack.PSM 以获得进程级单例。
func NewPsmProxy(node types.NodeNumber, wmKey int, engine pkgif.MemEngine, clk clock.Clock) *PsmProxy {
	p := &PsmProxy{
		node:   node,
		wmKey:  wmKey,
		engine: engine,
	}
	p.sampler = newSampler(fmt.Sprintf("psm:%d", wmKey), p.Dump, clk)
	return p
}

// NodeNumber 返回节点号
func (p *PsmProxy) NodeNumber() types.NodeNumber {
	return p.node
}

// WmKey 返回工作内存键
func (p *PsmProxy) WmKey() int {
	return p.wmKey
}

// Dump 转储 PSM 分区的当前状态
func (p *PsmProxy) Dump() (types.MemDump, error) {
	dump, err := p.engine.PsmDump(p.wmKey)
	if err != nil {
		return types.MemDump{}, fmt.Errorf("psm dump %d: %w", p.wmKey, err)
	}
	return dump, nil
}
