package ion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-ion/internal/core/bp"
	"github.com/dep2p/go-ion/internal/core/cfdp"
	"github.com/dep2p/go-ion/internal/core/ltp"
	"github.com/dep2p/go-ion/internal/core/mem"
	"github.com/dep2p/go-ion/internal/core/metrics"
	"github.com/dep2p/go-ion/internal/core/shutdown"
	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/lib/log"
	"github.com/dep2p/go-ion/pkg/types"
)

var logger = log.Logger("ion")

// 应用启动/停止的兜底超时
const lifecycleTimeout = 15 * time.Second

// Stack 一个 DTN 引擎上全部协议族会话的入口
//
// 通过 BP/CFDP/LTP/SDR/PSM 获取各协议族的代理；同一键重复获取
// 返回同一实例。Close 停止应用并触发完整的关停序列。
type Stack struct {
	cfg *stackConfig
	app *fx.App

	// Fx 回填的组件
	bpReg   *bp.Registry
	cfdpReg *cfdp.Registry
	ltpReg  *ltp.Registry
	sdrReg  *mem.SdrRegistry
	psmReg  *mem.PsmRegistry
	traffic *metrics.TrafficCounter
	coord   *shutdown.Coordinator

	unhookSignals func()

	mu     sync.Mutex
	closed bool
}

// New 构建并启动 Stack
//
// 至少要通过选项提供一个引擎；未提供引擎的协议族在获取代理时
// 报错。ctx 只约束启动过程。
func New(ctx context.Context, opts ...Option) (*Stack, error) {
	cfg := defaultStackConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logOutput != nil {
		if cfg.logLevel != nil {
			log.SetOutputWithLevel(cfg.logOutput, *cfg.logLevel)
		} else {
			log.SetOutput(cfg.logOutput)
		}
	} else if cfg.logLevel != nil {
		log.SetLevel(*cfg.logLevel)
	}

	s := &Stack{cfg: cfg}
	s.app = buildFxApp(s)
	if err := s.app.Err(); err != nil {
		return nil, fmt.Errorf("build stack: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, lifecycleTimeout)
	defer cancel()
	if err := s.app.Start(startCtx); err != nil {
		return nil, fmt.Errorf("start stack: %w", err)
	}

	if cfg.hookSignals {
		s.unhookSignals = s.coord.HookSignals()
	}

	logger.Info("Stack 已启动")
	return s, nil
}

func (s *Stack) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// BP 获取某节点的 BP 代理
//
// 进程级单例，每次获取都重新附着到引擎。
func (s *Stack) BP(node types.NodeNumber) (*bp.Proxy, error) {
	if s.isClosed() {
		return nil, pkgif.ErrStackClosed
	}
	if s.cfg.engines.BP == nil {
		return nil, fmt.Errorf("bp proxy for node %d: no BP engine configured", node)
	}

	p, err := s.bpReg.GetOrCreate(node, func(n types.NodeNumber) (*bp.Proxy, error) {
		return bp.NewProxy(n, s.cfg.engines.BP, s.traffic), nil
	})
	if err != nil {
		return nil, err
	}
	if err := p.Attach(); err != nil {
		return nil, err
	}
	return p, nil
}

// CFDP 获取某对端实体号的 CFDP 代理
//
// 进程级单例，每次获取都重新附着到引擎。
func (s *Stack) CFDP(peer types.EntityNumber) (*cfdp.Proxy, error) {
	if s.isClosed() {
		return nil, pkgif.ErrStackClosed
	}
	if s.cfg.engines.CFDP == nil {
		return nil, fmt.Errorf("cfdp proxy for entity %d: no CFDP engine configured", peer)
	}

	p, err := s.cfdpReg.GetOrCreate(peer, func(e types.EntityNumber) (*cfdp.Proxy, error) {
		return cfdp.NewProxy(e, s.cfg.engines.CFDP), nil
	})
	if err != nil {
		return nil, err
	}
	if err := p.Attach(); err != nil {
		return nil, err
	}
	return p, nil
}

// LTP 获取某节点的 LTP 代理
//
// 进程级单例，每次获取都重新附着到引擎；节点上的各客户应用
// 通过 Proxy.Open 获得各自的访问点。
func (s *Stack) LTP(node types.NodeNumber) (*ltp.Proxy, error) {
	if s.isClosed() {
		return nil, pkgif.ErrStackClosed
	}
	if s.cfg.engines.LTP == nil {
		return nil, fmt.Errorf("ltp proxy for node %d: no LTP engine configured", node)
	}

	p, err := s.ltpReg.GetOrCreate(node, func(n types.NodeNumber) (*ltp.Proxy, error) {
		return ltp.NewProxy(n, s.cfg.engines.LTP, s.traffic), nil
	})
	if err != nil {
		return nil, err
	}
	if err := p.Attach(); err != nil {
		return nil, err
	}
	return p, nil
}

// SDR 获取某节点某 SDR 的自省代理
//
// 进程级单例，内存代理不需要附着。
func (s *Stack) SDR(node types.NodeNumber, sdrName string) (*mem.SdrProxy, error) {
	if s.isClosed() {
		return nil, pkgif.ErrStackClosed
	}
	if s.cfg.engines.Mem == nil {
		return nil, fmt.Errorf("sdr proxy for %s: no memory engine configured", sdrName)
	}

	return s.sdrReg.GetOrCreate(mem.SdrKey{Node: node, Name: sdrName},
		func(k mem.SdrKey) (*mem.SdrProxy, error) {
			return mem.NewSdrProxy(k.Node, k.Name, s.cfg.engines.Mem, s.cfg.clk), nil
		})
}

// PSM 获取某节点某 PSM 分区的自省代理
func (s *Stack) PSM(node types.NodeNumber, wmKey int) (*mem.PsmProxy, error) {
	if s.isClosed() {
		return nil, pkgif.ErrStackClosed
	}
	if s.cfg.engines.Mem == nil {
		return nil, fmt.Errorf("psm proxy for key %d: no memory engine configured", wmKey)
	}

	return s.psmReg.GetOrCreate(mem.PsmKey{Node: node, WmKey: wmKey},
		func(k mem.PsmKey) (*mem.PsmProxy, error) {
			return mem.NewPsmProxy(k.Node, k.WmKey, s.cfg.engines.Mem, s.cfg.clk), nil
		})
}

// Traffic 返回数据面流量计数器
func (s *Stack) Traffic() *metrics.TrafficCounter {
	return s.traffic
}

// Shutdown 立即执行完整的关停序列
//
// Stack 仍可继续使用：关停后重新获取代理会重新附着并打开。
func (s *Stack) Shutdown() error {
	return s.coord.Shutdown()
}

// Close 关闭 Stack
//
// 停止 Fx 应用并触发关停序列，幂等。
func (s *Stack) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.unhookSignals != nil {
		s.unhookSignals()
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), lifecycleTimeout)
	defer cancel()
	if err := s.app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop stack: %w", err)
	}

	logger.Info("Stack 已关闭")
	return nil
}
