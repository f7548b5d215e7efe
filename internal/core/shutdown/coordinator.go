package shutdown

import (
	"os"
	"os/signal"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-ion/internal/core/bp"
	"github.com/dep2p/go-ion/internal/core/cfdp"
	"github.com/dep2p/go-ion/internal/core/ltp"
	"github.com/dep2p/go-ion/internal/core/mem"
	"github.com/dep2p/go-ion/pkg/lib/log"
)

var logger = log.Logger("core/shutdown")

// Coordinator 按固定顺序关停全部协议族
//
// 顺序：BP 端点先于 CFDP 实体（在途文件传输先于其底层 bundle
// 通道失效前被取消），CFDP 先于 LTP，采样器随后，最后逐族解除
// 引擎附着。任一步失败不中断后续步骤，错误聚合后一次性返回。
type Coordinator struct {
	bpReg   *bp.Registry
	cfdpReg *cfdp.Registry
	ltpReg  *ltp.Registry
	sdrReg  *mem.SdrRegistry
	psmReg  *mem.PsmRegistry

	mu       sync.Mutex
	hooked   bool
	sigCh    chan os.Signal
	unhookCh chan struct{}
}

// NewCoordinator 创建关停协调器
func NewCoordinator(bpReg *bp.Registry, cfdpReg *cfdp.Registry, ltpReg *ltp.Registry,
	sdrReg *mem.SdrRegistry, psmReg *mem.PsmRegistry) *Coordinator {
	return &Coordinator{
		bpReg:   bpReg,
		cfdpReg: cfdpReg,
		ltpReg:  ltpReg,
		sdrReg:  sdrReg,
		psmReg:  psmReg,
	}
}

// Shutdown 关停全部协议族
//
// 可重复调用：已关停的对象上的步骤都是空操作。
func (c *Coordinator) Shutdown() error {
	var errs error

	logger.Info("正在关闭所有 BP 端点")
	for _, p := range c.bpReg.Snapshot() {
		errs = multierr.Append(errs, p.CloseAll())
	}

	logger.Info("正在取消并关闭所有 CFDP 实体")
	for _, p := range c.cfdpReg.Snapshot() {
		errs = multierr.Append(errs, p.CancelAll())
		errs = multierr.Append(errs, p.CloseAll())
	}

	logger.Info("正在中断并关闭所有 LTP 访问点")
	for _, p := range c.ltpReg.Snapshot() {
		errs = multierr.Append(errs, p.InterruptAll())
		errs = multierr.Append(errs, p.CloseAll())
	}

	logger.Info("正在停止所有内存采样器")
	for _, p := range c.sdrReg.Snapshot() {
		errs = multierr.Append(errs, p.Close())
	}
	for _, p := range c.psmReg.Snapshot() {
		errs = multierr.Append(errs, p.Close())
	}

	logger.Info("正在解除引擎附着")
	for _, p := range c.bpReg.Snapshot() {
		if p.Attached() {
			errs = multierr.Append(errs, p.Detach())
		}
	}
	for _, p := range c.cfdpReg.Snapshot() {
		if p.Attached() {
			errs = multierr.Append(errs, p.Detach())
		}
	}
	for _, p := range c.ltpReg.Snapshot() {
		if p.Attached() {
			errs = multierr.Append(errs, p.Detach())
		}
	}

	logger.Info("关停完成")
	return errs
}

// HookSignals 安装中断信号处理
//
// 收到中断信号时先执行 Shutdown，再把信号交还默认行为，使进程
// 仍按调用方预期退出。重复安装为空操作；返回的函数卸载处理。
func (c *Coordinator) HookSignals() (unhook func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.hooked {
		return c.unhook
	}

	c.hooked = true
	c.sigCh = make(chan os.Signal, 1)
	c.unhookCh = make(chan struct{})
	signal.Notify(c.sigCh, os.Interrupt)

	go func(sigCh chan os.Signal, unhookCh chan struct{}) {
		select {
		case sig := <-sigCh:
			logger.Warn("收到中断信号，开始关停", "signal", sig)
			if err := c.Shutdown(); err != nil {
				logger.Error("信号触发的关停未完全成功", "error", err)
			}

			// 交还默认行为
			signal.Stop(sigCh)
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(sig)
			}
		case <-unhookCh:
		}
	}(c.sigCh, c.unhookCh)

	return c.unhook
}

// unhook 卸载信号处理
func (c *Coordinator) unhook() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.hooked {
		return
	}

	signal.Stop(c.sigCh)
	close(c.unhookCh)
	c.hooked = false
}
