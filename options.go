package ion

import (
	"io"
	"log/slog"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
)

// ============================================================================
//                              Stack 选项
// ============================================================================

// stackConfig Stack 构建参数
type stackConfig struct {
	engines pkgif.EngineSet

	clk clock.Clock

	logOutput io.Writer
	logLevel  *slog.Level

	hookSignals bool

	userFxOptions []fx.Option
}

func defaultStackConfig() *stackConfig {
	return &stackConfig{
		clk: clock.New(),
	}
}

// Option Stack 构建选项
type Option func(*stackConfig)

// WithBpEngine 设置 BP 引擎
func WithBpEngine(e pkgif.BpEngine) Option {
	return func(c *stackConfig) { c.engines.BP = e }
}

// WithCfdpEngine 设置 CFDP 引擎
func WithCfdpEngine(e pkgif.CfdpEngine) Option {
	return func(c *stackConfig) { c.engines.CFDP = e }
}

// WithLtpEngine 设置 LTP 引擎
func WithLtpEngine(e pkgif.LtpEngine) Option {
	return func(c *stackConfig) { c.engines.LTP = e }
}

// WithMemEngine 设置 SDR/PSM 内存引擎
func WithMemEngine(e pkgif.MemEngine) Option {
	return func(c *stackConfig) { c.engines.Mem = e }
}

// WithEngines 一次设置全部引擎
func WithEngines(set pkgif.EngineSet) Option {
	return func(c *stackConfig) { c.engines = set }
}

// WithClock 替换时钟，采样器的周期调度依赖它（测试用）
func WithClock(clk clock.Clock) Option {
	return func(c *stackConfig) { c.clk = clk }
}

// WithLogOutput 设置日志输出目标
func WithLogOutput(w io.Writer) Option {
	return func(c *stackConfig) { c.logOutput = w }
}

// WithLogLevel 设置日志级别
func WithLogLevel(level slog.Level) Option {
	return func(c *stackConfig) {
		l := level
		c.logLevel = &l
	}
}

// WithSignalHook 收到中断信号时自动执行关停序列
func WithSignalHook() Option {
	return func(c *stackConfig) { c.hookSignals = true }
}

// WithFxOption 附加用户自定义 Fx 选项（扩展用）
func WithFxOption(opts ...fx.Option) Option {
	return func(c *stackConfig) {
		c.userFxOptions = append(c.userFxOptions, opts...)
	}
}
