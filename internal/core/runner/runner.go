// Package runner 实现可取消的阻塞引擎调用原语
//
// 外部引擎的阻塞调用只能通过显式 interrupt 打断，没有任何异步接口。
// 因此每个阻塞调用在独立的工作协程上执行，调用方带或不带期限
// 等待其完成：
//
//   - 无期限：调用方无界等待；需要解除阻塞时由上层调用代理的
//     Interrupt。
//   - 有期限：期限到达时向同一会话发出带外 interrupt 请求并立即
//     返回 ErrTimeout，工作协程在引擎响应 interrupt 后自行终止，
//     其迟到的结果被丢弃，绝不呈现给已超时的调用方。
//
// 工作协程只向本次调用的结果槽写入恰好一个结果，不共享其他可变
// 状态；等待建立 happens-before，调用方观察到的结果写入先于工作
// 协程的完成信号。
package runner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/lib/log"
)

var logger = log.Logger("core/runner")

// Call 一次阻塞引擎调用
type Call[T any] func() (T, error)

// outcome 结果槽的单次写入内容
type outcome[T any] struct {
	val T
	err error
}

// Do 在独立工作协程上执行阻塞调用并无界等待
//
// 调用方阻塞到工作协程写入结果为止。外部若需解除阻塞，必须通过
// 代理向引擎发出 interrupt，此时 call 以 ErrEngineInterrupted 返回。
func Do[T any](call Call[T]) (T, error) {
	// 容量 1：工作协程写入后即可退出，不依赖调用方仍在等待
	slot := make(chan outcome[T], 1)

	go func() {
		v, err := call()
		slot <- outcome[T]{val: v, err: err}
	}()

	out := <-slot
	return out.val, out.err
}

// DoTimeout 带期限执行阻塞调用
//
// 期限内完成则返回工作协程的结果。期限到达时对会话调用 interrupt
// 并立即返回 ErrTimeout（错误上下文携带调用 ID）；工作协程继续
// 存活，直到引擎响应 interrupt 使调用返回，其迟到的结果被丢弃，
// 退出以同一调用 ID 记录。interrupt 针对的是底层会话而非工作
// 协程：不强杀任何协程。
//
// timeout <= 0 等价于 Do。
func DoTimeout[T any](call Call[T], timeout time.Duration, interrupt func()) (T, error) {
	if timeout <= 0 {
		return Do(call)
	}

	// 调用 ID 把超时调用和它迟到退出的工作协程关联起来
	callID := uuid.New().String()

	slot := make(chan outcome[T], 1)

	go func() {
		v, err := call()
		slot <- outcome[T]{val: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case out := <-slot:
		return out.val, out.err
	case <-timer.C:
		logger.Debug("调用超时，向会话发出中断请求",
			"callID", callID, "timeout", timeout)

		if interrupt != nil {
			interrupt()
		}

		// 工作协程在引擎响应中断后向槽写入迟到结果，在此记录其退出
		go func() {
			out := <-slot
			logger.Debug("超时调用的工作协程已退出，迟到结果被丢弃",
				"callID", callID, "error", out.err)
		}()

		var zero T
		return zero, fmt.Errorf("call %s timed out after %v: %w",
			callID, timeout, pkgif.ErrTimeout)
	}
}
