package cfdp

import (
	"sync"
	"time"
)

// txGen 一代事务结束信号
//
// ch 关闭即信号触发；ok 在关闭前写入，对读者经由 close 的
// happens-before 可见。
type txGen struct {
	ch chan struct{}
	ok bool
}

// txSignal 事务结束信号
//
// 每次 signal 唤醒当前这一代的全部等待者并立即换上新的一代，
// 后来的等待者只会看到属于自己那一代的结局，跨事务不会读到
// 陈旧结果。
type txSignal struct {
	mu  sync.Mutex
	gen *txGen
}

func newTxSignal() *txSignal {
	return &txSignal{gen: &txGen{ch: make(chan struct{})}}
}

// signal 以给定结局唤醒当前一代的等待者
func (s *txSignal) signal(ok bool) {
	s.mu.Lock()
	g := s.gen
	g.ok = ok
	s.gen = &txGen{ch: make(chan struct{})}
	s.mu.Unlock()

	close(g.ch)
}

// wait 等待当前一代的结局
//
// timeout <= 0 表示无界等待；超时返回 false。
func (s *txSignal) wait(timeout time.Duration) bool {
	s.mu.Lock()
	g := s.gen
	s.mu.Unlock()

	if timeout <= 0 {
		<-g.ch
		return g.ok
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-g.ch:
		return g.ok
	case <-t.C:
		return false
	}
}
