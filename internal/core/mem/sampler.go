package mem

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/lib/log"
	"github.com/dep2p/go-ion/pkg/types"
)

var logger = log.Logger("core/mem")

// 采样序列名称
const (
	SeriesSummary   = "summary"
	SeriesSmallPool = "small_pool"
	SeriesLargePool = "large_pool"
)

// Sample 一个时刻的采样值
//
// 转储失败时 Err 非空、Stats 为空：错误本身就是该时刻的样本。
type Sample struct {
	Stats types.PoolStats
	Err   error
}

// Results 采样结果：序列名 -> 时间戳 -> 采样值
type Results map[string]map[time.Time]Sample

// newResults 返回带全部序列的空结果集
func newResults() Results {
	return Results{
		SeriesSummary:   make(map[time.Time]Sample),
		SeriesSmallPool: make(map[time.Time]Sample),
		SeriesLargePool: make(map[time.Time]Sample),
	}
}

// sampler 周期采样器，被 SdrProxy 和 PsmProxy 共用
type sampler struct {
	// 日志用的存储标识
	name string

	// 单次转储
	dump func() (types.MemDump, error)

	clk clock.Clock

	mu      sync.Mutex
	on      bool
	stop    chan struct{}
	done    chan struct{}
	results Results
}

func newSampler(name string, dump func() (types.MemDump, error), clk clock.Clock) *sampler {
	return &sampler{
		name: name,
		dump: dump,
		clk:  clk,
	}
}

// StartMonitoring 启动周期采样
//
// rate 为采样频率（Hz）。window > 0 时结果按窗口翻转：一个窗口
// 期满后在采样前清空累积结果并重置基线，reportOnFlush 控制翻转
// 时是否把上一窗口的概要写入日志。window <= 0 时结果无界累积，
// 直到显式清空。已有采样在运行时返回 ErrAlreadyMonitoring。
func (s *sampler) StartMonitoring(rate float64, window time.Duration, reportOnFlush bool) error {
	if rate <= 0 {
		return fmt.Errorf("start monitoring %s: invalid rate %v", s.name, rate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.on {
		return pkgif.ErrAlreadyMonitoring
	}

	s.on = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.results = newResults()

	go s.monitor(rate, window, reportOnFlush, s.stop, s.done)

	logger.Info("采样已启动", "target", s.name, "rate", rate, "window", window)
	return nil
}

// StopMonitoring 停止采样并返回累积结果
//
// 未在采样时为空操作，返回 nil 结果。
func (s *sampler) StopMonitoring() (Results, error) {
	s.mu.Lock()

	if !s.on {
		s.mu.Unlock()
		return nil, nil
	}

	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()

	s.on = false
	out := s.results
	s.results = nil

	logger.Info("采样已停止", "target", s.name, "samples", len(out[SeriesSummary]))
	return out, nil
}

// ClearResults 清空累积结果，采样继续
func (s *sampler) ClearResults() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.on {
		s.results = newResults()
	}
}

// Monitoring 返回是否正在采样
func (s *sampler) Monitoring() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.on
}

// Close 停止采样并丢弃结果
func (s *sampler) Close() error {
	_, err := s.StopMonitoring()
	return err
}

// monitor 采样循环
//
// 每个周期：窗口期满则翻转结果，然后采样一次，再做纠偏睡眠
// （扣除本周期已消耗的时间，长耗时转储不会让采样点逐渐漂移）。
func (s *sampler) monitor(rate float64, window time.Duration, reportOnFlush bool, stop, done chan struct{}) {
	defer close(done)

	period := time.Duration(float64(time.Second) / rate)
	windowStart := s.clk.Now()

	for {
		tic := s.clk.Now()

		if window > 0 && tic.Sub(windowStart) >= window {
			s.flushWindow(reportOnFlush)
			windowStart = tic
		}

		s.takeSample(tic)

		sleep := period - s.clk.Now().Sub(tic)
		if sleep <= 0 {
			// 转储比采样周期还慢，立即进入下一个周期
			select {
			case <-stop:
				return
			default:
			}
			continue
		}

		select {
		case <-stop:
			return
		case <-s.clk.After(sleep):
		}
	}
}

// takeSample 采样一次并记录到全部序列
func (s *sampler) takeSample(t time.Time) {
	dump, err := s.dump()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.results == nil {
		return
	}
	if err != nil {
		s.results[SeriesSummary][t] = Sample{Err: err}
		s.results[SeriesSmallPool][t] = Sample{Err: err}
		s.results[SeriesLargePool][t] = Sample{Err: err}
		return
	}
	s.results[SeriesSummary][t] = Sample{Stats: dump.Summary}
	s.results[SeriesSmallPool][t] = Sample{Stats: dump.SmallPool}
	s.results[SeriesLargePool][t] = Sample{Stats: dump.LargePool}
}

// flushWindow 窗口翻转：可选写报告，然后清空累积结果
func (s *sampler) flushWindow(report bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.results == nil {
		return
	}
	if report {
		var failures int
		for _, sample := range s.results[SeriesSummary] {
			if sample.Err != nil {
				failures++
			}
		}
		logger.Info("采样窗口翻转", "target", s.name,
			"samples", len(s.results[SeriesSummary]), "failures", failures)
	}
	s.results = newResults()
}
