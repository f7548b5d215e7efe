package bp

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dep2p/go-ion/internal/core/runner"
	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/types"
)

// 发送固定使用的次优先级与扩展服务类别
const (
	sendSubPriority = 1
	// 不请求最小时延转发
	sendCriticality = 0
)

// Endpoint 单个已打开的 BP 端点
//
// 端点由 Proxy.Open 创建，按 EID 在代理内唯一。所有收发都经由
// 打开时获得的会话句柄；Close 后句柄失效，端点上的后续操作
// 返回 ErrNotOpen。
//
// 收发结果同时写入结果槽（TxResult / RxResult），供调用方在
// 带外查询最近一次操作的结局。
type Endpoint struct {
	proxy *Proxy
	eid   types.EID

	// 打开时固化的默认参数
	opts     Options
	detained bool

	mu     sync.RWMutex
	handle types.SessionHandle

	// 最近一次发送/接收的结果槽
	lastTxErr error
	lastRx    []byte
	lastRxErr error
}

func newEndpoint(p *Proxy, eid types.EID, h types.SessionHandle, o Options, detained bool) *Endpoint {
	return &Endpoint{
		proxy:    p,
		eid:      eid,
		opts:     o,
		detained: detained,
		handle:   h,
	}
}

// EID 返回端点的端点标识
func (e *Endpoint) EID() types.EID {
	return e.eid
}

// IsOpen 返回端点句柄是否仍然有效
//
// 这是端点对外暴露的唯一状态：打开即可用，关闭即不可用。
func (e *Endpoint) IsOpen() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.handle.Valid()
}

// Detained 返回端点是否以 detained 模式打开
func (e *Endpoint) Detained() bool {
	return e.detained
}

func (e *Endpoint) handleValue() types.SessionHandle {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.handle
}

// cleanup 使句柄失效并清空结果槽
//
// 只允许 Proxy.Close 在移除表项之后调用。
func (e *Endpoint) cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.handle = types.InvalidHandle
	e.lastTxErr = nil
	e.lastRx = nil
	e.lastRxErr = nil
}

// Close 关闭端点
//
// 等价于 proxy.Close(e)，幂等。
func (e *Endpoint) Close() error {
	return e.proxy.Close(e)
}

// Interrupt 中断端点上阻塞的接收
func (e *Endpoint) Interrupt() error {
	return e.proxy.Interrupt(e)
}

// TxResult 返回最近一次发送的结局
func (e *Endpoint) TxResult() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.lastTxErr
}

// RxResult 返回最近一次接收的结局
func (e *Endpoint) RxResult() ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.lastRx, e.lastRxErr
}

func (e *Endpoint) setTxResult(err error) {
	e.mu.Lock()
	e.lastTxErr = err
	e.mu.Unlock()
}

func (e *Endpoint) setRxResult(data []byte, err error) {
	e.mu.Lock()
	e.lastRx = data
	e.lastRxErr = err
	e.mu.Unlock()
}

// effective 在端点默认参数上套用单次调用的覆盖项
func (e *Endpoint) effective(opts []Option) Options {
	o := e.opts
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Send 向目的 EID 发送载荷
//
// 单次调用可覆盖端点默认参数。指定了托管重传定时器但端点未以
// detained 模式打开时立即失败：引擎不保留 bundle 就无从重传。
//
// chunk_size > 0 时载荷被切分为定长块依次发送，每块携带与整发
// 相同的参数；任一块失败即中止，已发出的块不回收。空载荷作为
// 单个空 bundle 发出。
func (e *Endpoint) Send(dest types.EID, payload []byte, opts ...Option) error {
	err := e.send(dest, payload, opts)
	e.setTxResult(err)
	return err
}

func (e *Endpoint) send(dest types.EID, payload []byte, opts []Option) error {
	if !e.IsOpen() {
		return pkgif.ErrNotOpen
	}

	o := e.effective(opts)

	if o.RetxTimer > 0 && !e.detained {
		return fmt.Errorf("send to %s: retx timer needs a detained endpoint: %w",
			dest, pkgif.ErrDetainedRequired)
	}

	if o.ChunkSize <= 0 || len(payload) <= o.ChunkSize {
		return e.sendOne(dest, payload, o)
	}

	// 分块发送：任一块失败即中止，不回收已发出的块
	total := (len(payload) + o.ChunkSize - 1) / o.ChunkSize
	for i := 0; i < len(payload); i += o.ChunkSize {
		end := i + o.ChunkSize
		if end > len(payload) {
			end = len(payload)
		}
		if err := e.sendOne(dest, payload[i:end], o); err != nil {
			return fmt.Errorf("send chunk %d/%d to %s: %w",
				i/o.ChunkSize+1, total, dest, err)
		}
	}

	logger.Debug("分块发送完成", "eid", e.eid, "dest", dest,
		"bytes", len(payload), "chunks", total)
	return nil
}

func (e *Endpoint) sendOne(dest types.EID, data []byte, o Options) error {
	_, err := runner.Do(func() (struct{}, error) {
		return struct{}{}, e.proxy.engine.Send(e.handleValue(), dest, data, pkgif.BpSendOptions{
			TTL:          o.TTL,
			Priority:     o.Priority,
			ReportEID:    o.ReportEID,
			Custody:      o.Custody,
			ReportFlags:  o.ReportFlags,
			AckRequested: o.AckRequested,
			RetxTimer:    o.RetxTimer,
			SubPriority:  sendSubPriority,
			Criticality:  sendCriticality,
		})
	})
	if err != nil {
		return err
	}

	if e.proxy.traffic != nil {
		e.proxy.traffic.LogSent(string(e.eid), int64(len(data)))
	}
	return nil
}

// SendFile 读取文件内容并发送
//
// 文件整体读入后走与 Send 相同的路径，分块与否由参数决定。
func (e *Endpoint) SendFile(dest types.EID, path string, opts ...Option) error {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("send file %s: %w", path, err)
		e.setTxResult(err)
		return err
	}
	return e.Send(dest, data, opts...)
}

// Receive 接收一个 bundle 的载荷
//
// 超时与分块聚合互斥：两者同时指定返回 ErrConflictingOptions。
//
// timeout > 0 时接收最多阻塞该时长，到期对端点发出中断并返回
// ErrTimeout。chunk_size > 0 时循环接收并按字节拼接，直到累计
// 长度达到 chunk_size，最后一个单元的溢出字节保留；聚合模式
// 没有超时，数据停在边界之前时本调用会无限阻塞。
func (e *Endpoint) Receive(opts ...Option) ([]byte, error) {
	data, err := e.receive(opts)
	e.setRxResult(data, err)
	return data, err
}

func (e *Endpoint) receive(opts []Option) ([]byte, error) {
	if !e.IsOpen() {
		return nil, pkgif.ErrNotOpen
	}

	o := e.effective(opts)

	if o.RecvTimeout > 0 && o.ChunkSize > 0 {
		return nil, fmt.Errorf("receive on %s: timeout and chunked aggregation: %w",
			e.eid, pkgif.ErrConflictingOptions)
	}

	if o.ChunkSize > 0 {
		return e.receiveChunked(o.ChunkSize)
	}

	return e.receiveOne(o.RecvTimeout)
}

// receiveOne 接收单个 bundle，timeout <= 0 时无界阻塞
func (e *Endpoint) receiveOne(timeout time.Duration) ([]byte, error) {
	call := func() ([]byte, error) {
		return e.proxy.engine.Receive(e.handleValue())
	}

	var data []byte
	var err error
	if timeout > 0 {
		data, err = runner.DoTimeout(call, timeout, func() {
			// 到期中断，让引擎侧的阻塞调用尽快返回
			if ierr := e.proxy.interrupt(e); ierr != nil {
				logger.Warn("接收超时后中断失败", "eid", e.eid, "error", ierr)
			}
		})
	} else {
		data, err = runner.Do(call)
	}
	if err != nil {
		return nil, err
	}

	if e.proxy.traffic != nil {
		e.proxy.traffic.LogRecv(string(e.eid), int64(len(data)))
	}
	return data, nil
}

// receiveChunked 循环接收并拼接，累计长度达到 chunkSize 即结束
//
// 最后一个单元跨过边界时溢出字节保留在返回值里。
func (e *Endpoint) receiveChunked(chunkSize int) ([]byte, error) {
	var out []byte
	for e.IsOpen() {
		chunk, err := e.receiveOne(0)
		if err != nil {
			return nil, fmt.Errorf("receive chunk on %s: %w", e.eid, err)
		}
		out = append(out, chunk...)
		if len(out) >= chunkSize {
			return out, nil
		}
	}
	return nil, pkgif.ErrNotOpen
}
