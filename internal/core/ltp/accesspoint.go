package ltp

import (
	"fmt"
	"sync"
	"time"

	"github.com/dep2p/go-ion/internal/core/runner"
	pkgif "github.com/dep2p/go-ion/pkg/interfaces"
	"github.com/dep2p/go-ion/pkg/types"
)

// AccessPoint 单个已打开的 LTP 服务访问点
//
// 访问点由 Proxy.Open 创建，按客户应用标识在代理内唯一。
// 收发结果同时写入结果槽，供调用方在带外查询最近一次操作的
// 结局。
type AccessPoint struct {
	proxy  *Proxy
	client types.ClientID

	mu     sync.RWMutex
	handle types.SessionHandle

	// 最近一次发送/接收的结果槽
	lastTxErr error
	lastRx    []byte
	lastRxErr error
}

func newAccessPoint(p *Proxy, client types.ClientID, h types.SessionHandle) *AccessPoint {
	return &AccessPoint{
		proxy:  p,
		client: client,
		handle: h,
	}
}

// ClientID 返回访问点的客户应用标识
func (a *AccessPoint) ClientID() types.ClientID {
	return a.client
}

// IsOpen 返回访问点句柄是否仍然有效
func (a *AccessPoint) IsOpen() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.handle.Valid()
}

func (a *AccessPoint) handleValue() types.SessionHandle {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.handle
}

// cleanup 使句柄失效并清空结果槽
//
// 只允许 Proxy.Close 在移除表项之后调用。
func (a *AccessPoint) cleanup() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.handle = types.InvalidHandle
	a.lastTxErr = nil
	a.lastRx = nil
	a.lastRxErr = nil
}

// Close 关闭访问点
//
// 等价于 proxy.Close(a)，幂等。
func (a *AccessPoint) Close() error {
	return a.proxy.Close(a)
}

// Interrupt 中断访问点上阻塞的接收
func (a *AccessPoint) Interrupt() error {
	return a.proxy.Interrupt(a)
}

// TxResult 返回最近一次发送的结局
func (a *AccessPoint) TxResult() error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.lastTxErr
}

// RxResult 返回最近一次接收的结局
func (a *AccessPoint) RxResult() ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.lastRx, a.lastRxErr
}

func (a *AccessPoint) setTxResult(err error) {
	a.mu.Lock()
	a.lastTxErr = err
	a.mu.Unlock()
}

func (a *AccessPoint) setRxResult(data []byte, err error) {
	a.mu.Lock()
	a.lastRx = data
	a.lastRxErr = err
	a.mu.Unlock()
}

// Send 向目的引擎发送数据
func (a *AccessPoint) Send(dest types.EngineNumber, data []byte) error {
	err := a.send(dest, data)
	a.setTxResult(err)
	return err
}

func (a *AccessPoint) send(dest types.EngineNumber, data []byte) error {
	if !a.IsOpen() {
		return pkgif.ErrNotOpen
	}

	_, err := runner.Do(func() (struct{}, error) {
		return struct{}{}, a.proxy.engine.Send(a.handleValue(), dest, data)
	})
	if err != nil {
		return fmt.Errorf("ltp send to engine %d: %w", dest, err)
	}

	if a.proxy.traffic != nil {
		a.proxy.traffic.LogSent(a.sessionKey(), int64(len(data)))
	}
	return nil
}

// Receive 阻塞接收一个入站数据单元
//
// 没有超时，被 Interrupt 打断前可能无限阻塞。
func (a *AccessPoint) Receive() ([]byte, error) {
	data, err := a.receive(0)
	a.setRxResult(data, err)
	return data, err
}

// ReceiveTimeout 带超时的接收
//
// 到期对访问点发出中断并返回 ErrTimeout；timeout <= 0 等价于
// Receive。
func (a *AccessPoint) ReceiveTimeout(timeout time.Duration) ([]byte, error) {
	data, err := a.receive(timeout)
	a.setRxResult(data, err)
	return data, err
}

func (a *AccessPoint) receive(timeout time.Duration) ([]byte, error) {
	if !a.IsOpen() {
		return nil, pkgif.ErrNotOpen
	}

	call := func() ([]byte, error) {
		return a.proxy.engine.Receive(a.handleValue())
	}

	var data []byte
	var err error
	if timeout > 0 {
		data, err = runner.DoTimeout(call, timeout, func() {
			if ierr := a.proxy.interrupt(a); ierr != nil {
				logger.Warn("接收超时后中断失败", "client", a.client, "error", ierr)
			}
		})
	} else {
		data, err = runner.Do(call)
	}
	if err != nil {
		return nil, err
	}

	if a.proxy.traffic != nil {
		a.proxy.traffic.LogRecv(a.sessionKey(), int64(len(data)))
	}
	return data, nil
}

func (a *AccessPoint) sessionKey() string {
	return fmt.Sprintf("ltp:%d", a.client)
}
