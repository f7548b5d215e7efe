// Package bp 实现 BP（bundle 中继）协议族的代理与端点
//
// Proxy 是某节点上 BP 附着状态和全部已打开端点的唯一拥有者：
// 端点由 Proxy.Open 创建、Proxy.Close 销毁，Endpoint 只持有指向
// Proxy 的非拥有反向引用，用于委托 close/interrupt。
//
// 端点上的 Send/Receive 是阻塞调用，每个阻塞引擎调用都隔离在
// 独立的工作协程上执行（见 internal/core/runner），使调用方
// 始终能响应外部中断。
//
// # 端点生命周期
//
//	Closed → (Proxy.Open) → Open → (Close | 进程退出) → Closed
//
// IsOpen 是唯一可查询的状态；关闭后对象变为惰性，所有操作
// 返回 ErrNotOpen 而不是复用过期状态。
package bp
