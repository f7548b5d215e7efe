// Package interfaces 定义 go-ion 的公共接口
//
// 接口分为两类：
//
// # 引擎边界接口
//
// 外部 DTN 引擎（存储转发协议栈）被视为不透明的本地协作者，
// 通过一组窄同步调用接口访问（一个接口文件 = 一个协议族）：
//   - engine.go  - BpEngine, CfdpEngine, LtpEngine, MemEngine
//
// 引擎的阻塞调用可能无限期阻塞；Interrupt 必须是尽力而为且不阻塞。
// 会话句柄是引擎签发的不透明令牌（types.SessionHandle）。
//
// # 错误定义
//
//   - errors.go  - 本地前置条件错误与引擎错误哨兵
//
// 前置条件错误（未附着、未打开、键不存在、选项冲突）由包装层
// 同步本地抛出，从不自动重试。引擎错误由工作协程捕获进结果槽，
// 在调用方协程上重新抛出。
package interfaces
