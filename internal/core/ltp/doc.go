// Package ltp 实现面向 LTP 引擎的点对点链路传输代理
//
// Proxy 是某节点号上 LTP 协议族的进程级单例（由注册表保证），
// 管理一组按客户应用标识索引的 AccessPoint。收发语义
// 与 bp 包一致：阻塞接收在专属 goroutine 上执行，可被 Interrupt
// 打断；生命周期 Closed 到 Open 再到 Closed，单向不可逆。
package ltp
