// Package cfdp 实现面向 CFDP 引擎的文件传输代理
//
// Proxy 是某对端实体号上 CFDP 协议族的进程级单例（由注册表保证），
// 管理一组按对端实体号索引的 Entity。每个 Entity 在打开时启动一个
// 事件监视 goroutine，从引擎拉取事件并分发给注册的处理器；事务
// 完成或被放弃时唤醒 WaitForTransactionEnd 的等待者。
//
// 生命周期与 bp 包一致：Closed 到 Open 再到 Closed，单向不可逆，
// IsOpen 是实体对外暴露的唯一状态。
package cfdp
