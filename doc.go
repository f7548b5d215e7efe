// Package ion 提供本地 DTN（容迟网络）引擎的会话生命周期封装
//
// 引擎是同主机上的存储转发运行时，本库通过 Stack 管理与它的
// 全部会话：BP 端点的 bundle 收发、CFDP 实体的文件传输与事件
// 监视、LTP 访问点的链路数据收发，以及 SDR/PSM 内存状态的周期
// 采样。
//
// 所有代理都是进程级单例：同一键（节点号、对端实体号、客户
// 应用标识）重复获取返回同一实例，打开操作按键幂等。引擎的
// 阻塞调用在专属 goroutine 上执行，可以被中断或按超时放弃。
//
// 基本用法：
//
//	stack, err := ion.New(ctx, ion.WithBpEngine(engine))
//	if err != nil {
//		return err
//	}
//	defer stack.Close()
//
//	proxy, err := stack.BP(1)
//	if err != nil {
//		return err
//	}
//	ept, err := proxy.Open("ipn:1.1")
//	if err != nil {
//		return err
//	}
//	if err := ept.Send("ipn:2.1", payload); err != nil {
//		return err
//	}
//
// Stack.Shutdown 按固定顺序关停全部协议族；WithSignalHook 让
// 中断信号自动触发同样的关停序列。
package ion
