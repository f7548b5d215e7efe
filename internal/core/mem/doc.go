// Package mem 实现 SDR/PSM 内存状态的自省与周期采样
//
// SdrProxy 和 PsmProxy 是按 (节点号, 存储标识) 键的进程级单例
// （由注册表保证）。Dump 做单次转储；StartMonitoring 启动一个
// 按固定频率采样的 goroutine，采样结果按时间序列累积，可选
// 按窗口翻转。转储失败不终止采样循环，错误被记录为该时刻的
// 样本。
package mem
