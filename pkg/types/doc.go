// Package types 定义 go-ion 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 go-ion 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 职能
//
// pkg/types 的职能是定义 **Go 内部数据结构**：
//   - 模块间数据传递
//   - API 参数/返回值
//   - 枚举表（BP 服务类别、CFDP 事件种类等）
//
// go-ion 不拥有任何网络 wire format：报文编码完全由外部 DTN 引擎负责，
// 因此本包只有内存结构，没有协议消息定义。
//
// # 文件组织
//
// 基础类型:
//   - ids.go     - NodeNumber, EntityNumber, ClientID, EID, SessionHandle
//   - bp.go      - BP 枚举表（优先级、托管、报告标志等）
//   - cfdp.go    - CFDP 枚举表（模式、事件种类、故障条件等）
//   - mem.go     - SDR/PSM 内存转储结构
package types
