// Package registry 实现进程级代理单例注册表
//
// 每个协议族持有一个 Registry 实例：键到存活代理的映射。
// 同一键在进程范围内最多存在一个代理；首次查询时惰性创建，
// 只能通过显式 Unregister 或关停流程移除。
package registry

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory 代理构造函数，在首次查询某个键时调用
type Factory[K comparable, V any] func(key K) (V, error)

// Registry 键到代理的单例注册表
//
// GetOrCreate 对同一键的并发调用被串行化：构造加注册相对其他
// 同键调用是原子的，保证每个键只构造一次。不同键的构造互不阻塞。
type Registry[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V

	// 同键构造串行化
	group singleflight.Group
}

// New 创建空注册表，不预先填充任何键
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		items: make(map[K]V),
	}
}

// GetOrCreate 返回键对应的代理；不存在时通过 factory 构造并注册
//
// 对同一键的并发调用恰好触发一次构造，所有调用方得到同一实例。
// factory 返回错误时不注册任何内容，错误原样返回给每个调用方。
func (r *Registry[K, V]) GetOrCreate(key K, factory Factory[K, V]) (V, error) {
	// 快路径：已注册
	r.mu.RLock()
	v, ok := r.items[key]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}

	// 慢路径：同键构造串行化
	res, err, _ := r.group.Do(fmt.Sprint(key), func() (interface{}, error) {
		// 双重检查：可能在等待期间已被注册
		r.mu.RLock()
		v, ok := r.items[key]
		r.mu.RUnlock()
		if ok {
			return v, nil
		}

		v, err := factory(key)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.items[key] = v
		r.mu.Unlock()

		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return res.(V), nil
}

// Get 返回键对应的代理（不创建）
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.items[key]
	return v, ok
}

// Unregister 仅移除映射关系
//
// 不关闭会话、不解除附着：清理顺序由代理自身的关停路径负责。
// 键不存在时为空操作。
func (r *Registry[K, V]) Unregister(key K) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, key)
}

// Snapshot 返回当前所有代理的快照
//
// 返回的切片与内部状态无关联，迭代期间的并发变更不影响它。
func (r *Registry[K, V]) Snapshot() []V {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]V, 0, len(r.items))
	for _, v := range r.items {
		out = append(out, v)
	}
	return out
}

// Len 返回已注册代理数
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
