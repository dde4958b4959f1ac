// Package swappable 提供身份不变、实现可替换的句柄
//
// 持有方只保存 *Handle，底层实现可以在运行中原子替换，
// 例如大厅阶段切换到游戏阶段，或猜拳进入下一轮。
package swappable

import "sync/atomic"

// Handle 可替换句柄
type Handle[T any] struct {
	v atomic.Pointer[T]
}

// New 创建句柄
func New[T any](v T) *Handle[T] {
	h := &Handle[T]{}
	h.v.Store(&v)
	return h
}

// Get 返回当前实现
func (h *Handle[T]) Get() T {
	return *h.v.Load()
}

// Swap 替换实现，返回旧值
func (h *Handle[T]) Swap(v T) T {
	return *h.v.Swap(&v)
}
