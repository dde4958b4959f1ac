package choice

import (
	"context"
	"sync/atomic"
)

// Result 只能结算一次的异步结果
//
// 第一次 Resolve 生效，之后的调用返回 false 且不改变值。
type Result[T any] struct {
	settled atomic.Bool
	done    chan struct{}
	val     T
}

// NewResult 创建未结算的结果
func NewResult[T any]() *Result[T] {
	return &Result[T]{done: make(chan struct{})}
}

// Resolve 结算，返回是否由本次调用结算
func (r *Result[T]) Resolve(v T) bool {
	if !r.settled.CompareAndSwap(false, true) {
		return false
	}
	r.val = v
	close(r.done)
	return true
}

// Settled 是否已开始结算
func (r *Result[T]) Settled() bool {
	return r.settled.Load()
}

// Done 结算完成后关闭
func (r *Result[T]) Done() <-chan struct{} {
	return r.done
}

// Wait 等待结算或 ctx 结束
func (r *Result[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		return r.val, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
