package choice

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/logger"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
)

// Registry 按 handlerId 保存进行中的选择请求，并把回答转交给对应处理器
//
// 一个 Registry 只属于一个会话。所有处理器状态变化（发起、回答、
// 计时器回调）都在 mu 内串行执行。
type Registry struct {
	mu       sync.Mutex
	fabric   Fabric
	timings  Timings
	handlers map[string]Handler
	timers   map[*time.Timer]struct{}
	closed   bool
	log      zerolog.Logger
}

// NewRegistry 创建绑定到 fabric 的 Registry
func NewRegistry(fabric Fabric, timings Timings) *Registry {
	return &Registry{
		fabric:   fabric,
		timings:  timings,
		handlers: make(map[string]Handler),
		timers:   make(map[*time.Timer]struct{}),
		log:      logger.With("choice"),
	}
}

// Issue 登记处理器并发出请求
func (r *Registry) Issue(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.register(h)
	h.issue(r)
}

// RouteAnswer 把回答交给对应处理器
//
// 未知或已结算的 handlerId 直接丢弃，这是正常的时序竞争，不记错误。
func (r *Registry) RouteAnswer(p *game.Player, raw json.RawMessage) {
	env, err := codec.ParseRaw[protocol.AnswerEnvelope](raw)
	if err != nil || env.HandlerID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handlers[env.HandlerID]
	if !ok {
		r.log.Debug().Str("handler", env.HandlerID).Msg("丢弃过期回答")
		return
	}

	answer, err := decodeAnswer(h.Kind(), raw)
	if err != nil {
		return
	}
	h.submit(p, answer)
}

// Pending 当前登记的处理器数量
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}

// Close 停止所有计时器，之后的发起和回调都被忽略
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for t := range r.timers {
		t.Stop()
	}
	clear(r.timers)
	clear(r.handlers)
}

// register 需持有 mu
func (r *Registry) register(h Handler) {
	r.handlers[h.ID()] = h
}

// release 结算时注销，需持有 mu
func (r *Registry) release(id string) {
	delete(r.handlers, id)
}

// after 在 d 之后于 mu 内执行 fn，需持有 mu
func (r *Registry) after(d time.Duration, fn func()) *time.Timer {
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.timers, t)
		if r.closed {
			return
		}
		fn()
	})
	r.timers[t] = struct{}{}
	return t
}

// stop 取消计时器，需持有 mu
func (r *Registry) stop(t *time.Timer) {
	if t == nil {
		return
	}
	t.Stop()
	delete(r.timers, t)
}
