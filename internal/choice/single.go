package choice

import (
	"github.com/google/uuid"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
)

// audience 请求发给谁
type audience int

const (
	toAll audience = iota
	toPlayer
	toOthers
)

// single 一次性选择：第一个合法回答结算
type single[A, T any] struct {
	id       string
	kind     Kind
	target   *game.Player // toPlayer / toOthers 的对象
	audience audience
	prompt   *protocol.Message

	// accept 校验回答者和回答内容，返回结果
	accept func(p *game.Player, a *A) (T, bool)
	// notify 结算前的副作用通知，可为空
	notify func(f Fabric, p *game.Player, a *A)

	reg    *Registry
	result *Result[T]
}

func newSingle[A, T any](kind Kind) *single[A, T] {
	return &single[A, T]{
		id:     uuid.NewString(),
		kind:   kind,
		result: NewResult[T](),
	}
}

func (s *single[A, T]) ID() string         { return s.id }
func (s *single[A, T]) Kind() Kind         { return s.kind }
func (s *single[A, T]) Result() *Result[T] { return s.result }

func (s *single[A, T]) issue(r *Registry) {
	s.reg = r
	switch s.audience {
	case toPlayer:
		r.fabric.ToPlayer(s.target, s.prompt)
	case toOthers:
		r.fabric.ToOthers(s.target, s.prompt)
	default:
		r.fabric.ToAll(s.prompt)
	}
}

func (s *single[A, T]) submit(p *game.Player, answer any) {
	if s.result.Settled() {
		return
	}
	a, ok := answer.(*A)
	if !ok {
		return
	}
	v, ok := s.accept(p, a)
	if !ok {
		return
	}
	if s.notify != nil {
		s.notify(s.reg.fabric, p, a)
	}
	s.reg.release(s.id)
	s.result.Resolve(v)
}
