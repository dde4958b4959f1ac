//go:build !production

package testutil

import (
	"sync"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
)

// Scope 消息投递范围
type Scope string

const (
	ScopePlayer Scope = "player"
	ScopeOthers Scope = "others"
	ScopeAll    Scope = "all"
)

// Delivery 一次投递
type Delivery struct {
	Scope    Scope
	PlayerID string // ScopePlayer 为接收者，ScopeOthers 为被排除者
	Msg      *protocol.Message
}

// Recorder 线程安全地记录所有投递，实现 choice.Fabric
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
}

func (r *Recorder) add(d Delivery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, d)
}

func (r *Recorder) ToPlayer(p *game.Player, msg *protocol.Message) {
	r.add(Delivery{Scope: ScopePlayer, PlayerID: p.ID, Msg: msg})
}

func (r *Recorder) ToOthers(p *game.Player, msg *protocol.Message) {
	r.add(Delivery{Scope: ScopeOthers, PlayerID: p.ID, Msg: msg})
}

func (r *Recorder) ToAll(msg *protocol.Message) {
	r.add(Delivery{Scope: ScopeAll, Msg: msg})
}

// All 全部投递的副本
func (r *Recorder) All() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Delivery(nil), r.deliveries...)
}

// Of 指定类型的投递
func (r *Recorder) Of(t protocol.MessageType) []Delivery {
	var out []Delivery
	for _, d := range r.All() {
		if d.Msg.Type == t {
			out = append(out, d)
		}
	}
	return out
}

// Count 指定类型的投递数
func (r *Recorder) Count(t protocol.MessageType) int {
	return len(r.Of(t))
}

// Last 指定类型的最后一次投递
func (r *Recorder) Last(t protocol.MessageType) (Delivery, bool) {
	ds := r.Of(t)
	if len(ds) == 0 {
		return Delivery{}, false
	}
	return ds[len(ds)-1], true
}

// Reset 清空记录
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = nil
}
