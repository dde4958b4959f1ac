package session

import (
	"slices"
	"sync"

	"github.com/palemoky/dealers-choice/internal/choice"
	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
)

// Sender 单个玩家的投递能力，通常是一条连接
type Sender interface {
	SendMessage(msg *protocol.Message)
}

// maxBacklog 断线玩家最多暂存的消息数，超出时丢弃最早的
const maxBacklog = 64

// Callbacks 会话房间的投递表，实现 choice.Fabric
//
// 锁只保护投递表本身，处于锁顺序的最底层，持有时只调用 Sender.SendMessage。
type Callbacks struct {
	room string

	mu      sync.RWMutex
	order   []string
	senders map[string]Sender
	backlog map[string][]*protocol.Message // 断线玩家暂存的消息
}

var _ choice.Fabric = (*Callbacks)(nil)

// NewCallbacks 创建房间 room 的投递表
func NewCallbacks(room string) *Callbacks {
	return &Callbacks{
		room:    room,
		senders: make(map[string]Sender),
		backlog: make(map[string][]*protocol.Message),
	}
}

// Room 房间名
func (c *Callbacks) Room() string { return c.room }

// Join 绑定玩家的投递能力，重复绑定会替换旧的
//
// 玩家处于断线状态时先补发暂存的消息，返回 true。
func (c *Callbacks) Join(p *game.Player, s Sender) (resumed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !slices.Contains(c.order, p.ID) {
		c.order = append(c.order, p.ID)
	}
	c.senders[p.ID] = s

	missed, resumed := c.backlog[p.ID]
	delete(c.backlog, p.ID)
	for _, msg := range missed {
		s.SendMessage(msg)
	}
	return resumed
}

// Suspend 暂停投递，之后发给该玩家的消息暂存到重新绑定
func (c *Callbacks) Suspend(p *game.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.senders[p.ID]; !ok {
		return
	}
	delete(c.senders, p.ID)
	c.backlog[p.ID] = nil
}

// Leave 解除绑定
func (c *Callbacks) Leave(p *game.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.senders, p.ID)
	delete(c.backlog, p.ID)
	if i := slices.Index(c.order, p.ID); i >= 0 {
		c.order = slices.Delete(c.order, i, i+1)
	}
}

// Size 在线人数
func (c *Callbacks) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.senders)
}

// ToPlayer 发给单个玩家
func (c *Callbacks) ToPlayer(p *game.Player, msg *protocol.Message) {
	for _, s := range c.targets(msg, func(id string) bool { return id == p.ID }) {
		s.SendMessage(msg)
	}
}

// ToOthers 发给房间内除 p 以外的所有人
func (c *Callbacks) ToOthers(p *game.Player, msg *protocol.Message) {
	for _, s := range c.targets(msg, func(id string) bool { return id != p.ID }) {
		s.SendMessage(msg)
	}
}

// ToAll 发给房间内所有人
func (c *Callbacks) ToAll(msg *protocol.Message) {
	for _, s := range c.targets(msg, func(string) bool { return true }) {
		s.SendMessage(msg)
	}
}

// targets 按加入顺序取出在线接收者，断线的接收者把 msg 暂存
func (c *Callbacks) targets(msg *protocol.Message, match func(id string) bool) []Sender {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Sender, 0, len(c.order))
	for _, id := range c.order {
		if !match(id) {
			continue
		}
		if s, ok := c.senders[id]; ok {
			out = append(out, s)
			continue
		}
		if missed, ok := c.backlog[id]; ok {
			if len(missed) >= maxBacklog {
				missed = missed[1:]
			}
			c.backlog[id] = append(missed, msg)
		}
	}
	return out
}
