package session

import (
	"github.com/palemoky/dealers-choice/internal/choice"
	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
)

// phase 阶段行为，perform 返回 false 表示交回 Manager 按通用命令处理
//
// perform 调用时 Manager.mu 已被持有。
type phase interface {
	name() Phase
	perform(m *Manager, p *game.Player, msg *protocol.Message) bool
}

// pending 大厅阶段
type pending struct{}

func (pending) name() Phase { return PhasePending }

func (pending) perform(m *Manager, p *game.Player, msg *protocol.Message) bool {
	if msg.Type != protocol.MsgStartGame {
		return false
	}
	m.start(p, msg)
	return true
}

// inProgress 对局阶段
type inProgress struct {
	registry *choice.Registry
	engine   game.Game
	presetID string
	done     chan struct{}
}

func (*inProgress) name() Phase { return PhaseInProgress }

func (ip *inProgress) perform(m *Manager, p *game.Player, msg *protocol.Message) bool {
	switch msg.Type {
	case protocol.MsgChoice:
		payload, err := codec.ParsePayload[protocol.ChoicePayload](msg)
		if err != nil || len(payload.Answer) == 0 {
			m.callbacks.ToPlayer(p, codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			return true
		}
		ip.registry.RouteAnswer(p, payload.Answer)
		return true
	case protocol.MsgStartGame:
		m.callbacks.ToPlayer(p, codec.NewErrorMessage(protocol.ErrCodeGameStarted))
		return true
	}
	return false
}
