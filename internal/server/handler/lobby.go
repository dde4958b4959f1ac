package handler

import (
	"errors"

	"github.com/palemoky/dealers-choice/internal/apperrors"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
	"github.com/palemoky/dealers-choice/internal/types"
)

// handleCreateGame 创建会话并以房主身份加入
func (h *Handler) handleCreateGame(client types.ClientInterface) {
	// 维护模式检查
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewAck(protocol.MsgCreateGame, protocol.ResultError))
		return
	}

	m := h.lobby.Create()
	_, p, err := h.lobby.Join(m.ID(), client.GetUserID(), client.GetName(), client)
	if err != nil {
		h.lobby.Remove(m.ID())
		h.log.Error().Err(err).Msg("创建会话失败")
		client.SendMessage(codec.NewAck(protocol.MsgCreateGame, protocol.ResultError))
		return
	}
	client.Attach(m.ID(), p)

	client.SendMessage(codec.MustNewMessage(protocol.MsgAck, protocol.AckPayload{
		Cmd:      protocol.MsgCreateGame,
		Result:   protocol.ResultOk,
		GameID:   m.ID(),
		PlayerID: p.ID,
	}))
}

// handleJoinGame 加入会话
func (h *Handler) handleJoinGame(client types.ClientInterface, msg *protocol.Message) {
	if h.server.IsMaintenanceMode() {
		client.SendMessage(codec.NewAck(protocol.MsgJoinGame, protocol.ResultError))
		return
	}

	payload, err := codec.ParsePayload[protocol.JoinGamePayload](msg)
	if err != nil || payload.ID == "" {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	m, p, err := h.lobby.Join(payload.ID, client.GetUserID(), client.GetName(), client)
	if err != nil {
		client.SendMessage(codec.NewAck(protocol.MsgJoinGame, resultOf(err)))
		return
	}
	client.Attach(m.ID(), p)

	client.SendMessage(codec.MustNewMessage(protocol.MsgAck, protocol.AckPayload{
		Cmd:      protocol.MsgJoinGame,
		Result:   protocol.ResultOk,
		GameID:   m.ID(),
		PlayerID: p.ID,
	}))
}

// handleListGames 会话列表
func (h *Handler) handleListGames(client types.ClientInterface) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgAck, protocol.AckPayload{
		Cmd:    protocol.MsgListGames,
		Result: protocol.ResultOk,
		Games:  h.lobby.List(),
	}))
}

// handleNotInGame 会话命令来自未加入会话的连接
func (h *Handler) handleNotInGame(client types.ClientInterface, msg *protocol.Message) {
	client.SendMessage(codec.NewAck(msg.Type, apperrors.ErrNotInGame.Result))
}

// resultOf 错误对应的确认结果码
func resultOf(err error) protocol.ResultCode {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		return gameErr.Result
	}
	return protocol.ResultError
}
