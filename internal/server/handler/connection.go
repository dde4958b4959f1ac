package handler

import (
	"time"

	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
	"github.com/palemoky/dealers-choice/internal/types"
)

// handlePing 处理心跳消息
func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.PingPayload](msg)
	if err != nil {
		return
	}

	// 立即回复 pong
	client.SendMessage(codec.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: payload.ClientTimestamp,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// handleRegisterUser 登记用户身份，之后加入的会话用它识别同一用户
func (h *Handler) handleRegisterUser(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.RegisterUserPayload](msg)
	if err != nil || payload.UserID == "" {
		client.SendMessage(codec.NewAck(protocol.MsgRegisterUser, protocol.ResultError))
		return
	}

	client.SetUserID(payload.UserID)
	client.SendMessage(codec.NewAck(protocol.MsgRegisterUser, protocol.ResultOk))
	h.log.Debug().Str("client", client.GetID()).Str("user", payload.UserID).Msg("用户已登记")
}
