package handler

import (
	"github.com/rs/zerolog"

	"github.com/palemoky/dealers-choice/internal/lobby"
	"github.com/palemoky/dealers-choice/internal/logger"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
	"github.com/palemoky/dealers-choice/internal/types"
)

// HandlerDeps 处理器依赖
type HandlerDeps struct {
	Server types.ServerInterface
	Lobby  *lobby.Directory
}

// Handler 消息分发器
//
// 已加入会话的连接，除 ping 外的所有命令都交给会话处理；
// 未加入会话的连接只能使用大厅命令。
type Handler struct {
	server   types.ServerInterface
	lobby    *lobby.Directory
	handlers map[protocol.MessageType]handlerFunc
	log      zerolog.Logger
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server: deps.Server,
		lobby:  deps.Lobby,
		log:    logger.With("handler"),
	}
	h.initHandlers()
	return h
}

// initHandlers 初始化大厅命令映射
func (h *Handler) initHandlers() {
	notInGame := func(c types.ClientInterface, msg *protocol.Message) { h.handleNotInGame(c, msg) }

	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing:         h.handlePing,
		protocol.MsgRegisterUser: h.handleRegisterUser,

		// 大厅操作
		protocol.MsgCreateGame: func(c types.ClientInterface, _ *protocol.Message) { h.handleCreateGame(c) },
		protocol.MsgJoinGame:   h.handleJoinGame,
		protocol.MsgListGames:  func(c types.ClientInterface, _ *protocol.Message) { h.handleListGames(c) },

		// 只在会话内有效的命令
		protocol.MsgChat:      notInGame,
		protocol.MsgLeave:     notInGame,
		protocol.MsgStartGame: notInGame,
		protocol.MsgChoice:    notInGame,
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if msg.Type != protocol.MsgPing {
		if gameID, p := client.GetGame(); p != nil {
			if m, err := h.lobby.Get(gameID); err == nil {
				m.PerformCommand(p, msg)
				return
			}
			// 会话已被回收
			client.Detach()
		}
	}

	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	h.log.Warn().Str("type", string(msg.Type)).Str("client", client.GetID()).Int("payload", len(msg.Payload)).Msg("⚠️ 未知消息类型")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeUnknownCommand))
}

// Disconnect 连接断开时通知所在会话，大厅阶段直接离开，对局中保留位置等待重连
func (h *Handler) Disconnect(client types.ClientInterface) {
	gameID, p := client.GetGame()
	if p == nil {
		return
	}
	client.Detach()
	if m, err := h.lobby.Get(gameID); err == nil {
		h.lobby.Disconnect(m, p)
	}
}
