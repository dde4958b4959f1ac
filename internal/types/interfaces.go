package types

import (
	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
}

// ClientInterface 定义客户端接口
type ClientInterface interface {
	GetID() string
	GetName() string
	GetUserID() string
	SetUserID(id string)
	// GetGame 当前所在会话 ID 和在其中的玩家身份，未加入时为 "" 和 nil
	GetGame() (string, *game.Player)
	Attach(gameID string, p *game.Player)
	Detach()
	SendMessage(msg *protocol.Message)
	Close()
}
