package choice

import (
	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
)

// Fabric 处理器对外发消息的唯一通道，绑定在会话房间上
type Fabric interface {
	ToPlayer(p *game.Player, msg *protocol.Message)
	ToOthers(p *game.Player, msg *protocol.Message)
	ToAll(msg *protocol.Message)
}
