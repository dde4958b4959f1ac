package apperrors

import (
	"github.com/palemoky/dealers-choice/internal/protocol"
)

// GameError 游戏错误（大厅和会话共享），Result 为命令确认中使用的结果码
type GameError struct {
	Code    int
	Result  protocol.ResultCode
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrGameNotFound     = &GameError{Code: protocol.ErrCodeGameNotFound, Result: protocol.ResultNotFound, Message: "游戏不存在"}
	ErrGameFull         = &GameError{Code: protocol.ErrCodeGameFull, Result: protocol.ResultFull, Message: "游戏人数已满"}
	ErrGameStarted      = &GameError{Code: protocol.ErrCodeGameStarted, Result: protocol.ResultFull, Message: "游戏已开始"}
	ErrNotInGame        = &GameError{Code: protocol.ErrCodeNotInGame, Result: protocol.ResultError, Message: "您不在游戏中"}
	ErrNotOwner         = &GameError{Code: protocol.ErrCodeNotOwner, Result: protocol.ResultStartError, Message: "只有房主可以开始游戏"}
	ErrNotEnoughPlayers = &GameError{Code: protocol.ErrCodeNotEnough, Result: protocol.ResultNotEnoughPlayers, Message: "玩家人数不足"}
	ErrPresetNotFound   = &GameError{Code: protocol.ErrCodePresetNotFound, Result: protocol.ResultStartError, Message: "预设不存在"}
	ErrUnknownCommand   = &GameError{Code: protocol.ErrCodeUnknownCommand, Result: protocol.ResultError, Message: "无法识别的命令"}
)
