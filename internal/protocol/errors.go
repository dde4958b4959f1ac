package protocol

// 错误码
const (
	ErrCodeUnknown        = 1000
	ErrCodeInvalidMsg     = 1001
	ErrCodeUnknownCommand = 1002 // 未识别的命令
	ErrCodeMaintenance    = 1003 // 服务器维护
	ErrCodeGameNotFound   = 2001
	ErrCodeGameFull       = 2002
	ErrCodeNotInGame      = 2003
	ErrCodeGameStarted    = 2004
	ErrCodeNotOwner       = 3001
	ErrCodeNotEnough      = 3002
	ErrCodePresetNotFound = 3003
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:        "未知错误",
	ErrCodeInvalidMsg:     "无效的消息格式",
	ErrCodeUnknownCommand: "无法识别的命令",
	ErrCodeMaintenance:    "服务器维护中",
	ErrCodeGameNotFound:   "游戏不存在",
	ErrCodeGameFull:       "游戏人数已满",
	ErrCodeNotInGame:      "您不在游戏中",
	ErrCodeGameStarted:    "游戏已开始",
	ErrCodeNotOwner:       "只有房主可以开始游戏",
	ErrCodeNotEnough:      "玩家人数不足",
	ErrCodePresetNotFound: "预设不存在",
}
