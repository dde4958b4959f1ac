package protocol

import "encoding/json"

// --- 通用 ---

// ErrorPayload 错误消息
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// AckPayload 命令确认
type AckPayload struct {
	Cmd      MessageType `json:"cmd"`
	Result   ResultCode  `json:"result"`
	GameID   string      `json:"gameId,omitempty"`
	PlayerID string      `json:"playerId,omitempty"`
	Games    []GameInfo  `json:"games,omitempty"`
}

// GameInfo 游戏列表项
type GameInfo struct {
	ID         string `json:"id"`
	Phase      string `json:"phase"`
	Owner      string `json:"owner,omitempty"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
}

// PlayerInfo 对外可见的玩家信息（不含资金和手牌）
type PlayerInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	UserID string `json:"userId,omitempty"`
}

// --- 客户端 → 服务端 ---

// PingPayload 心跳
type PingPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"`
}

// PongPayload 心跳回复
type PongPayload struct {
	ClientTimestamp int64 `json:"clientTimestamp"`
	ServerTimestamp int64 `json:"serverTimestamp"`
}

// RegisterUserPayload 登记用户
type RegisterUserPayload struct {
	UserID string `json:"userId"`
}

// JoinGamePayload 加入游戏
type JoinGamePayload struct {
	ID string `json:"id"`
}

// StartGamePayload 开始游戏，PresetID 为空时使用默认预设
type StartGamePayload struct {
	PresetID string `json:"presetId,omitempty"`
}

// ChoicePayload 选择回答，Answer 内必须带 handlerId
type ChoicePayload struct {
	Answer json.RawMessage `json:"answer"`
}

// AnswerEnvelope 回答中用于关联请求的部分
type AnswerEnvelope struct {
	HandlerID string `json:"handlerId"`
}

// ChatPayload 聊天消息
type ChatPayload struct {
	PlayerID string `json:"playerId,omitempty"`
	Message  string `json:"message"`
}

// --- 大厅通知 ---

// PlayerJoinedPayload 玩家加入通知
type PlayerJoinedPayload struct {
	Player PlayerInfo `json:"player"`
}

// PlayerLeftPayload 玩家离开通知
type PlayerLeftPayload struct {
	PlayerID string `json:"playerId"`
}

// LobbyRosterPayload 大厅成员
type LobbyRosterPayload struct {
	GameID  string       `json:"gameId"`
	Owner   string       `json:"owner"`
	Players []PlayerInfo `json:"players"`
}

// GameStartedPayload 游戏开始
type GameStartedPayload struct {
	GameID   string       `json:"gameId"`
	PresetID string       `json:"presetId"`
	Players  []PlayerInfo `json:"players"`
}

// GameOverPayload 游戏结束
type GameOverPayload struct {
	GameID string `json:"gameId"`
	Error  string `json:"error,omitempty"`
}

// --- 选择请求 ---

// OfferInfo 报价
type OfferInfo struct {
	BuyerID  string `json:"buyerId"`
	SellerID string `json:"sellerId"`
	CarID    string `json:"carId"`
	Amount   int    `json:"amount"`
}

// PlayerPromptPayload 只针对单个玩家的选择请求
type PlayerPromptPayload struct {
	HandlerID string   `json:"handlerId"`
	PlayerID  string   `json:"playerId"`
	Options   []string `json:"options,omitempty"`
}

// TurnChoiceAnswer 回合选择
type TurnChoiceAnswer struct {
	Selection string `json:"selection"`
	CardID    string `json:"cardId,omitempty"`
}

// TurnChoiceNotice 回合选择通知
type TurnChoiceNotice struct {
	PlayerID  string `json:"playerId"`
	Selection string `json:"selection"`
	CardID    string `json:"cardId,omitempty"`
}

// SelectionAnswer 枚举选项回答
type SelectionAnswer struct {
	Selection string `json:"selection"`
}

// SelectionNotice 枚举选项通知
type SelectionNotice struct {
	PlayerID  string `json:"playerId"`
	Selection string `json:"selection"`
}

// OpenLotAnswer 是否开放竞拍
type OpenLotAnswer struct {
	OpenLot bool `json:"openLot"`
}

// OpenLotNotice 开放竞拍通知
type OpenLotNotice struct {
	PlayerID string `json:"playerId"`
	OpenLot  bool   `json:"openLot"`
}

// CarAnswer 选车回答
type CarAnswer struct {
	CarID string `json:"carId"`
}

// BeginBiddingPayload 竞价开始
type BeginBiddingPayload struct {
	HandlerID  string    `json:"handlerId"`
	CarID      string    `json:"carId"`
	SellerID   string    `json:"sellerId"`
	InitialBid BidNotice `json:"initialBid"`
}

// BidAnswer 出价
type BidAnswer struct {
	Amount int `json:"amount"`
}

// BidNotice 最高出价通知
type BidNotice struct {
	BidderID string `json:"bidderId"`
	Amount   int    `json:"amount"`
}

// FinalOfferPayload 卖家确认最终报价
type FinalOfferPayload struct {
	HandlerID string    `json:"handlerId"`
	Offer     OfferInfo `json:"offer"`
}

// FinalOfferAnswer 卖家回答，Accept 为 false 时必须带还价
type FinalOfferAnswer struct {
	Accept       bool `json:"accept"`
	CounterOffer int  `json:"counterOffer,omitempty"`
}

// AcceptAnswer 买家是否接受还价
type AcceptAnswer struct {
	Accept bool `json:"accept"`
}

// AcceptedOfferNotice 买家回答通知
type AcceptedOfferNotice struct {
	BuyerID  string `json:"buyerId"`
	Accepted bool   `json:"accepted"`
}

// SecondDcCardAnswer 第二张经销商卡
type SecondDcCardAnswer struct {
	Skip   bool   `json:"skip,omitempty"`
	CardID string `json:"cardId,omitempty"`
}

// RpsPromptPayload 猜拳请求
type RpsPromptPayload struct {
	HandlerID string   `json:"handlerId"`
	Players   []string `json:"players"`
}

// MoveAnswer 猜拳出招
type MoveAnswer struct {
	Move string `json:"move"`
}

// RpsCountdownPayload 猜拳倒计时
type RpsCountdownPayload struct {
	HandlerID string `json:"handlerId"`
}

// RpsMove 某玩家本轮出招
type RpsMove struct {
	PlayerID string `json:"playerId"`
	Move     string `json:"move"`
}

// RpsConclusionPayload 猜拳本轮结果
type RpsConclusionPayload struct {
	HandlerID  string    `json:"handlerId"`
	Answers    []RpsMove `json:"answers"`
	Survivors  []string  `json:"survivors"`
	Conclusion string    `json:"conclusion"`
	WinnerID   string    `json:"winnerId,omitempty"`
}
