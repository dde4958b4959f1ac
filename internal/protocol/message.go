package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	MsgPing MessageType = "ping" // 心跳 ping

	// 大厅操作
	MsgRegisterUser MessageType = "register_user" // 登记用户身份
	MsgCreateGame   MessageType = "create_game"   // 创建游戏
	MsgJoinGame     MessageType = "join_game"     // 加入游戏
	MsgListGames    MessageType = "list_games"    // 游戏列表

	// 会话操作
	MsgChat      MessageType = "chat"       // 聊天消息（双向）
	MsgLeave     MessageType = "leave"      // 离开游戏
	MsgStartGame MessageType = "start_game" // 房主开始游戏
	MsgChoice    MessageType = "choice"     // 回答选择请求
)

// 服务端 → 客户端 消息类型
const (
	MsgPong  MessageType = "pong"  // 心跳 pong
	MsgAck   MessageType = "ack"   // 命令确认
	MsgError MessageType = "error" // 错误消息

	// 大厅通知
	MsgPlayerJoined MessageType = "player_joined" // 其他玩家加入
	MsgPlayerLeft   MessageType = "player_left"   // 玩家离开
	MsgLobbyRoster  MessageType = "lobby_roster"  // 大厅成员更新
	MsgGameStarted  MessageType = "game_started"  // 游戏开始
	MsgGameOver     MessageType = "game_over"     // 游戏结束

	// 选择请求与通知
	MsgGetTurnChoice            MessageType = "get_turn_choice"
	MsgNotifyTurnChoice         MessageType = "notify_turn_choice"
	MsgBuyFromExchangeOption    MessageType = "buy_from_exchange_option"
	MsgBuyFromExchangeResult    MessageType = "buy_from_exchange_result"
	MsgPromptOpenLot            MessageType = "prompt_open_lot"
	MsgNotifyOpenLot            MessageType = "notify_open_lot"
	MsgPromptForBids            MessageType = "prompt_for_bids"
	MsgBeginBidding             MessageType = "begin_bidding"
	MsgNewHighBidder            MessageType = "new_high_bidder"
	MsgBiddingFinished          MessageType = "bidding_finished"
	MsgDecideFinalOffer         MessageType = "decide_final_offer"
	MsgPromptAcceptCounterOffer MessageType = "prompt_accept_counter_offer"
	MsgNotifyAcceptedOffer      MessageType = "notify_accepted_offer"
	MsgChooseOwnCar             MessageType = "choose_own_car"
	MsgAllowSecondDcCard        MessageType = "allow_second_dc_card"
	MsgReplenishOption          MessageType = "replenish_option"
	MsgRockPaperScissors        MessageType = "rock_paper_scissors"
	MsgRpsCountdown             MessageType = "rps_countdown"
	MsgRpsConclusion            MessageType = "rps_conclusion"
)

// ResultCode 命令确认结果码
type ResultCode string

const (
	ResultOk               ResultCode = "ok"
	ResultNotFound         ResultCode = "not_found"
	ResultFull             ResultCode = "full"
	ResultError            ResultCode = "error"
	ResultNotEnoughPlayers ResultCode = "not_enough_players"
	ResultStartError       ResultCode = "start_error"
)
