package game

// Offer 报价，竞价和议价处理器的结果
type Offer struct {
	Buyer  *Player
	Seller *Player
	Car    *Car
	Amount int
}

// BidRequest 有人请求对某辆车竞价
type BidRequest struct {
	Car    *Car
	Bidder *Player
}

// TurnChoice 回合选择
type TurnChoice string

const (
	TurnDcCard          TurnChoice = "dc_card"
	TurnBuyFromExchange TurnChoice = "buy_from_exchange"
	TurnSellToBank      TurnChoice = "sell_to_bank"
	TurnPass            TurnChoice = "pass"
)

// Valid 是否为合法的回合选择
func (c TurnChoice) Valid() bool {
	switch c {
	case TurnDcCard, TurnBuyFromExchange, TurnSellToBank, TurnPass:
		return true
	}
	return false
}

// TurnChoiceResult 回合选择结果，选择打出经销商卡时 Card 非空
type TurnChoiceResult struct {
	Choice TurnChoice
	Card   *DcCard
}

// ExchangeOption 从交易所购车的两种价格
type ExchangeOption string

const (
	ExchangeFourThou  ExchangeOption = "four_thou"
	ExchangeListPrice ExchangeOption = "list_price"
)

// ExchangeOptions 合法选项
var ExchangeOptions = []string{string(ExchangeFourThou), string(ExchangeListPrice)}

// FourThou 固定收购价
const FourThou = 4000

// ReplenishOption 回合结束时的补充选项
type ReplenishOption string

const (
	ReplenishCars    ReplenishOption = "cars"
	ReplenishDcCards ReplenishOption = "dc_cards"
)

// ReplenishOptions 合法选项
var ReplenishOptions = []string{string(ReplenishCars), string(ReplenishDcCards)}

// Move 猜拳出招
type Move string

const (
	Rock     Move = "rock"
	Paper    Move = "paper"
	Scissors Move = "scissors"
)

// ParseMove 解析出招
func ParseMove(s string) (Move, bool) {
	m := Move(s)
	switch m {
	case Rock, Paper, Scissors:
		return m, true
	}
	return "", false
}

// Weakness 返回能打败 m 的招式
func (m Move) Weakness() Move {
	switch m {
	case Rock:
		return Paper
	case Paper:
		return Scissors
	case Scissors:
		return Rock
	}
	return ""
}

// Beats m 是否打败 other
func (m Move) Beats(other Move) bool {
	return other.Weakness() == m
}
