package choice

import (
	"encoding/json"
	"fmt"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
)

// Kind 选择请求的种类
type Kind int

const (
	KindTurnChoice Kind = iota
	KindBuyFromExchange
	KindOpenLot
	KindPromptForBids
	KindBidding
	KindDecideFinalOffer
	KindAcceptCounterOffer
	KindChooseOwnCar
	KindSecondDcCard
	KindReplenish
	KindRockPaperScissors
)

var kindNames = [...]string{
	KindTurnChoice:         "turn_choice",
	KindBuyFromExchange:    "buy_from_exchange",
	KindOpenLot:            "open_lot",
	KindPromptForBids:      "prompt_for_bids",
	KindBidding:            "bidding",
	KindDecideFinalOffer:   "decide_final_offer",
	KindAcceptCounterOffer: "accept_counter_offer",
	KindChooseOwnCar:       "choose_own_car",
	KindSecondDcCard:       "second_dc_card",
	KindReplenish:          "replenish",
	KindRockPaperScissors:  "rock_paper_scissors",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Handler 一个待回答的选择请求
//
// 接口方法未导出，实现只能来自本包。issue 和 submit 都在
// Registry 的锁内调用。
type Handler interface {
	ID() string
	Kind() Kind
	issue(r *Registry)
	submit(p *game.Player, answer any)
}

// decodeAnswer 按种类解析回答
func decodeAnswer(k Kind, raw json.RawMessage) (any, error) {
	switch k {
	case KindTurnChoice:
		return codec.ParseRaw[protocol.TurnChoiceAnswer](raw)
	case KindBuyFromExchange, KindReplenish:
		return codec.ParseRaw[protocol.SelectionAnswer](raw)
	case KindOpenLot:
		return codec.ParseRaw[protocol.OpenLotAnswer](raw)
	case KindPromptForBids, KindChooseOwnCar:
		return codec.ParseRaw[protocol.CarAnswer](raw)
	case KindBidding:
		return codec.ParseRaw[protocol.BidAnswer](raw)
	case KindDecideFinalOffer:
		return codec.ParseRaw[protocol.FinalOfferAnswer](raw)
	case KindAcceptCounterOffer:
		return codec.ParseRaw[protocol.AcceptAnswer](raw)
	case KindSecondDcCard:
		return codec.ParseRaw[protocol.SecondDcCardAnswer](raw)
	case KindRockPaperScissors:
		return codec.ParseRaw[protocol.MoveAnswer](raw)
	}
	return nil, fmt.Errorf("choice: no decoder for %s", k)
}
