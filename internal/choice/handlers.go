package choice

import (
	"slices"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
)

func playerPrompt(t protocol.MessageType, id string, p *game.Player, options ...string) *protocol.Message {
	return codec.MustNewMessage(t, protocol.PlayerPromptPayload{
		HandlerID: id,
		PlayerID:  p.ID,
		Options:   options,
	})
}

func offerInfo(o game.Offer) protocol.OfferInfo {
	info := protocol.OfferInfo{Amount: o.Amount}
	if o.Buyer != nil {
		info.BuyerID = o.Buyer.ID
	}
	if o.Seller != nil {
		info.SellerID = o.Seller.ID
	}
	if o.Car != nil {
		info.CarID = o.Car.ID
	}
	return info
}

// newTurnChoice 当庄玩家选择本回合行动；打出经销商卡时卡必须在手里
func newTurnChoice(player *game.Player) *single[protocol.TurnChoiceAnswer, game.TurnChoiceResult] {
	s := newSingle[protocol.TurnChoiceAnswer, game.TurnChoiceResult](KindTurnChoice)
	s.prompt = playerPrompt(protocol.MsgGetTurnChoice, s.id, player)
	s.accept = func(p *game.Player, a *protocol.TurnChoiceAnswer) (game.TurnChoiceResult, bool) {
		choice := game.TurnChoice(a.Selection)
		if p != player || !choice.Valid() {
			return game.TurnChoiceResult{}, false
		}
		res := game.TurnChoiceResult{Choice: choice}
		if choice == game.TurnDcCard {
			card, ok := player.DcCard(a.CardID)
			if !ok {
				return game.TurnChoiceResult{}, false
			}
			res.Card = card
		}
		return res, true
	}
	s.notify = func(f Fabric, p *game.Player, a *protocol.TurnChoiceAnswer) {
		f.ToOthers(p, codec.MustNewMessage(protocol.MsgNotifyTurnChoice, protocol.TurnChoiceNotice{
			PlayerID:  p.ID,
			Selection: a.Selection,
			CardID:    a.CardID,
		}))
	}
	return s
}

// newBuyFromExchange 从交易所购车：四千固定价或标价
func newBuyFromExchange(player *game.Player) *single[protocol.SelectionAnswer, game.ExchangeOption] {
	s := newSingle[protocol.SelectionAnswer, game.ExchangeOption](KindBuyFromExchange)
	s.prompt = playerPrompt(protocol.MsgBuyFromExchangeOption, s.id, player, game.ExchangeOptions...)
	s.accept = func(p *game.Player, a *protocol.SelectionAnswer) (game.ExchangeOption, bool) {
		if p != player || !slices.Contains(game.ExchangeOptions, a.Selection) {
			return "", false
		}
		return game.ExchangeOption(a.Selection), true
	}
	s.notify = func(f Fabric, p *game.Player, a *protocol.SelectionAnswer) {
		f.ToOthers(p, codec.MustNewMessage(protocol.MsgBuyFromExchangeResult, protocol.SelectionNotice{
			PlayerID:  p.ID,
			Selection: a.Selection,
		}))
	}
	return s
}

// newReplenish 回合结束时补充车辆或经销商卡
func newReplenish(player *game.Player) *single[protocol.SelectionAnswer, game.ReplenishOption] {
	s := newSingle[protocol.SelectionAnswer, game.ReplenishOption](KindReplenish)
	s.prompt = playerPrompt(protocol.MsgReplenishOption, s.id, player, game.ReplenishOptions...)
	s.accept = func(p *game.Player, a *protocol.SelectionAnswer) (game.ReplenishOption, bool) {
		if p != player || !slices.Contains(game.ReplenishOptions, a.Selection) {
			return "", false
		}
		return game.ReplenishOption(a.Selection), true
	}
	return s
}

// newOpenLot 当庄玩家是否开放竞拍
func newOpenLot(player *game.Player) *single[protocol.OpenLotAnswer, bool] {
	s := newSingle[protocol.OpenLotAnswer, bool](KindOpenLot)
	s.prompt = playerPrompt(protocol.MsgPromptOpenLot, s.id, player)
	s.accept = func(p *game.Player, a *protocol.OpenLotAnswer) (bool, bool) {
		return a.OpenLot, p == player
	}
	s.notify = func(f Fabric, p *game.Player, a *protocol.OpenLotAnswer) {
		f.ToOthers(p, codec.MustNewMessage(protocol.MsgNotifyOpenLot, protocol.OpenLotNotice{
			PlayerID: p.ID,
			OpenLot:  a.OpenLot,
		}))
	}
	return s
}

// newPromptForBids 其他玩家挑一辆庄家的车发起竞价，先到先得
func newPromptForBids(owner *game.Player) *single[protocol.CarAnswer, game.BidRequest] {
	s := newSingle[protocol.CarAnswer, game.BidRequest](KindPromptForBids)
	s.prompt = playerPrompt(protocol.MsgPromptForBids, s.id, owner)
	s.accept = func(p *game.Player, a *protocol.CarAnswer) (game.BidRequest, bool) {
		if p == owner {
			return game.BidRequest{}, false
		}
		car, ok := owner.Car(a.CarID)
		if !ok {
			return game.BidRequest{}, false
		}
		return game.BidRequest{Car: car, Bidder: p}, true
	}
	return s
}

// newDecideFinalOffer 卖家接受最终出价（结果为 nil）或还价
func newDecideFinalOffer(final game.Offer) *single[protocol.FinalOfferAnswer, *game.Offer] {
	s := newSingle[protocol.FinalOfferAnswer, *game.Offer](KindDecideFinalOffer)
	s.prompt = codec.MustNewMessage(protocol.MsgDecideFinalOffer, protocol.FinalOfferPayload{
		HandlerID: s.id,
		Offer:     offerInfo(final),
	})
	s.accept = func(p *game.Player, a *protocol.FinalOfferAnswer) (*game.Offer, bool) {
		if p != final.Seller {
			return nil, false
		}
		if a.Accept {
			return nil, true
		}
		if a.CounterOffer <= 0 {
			return nil, false
		}
		counter := final
		counter.Amount = a.CounterOffer
		return &counter, true
	}
	return s
}

// newAcceptCounterOffer 买家是否接受还价，请求发给卖家以外的所有人
func newAcceptCounterOffer(counter game.Offer) *single[protocol.AcceptAnswer, bool] {
	s := newSingle[protocol.AcceptAnswer, bool](KindAcceptCounterOffer)
	s.audience = toOthers
	s.target = counter.Seller
	s.prompt = codec.MustNewMessage(protocol.MsgPromptAcceptCounterOffer, protocol.FinalOfferPayload{
		HandlerID: s.id,
		Offer:     offerInfo(counter),
	})
	s.accept = func(p *game.Player, a *protocol.AcceptAnswer) (bool, bool) {
		return a.Accept, p == counter.Buyer
	}
	s.notify = func(f Fabric, p *game.Player, a *protocol.AcceptAnswer) {
		f.ToOthers(p, codec.MustNewMessage(protocol.MsgNotifyAcceptedOffer, protocol.AcceptedOfferNotice{
			BuyerID:  p.ID,
			Accepted: a.Accept,
		}))
	}
	return s
}

// newChooseOwnCar 玩家选一辆自己的车
func newChooseOwnCar(player *game.Player) *single[protocol.CarAnswer, *game.Car] {
	s := newSingle[protocol.CarAnswer, *game.Car](KindChooseOwnCar)
	s.prompt = playerPrompt(protocol.MsgChooseOwnCar, s.id, player)
	s.accept = func(p *game.Player, a *protocol.CarAnswer) (*game.Car, bool) {
		if p != player {
			return nil, false
		}
		return player.Car(a.CarID)
	}
	return s
}

// newSecondDcCard 是否再打一张经销商卡，只发给该玩家
func newSecondDcCard(player *game.Player) *single[protocol.SecondDcCardAnswer, *game.DcCard] {
	s := newSingle[protocol.SecondDcCardAnswer, *game.DcCard](KindSecondDcCard)
	s.audience = toPlayer
	s.target = player
	s.prompt = playerPrompt(protocol.MsgAllowSecondDcCard, s.id, player)
	s.accept = func(p *game.Player, a *protocol.SecondDcCardAnswer) (*game.DcCard, bool) {
		if p != player {
			return nil, false
		}
		if a.Skip {
			return nil, true
		}
		return player.DcCard(a.CardID)
	}
	return s
}
