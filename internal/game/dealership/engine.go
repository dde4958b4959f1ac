// Package dealership 内置的规则引擎
//
// 先猜拳决定首位庄家，之后每一步是一名庄家的完整回合，
// 所有玩家各当庄 Preset.Turns 次后结束。
package dealership

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/logger"
)

// Engine 规则引擎
type Engine struct {
	preset  *game.Preset
	players []*game.Player
	chooser game.Chooser
	log     zerolog.Logger

	exchange []*game.Car    // 交易所待售车辆
	dcDeck   []*game.DcCard // 经销商卡牌堆

	started bool
	dealer  int
	turns   int
}

var _ game.Game = (*Engine)(nil)

// New 实现 game.EngineFactory
func New(preset *game.Preset, players []*game.Player, chooser game.Chooser) (game.Game, error) {
	if err := preset.Validate(); err != nil {
		return nil, err
	}
	if len(players) < 2 {
		return nil, game.ErrNotEnoughPlayers
	}

	e := &Engine{
		preset:  preset,
		players: players,
		chooser: chooser,
		log:     logger.With("dealership"),
	}
	for i := range preset.Cars {
		e.exchange = append(e.exchange, &preset.Cars[i])
	}
	for i := range preset.DcCards {
		e.dcDeck = append(e.dcDeck, &preset.DcCards[i])
	}

	for _, p := range players {
		p.AddMoney(preset.StartingMoney)
		for range preset.StartingCars {
			if c := e.drawCar(); c != nil {
				p.AddCar(c)
			}
		}
		for range preset.StartingCards {
			if c := e.drawDcCard(); c != nil {
				p.AddDcCard(c)
			}
		}
	}
	return e, nil
}

// Dealer 当前庄家
func (e *Engine) Dealer() *game.Player { return e.players[e.dealer] }

// Turns 已完成的回合数
func (e *Engine) Turns() int { return e.turns }

// Step 推进一步
func (e *Engine) Step(ctx context.Context) (bool, error) {
	if !e.started {
		first, err := e.chooser.RockPaperScissors(ctx, e.players)
		if err != nil {
			return false, err
		}
		idx := game.IndexOf(e.players, first)
		if idx < 0 {
			return false, fmt.Errorf("dealership: rps winner %s not in game", first.ID)
		}
		e.dealer = idx
		e.started = true
		e.log.Info().Str("dealer", first.Name).Msg("🎲 首位庄家已确定")
		return false, nil
	}

	if err := e.playTurn(ctx, e.Dealer()); err != nil {
		return false, err
	}

	e.turns++
	e.dealer = (e.dealer + 1) % len(e.players)
	return e.turns >= e.preset.Turns*len(e.players), nil
}

func (e *Engine) playTurn(ctx context.Context, p *game.Player) error {
	choice, err := e.chooser.TurnChoice(ctx, p)
	if err != nil {
		return err
	}

	switch choice.Choice {
	case game.TurnDcCard:
		if err := e.playDcCard(ctx, p, choice.Card); err != nil {
			return err
		}
	case game.TurnBuyFromExchange:
		if err := e.buyFromExchange(ctx, p); err != nil {
			return err
		}
	case game.TurnSellToBank:
		if err := e.sellToBank(ctx, p); err != nil {
			return err
		}
	}

	if len(p.Cars()) > 0 {
		open, err := e.chooser.PromptOpenLot(ctx, p)
		if err != nil {
			return err
		}
		if open {
			if err := e.runLot(ctx, p); err != nil {
				return err
			}
		}
	}

	opt, err := e.chooser.Replenish(ctx, p)
	if err != nil {
		return err
	}
	switch opt {
	case game.ReplenishCars:
		if c := e.drawCar(); c != nil {
			p.AddCar(c)
		}
	case game.ReplenishDcCards:
		if c := e.drawDcCard(); c != nil {
			p.AddDcCard(c)
		}
	}
	return nil
}

func (e *Engine) playDcCard(ctx context.Context, p *game.Player, card *game.DcCard) error {
	e.applyDcCard(p, card)

	second, err := e.chooser.AllowSecondDcCard(ctx, p)
	if err != nil {
		return err
	}
	if second != nil {
		e.applyDcCard(p, second)
	}
	return nil
}

func (e *Engine) applyDcCard(p *game.Player, card *game.DcCard) {
	if _, ok := p.RemoveDcCard(card.ID); !ok {
		return
	}
	p.AddMoney(card.Bonus)
}

func (e *Engine) buyFromExchange(ctx context.Context, p *game.Player) error {
	opt, err := e.chooser.BuyFromExchange(ctx, p)
	if err != nil {
		return err
	}
	if len(e.exchange) == 0 {
		return nil
	}

	car := e.exchange[0]
	price := car.ListPrice
	if opt == game.ExchangeFourThou {
		price = game.FourThou
	}
	if p.Money() < price {
		return nil
	}
	e.exchange = e.exchange[1:]
	p.AddMoney(-price)
	p.AddCar(car)
	return nil
}

func (e *Engine) sellToBank(ctx context.Context, p *game.Player) error {
	if len(p.Cars()) == 0 {
		return nil
	}
	car, err := e.chooser.ChooseOwnCar(ctx, p)
	if err != nil {
		return err
	}
	if _, ok := p.RemoveCar(car.ID); ok {
		p.AddMoney(car.ListPrice)
		e.exchange = append(e.exchange, car)
	}
	return nil
}

// runLot 开放竞拍：有人挑车，竞价，卖家确认或还价，买家决定
func (e *Engine) runLot(ctx context.Context, owner *game.Player) error {
	req, err := e.chooser.PromptForBids(ctx, owner)
	if err != nil {
		return err
	}

	offer, err := e.chooser.HandleBidding(ctx, game.Offer{
		Buyer:  req.Bidder,
		Seller: owner,
		Car:    req.Car,
		Amount: req.Car.ListPrice / 2,
	})
	if err != nil {
		return err
	}

	counter, err := e.chooser.DecideFinalOffer(ctx, offer)
	if err != nil {
		return err
	}
	if counter == nil {
		e.settle(offer)
		return nil
	}

	accepted, err := e.chooser.PromptAcceptCounterOffer(ctx, *counter)
	if err != nil {
		return err
	}
	if accepted {
		e.settle(*counter)
	}
	return nil
}

// settle 成交：买家资金不足时取消
func (e *Engine) settle(o game.Offer) {
	if o.Buyer == nil || o.Buyer.Money() < o.Amount {
		return
	}
	if _, ok := o.Seller.RemoveCar(o.Car.ID); !ok {
		return
	}
	o.Buyer.AddMoney(-o.Amount)
	o.Seller.AddMoney(o.Amount)
	o.Buyer.AddCar(o.Car)
	e.log.Info().Str("car", o.Car.ID).Str("buyer", o.Buyer.Name).Int("amount", o.Amount).Msg("🚗 成交")
}

func (e *Engine) drawCar() *game.Car {
	if len(e.exchange) == 0 {
		return nil
	}
	c := e.exchange[0]
	e.exchange = e.exchange[1:]
	return c
}

func (e *Engine) drawDcCard() *game.DcCard {
	if len(e.dcDeck) == 0 {
		return nil
	}
	c := e.dcDeck[0]
	e.dcDeck = e.dcDeck[1:]
	return c
}
