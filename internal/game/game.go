// Package game 定义规则引擎与会话之间的边界
//
// 会话只知道两件事：用预设和玩家创建一局游戏，以及推进一步。
// 引擎需要玩家做决定时通过 Chooser 询问，调用会阻塞直到有人回答、
// 计时器触发或 ctx 被取消。
package game

import (
	"context"
	"errors"
)

// ErrNotEnoughPlayers 玩家不足以开局
var ErrNotEnoughPlayers = errors.New("game: not enough players")

// Chooser 向玩家征询决定
type Chooser interface {
	TurnChoice(ctx context.Context, p *Player) (TurnChoiceResult, error)
	BuyFromExchange(ctx context.Context, p *Player) (ExchangeOption, error)
	PromptOpenLot(ctx context.Context, p *Player) (bool, error)
	PromptForBids(ctx context.Context, p *Player) (BidRequest, error)
	HandleBidding(ctx context.Context, opening Offer) (Offer, error)
	// DecideFinalOffer 返回 nil 表示卖家接受，否则为卖家的还价
	DecideFinalOffer(ctx context.Context, final Offer) (*Offer, error)
	PromptAcceptCounterOffer(ctx context.Context, counter Offer) (bool, error)
	ChooseOwnCar(ctx context.Context, p *Player) (*Car, error)
	// AllowSecondDcCard 返回 nil 表示放弃
	AllowSecondDcCard(ctx context.Context, p *Player) (*DcCard, error)
	Replenish(ctx context.Context, p *Player) (ReplenishOption, error)
	RockPaperScissors(ctx context.Context, players []*Player) (*Player, error)
}

// Game 一局进行中的游戏
type Game interface {
	// Step 推进一步，done 为 true 表示游戏结束
	Step(ctx context.Context) (done bool, err error)
}

// EngineFactory 创建游戏
type EngineFactory func(preset *Preset, players []*Player, chooser Chooser) (Game, error)
