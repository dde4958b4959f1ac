package choice

import (
	"context"

	"github.com/palemoky/dealers-choice/internal/game"
)

// Provider 规则引擎使用的阻塞式询问接口，实现 game.Chooser
//
// 每次询问都新建一个处理器登记到 Registry，然后等待结算或 ctx 结束。
type Provider struct {
	reg *Registry
}

var _ game.Chooser = (*Provider)(nil)

// NewProvider 创建 Provider
func NewProvider(reg *Registry) *Provider {
	return &Provider{reg: reg}
}

// Registry 返回底层 Registry
func (p *Provider) Registry() *Registry { return p.reg }

func (p *Provider) TurnChoice(ctx context.Context, player *game.Player) (game.TurnChoiceResult, error) {
	h := newTurnChoice(player)
	p.reg.Issue(h)
	return h.Result().Wait(ctx)
}

func (p *Provider) BuyFromExchange(ctx context.Context, player *game.Player) (game.ExchangeOption, error) {
	h := newBuyFromExchange(player)
	p.reg.Issue(h)
	return h.Result().Wait(ctx)
}

func (p *Provider) PromptOpenLot(ctx context.Context, player *game.Player) (bool, error) {
	h := newOpenLot(player)
	p.reg.Issue(h)
	return h.Result().Wait(ctx)
}

func (p *Provider) PromptForBids(ctx context.Context, owner *game.Player) (game.BidRequest, error) {
	h := newPromptForBids(owner)
	p.reg.Issue(h)
	return h.Result().Wait(ctx)
}

func (p *Provider) HandleBidding(ctx context.Context, opening game.Offer) (game.Offer, error) {
	h := newBidding(opening)
	p.reg.Issue(h)
	return h.Result().Wait(ctx)
}

func (p *Provider) DecideFinalOffer(ctx context.Context, final game.Offer) (*game.Offer, error) {
	h := newDecideFinalOffer(final)
	p.reg.Issue(h)
	return h.Result().Wait(ctx)
}

func (p *Provider) PromptAcceptCounterOffer(ctx context.Context, counter game.Offer) (bool, error) {
	h := newAcceptCounterOffer(counter)
	p.reg.Issue(h)
	return h.Result().Wait(ctx)
}

func (p *Provider) ChooseOwnCar(ctx context.Context, player *game.Player) (*game.Car, error) {
	h := newChooseOwnCar(player)
	p.reg.Issue(h)
	return h.Result().Wait(ctx)
}

func (p *Provider) AllowSecondDcCard(ctx context.Context, player *game.Player) (*game.DcCard, error) {
	h := newSecondDcCard(player)
	p.reg.Issue(h)
	return h.Result().Wait(ctx)
}

func (p *Provider) Replenish(ctx context.Context, player *game.Player) (game.ReplenishOption, error) {
	h := newReplenish(player)
	p.reg.Issue(h)
	return h.Result().Wait(ctx)
}

func (p *Provider) RockPaperScissors(ctx context.Context, players []*game.Player) (*game.Player, error) {
	t := NewTournament(players)
	p.reg.Issue(t)
	return t.Result().Wait(ctx)
}
