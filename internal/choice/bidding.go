package choice

import (
	"time"

	"github.com/google/uuid"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
)

// bidding 竞价：每个有效出价重置计时器，超时后宣布结果，
// 展示一段时间后以最终报价结算
type bidding struct {
	id     string
	seller *game.Player
	car    *game.Car
	buyer  *game.Player
	amount int

	reg      *Registry
	timer    *time.Timer
	gen      uint64 // 每次重置计时器递增，过期回调据此作废
	finished bool
	result   *Result[game.Offer]
}

func newBidding(opening game.Offer) *bidding {
	return &bidding{
		id:     uuid.NewString(),
		seller: opening.Seller,
		car:    opening.Car,
		buyer:  opening.Buyer,
		amount: opening.Amount,
		result: NewResult[game.Offer](),
	}
}

func (b *bidding) ID() string                  { return b.id }
func (b *bidding) Kind() Kind                  { return KindBidding }
func (b *bidding) Result() *Result[game.Offer] { return b.result }

func (b *bidding) issue(r *Registry) {
	b.reg = r
	r.fabric.ToAll(codec.MustNewMessage(protocol.MsgBeginBidding, protocol.BeginBiddingPayload{
		HandlerID:  b.id,
		CarID:      b.car.ID,
		SellerID:   b.seller.ID,
		InitialBid: b.notice(),
	}))
	b.resetTimer()
}

func (b *bidding) submit(p *game.Player, answer any) {
	a, ok := answer.(*protocol.BidAnswer)
	if !ok || b.finished {
		return
	}
	if p == b.seller || a.Amount <= b.amount {
		return
	}

	b.buyer = p
	b.amount = a.Amount
	b.resetTimer()
	b.reg.fabric.ToAll(codec.MustNewMessage(protocol.MsgNewHighBidder, b.notice()))
}

func (b *bidding) resetTimer() {
	b.reg.stop(b.timer)
	b.gen++
	gen := b.gen
	b.timer = b.reg.after(b.reg.timings.BidTimeout, func() {
		if gen == b.gen {
			b.finish()
		}
	})
}

func (b *bidding) finish() {
	b.finished = true
	b.timer = nil
	b.reg.fabric.ToAll(codec.MustNewMessage(protocol.MsgBiddingFinished, b.notice()))

	offer := game.Offer{Buyer: b.buyer, Seller: b.seller, Car: b.car, Amount: b.amount}
	b.reg.after(b.reg.timings.BidResultsDelay, func() {
		b.reg.release(b.id)
		b.result.Resolve(offer)
	})
}

func (b *bidding) notice() protocol.BidNotice {
	n := protocol.BidNotice{Amount: b.amount}
	if b.buyer != nil {
		n.BidderID = b.buyer.ID
	}
	return n
}
