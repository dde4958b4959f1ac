package choice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
)

func openingOffer(players []*game.Player) game.Offer {
	return game.Offer{
		Seller: players[0],
		Buyer:  players[1],
		Car:    &game.Car{ID: "c1", ListPrice: 6000},
		Amount: 1000,
	}
}

func TestBidding_HighestBidWins(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	players := newPlayers("seller", "b", "c")
	h := newBidding(openingOffer(players))
	reg.Issue(h)
	require.Equal(t, 1, rec.Count(protocol.MsgBeginBidding))

	reg.RouteAnswer(players[2], answer(t, h.ID(), map[string]any{"amount": 1500}))
	reg.RouteAnswer(players[1], answer(t, h.ID(), map[string]any{"amount": 2000}))
	reg.RouteAnswer(players[2], answer(t, h.ID(), map[string]any{"amount": 2600}))
	assert.Equal(t, 3, rec.Count(protocol.MsgNewHighBidder))

	offer, err := h.Result().Wait(t.Context())
	require.NoError(t, err)
	assert.Same(t, players[2], offer.Buyer)
	assert.Same(t, players[0], offer.Seller)
	assert.Equal(t, 2600, offer.Amount)
	assert.Equal(t, "c1", offer.Car.ID)

	assert.Equal(t, 1, rec.Count(protocol.MsgBiddingFinished))
	assert.Equal(t, 0, reg.Pending())
}

func TestBidding_InvalidBidsChangeNothing(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	players := newPlayers("seller", "b", "c")
	h := newBidding(openingOffer(players))
	reg.Issue(h)

	reg.mu.Lock()
	gen := h.gen
	reg.mu.Unlock()

	// 卖家出价、不高于当前价的出价都不改变状态，也不重置计时器
	reg.RouteAnswer(players[0], answer(t, h.ID(), map[string]any{"amount": 9000}))
	reg.RouteAnswer(players[2], answer(t, h.ID(), map[string]any{"amount": 1000}))
	reg.RouteAnswer(players[2], answer(t, h.ID(), map[string]any{"amount": 500}))

	reg.mu.Lock()
	assert.Equal(t, gen, h.gen)
	assert.Equal(t, 1000, h.amount)
	assert.Same(t, players[1], h.buyer)
	reg.mu.Unlock()
	assert.Equal(t, 0, rec.Count(protocol.MsgNewHighBidder))

	offer, err := h.Result().Wait(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1000, offer.Amount)
	assert.Same(t, players[1], offer.Buyer)
}

func TestBidding_ValidBidResetsTimer(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	players := newPlayers("seller", "b", "c")
	h := newBidding(openingOffer(players))
	reg.Issue(h)

	timeout := TestTimings().BidTimeout
	time.Sleep(timeout * 6 / 10)
	reg.RouteAnswer(players[2], answer(t, h.ID(), map[string]any{"amount": 1200}))
	time.Sleep(timeout * 6 / 10)

	// 原计时器应已作废
	assert.Equal(t, 0, rec.Count(protocol.MsgBiddingFinished))

	assert.Eventually(t, func() bool {
		return h.Result().Settled()
	}, time.Second, 5*time.Millisecond)
}

func TestBidding_BidsAfterFinishIgnored(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	reg.timings.BidResultsDelay = 200 * time.Millisecond
	players := newPlayers("seller", "b", "c")
	h := newBidding(openingOffer(players))
	reg.Issue(h)

	assert.Eventually(t, func() bool {
		return rec.Count(protocol.MsgBiddingFinished) == 1
	}, time.Second, 5*time.Millisecond)

	// 展示期间的出价不影响结果
	reg.RouteAnswer(players[2], answer(t, h.ID(), map[string]any{"amount": 99999}))

	offer, err := h.Result().Wait(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1000, offer.Amount)
	assert.Equal(t, 0, rec.Count(protocol.MsgNewHighBidder))
}
