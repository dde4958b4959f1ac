package choice

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/testutil"
)

func TestTurnChoice(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	players := newPlayers("dealer", "other")
	dealer := players[0]
	dealer.AddDcCard(&game.DcCard{ID: "dc1"})

	h := newTurnChoice(dealer)
	reg.Issue(h)

	// 非当事人、非法选项、未持有的卡都被忽略
	reg.RouteAnswer(players[1], answer(t, h.ID(), map[string]any{"selection": "pass"}))
	reg.RouteAnswer(dealer, answer(t, h.ID(), map[string]any{"selection": "fly"}))
	reg.RouteAnswer(dealer, answer(t, h.ID(), map[string]any{"selection": "dc_card", "cardId": "dc9"}))
	assert.False(t, h.Result().Settled())

	reg.RouteAnswer(dealer, answer(t, h.ID(), map[string]any{"selection": "dc_card", "cardId": "dc1"}))
	res := settledValue(t, h.Result())
	assert.Equal(t, game.TurnDcCard, res.Choice)
	require.NotNil(t, res.Card)
	assert.Equal(t, "dc1", res.Card.ID)

	n, ok := rec.Last(protocol.MsgNotifyTurnChoice)
	require.True(t, ok)
	assert.Equal(t, testutil.ScopeOthers, n.Scope)
	assert.Equal(t, dealer.ID, n.PlayerID)
}

func TestBuyFromExchange_EnumeratedOptions(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	p := newPlayers("a")[0]

	h := newBuyFromExchange(p)
	reg.Issue(h)

	prompt, ok := rec.Last(protocol.MsgBuyFromExchangeOption)
	require.True(t, ok)
	var payload protocol.PlayerPromptPayload
	require.NoError(t, json.Unmarshal(prompt.Msg.Payload, &payload))
	assert.ElementsMatch(t, game.ExchangeOptions, payload.Options)

	reg.RouteAnswer(p, answer(t, h.ID(), map[string]any{"selection": "free"}))
	assert.False(t, h.Result().Settled())

	reg.RouteAnswer(p, answer(t, h.ID(), map[string]any{"selection": "list_price"}))
	assert.Equal(t, game.ExchangeListPrice, settledValue(t, h.Result()))
	assert.Equal(t, 1, rec.Count(protocol.MsgBuyFromExchangeResult))
}

func TestReplenish(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()
	p := newPlayers("a")[0]

	h := newReplenish(p)
	reg.Issue(h)
	reg.RouteAnswer(p, answer(t, h.ID(), map[string]any{"selection": "money"}))
	assert.False(t, h.Result().Settled())
	reg.RouteAnswer(p, answer(t, h.ID(), map[string]any{"selection": "cars"}))
	assert.Equal(t, game.ReplenishCars, settledValue(t, h.Result()))
}

func TestPromptForBids(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()
	players := newPlayers("owner", "b", "c")
	owner := players[0]
	owner.AddCar(&game.Car{ID: "c1", ListPrice: 5000})

	h := newPromptForBids(owner)
	reg.Issue(h)

	// 车主自己不能请求，车必须是车主的
	reg.RouteAnswer(owner, answer(t, h.ID(), map[string]any{"carId": "c1"}))
	reg.RouteAnswer(players[1], answer(t, h.ID(), map[string]any{"carId": "c9"}))
	assert.False(t, h.Result().Settled())

	reg.RouteAnswer(players[2], answer(t, h.ID(), map[string]any{"carId": "c1"}))
	reg.RouteAnswer(players[1], answer(t, h.ID(), map[string]any{"carId": "c1"}))

	req := settledValue(t, h.Result())
	assert.Same(t, players[2], req.Bidder)
	assert.Equal(t, "c1", req.Car.ID)
}

func TestDecideFinalOffer(t *testing.T) {
	t.Parallel()

	players := newPlayers("seller", "buyer")
	final := game.Offer{Seller: players[0], Buyer: players[1], Car: &game.Car{ID: "c1"}, Amount: 3000}

	t.Run("accept", func(t *testing.T) {
		reg, _ := newTestRegistry()
		h := newDecideFinalOffer(final)
		reg.Issue(h)

		reg.RouteAnswer(players[1], answer(t, h.ID(), map[string]any{"accept": true}))
		assert.False(t, h.Result().Settled())

		reg.RouteAnswer(players[0], answer(t, h.ID(), map[string]any{"accept": true}))
		assert.Nil(t, settledValue(t, h.Result()))
	})

	t.Run("counter", func(t *testing.T) {
		reg, _ := newTestRegistry()
		h := newDecideFinalOffer(final)
		reg.Issue(h)

		reg.RouteAnswer(players[0], answer(t, h.ID(), map[string]any{"accept": false}))
		assert.False(t, h.Result().Settled())

		reg.RouteAnswer(players[0], answer(t, h.ID(), map[string]any{"accept": false, "counterOffer": 4500}))
		counter := settledValue(t, h.Result())
		require.NotNil(t, counter)
		assert.Equal(t, 4500, counter.Amount)
		assert.Same(t, players[1], counter.Buyer)
		assert.Equal(t, 3000, final.Amount)
	})
}

func TestAcceptCounterOffer(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	players := newPlayers("seller", "buyer", "c")
	counter := game.Offer{Seller: players[0], Buyer: players[1], Car: &game.Car{ID: "c1"}, Amount: 4500}

	h := newAcceptCounterOffer(counter)
	reg.Issue(h)

	prompt, ok := rec.Last(protocol.MsgPromptAcceptCounterOffer)
	require.True(t, ok)
	assert.Equal(t, testutil.ScopeOthers, prompt.Scope)
	assert.Equal(t, players[0].ID, prompt.PlayerID)

	reg.RouteAnswer(players[2], answer(t, h.ID(), map[string]any{"accept": true}))
	assert.False(t, h.Result().Settled())

	reg.RouteAnswer(players[1], answer(t, h.ID(), map[string]any{"accept": true}))
	assert.True(t, settledValue(t, h.Result()))

	n, ok := rec.Last(protocol.MsgNotifyAcceptedOffer)
	require.True(t, ok)
	assert.Equal(t, players[1].ID, n.PlayerID)
}

func TestSecondDcCard(t *testing.T) {
	t.Parallel()

	players := newPlayers("a")
	p := players[0]
	p.AddDcCard(&game.DcCard{ID: "dc1"})

	t.Run("skip", func(t *testing.T) {
		reg, rec := newTestRegistry()
		h := newSecondDcCard(p)
		reg.Issue(h)

		prompt, ok := rec.Last(protocol.MsgAllowSecondDcCard)
		require.True(t, ok)
		assert.Equal(t, testutil.ScopePlayer, prompt.Scope)

		reg.RouteAnswer(p, answer(t, h.ID(), map[string]any{"skip": true}))
		assert.Nil(t, settledValue(t, h.Result()))
	})

	t.Run("card", func(t *testing.T) {
		reg, _ := newTestRegistry()
		h := newSecondDcCard(p)
		reg.Issue(h)

		reg.RouteAnswer(p, answer(t, h.ID(), map[string]any{"cardId": "dc2"}))
		assert.False(t, h.Result().Settled())
		reg.RouteAnswer(p, answer(t, h.ID(), map[string]any{"cardId": "dc1"}))
		assert.Equal(t, "dc1", settledValue(t, h.Result()).ID)
	})
}

func TestChooseOwnCar_WrongPlayer(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry()
	players := newPlayers("a", "b")
	players[0].AddCar(&game.Car{ID: "c1"})
	players[1].AddCar(&game.Car{ID: "c1b"})

	h := newChooseOwnCar(players[0])
	reg.Issue(h)
	reg.RouteAnswer(players[1], answer(t, h.ID(), map[string]any{"carId": "c1b"}))
	reg.RouteAnswer(players[0], answer(t, h.ID(), map[string]any{"carId": "c1b"}))
	assert.False(t, h.Result().Settled())
	assert.Equal(t, 1, reg.Pending())
}
