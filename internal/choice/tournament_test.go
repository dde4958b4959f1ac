package choice

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/testutil"
)

// playRound 等待第 round 轮请求发出后按顺序提交出招，返回该轮 handlerId
func playRound(t *testing.T, reg *Registry, rec *testutil.Recorder, round int, players []*game.Player, moves ...game.Move) string {
	t.Helper()
	require.Eventually(t, func() bool {
		return rec.Count(protocol.MsgRockPaperScissors) >= round
	}, time.Second, 2*time.Millisecond, "round %d never prompted", round)

	prompts := rec.Of(protocol.MsgRockPaperScissors)
	var p protocol.RpsPromptPayload
	require.NoError(t, json.Unmarshal(prompts[round-1].Msg.Payload, &p))

	for i, m := range moves {
		reg.RouteAnswer(players[i], answer(t, p.HandlerID, map[string]any{"move": string(m)}))
	}
	return p.HandlerID
}

// conclusion 等待第 n 条结论
func conclusion(t *testing.T, rec *testutil.Recorder, n int) protocol.RpsConclusionPayload {
	t.Helper()
	require.Eventually(t, func() bool {
		return rec.Count(protocol.MsgRpsConclusion) >= n
	}, time.Second, 2*time.Millisecond, "conclusion %d never sent", n)

	var c protocol.RpsConclusionPayload
	require.NoError(t, json.Unmarshal(rec.Of(protocol.MsgRpsConclusion)[n-1].Msg.Payload, &c))
	return c
}

func TestTournament_TwoPlayers_DoOverThenNextRound(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	players := newPlayers("p1", "p2")
	tour := NewTournament(players)
	reg.Issue(tour)

	first := playRound(t, reg, rec, 1, players, game.Rock, game.Rock)
	c1 := conclusion(t, rec, 1)
	assert.Equal(t, string(ConclusionDoOver), c1.Conclusion)
	assert.Len(t, c1.Survivors, 2)

	second := playRound(t, reg, rec, 2, players, game.Rock, game.Paper)
	assert.NotEqual(t, first, second)
	c2 := conclusion(t, rec, 2)
	assert.Equal(t, string(ConclusionNextRound), c2.Conclusion)
	assert.Equal(t, players[1].ID, c2.WinnerID)

	assert.Equal(t, 1, tour.Wins(players[1]))
	assert.Equal(t, 0, tour.Wins(players[0]))
	assert.False(t, tour.Result().Settled())
}

func TestTournament_TwoPlayers_BestOfThree(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	players := newPlayers("p1", "p2")
	tour := NewTournament(players)
	reg.Issue(tour)

	playRound(t, reg, rec, 1, players, game.Scissors, game.Paper)
	assert.Equal(t, string(ConclusionNextRound), conclusion(t, rec, 1).Conclusion)
	assert.False(t, tour.Result().Settled())

	playRound(t, reg, rec, 2, players, game.Rock, game.Scissors)
	c := conclusion(t, rec, 2)
	assert.Equal(t, string(ConclusionWinner), c.Conclusion)
	assert.Equal(t, players[0].ID, c.WinnerID)

	winner, err := tour.Result().Wait(t.Context())
	require.NoError(t, err)
	assert.Same(t, players[0], winner)
	assert.Equal(t, 0, reg.Pending())
}

func TestTournament_ThreePlayers_ImmediateWinner(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	players := newPlayers("p1", "p2", "p3")
	tour := NewTournament(players)
	reg.Issue(tour)

	playRound(t, reg, rec, 1, players, game.Rock, game.Scissors, game.Scissors)
	c := conclusion(t, rec, 1)
	assert.Equal(t, string(ConclusionWinner), c.Conclusion)
	assert.Equal(t, []string{players[0].ID}, c.Survivors)

	winner, err := tour.Result().Wait(t.Context())
	require.NoError(t, err)
	assert.Same(t, players[0], winner)
}

func TestTournament_Showdown(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	players := newPlayers("p1", "p2", "p3")
	tour := NewTournament(players)
	reg.Issue(tour)

	// p1、p2 出布，p3 出石头被淘汰
	playRound(t, reg, rec, 1, players, game.Paper, game.Paper, game.Rock)
	c := conclusion(t, rec, 1)
	assert.Equal(t, string(ConclusionShowdown), c.Conclusion)
	assert.ElementsMatch(t, []string{players[0].ID, players[1].ID}, c.Survivors)
	assert.Equal(t, players[:2], tour.Roster())

	// 被淘汰者在下一轮的回答无效
	second := playRound(t, reg, rec, 2, players, game.Scissors, game.Paper)
	reg.RouteAnswer(players[2], answer(t, second, map[string]any{"move": "rock"}))

	c2 := conclusion(t, rec, 2)
	// 三人开局不适用三局两胜
	assert.Equal(t, string(ConclusionWinner), c2.Conclusion)
	winner, err := tour.Result().Wait(t.Context())
	require.NoError(t, err)
	assert.Same(t, players[0], winner)
}

func TestTournament_AllThreeMovesIsDoOver(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	players := newPlayers("p1", "p2", "p3")
	tour := NewTournament(players)
	reg.Issue(tour)

	playRound(t, reg, rec, 1, players, game.Rock, game.Paper, game.Scissors)
	c := conclusion(t, rec, 1)
	assert.Equal(t, string(ConclusionDoOver), c.Conclusion)
	assert.Empty(t, c.Survivors)
	assert.Len(t, tour.Roster(), 3)
}

func TestTournament_StaleRoundAnswersDropped(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	players := newPlayers("p1", "p2")
	tour := NewTournament(players)
	reg.Issue(tour)

	first := playRound(t, reg, rec, 1, players, game.Rock, game.Rock)
	conclusion(t, rec, 1)
	playRound(t, reg, rec, 2, players)

	// 发给上一轮的回答被 Registry 丢弃
	reg.RouteAnswer(players[0], answer(t, first, map[string]any{"move": "paper"}))
	reg.RouteAnswer(players[1], answer(t, first, map[string]any{"move": "rock"}))
	time.Sleep(5 * TestTimings().RPSCountdown)
	assert.Equal(t, 1, rec.Count(protocol.MsgRpsConclusion))

	// 通过稳定句柄提交仍作用于当前轮
	tour.Submit(players[0], game.Paper)
	tour.Submit(players[1], game.Rock)
	c := conclusion(t, rec, 2)
	assert.Equal(t, players[0].ID, c.WinnerID)
}

func TestTournament_DuplicateAndInvalidMovesIgnored(t *testing.T) {
	t.Parallel()

	reg, rec := newTestRegistry()
	players := newPlayers("p1", "p2")
	outsider := newPlayers("x")[0]
	tour := NewTournament(players)
	reg.Issue(tour)

	id := tour.ID()
	reg.RouteAnswer(outsider, answer(t, id, map[string]any{"move": "rock"}))
	reg.RouteAnswer(players[0], answer(t, id, map[string]any{"move": "lizard"}))
	reg.RouteAnswer(players[0], answer(t, id, map[string]any{"move": "rock"}))
	reg.RouteAnswer(players[0], answer(t, id, map[string]any{"move": "paper"}))
	assert.Equal(t, 0, rec.Count(protocol.MsgRpsCountdown))

	reg.RouteAnswer(players[1], answer(t, id, map[string]any{"move": "scissors"}))
	assert.Equal(t, 1, rec.Count(protocol.MsgRpsCountdown))

	// 第一次出招有效：石头赢剪刀
	c := conclusion(t, rec, 1)
	assert.Equal(t, players[0].ID, c.WinnerID)
}

func TestTournament_NotYetIssued(t *testing.T) {
	t.Parallel()

	players := newPlayers("p1", "p2")
	tour := NewTournament(players)

	assert.NotPanics(t, func() {
		tour.Submit(players[0], game.Rock)
		assert.Equal(t, 0, tour.Wins(players[0]))
	})

	reg, rec := newTestRegistry()
	reg.Issue(tour)
	playRound(t, reg, rec, 1, players, game.Rock, game.Scissors)
	assert.Equal(t, players[0].ID, conclusion(t, rec, 1).WinnerID)
}

func TestTournament_SubmitDuringResultsDelayDropped(t *testing.T) {
	t.Parallel()

	timings := TestTimings()
	timings.RPSResultsDelay = 200 * time.Millisecond
	rec := &testutil.Recorder{}
	reg := NewRegistry(rec, timings)
	players := newPlayers("p1", "p2")
	tour := NewTournament(players)
	reg.Issue(tour)

	playRound(t, reg, rec, 1, players, game.Rock, game.Rock)
	require.Equal(t, string(ConclusionDoOver), conclusion(t, rec, 1).Conclusion)

	// 新一轮尚未发出，出招不应提前结算
	tour.Submit(players[0], game.Paper)
	tour.Submit(players[1], game.Rock)
	assert.Equal(t, 1, rec.Count(protocol.MsgRpsCountdown))
	assert.Equal(t, 0, reg.Pending())

	require.Eventually(t, func() bool {
		return rec.Count(protocol.MsgRockPaperScissors) == 2
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, 1, reg.Pending())

	tour.Submit(players[0], game.Scissors)
	tour.Submit(players[1], game.Paper)
	c := conclusion(t, rec, 2)
	assert.Equal(t, players[0].ID, c.WinnerID)
	assert.Equal(t, 2, rec.Count(protocol.MsgRpsCountdown))
}
