package choice

import (
	"slices"

	"github.com/google/uuid"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
	"github.com/palemoky/dealers-choice/internal/swappable"
)

// Conclusion 猜拳一轮的结论
type Conclusion string

const (
	ConclusionWinner    Conclusion = "winner"
	ConclusionNextRound Conclusion = "next_round" // 两人局三局两胜，尚未有人赢两局
	ConclusionShowdown  Conclusion = "showdown"   // 部分淘汰，幸存者继续
	ConclusionDoOver    Conclusion = "do_over"    // 全部淘汰或全部平局，本轮名单重来
)

// winsNeeded 两人局需要赢的局数
const winsNeeded = 2

// Tournament 多人猜拳淘汰赛
//
// 外部只持有 *Tournament。每一轮都是新的 rpsRound，有新的 handlerId，
// 通过 swappable 句柄替换；胜场计数和最终结果在各轮之间共享。
type Tournament struct {
	initialSize int
	wins        map[string]int
	round       *swappable.Handle[*rpsRound]
	result      *Result[*game.Player]
	reg         *Registry
}

// NewTournament 以 roster 为首轮名单创建淘汰赛
func NewTournament(roster []*game.Player) *Tournament {
	t := &Tournament{
		initialSize: len(roster),
		wins:        make(map[string]int),
		result:      NewResult[*game.Player](),
	}
	t.round = swappable.New(newRound(t, roster))
	return t
}

// ID 当前轮的 handlerId
func (t *Tournament) ID() string { return t.round.Get().id }

// Kind 固定为猜拳
func (t *Tournament) Kind() Kind { return KindRockPaperScissors }

// Result 整场比赛的结果，只有最后一轮会结算
func (t *Tournament) Result() *Result[*game.Player] { return t.result }

// Roster 当前轮名单
func (t *Tournament) Roster() []*game.Player { return slices.Clone(t.round.Get().roster) }

// Wins 玩家累计胜场（仅两人局计数）
func (t *Tournament) Wins(p *game.Player) int {
	if t.reg == nil {
		return 0
	}
	t.reg.mu.Lock()
	defer t.reg.mu.Unlock()
	return t.wins[p.ID]
}

// Submit 向当前轮提交出招
//
// 与经 Registry 路由相同：只有已登记的轮次接受出招，
// 发起前或两轮之间展示结果期间的出招被丢弃。
func (t *Tournament) Submit(p *game.Player, move game.Move) {
	if t.reg == nil {
		return
	}
	t.reg.mu.Lock()
	defer t.reg.mu.Unlock()
	round := t.round.Get()
	if _, ok := t.reg.handlers[round.id]; !ok {
		return
	}
	round.submit(p, &protocol.MoveAnswer{Move: string(move)})
}

func (t *Tournament) issue(r *Registry) {
	t.reg = r
	t.round.Get().issue(r)
}

func (t *Tournament) submit(p *game.Player, answer any) {
	t.round.Get().submit(p, answer)
}

// nextRound 换上新一轮，展示结果后再登记并发出请求
func (t *Tournament) nextRound(roster []*game.Player) {
	next := newRound(t, roster)
	t.round.Swap(next)
	t.reg.after(t.reg.timings.RPSResultsDelay, func() {
		t.reg.register(next)
		next.issue(t.reg)
	})
}

// rpsRound 一轮猜拳
type rpsRound struct {
	id       string
	t        *Tournament
	roster   []*game.Player
	answers  map[*game.Player]game.Move
	counting bool
}

func newRound(t *Tournament, roster []*game.Player) *rpsRound {
	return &rpsRound{
		id:      uuid.NewString(),
		t:       t,
		roster:  slices.Clone(roster),
		answers: make(map[*game.Player]game.Move, len(roster)),
	}
}

func (r *rpsRound) ID() string { return r.id }
func (r *rpsRound) Kind() Kind { return KindRockPaperScissors }

func (r *rpsRound) issue(reg *Registry) {
	ids := make([]string, len(r.roster))
	for i, p := range r.roster {
		ids[i] = p.ID
	}
	reg.fabric.ToAll(codec.MustNewMessage(protocol.MsgRockPaperScissors, protocol.RpsPromptPayload{
		HandlerID: r.id,
		Players:   ids,
	}))
}

func (r *rpsRound) submit(p *game.Player, answer any) {
	a, ok := answer.(*protocol.MoveAnswer)
	if !ok || r.counting || !slices.Contains(r.roster, p) {
		return
	}
	if _, answered := r.answers[p]; answered {
		return
	}
	move, ok := game.ParseMove(a.Move)
	if !ok {
		return
	}

	r.answers[p] = move
	if len(r.answers) < len(r.roster) {
		return
	}

	r.counting = true
	reg := r.t.reg
	reg.fabric.ToAll(codec.MustNewMessage(protocol.MsgRpsCountdown, protocol.RpsCountdownPayload{HandlerID: r.id}))
	reg.after(reg.timings.RPSCountdown, r.evaluate)
}

// survivors 没有被任何其他出招克制的玩家，保持名单顺序
func (r *rpsRound) survivors() []*game.Player {
	var out []*game.Player
	for _, p := range r.roster {
		beaten := false
		for _, other := range r.answers {
			if other.Beats(r.answers[p]) {
				beaten = true
				break
			}
		}
		if !beaten {
			out = append(out, p)
		}
	}
	return out
}

func (r *rpsRound) evaluate() {
	t := r.t
	reg := t.reg
	reg.release(r.id)

	survivors := r.survivors()
	msg := protocol.RpsConclusionPayload{HandlerID: r.id}
	for _, p := range r.roster {
		msg.Answers = append(msg.Answers, protocol.RpsMove{PlayerID: p.ID, Move: string(r.answers[p])})
	}
	for _, p := range survivors {
		msg.Survivors = append(msg.Survivors, p.ID)
	}

	switch {
	case len(survivors) == 1:
		winner := survivors[0]
		msg.WinnerID = winner.ID
		msg.Conclusion = string(ConclusionWinner)
		if t.initialSize == 2 {
			t.wins[winner.ID]++
			if t.wins[winner.ID] < winsNeeded {
				msg.Conclusion = string(ConclusionNextRound)
				t.nextRound(r.roster)
				break
			}
		}
		reg.after(reg.timings.RPSResultsDelay, func() {
			t.result.Resolve(winner)
		})
	case len(survivors) > 1 && len(survivors) < len(r.roster):
		msg.Conclusion = string(ConclusionShowdown)
		t.nextRound(survivors)
	default:
		msg.Conclusion = string(ConclusionDoOver)
		t.nextRound(r.roster)
	}

	reg.fabric.ToAll(codec.MustNewMessage(protocol.MsgRpsConclusion, msg))
}
