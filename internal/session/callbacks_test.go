package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/testutil"
)

func TestCallbacks_Audiences(t *testing.T) {
	t.Parallel()

	cb := NewCallbacks("gm1")
	a, b, c := game.NewPlayer("", "a"), game.NewPlayer("", "b"), game.NewPlayer("", "c")
	ca, cbb, cc := &testutil.SimpleClient{}, &testutil.SimpleClient{}, &testutil.SimpleClient{}
	cb.Join(a, ca)
	cb.Join(b, cbb)
	cb.Join(c, cc)

	msg := &protocol.Message{Type: protocol.MsgChat}
	cb.ToPlayer(b, msg)
	assert.Equal(t, []int{0, 1, 0}, []int{ca.Count(msg.Type), cbb.Count(msg.Type), cc.Count(msg.Type)})

	cb.ToOthers(b, msg)
	assert.Equal(t, []int{1, 1, 1}, []int{ca.Count(msg.Type), cbb.Count(msg.Type), cc.Count(msg.Type)})

	cb.ToAll(msg)
	assert.Equal(t, []int{2, 2, 2}, []int{ca.Count(msg.Type), cbb.Count(msg.Type), cc.Count(msg.Type)})

	cb.Leave(b)
	cb.Leave(b)
	cb.ToAll(msg)
	cb.ToPlayer(b, msg)
	assert.Equal(t, []int{3, 2, 3}, []int{ca.Count(msg.Type), cbb.Count(msg.Type), cc.Count(msg.Type)})
	assert.Equal(t, 2, cb.Size())
	assert.Equal(t, "gm1", cb.Room())
}

func TestCallbacks_RejoinReplacesSender(t *testing.T) {
	t.Parallel()

	cb := NewCallbacks("gm1")
	p := game.NewPlayer("u", "p")
	old, fresh := &testutil.SimpleClient{}, &testutil.SimpleClient{}
	cb.Join(p, old)
	cb.Join(p, fresh)

	cb.ToAll(&protocol.Message{Type: protocol.MsgPong})
	assert.Equal(t, 0, old.Count(protocol.MsgPong))
	assert.Equal(t, 1, fresh.Count(protocol.MsgPong))
	assert.Equal(t, 1, cb.Size())
}

func TestCallbacks_SuspendBuffersUntilRejoin(t *testing.T) {
	t.Parallel()

	cb := NewCallbacks("gm1")
	a, b := game.NewPlayer("u-a", "a"), game.NewPlayer("u-b", "b")
	ca, cbb := &testutil.SimpleClient{}, &testutil.SimpleClient{}
	assert.False(t, cb.Join(a, ca))
	cb.Join(b, cbb)

	cb.Suspend(b)
	cb.Suspend(b)
	assert.Equal(t, 1, cb.Size())

	cb.ToPlayer(b, &protocol.Message{Type: protocol.MsgChat})
	cb.ToOthers(a, &protocol.Message{Type: protocol.MsgAck})
	for range maxBacklog {
		cb.ToAll(&protocol.Message{Type: protocol.MsgPong})
	}
	assert.Empty(t, cbb.Messages())
	assert.Equal(t, maxBacklog, ca.Count(protocol.MsgPong))

	fresh := &testutil.SimpleClient{}
	assert.True(t, cb.Join(b, fresh))
	assert.Equal(t, 0, fresh.Count(protocol.MsgChat), "oldest messages dropped")
	assert.Equal(t, maxBacklog, fresh.Count(protocol.MsgPong))

	// 补发只发生一次
	assert.False(t, cb.Join(b, fresh))
	assert.Len(t, fresh.Messages(), maxBacklog)
	assert.Equal(t, 2, cb.Size())
}

func TestCallbacks_LeaveDropsBacklog(t *testing.T) {
	t.Parallel()

	cb := NewCallbacks("gm1")
	p := game.NewPlayer("u", "p")
	cb.Join(p, &testutil.SimpleClient{})
	cb.Suspend(p)
	cb.ToAll(&protocol.Message{Type: protocol.MsgChat})
	cb.Leave(p)

	fresh := &testutil.SimpleClient{}
	assert.False(t, cb.Join(p, fresh))
	assert.Empty(t, fresh.Messages())
}
