package choice

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/testutil"
)

func newTestRegistry() (*Registry, *testutil.Recorder) {
	rec := &testutil.Recorder{}
	return NewRegistry(rec, TestTimings()), rec
}

func newPlayers(names ...string) []*game.Player {
	out := make([]*game.Player, len(names))
	for i, n := range names {
		out[i] = game.NewPlayer("user-"+n, n)
	}
	return out
}

// answer 构造带 handlerId 的回答
func answer(t *testing.T, handlerID string, fields map[string]any) json.RawMessage {
	t.Helper()
	m := map[string]any{"handlerId": handlerID}
	for k, v := range fields {
		m[k] = v
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return data
}

// lastHandlerID 取最近一次某类请求中的 handlerId
func lastHandlerID(t *testing.T, rec *testutil.Recorder, mt protocol.MessageType) string {
	t.Helper()
	d, ok := rec.Last(mt)
	require.True(t, ok, "no %s message", mt)
	var env protocol.AnswerEnvelope
	require.NoError(t, json.Unmarshal(d.Msg.Payload, &env))
	return env.HandlerID
}

func settledValue[T any](t *testing.T, r *Result[T]) T {
	t.Helper()
	select {
	case <-r.Done():
	default:
		t.Fatal("result not settled")
	}
	v, err := r.Wait(t.Context())
	require.NoError(t, err)
	return v
}
