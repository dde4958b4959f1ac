package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/dealers-choice/internal/protocol"
)

func TestEnvelope_Binary(t *testing.T) {
	t.Parallel()

	in := MustNewMessage(protocol.MsgChoice, protocol.ChoicePayload{
		Answer: []byte(`{"handlerId":"h1","amount":5}`),
	})

	out, err := Decode(Encode(in))
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgChoice, out.Type)
	assert.JSONEq(t, string(in.Payload), string(out.Payload))

	p, err := ParsePayload[protocol.ChoicePayload](out)
	require.NoError(t, err)
	env, err := ParseRaw[protocol.AnswerEnvelope](p.Answer)
	require.NoError(t, err)
	assert.Equal(t, "h1", env.HandlerID)
}

func TestEnvelope_BinaryNoPayload(t *testing.T) {
	t.Parallel()

	out, err := Decode(Encode(&protocol.Message{Type: protocol.MsgPing}))
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgPing, out.Type)
	assert.Empty(t, out.Payload)
}

func TestEnvelope_SkipsUnknownFields(t *testing.T) {
	t.Parallel()

	data := protowire.AppendTag(nil, 7, protowire.VarintType)
	data = protowire.AppendVarint(data, 42)
	data = append(data, Encode(&protocol.Message{Type: protocol.MsgLeave})...)

	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgLeave, out.Type)
}

func TestEnvelope_Errors(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte{0xff})
	assert.Error(t, err)

	_, err = Decode(nil)
	assert.ErrorIs(t, err, ErrMissingType)

	_, err = DecodeJSON([]byte(`{"payload":{}}`))
	assert.ErrorIs(t, err, ErrMissingType)

	_, err = DecodeJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestEnvelope_JSON(t *testing.T) {
	t.Parallel()

	in := MustNewMessage(protocol.MsgChat, protocol.ChatPayload{Message: "hi"})
	data, err := EncodeJSON(in)
	require.NoError(t, err)
	assert.NotEqual(t, byte('\n'), data[len(data)-1])

	out, err := DecodeJSON(data)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgChat, out.Type)

	chat, err := ParsePayload[protocol.ChatPayload](out)
	require.NoError(t, err)
	assert.Equal(t, "hi", chat.Message)
}

func TestNewErrorMessage(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(protocol.ErrCodeUnknownCommand)
	assert.Equal(t, protocol.MsgError, msg.Type)

	p, err := ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeUnknownCommand, p.Code)
	assert.Equal(t, protocol.ErrorMessages[protocol.ErrCodeUnknownCommand], p.Message)

	ack, err := ParsePayload[protocol.AckPayload](NewAck(protocol.MsgStartGame, protocol.ResultStartError))
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgStartGame, ack.Cmd)
	assert.Equal(t, protocol.ResultStartError, ack.Result)
}
