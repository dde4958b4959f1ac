package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/palemoky/dealers-choice/internal/protocol"
)

// 二进制信封字段号：1 = type，2 = payload
const (
	fieldType    protowire.Number = 1
	fieldPayload protowire.Number = 2
)

// ErrMissingType 信封中没有消息类型
var ErrMissingType = errors.New("codec: message type missing")

// Encode 将消息编码为 protobuf 线格式的二进制信封，payload 保持 JSON
func Encode(m *protocol.Message) []byte {
	out := make([]byte, 0, len(m.Type)+len(m.Payload)+8)
	out = protowire.AppendTag(out, fieldType, protowire.BytesType)
	out = protowire.AppendString(out, string(m.Type))
	if len(m.Payload) > 0 {
		out = protowire.AppendTag(out, fieldPayload, protowire.BytesType)
		out = protowire.AppendBytes(out, m.Payload)
	}
	return out
}

// Decode 解码二进制信封
// 注意: 使用完毕后可调用 PutMessage 归还对象到池
func Decode(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			PutMessage(msg)
			return nil, protowire.ParseError(n)
		}
		data = data[n:]

		switch {
		case num == fieldType && typ == protowire.BytesType:
			v, m := protowire.ConsumeString(data)
			if m < 0 {
				PutMessage(msg)
				return nil, protowire.ParseError(m)
			}
			msg.Type = protocol.MessageType(v)
			n = m
		case num == fieldPayload && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(data)
			if m < 0 {
				PutMessage(msg)
				return nil, protowire.ParseError(m)
			}
			msg.Payload = append(json.RawMessage(nil), v...) // 复制，避免引用读缓冲区
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				PutMessage(msg)
				return nil, protowire.ParseError(n)
			}
		}
		data = data[n:]
	}

	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrMissingType
	}
	return msg, nil
}

// EncodeJSON 将消息编码为 JSON 文本帧
func EncodeJSON(m *protocol.Message) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}
	// Encoder 会追加换行
	out := make([]byte, buf.Len()-1)
	copy(out, buf.Bytes())
	return out, nil
}

// DecodeJSON 解码 JSON 文本帧
func DecodeJSON(data []byte) (*protocol.Message, error) {
	msg := GetMessage()
	if err := json.Unmarshal(data, msg); err != nil {
		PutMessage(msg)
		return nil, fmt.Errorf("codec: %w", err)
	}
	if msg.Type == "" {
		PutMessage(msg)
		return nil, ErrMissingType
	}
	return msg, nil
}
