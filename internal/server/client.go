package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 8192

	sendBufferSize = 256
)

// frame 待写出的一帧
type frame struct {
	kind int
	data []byte
}

// Client 一个 websocket 连接
//
// 回复帧的格式跟随客户端最近一次发来的帧：文本帧用 JSON，二进制帧用 protowire 信封。
type Client struct {
	ID   string
	Name string
	IP   string

	server *Server
	conn   *websocket.Conn
	send   chan frame
	log    zerolog.Logger

	mu     sync.RWMutex
	userID string
	gameID string
	player *game.Player
	binary bool
	closed bool
}

// NewClient 创建客户端，name 为空时生成随机昵称
func NewClient(s *Server, conn *websocket.Conn, name string) *Client {
	if name == "" {
		name = GenerateNickname()
	}
	id := uuid.NewString()
	return &Client{
		ID:     id,
		Name:   name,
		userID: id,
		server: s,
		conn:   conn,
		send:   make(chan frame, sendBufferSize),
		log:    s.log.With().Str("client", id).Logger(),
	}
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		c.server.handler.Disconnect(c)
		c.server.unregisterClient(c)
		c.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn().Err(err).Msg("读取错误")
			}
			return
		}

		msg, err := c.decode(kind, data)
		if err != nil {
			c.log.Debug().Err(err).Msg("消息解析错误")
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handler.Handle(c, msg)
		codec.PutMessage(msg)
	}
}

func (c *Client) decode(kind int, data []byte) (*protocol.Message, error) {
	binary := kind == websocket.BinaryMessage
	c.mu.Lock()
	c.binary = binary
	c.mu.Unlock()

	if binary {
		return codec.Decode(data)
	}
	return codec.DecodeJSON(data)
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(f.kind, f.data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端，缓冲区满时断开连接
func (c *Client) SendMessage(msg *protocol.Message) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}

	f := frame{kind: websocket.TextMessage}
	if c.binary {
		f = frame{kind: websocket.BinaryMessage, data: codec.Encode(msg)}
	} else {
		data, err := codec.EncodeJSON(msg)
		if err != nil {
			c.mu.RUnlock()
			c.log.Error().Err(err).Str("type", string(msg.Type)).Msg("消息编码错误")
			return
		}
		f.data = data
	}

	full := false
	select {
	case c.send <- f:
	default:
		full = true
	}
	c.mu.RUnlock()

	if full {
		c.log.Warn().Msg("发送缓冲区已满")
		c.Close()
	}
}

// Close 关闭发送通道，WritePump 随后发出关闭帧
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) GetID() string   { return c.ID }
func (c *Client) GetName() string { return c.Name }

func (c *Client) GetUserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

func (c *Client) SetUserID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = id
}

// GetGame 当前所在会话
func (c *Client) GetGame() (string, *game.Player) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID, c.player
}

// Attach 绑定到会话中的玩家
func (c *Client) Attach(gameID string, p *game.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID, c.player = gameID, p
}

// Detach 解除会话绑定
func (c *Client) Detach() { c.Attach("", nil) }
