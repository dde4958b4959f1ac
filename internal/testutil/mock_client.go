//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/protocol"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetUserID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetUserID(id string) {
	m.Called(id)
}

func (m *MockClient) GetGame() (string, *game.Player) {
	args := m.Called()
	p, _ := args.Get(1).(*game.Player)
	return args.String(0), p
}

func (m *MockClient) Attach(gameID string, p *game.Player) {
	m.Called(gameID, p)
}

func (m *MockClient) Detach() {
	m.Called()
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 简单的客户端替身，记录收到的消息，可在多个 goroutine 中使用
type SimpleClient struct {
	ID     string
	Name   string
	UserID string

	mu       sync.Mutex
	gameID   string
	player   *game.Player
	messages []*protocol.Message
	closed   bool
}

func (c *SimpleClient) GetID() string       { return c.ID }
func (c *SimpleClient) GetName() string     { return c.Name }
func (c *SimpleClient) GetUserID() string   { return c.UserID }
func (c *SimpleClient) SetUserID(id string) { c.UserID = id }

func (c *SimpleClient) GetGame() (string, *game.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID, c.player
}

func (c *SimpleClient) Attach(gameID string, p *game.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID, c.player = gameID, p
}

func (c *SimpleClient) Detach() { c.Attach("", nil) }

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Closed 是否已被关闭
func (c *SimpleClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Messages 已收到消息的副本
func (c *SimpleClient) Messages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*protocol.Message(nil), c.messages...)
}

// Of 指定类型的消息
func (c *SimpleClient) Of(t protocol.MessageType) []*protocol.Message {
	var out []*protocol.Message
	for _, m := range c.Messages() {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// Count 指定类型的消息数
func (c *SimpleClient) Count(t protocol.MessageType) int {
	return len(c.Of(t))
}

// Last 指定类型的最后一条消息
func (c *SimpleClient) Last(t protocol.MessageType) (*protocol.Message, bool) {
	ms := c.Of(t)
	if len(ms) == 0 {
		return nil, false
	}
	return ms[len(ms)-1], true
}

// Reset 清空已收到的消息
func (c *SimpleClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
