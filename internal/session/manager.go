// Package session 一局游戏从大厅到对局的全部协调
//
// Manager 是对外稳定的句柄：ID、房间、成员和投递表在阶段切换前后保持不变，
// 切换的只是 swappable.Handle 里的阶段行为。
//
// 锁顺序：Manager.mu → choice.Registry.mu → Callbacks.mu。
// 对局 goroutine 只经过 Registry 和 Callbacks，从不持有 Manager.mu。
package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/palemoky/dealers-choice/internal/apperrors"
	"github.com/palemoky/dealers-choice/internal/choice"
	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/logger"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
	"github.com/palemoky/dealers-choice/internal/swappable"
)

// RoomPrefix 会话房间名前缀
const RoomPrefix = "gm"

// Phase 会话阶段
type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseInProgress Phase = "in_progress"
)

// PresetSource 按 ID 查找预设，不存在时返回 nil, nil
type PresetSource interface {
	LoadPreset(ctx context.Context, id string) (*game.Preset, error)
}

// Options 会话参数
type Options struct {
	MaxPlayers int
	MinPlayers int
	Timings    choice.Timings
	Engine     game.EngineFactory
	Presets    PresetSource // 可为 nil，此时只有默认预设可用

	// OnLeave 玩家通过 leave 命令离开后调用，empty 表示会话已无人
	OnLeave func(m *Manager, p *game.Player, empty bool)
}

// Manager 会话
type Manager struct {
	id        string
	createdAt time.Time
	opts      Options
	callbacks *Callbacks
	phase     *swappable.Handle[phase]
	log       zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	players []*game.Player
	users   map[string]*game.Player // userID → player
	owner   *game.Player
	closed  bool
}

// New 创建处于大厅阶段的会话
func New(opts Options) *Manager {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		id:        id,
		createdAt: time.Now(),
		opts:      opts,
		callbacks: NewCallbacks(RoomPrefix + id),
		phase:     swappable.New[phase](pending{}),
		log:       logger.With("session").With().Str("session", id).Logger(),
		ctx:       ctx,
		cancel:    cancel,
		users:     make(map[string]*game.Player),
	}
}

// ID 会话 ID，阶段切换后不变
func (m *Manager) ID() string { return m.id }

// Room 广播房间名
func (m *Manager) Room() string { return m.callbacks.Room() }

// CreatedAt 创建时间
func (m *Manager) CreatedAt() time.Time { return m.createdAt }

// Phase 当前阶段
func (m *Manager) Phase() Phase { return m.phase.Get().name() }

// Owner 房主，对局开始后仍保留开局时的房主
func (m *Manager) Owner() *game.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owner
}

// Players 成员副本，按加入顺序
func (m *Manager) Players() []*game.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.players)
}

// PlayerByUser 按用户 ID 查找成员
func (m *Manager) PlayerByUser(userID string) (*game.Player, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.users[userID]
	return p, ok
}

// Registry 对局阶段的选择登记表，大厅阶段为 nil
func (m *Manager) Registry() *choice.Registry {
	if ip, ok := m.phase.Get().(*inProgress); ok {
		return ip.registry
	}
	return nil
}

// Done 对局循环结束时关闭，大厅阶段为 nil
func (m *Manager) Done() <-chan struct{} {
	if ip, ok := m.phase.Get().(*inProgress); ok {
		return ip.done
	}
	return nil
}

// Broadcast 发给房间内所有人
func (m *Manager) Broadcast(msg *protocol.Message) { m.callbacks.ToAll(msg) }

// Running 对局循环是否仍在运行
func (m *Manager) Running() bool {
	done := m.Done()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// AddPlayer 加入会话
//
// 会话已满或已开局时拒绝，成员不变。同一用户重复加入时返回原有身份并替换投递能力，
// 对局中断线的玩家借此重连，并补收断线期间的消息。
func (m *Manager) AddPlayer(userID, name string, s Sender) (*game.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, apperrors.ErrGameNotFound
	}
	if userID != "" {
		if p, ok := m.users[userID]; ok {
			if m.callbacks.Join(p, s) {
				m.log.Info().Str("player", p.Name).Msg("🔌 玩家重连")
			}
			m.callbacks.ToPlayer(p, m.rosterMessage())
			return p, nil
		}
	}
	if m.Phase() != PhasePending {
		return nil, apperrors.ErrGameStarted
	}
	if len(m.players) >= m.opts.MaxPlayers {
		return nil, apperrors.ErrGameFull
	}

	p := game.NewPlayer(userID, name)
	m.players = append(m.players, p)
	if userID != "" {
		m.users[userID] = p
	}
	if m.owner == nil {
		m.owner = p
	}
	m.callbacks.Join(p, s)

	m.callbacks.ToOthers(p, codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
		Player: playerInfo(p),
	}))
	m.callbacks.ToAll(m.rosterMessage())

	m.log.Info().Str("player", p.Name).Int("players", len(m.players)).Msg("👤 玩家加入")
	return p, nil
}

// Disconnect 成员的连接断开，返回会话是否已无在线成员
//
// 大厅阶段等同离开。对局中保留成员身份和规则引擎里的数据，
// 只暂停投递，同一用户重新加入即可继续。
func (m *Manager) Disconnect(p *game.Player) (empty bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Phase() == PhasePending || game.IndexOf(m.players, p) < 0 {
		return m.removeLocked(p)
	}
	m.callbacks.Suspend(p)
	m.log.Info().Str("player", p.Name).Int("online", m.callbacks.Size()).Msg("📴 玩家断线")
	return m.callbacks.Size() == 0
}

// removeLocked 移除成员，返回会话是否已无人，需持有 mu
//
// 房主离开时由剩余成员中最早加入的人接任。对局中离开只影响成员关系，
// 规则引擎里的玩家数据不动。
func (m *Manager) removeLocked(p *game.Player) bool {
	idx := game.IndexOf(m.players, p)
	if idx < 0 {
		return len(m.players) == 0
	}

	m.players = slices.Delete(m.players, idx, idx+1)
	if p.UserID != "" && m.users[p.UserID] == p {
		delete(m.users, p.UserID)
	}
	m.callbacks.Leave(p)

	if m.owner == p {
		m.owner = nil
		if len(m.players) > 0 {
			m.owner = m.players[0]
			m.log.Info().Str("owner", m.owner.Name).Msg("👑 房主移交")
		}
	}

	m.callbacks.ToAll(codec.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{PlayerID: p.ID}))
	if len(m.players) > 0 {
		m.callbacks.ToAll(m.rosterMessage())
	}

	m.log.Info().Str("player", p.Name).Int("players", len(m.players)).Msg("👋 玩家离开")
	return len(m.players) == 0
}

// PerformCommand 处理成员发来的命令
//
// 先交给当前阶段，阶段不认识的命令按聊天、离开处理，其余回错误给发送者。
func (m *Manager) PerformCommand(p *game.Player, msg *protocol.Message) {
	if msg.Type == protocol.MsgLeave {
		m.leave(p)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if game.IndexOf(m.players, p) < 0 {
		m.log.Debug().Str("player", p.ID).Str("cmd", string(msg.Type)).Msg("非成员命令")
		return
	}

	if m.phase.Get().perform(m, p, msg) {
		return
	}

	switch msg.Type {
	case protocol.MsgChat:
		m.chat(p, msg)
	default:
		m.log.Debug().Str("player", p.Name).Str("cmd", string(msg.Type)).Msg("⚠️ 无法识别的命令")
		m.callbacks.ToPlayer(p, codec.NewErrorMessage(protocol.ErrCodeUnknownCommand))
	}
}

func (m *Manager) chat(p *game.Player, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ChatPayload](msg)
	if err != nil || payload.Message == "" {
		m.callbacks.ToPlayer(p, codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	payload.PlayerID = p.ID
	m.callbacks.ToOthers(p, codec.MustNewMessage(protocol.MsgChat, payload))
	m.callbacks.ToPlayer(p, codec.NewAck(protocol.MsgChat, protocol.ResultOk))
}

func (m *Manager) leave(p *game.Player) {
	m.mu.Lock()
	if game.IndexOf(m.players, p) < 0 {
		m.mu.Unlock()
		return
	}
	m.callbacks.ToPlayer(p, codec.NewAck(protocol.MsgLeave, protocol.ResultOk))
	empty := m.removeLocked(p)
	m.mu.Unlock()

	if m.opts.OnLeave != nil {
		m.opts.OnLeave(m, p, empty)
	}
}

// start 开局，需持有 mu
//
// 从存储加载预设期间会释放 mu，重新持有后再校验一次开局条件。
func (m *Manager) start(p *game.Player, msg *protocol.Message) {
	ack := func(result protocol.ResultCode) {
		m.callbacks.ToPlayer(p, codec.NewAck(protocol.MsgStartGame, result))
	}

	if err := m.canStart(p); err != nil {
		ack(err.Result)
		return
	}

	payload, err := codec.ParsePayload[protocol.StartGamePayload](msg)
	if err != nil {
		m.callbacks.ToPlayer(p, codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}
	preset, err := m.resolvePreset(payload.PresetID)
	if m.closed {
		return
	}
	if m.Phase() != PhasePending {
		m.callbacks.ToPlayer(p, codec.NewErrorMessage(protocol.ErrCodeGameStarted))
		return
	}
	if err != nil {
		m.log.Warn().Err(err).Str("preset", payload.PresetID).Msg("加载预设失败")
		ack(protocol.ResultStartError)
		return
	}
	if err := m.canStart(p); err != nil {
		ack(err.Result)
		return
	}

	registry := choice.NewRegistry(m.callbacks, m.opts.Timings)
	engine, err := m.opts.Engine(preset, slices.Clone(m.players), choice.NewProvider(registry))
	if err != nil {
		registry.Close()
		m.log.Warn().Err(err).Msg("创建规则引擎失败")
		if errors.Is(err, game.ErrNotEnoughPlayers) {
			ack(apperrors.ErrNotEnoughPlayers.Result)
		} else {
			ack(protocol.ResultStartError)
		}
		return
	}

	ip := &inProgress{
		registry: registry,
		engine:   engine,
		presetID: preset.ID,
		done:     make(chan struct{}),
	}
	m.phase.Swap(ip)

	ack(protocol.ResultOk)
	infos := make([]protocol.PlayerInfo, len(m.players))
	for i, pl := range m.players {
		infos[i] = playerInfo(pl)
	}
	m.callbacks.ToAll(codec.MustNewMessage(protocol.MsgGameStarted, protocol.GameStartedPayload{
		GameID:   m.id,
		PresetID: preset.ID,
		Players:  infos,
	}))
	m.log.Info().Str("preset", preset.ID).Int("players", len(m.players)).Msg("🎮 游戏开始")

	go m.run(ip)
}

// canStart 需持有 mu
func (m *Manager) canStart(p *game.Player) *apperrors.GameError {
	switch {
	case p != m.owner:
		return apperrors.ErrNotOwner
	case len(m.players) < m.opts.MinPlayers:
		return apperrors.ErrNotEnoughPlayers
	}
	return nil
}

// resolvePreset 需持有 mu，访问存储时释放
func (m *Manager) resolvePreset(id string) (*game.Preset, error) {
	if id == "" || id == game.DefaultPresetID {
		return game.DefaultPreset(), nil
	}
	if m.opts.Presets == nil {
		return nil, apperrors.ErrPresetNotFound
	}

	m.mu.Unlock()
	defer m.mu.Lock()
	return m.loadPreset(id)
}

func (m *Manager) loadPreset(id string) (*game.Preset, error) {
	ctx, cancel := context.WithTimeout(m.ctx, 3*time.Second)
	defer cancel()
	preset, err := m.opts.Presets.LoadPreset(ctx, id)
	if err != nil {
		return nil, err
	}
	if preset == nil {
		return nil, apperrors.ErrPresetNotFound
	}
	return preset, nil
}

// run 推进对局直到结束或会话关闭
func (m *Manager) run(ip *inProgress) {
	defer close(ip.done)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
			m.log.Error().Interface("panic", r).Msg("对局循环崩溃")
		}
	}()

	var runErr error
	for {
		done, err := ip.engine.Step(m.ctx)
		if err != nil {
			runErr = err
			break
		}
		if done {
			break
		}
	}

	if m.ctx.Err() != nil {
		return
	}
	ip.registry.Close()

	payload := protocol.GameOverPayload{GameID: m.id}
	if runErr != nil {
		payload.Error = runErr.Error()
		m.log.Error().Err(runErr).Msg("对局异常结束")
	} else {
		m.log.Info().Msg("🏁 游戏结束")
	}
	m.callbacks.ToAll(codec.MustNewMessage(protocol.MsgGameOver, payload))
}

// Close 销毁会话，停止对局循环和所有计时器
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	if reg := m.Registry(); reg != nil {
		reg.Close()
	}
	m.log.Debug().Msg("会话已关闭")
}

// Closed 是否已销毁
func (m *Manager) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Info 列表展示用的摘要
func (m *Manager) Info() protocol.GameInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	info := protocol.GameInfo{
		ID:         m.id,
		Phase:      string(m.Phase()),
		Players:    len(m.players),
		MaxPlayers: m.opts.MaxPlayers,
	}
	if m.owner != nil {
		info.Owner = m.owner.Name
	}
	return info
}

// Snapshot 持久化用的快照
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		ID:        m.id,
		Phase:     m.Phase(),
		CreatedAt: m.createdAt.Unix(),
		Players:   make([]protocol.PlayerInfo, len(m.players)),
	}
	if m.owner != nil {
		s.OwnerID = m.owner.ID
	}
	if ip, ok := m.phase.Get().(*inProgress); ok {
		s.PresetID = ip.presetID
	}
	for i, p := range m.players {
		s.Players[i] = playerInfo(p)
	}
	return s
}

// Snapshot 会话快照
type Snapshot struct {
	ID        string                `json:"id"`
	Phase     Phase                 `json:"phase"`
	OwnerID   string                `json:"ownerId,omitempty"`
	PresetID  string                `json:"presetId,omitempty"`
	Players   []protocol.PlayerInfo `json:"players"`
	CreatedAt int64                 `json:"createdAt"`
}

// rosterMessage 需持有 mu
func (m *Manager) rosterMessage() *protocol.Message {
	payload := protocol.LobbyRosterPayload{
		GameID:  m.id,
		Players: make([]protocol.PlayerInfo, len(m.players)),
	}
	if m.owner != nil {
		payload.Owner = m.owner.ID
	}
	for i, p := range m.players {
		payload.Players[i] = playerInfo(p)
	}
	return codec.MustNewMessage(protocol.MsgLobbyRoster, payload)
}

func playerInfo(p *game.Player) protocol.PlayerInfo {
	return protocol.PlayerInfo{ID: p.ID, Name: p.Name, UserID: p.UserID}
}
