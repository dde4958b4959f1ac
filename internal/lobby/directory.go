// Package lobby 会话目录：创建、查找、列出和回收会话
package lobby

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/palemoky/dealers-choice/internal/apperrors"
	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/logger"
	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
	"github.com/palemoky/dealers-choice/internal/session"
)

const (
	cleanupInterval = time.Minute
	storeTimeout    = 2 * time.Second
	storeQueueSize  = 256
)

// Store 会话快照存储，Directory 只做写入
type Store interface {
	SaveSession(ctx context.Context, snap *session.Snapshot) error
	DeleteSession(ctx context.Context, id string) error
}

// Options 目录参数
type Options struct {
	Session     session.Options // 新会话的模板，OnLeave 会被目录接管
	Store       Store           // 可为 nil
	RoomTimeout time.Duration   // 大厅阶段会话的最长存活时间，0 表示不清理

	// OnLeave 玩家通过会话命令离开后调用
	OnLeave func(m *session.Manager, p *game.Player)
	// OnDispose 会话被回收后调用
	OnDispose func(m *session.Manager)
}

// storeOp 一次快照写入或删除
type storeOp struct {
	snap     *session.Snapshot
	deleteID string
}

// Directory 会话目录
type Directory struct {
	opts Options
	log  zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*session.Manager

	// 快照写入由单个 goroutine 按提交顺序执行
	writes   chan storeOp
	stop     chan struct{}
	stopOnce sync.Once
}

// New 创建目录
func New(opts Options) *Directory {
	d := &Directory{
		opts:     opts,
		log:      logger.With("lobby"),
		sessions: make(map[string]*session.Manager),
		writes:   make(chan storeOp, storeQueueSize),
		stop:     make(chan struct{}),
	}
	if opts.Store != nil {
		go d.storeLoop()
	}
	return d
}

// Create 创建新会话
func (d *Directory) Create() *session.Manager {
	opts := d.opts.Session
	opts.OnLeave = d.handleLeave
	m := session.New(opts)

	d.mu.Lock()
	d.sessions[m.ID()] = m
	d.mu.Unlock()

	d.persist(m)
	d.log.Info().Str("session", m.ID()).Msg("🏠 会话已创建")
	return m
}

// Get 查找会话
func (d *Directory) Get(id string) (*session.Manager, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.sessions[id]
	if !ok {
		return nil, apperrors.ErrGameNotFound
	}
	return m, nil
}

// Join 加入会话
func (d *Directory) Join(id, userID, name string, s session.Sender) (*session.Manager, *game.Player, error) {
	m, err := d.Get(id)
	if err != nil {
		return nil, nil, err
	}
	p, err := m.AddPlayer(userID, name, s)
	if err != nil {
		return nil, nil, err
	}
	d.persist(m)
	return m, p, nil
}

// Disconnect 玩家的连接断开，会话无在线成员时回收
func (d *Directory) Disconnect(m *session.Manager, p *game.Player) {
	if m.Disconnect(p) {
		d.Remove(m.ID())
		return
	}
	d.persist(m)
}

// handleLeave 会话内 leave 命令的回调
func (d *Directory) handleLeave(m *session.Manager, p *game.Player, empty bool) {
	if d.opts.OnLeave != nil {
		d.opts.OnLeave(m, p)
	}
	if empty {
		d.Remove(m.ID())
		return
	}
	d.persist(m)
}

// List 所有会话摘要，按创建时间排序
func (d *Directory) List() []protocol.GameInfo {
	ms := d.all()
	slices.SortFunc(ms, func(a, b *session.Manager) int {
		return cmp.Compare(a.CreatedAt().UnixNano(), b.CreatedAt().UnixNano())
	})

	infos := make([]protocol.GameInfo, 0, len(ms))
	for _, m := range ms {
		infos = append(infos, m.Info())
	}
	return infos
}

// Remove 回收会话
func (d *Directory) Remove(id string) {
	d.mu.Lock()
	m, ok := d.sessions[id]
	delete(d.sessions, id)
	d.mu.Unlock()
	if !ok {
		return
	}

	m.Close()
	d.enqueue(storeOp{deleteID: id})
	if d.opts.OnDispose != nil {
		d.opts.OnDispose(m)
	}
	d.log.Info().Str("session", id).Msg("🏠 会话已回收")
}

// Count 会话总数
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}

// ActiveGamesCount 进行中的对局数
func (d *Directory) ActiveGamesCount() int {
	n := 0
	for _, m := range d.all() {
		if m.Running() {
			n++
		}
	}
	return n
}

// Persist 写入会话快照，开局等状态变化后由调用方触发
func (d *Directory) Persist(m *session.Manager) { d.persist(m) }

func (d *Directory) persist(m *session.Manager) {
	if d.opts.Store == nil {
		return
	}
	snap := m.Snapshot()
	d.enqueue(storeOp{snap: &snap})
}

func (d *Directory) enqueue(op storeOp) {
	if d.opts.Store == nil {
		return
	}
	select {
	case d.writes <- op:
	case <-d.stop:
	}
}

func (d *Directory) storeLoop() {
	for {
		select {
		case op := <-d.writes:
			d.apply(op)
		case <-d.stop:
			return
		}
	}
}

func (d *Directory) apply(op storeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if op.snap != nil {
		if err := d.opts.Store.SaveSession(ctx, op.snap); err != nil {
			d.log.Warn().Err(err).Str("session", op.snap.ID).Msg("保存会话快照失败")
		}
		return
	}
	if err := d.opts.Store.DeleteSession(ctx, op.deleteID); err != nil {
		d.log.Warn().Err(err).Str("session", op.deleteID).Msg("删除会话快照失败")
	}
}

// Run 定期清理超时的大厅会话，直到 ctx 取消
func (d *Directory) Run(ctx context.Context) {
	if d.opts.RoomTimeout <= 0 {
		return
	}
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			d.Cleanup(now)
		}
	}
}

// Cleanup 回收创建时间早于 now-RoomTimeout 且仍在大厅阶段的会话，返回回收数量
func (d *Directory) Cleanup(now time.Time) int {
	if d.opts.RoomTimeout <= 0 {
		return 0
	}

	n := 0
	for _, m := range d.all() {
		if m.Phase() != session.PhasePending || now.Sub(m.CreatedAt()) <= d.opts.RoomTimeout {
			continue
		}
		m.Broadcast(codec.NewErrorMessageWithText(protocol.ErrCodeUnknown, "房间超时已关闭"))
		d.Remove(m.ID())
		d.log.Info().Str("session", m.ID()).Msg("🧹 会话超时已清理")
		n++
	}
	return n
}

// Close 回收所有会话并停止快照写入
func (d *Directory) Close() {
	for _, m := range d.all() {
		d.Remove(m.ID())
	}
	d.stopOnce.Do(func() { close(d.stop) })
}

func (d *Directory) all() []*session.Manager {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*session.Manager, 0, len(d.sessions))
	for _, m := range d.sessions {
		out = append(out, m)
	}
	return out
}
