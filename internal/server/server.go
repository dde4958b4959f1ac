package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/palemoky/dealers-choice/internal/config"
	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/game/dealership"
	"github.com/palemoky/dealers-choice/internal/lobby"
	"github.com/palemoky/dealers-choice/internal/logger"
	"github.com/palemoky/dealers-choice/internal/server/handler"
	"github.com/palemoky/dealers-choice/internal/server/storage"
	"github.com/palemoky/dealers-choice/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server WebSocket 服务器
type Server struct {
	config  *config.Config
	redis   *redis.Client       // 未配置 Redis 时为 nil
	store   *storage.RedisStore // 同上
	lobby   *lobby.Directory
	handler *handler.Handler
	log     zerolog.Logger

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex
}

// NewServer 创建服务器实例
func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:  cfg,
		clients: make(map[string]*Client),
		log:     logger.With("server"),
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis 连接失败: %w", err)
		}
		s.redis = rdb
		s.store = storage.NewRedisStore(rdb)
	}

	s.lobby = lobby.New(s.lobbyOptions())
	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server: s,
		Lobby:  s.lobby,
	})

	s.log.Info().
		Bool("redis", s.store != nil).
		Int("max_players", cfg.Game.MaxPlayers).
		Int("min_players", cfg.Game.MinPlayers).
		Bool("testing", cfg.Game.Testing).
		Msg("⚙️ 服务器已初始化")
	return s, nil
}

func (s *Server) lobbyOptions() lobby.Options {
	opts := lobby.Options{
		Session: session.Options{
			MaxPlayers: s.config.Game.MaxPlayers,
			MinPlayers: s.config.Game.MinPlayers,
			Timings:    s.config.Game.Timings(),
			Engine:     dealership.New,
		},
		RoomTimeout: s.config.Game.RoomTimeoutDuration(),
		OnLeave: func(m *session.Manager, p *game.Player) {
			s.detachWhere(func(gameID string, player *game.Player) bool {
				return gameID == m.ID() && player == p
			})
		},
		OnDispose: func(m *session.Manager) {
			s.detachWhere(func(gameID string, _ *game.Player) bool {
				return gameID == m.ID()
			})
		},
	}
	// 避免把 nil 指针装进接口
	if s.store != nil {
		opts.Store = s.store
		opts.Session.Presets = s.store
	}
	return opts
}

// Router 返回 HTTP 路由
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/games", s.handleListGames)
		r.Get("/games/{gameID}", s.handleGetGame)
		r.Get("/presets/{presetID}", s.handleGetPreset)
		r.Put("/presets/{presetID}", s.handlePutPreset)
	})
	return r
}

// Run 运行后台任务（监控、超时会话清理），直到 ctx 取消
func (s *Server) Run(ctx context.Context) error {
	s.purgeSnapshots(ctx)
	go s.monitorStats(ctx)
	s.lobby.Run(ctx)
	return nil
}

// purgeSnapshots 删除上次运行遗留的会话快照，连接已断开的会话无法恢复
func (s *Server) purgeSnapshots(ctx context.Context) {
	if s.store == nil {
		return
	}
	ids, err := s.store.ListSessionIDs(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("读取遗留会话失败")
		return
	}

	n := 0
	for _, id := range ids {
		if _, err := s.lobby.Get(id); err == nil {
			continue
		}
		snap, err := s.store.LoadSession(ctx, id)
		if err == nil && snap != nil && snap.Phase == session.PhaseInProgress {
			s.log.Warn().Str("session", id).Int("players", len(snap.Players)).Msg("⚠️ 对局因重启中断")
		}
		if err := s.store.DeleteSession(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("session", id).Msg("删除遗留会话失败")
			continue
		}
		n++
	}
	if n > 0 {
		s.log.Info().Int("count", n).Msg("🧹 已清理遗留会话快照")
	}
}

// Lobby 会话目录
func (s *Server) Lobby() *lobby.Directory { return s.lobby }
