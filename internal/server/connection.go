package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/palemoky/dealers-choice/internal/apperrors"
	"github.com/palemoky/dealers-choice/internal/game"
	"github.com/palemoky/dealers-choice/internal/types"
)

const maxPresetBody = 1 << 20

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// 维护模式检查（最优先）
	if s.IsMaintenanceMode() {
		s.log.Info().Str("ip", r.RemoteAddr).Msg("🔧 维护模式，拒绝新连接")
		http.Error(w, "Server is under maintenance, please try again later", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket 升级失败")
		return
	}

	client := NewClient(s, conn, r.URL.Query().Get("name"))
	client.IP = r.RemoteAddr
	s.registerClient(client)

	s.log.Info().Str("client", client.ID).Str("name", client.Name).Str("ip", client.IP).Msg("✅ 玩家已连接")

	// 启动客户端读写协程
	go client.ReadPump()
	go client.WritePump()
}

// handleHealth 健康检查接口
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"online":      s.OnlineCount(),
		"games":       s.lobby.Count(),
		"activeGames": s.lobby.ActiveGamesCount(),
		"maintenance": s.IsMaintenanceMode(),
	})
}

// handleListGames 会话列表
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.lobby.List())
}

// handleGetGame 单个会话的快照
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	m, err := s.lobby.Get(chi.URLParam(r, "gameID"))
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", apperrors.ErrGameNotFound.Message)
		return
	}
	respondJSON(w, http.StatusOK, m.Snapshot())
}

// handleGetPreset 读取预设
func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "presetID")
	if id == game.DefaultPresetID {
		respondJSON(w, http.StatusOK, game.DefaultPreset())
		return
	}
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "no_storage", "未配置存储")
		return
	}

	preset, err := s.store.LoadPreset(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Str("preset", id).Msg("读取预设失败")
		respondError(w, http.StatusInternalServerError, "storage", err.Error())
		return
	}
	if preset == nil {
		respondError(w, http.StatusNotFound, "not_found", apperrors.ErrPresetNotFound.Message)
		return
	}
	respondJSON(w, http.StatusOK, preset)
}

// handlePutPreset 保存预设，请求体为 JSON 或 YAML
func (s *Server) handlePutPreset(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "no_storage", "未配置存储")
		return
	}

	preset, err := decodePreset(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	preset.ID = chi.URLParam(r, "presetID")
	if preset.ID == game.DefaultPresetID {
		respondError(w, http.StatusBadRequest, "reserved", "默认预设不可覆盖")
		return
	}

	if err := s.store.SavePreset(r.Context(), preset); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_preset", err.Error())
		return
	}
	s.log.Info().Str("preset", preset.ID).Int("cars", len(preset.Cars)).Msg("📦 预设已保存")
	respondJSON(w, http.StatusOK, preset)
}

func decodePreset(r *http.Request) (*game.Preset, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPresetBody))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}

	var preset game.Preset
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		err = yaml.Unmarshal(body, &preset)
	default:
		err = json.Unmarshal(body, &preset)
	}
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{
		"error":   code,
		"message": message,
	})
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		s.log.Info().Str("client", client.ID).Str("name", client.Name).Msg("❌ 玩家已断开")
	}
}

// detachWhere 解除匹配的连接与会话的绑定
func (s *Server) detachWhere(match func(gameID string, p *game.Player) bool) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		if gameID, p := c.GetGame(); p != nil && match(gameID, p) {
			c.Detach()
		}
	}
}

var _ types.ClientInterface = (*Client)(nil)
