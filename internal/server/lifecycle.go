package server

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/palemoky/dealers-choice/internal/protocol"
	"github.com/palemoky/dealers-choice/internal/protocol/codec"
)

const (
	statsInterval         = 30 * time.Second
	shutdownCheckInterval = time.Second
)

// OnlineCount 当前连接数
func (s *Server) OnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// notify 把 msg 发给满足 match 的连接，返回送达的连接数
func (s *Server) notify(msg *protocol.Message, match func(*Client) bool) int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	n := 0
	for _, client := range s.clients {
		if match(client) {
			client.SendMessage(msg)
			n++
		}
	}
	return n
}

// idle 未加入任何会话的连接
func idle(c *Client) bool {
	_, p := c.GetGame()
	return p == nil
}

func everyone(*Client) bool { return true }

// monitorStats 定期输出服务器状态
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			s.log.Info().
				Int("online", s.OnlineCount()).
				Int("games", s.lobby.Count()).
				Int("active_games", s.lobby.ActiveGamesCount()).
				Int("goroutines", runtime.NumGoroutine()).
				Float64("mem_mb", float64(m.Alloc)/1024/1024).
				Msg("📊 [监控]")
		}
	}
}

// EnterMaintenanceMode 进入维护模式，拒绝新连接与新会话
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	n := s.notify(codec.NewErrorMessageWithText(protocol.ErrCodeMaintenance, "👷🏻‍♂️ 维护模式：停止新的游戏创建"), idle)
	s.log.Info().Int("notified", n).Msg("🔧 进入维护模式：停止新连接和游戏创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 进入维护模式，等待进行中的对局结束或超时后关闭
func (s *Server) GracefulShutdown(timeout time.Duration) {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(shutdownCheckInterval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		active := s.lobby.ActiveGamesCount()
		if active == 0 {
			s.log.Info().Msg("✅ 所有对局已结束")
			break
		}
		s.log.Info().Int("active_games", active).Msg("⏳ 等待对局结束...")
		<-ticker.C
	}

	if active := s.lobby.ActiveGamesCount(); active > 0 {
		n := s.notify(codec.NewErrorMessageWithText(protocol.ErrCodeMaintenance,
			fmt.Sprintf("🚧 服务器停机维护，%d 局游戏被中止", active)), everyone)
		s.log.Warn().Int("active_games", active).Int("notified", n).Msg("⚠️ 超时，强制结束进行中的对局")
	}

	s.Shutdown()
}

// Shutdown 关闭所有会话与连接
func (s *Server) Shutdown() {
	s.lobby.Close()

	s.clientsMu.RLock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.RUnlock()

	if s.redis != nil {
		_ = s.redis.Close()
	}

	s.log.Info().Msg("服务器已关闭")
}
