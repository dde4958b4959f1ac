package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/palemoky/dealers-choice/internal/choice"
)

// Config 服务端配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host            string `yaml:"host" env:"DC_HOST"`
	Port            int    `yaml:"port" env:"DC_PORT"`
	ShutdownTimeout int    `yaml:"shutdown_timeout"` // 优雅关闭超时（秒）
}

// RedisConfig Redis 配置，Addr 为空时不持久化
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"DC_REDIS_ADDR"`
	Password string `yaml:"password" env:"DC_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"DC_REDIS_DB"`
}

// GameConfig 游戏配置
type GameConfig struct {
	MaxPlayers        int  `yaml:"max_players"`
	MinPlayers        int  `yaml:"min_players"`
	RoomTimeout       int  `yaml:"room_timeout"`         // 大厅等待超时（分钟）
	BidTimeoutMs      int  `yaml:"bid_timeout_ms"`       // 竞价无人加价的收尾时长
	BidResultsDelayMs int  `yaml:"bid_results_delay_ms"` // 竞价结束后的展示时长
	RPSCountdownMs    int  `yaml:"rps_countdown_ms"`     // 猜拳倒计时
	RPSResultsDelayMs int  `yaml:"rps_results_delay_ms"` // 猜拳结果展示时长
	Testing           bool `yaml:"testing" env:"DC_TESTING"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level" env:"DC_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"DC_LOG_PRETTY"`
}

// RoomTimeoutDuration 返回大厅等待超时时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// Timings 返回选择处理器使用的计时参数
func (c *GameConfig) Timings() choice.Timings {
	if c.Testing {
		return choice.TestTimings()
	}
	return choice.Timings{
		BidTimeout:      time.Duration(c.BidTimeoutMs) * time.Millisecond,
		BidResultsDelay: time.Duration(c.BidResultsDelayMs) * time.Millisecond,
		RPSCountdown:    time.Duration(c.RPSCountdownMs) * time.Millisecond,
		RPSResultsDelay: time.Duration(c.RPSResultsDelayMs) * time.Millisecond,
	}
}

// ShutdownTimeoutDuration 返回优雅关闭超时时长
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// Load 加载配置文件，文件不存在时使用默认配置，最后应用环境变量覆盖
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = Default()
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults 设置默认值
func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = d.Game.MaxPlayers
	}
	if c.Game.MinPlayers == 0 {
		c.Game.MinPlayers = d.Game.MinPlayers
	}
	if c.Game.RoomTimeout == 0 {
		c.Game.RoomTimeout = d.Game.RoomTimeout
	}
	if c.Game.BidTimeoutMs == 0 {
		c.Game.BidTimeoutMs = d.Game.BidTimeoutMs
	}
	if c.Game.BidResultsDelayMs == 0 {
		c.Game.BidResultsDelayMs = d.Game.BidResultsDelayMs
	}
	if c.Game.RPSCountdownMs == 0 {
		c.Game.RPSCountdownMs = d.Game.RPSCountdownMs
	}
	if c.Game.RPSResultsDelayMs == 0 {
		c.Game.RPSResultsDelayMs = d.Game.RPSResultsDelayMs
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// Default 返回默认配置
func Default() *Config {
	t := choice.DefaultTimings()
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ShutdownTimeout: 10,
		},
		Game: GameConfig{
			MaxPlayers:        6,
			MinPlayers:        2,
			RoomTimeout:       30,
			BidTimeoutMs:      int(t.BidTimeout.Milliseconds()),
			BidResultsDelayMs: int(t.BidResultsDelay.Milliseconds()),
			RPSCountdownMs:    int(t.RPSCountdown.Milliseconds()),
			RPSResultsDelayMs: int(t.RPSResultsDelay.Milliseconds()),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
