package logger

import (
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init 初始化全局日志，pretty 为 true 时输出彩色控制台格式
func Init(level string, pretty bool) {
	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.DateTime}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	if err != nil {
		log.Warn().Str("level", level).Msg("⚠️ 未知日志级别，使用 info")
	}
}

// With 返回带组件名的子日志
func With(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

// LogPanic logs a panic with stack trace
func LogPanic(r any) {
	log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("💥 panic recovered")
}
