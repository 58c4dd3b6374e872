package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

const timeFormat = "2006-01-02 15:04:05"

func init() {
	// 默认使用 info 级别，启动后由配置调整
	SetLevel(slog.LevelInfo)
}

// New 创建 tint 格式的 logger
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		AddSource:  level <= slog.LevelDebug,
		Level:      level,
		TimeFormat: timeFormat,
		NoColor:    !isTerminal(w),
	}))
}

// SetLevel 设置全局日志级别
func SetLevel(level slog.Level) {
	slog.SetDefault(New(os.Stdout, level))
}

// SetLevelWithStr 通过字符串设置日志级别
func SetLevelWithStr(levelStr string) {
	SetLevel(ParseLevel(levelStr))
}

// ParseLevel 解析日志级别，无法识别时返回 info
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
