// Package logger настраивает zap с ротацией файла через lumberjack
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config определяет настройки журнала
type Config struct {
	Level      string
	OutputPath string
	MaxSize    int // Мегабайты до ротации
	MaxBackups int
	MaxAge     int // Дни
	Compress   bool
	// Console дублирует записи в Stderr. В TUI выключается, чтобы не портить экран.
	Console bool
}

// ParseLevel переводит имя уровня в zapcore.Level
func ParseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("неизвестный уровень журнала: %q", name)
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// New создает логгер. Без файла и консоли возвращается zap.NewNop().
func New(config Config) (*zap.Logger, error) {
	level, err := ParseLevel(config.Level)
	if err != nil {
		return nil, err
	}

	var cores []zapcore.Core
	if config.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0755); err != nil {
			return nil, fmt.Errorf("ошибка создания каталога журнала: %w", err)
		}
		cores = append(cores, newCore(&lumberjack.Logger{
			Filename:   config.OutputPath,
			MaxSize:    orDefault(config.MaxSize, 10),
			MaxBackups: orDefault(config.MaxBackups, 3),
			MaxAge:     orDefault(config.MaxAge, 28),
			Compress:   config.Compress,
		}, level))
	}
	if config.Console {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.Lock(os.Stderr),
			level,
		))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// NewWriter создает логгер, пишущий JSON в w
func NewWriter(w io.Writer, level zapcore.Level) *zap.Logger {
	return zap.New(newCore(w, level))
}

func newCore(w io.Writer, level zapcore.Level) zapcore.Core {
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(w),
		level,
	)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
