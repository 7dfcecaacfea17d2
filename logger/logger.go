package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Logger 是 zap SugaredLogger 的薄封装，供 CLI 与各子系统共享。
type Logger struct {
	sugar *zap.SugaredLogger
}

// New 按运行模式构造日志器，mode 为 "prod"/"production" 时输出 JSON。
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: zl.Sugar()}, nil
}

// Nop 返回丢弃所有输出的日志器，核心包在未注入日志器时使用它。
func Nop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

// Sync 刷新缓冲的日志。
func (l *Logger) Sync() {
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.sugar.Warnw(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// With 返回附加固定字段的日志器。
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}
