package log

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapLogger is the default implementation of the Logger interface.
type zapLogger struct {
	sugar  *zap.SugaredLogger
	prefix string
}

// NewLogger creates a logger writing to the writer.
// If verbose = false, only info and higher levels are written.
func NewLogger(writer io.Writer, verbose bool) Logger {
	level := InfoLevel
	if verbose {
		level = DebugLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: "  ",
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(writer)),
		level,
	)
	return loggerFromZap(zap.New(core))
}

// NewNopLogger creates a logger that drops all messages.
func NewNopLogger() Logger {
	return loggerFromZap(zap.NewNop())
}

func loggerFromZap(l *zap.Logger) *zapLogger {
	return &zapLogger{sugar: l.Sugar()}
}

func (l *zapLogger) AddPrefix(prefix string) Logger {
	return &zapLogger{sugar: l.sugar, prefix: l.prefix + prefix}
}

func (l *zapLogger) Debug(args ...any) {
	l.sugar.Debug(l.message(args))
}

func (l *zapLogger) Info(args ...any) {
	l.sugar.Info(l.message(args))
}

func (l *zapLogger) Warn(args ...any) {
	l.sugar.Warn(l.message(args))
}

func (l *zapLogger) Error(args ...any) {
	l.sugar.Error(l.message(args))
}

func (l *zapLogger) Debugf(template string, args ...any) {
	l.sugar.Debug(l.messagef(template, args))
}

func (l *zapLogger) Infof(template string, args ...any) {
	l.sugar.Info(l.messagef(template, args))
}

func (l *zapLogger) Warnf(template string, args ...any) {
	l.sugar.Warn(l.messagef(template, args))
}

func (l *zapLogger) Errorf(template string, args ...any) {
	l.sugar.Error(l.messagef(template, args))
}

func (l *zapLogger) Sync() error {
	return l.sugar.Sync()
}

func (l *zapLogger) message(args []any) string {
	return l.prefix + fmt.Sprint(args...)
}

func (l *zapLogger) messagef(template string, args []any) string {
	return l.prefix + fmt.Sprintf(template, args...)
}
