package log

import (
	"bytes"
	"strings"

	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugLogger returns logged messages as a string in tests.
type DebugLogger interface {
	Logger
	Truncate()
	AllMessages() string
	WarnAndErrorMessages() string
}

type debugLogger struct {
	*zapLogger
	buffer *debugBuffer
}

// debugBuffer guards the underlying buffer with one mutex shared by the
// zap core writes and the message reads.
type debugBuffer struct {
	lock   *deadlock.Mutex
	buffer bytes.Buffer
}

func (b *debugBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buffer.Write(p)
}

func (b *debugBuffer) Sync() error {
	return nil
}

func (b *debugBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buffer.String()
}

func (b *debugBuffer) Truncate() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.buffer.Reset()
}

// NewDebugLogger creates a logger that records all messages in memory.
func NewDebugLogger() DebugLogger {
	buffer := &debugBuffer{lock: &deadlock.Mutex{}}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: "  ",
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		buffer,
		DebugLevel,
	)
	return &debugLogger{
		zapLogger: loggerFromZap(zap.New(core)),
		buffer:    buffer,
	}
}

func (l *debugLogger) Truncate() {
	l.buffer.Truncate()
}

func (l *debugLogger) AllMessages() string {
	return l.buffer.String()
}

func (l *debugLogger) WarnAndErrorMessages() string {
	var out strings.Builder
	for _, line := range strings.Split(l.AllMessages(), "\n") {
		if strings.HasPrefix(line, "WARN") || strings.HasPrefix(line, "ERROR") {
			out.WriteString(line)
			out.WriteString("\n")
		}
	}
	return out.String()
}
