package logger

import (
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Event names.
const (
	MsgSessionStart = "session_start"
	MsgSessionEnd   = "session_end"
	MsgDispatch     = "dispatch"
	MsgSyntaxError  = "syntax_error"
)

// Logger captures shell events.
type Logger struct {
	zap *zap.Logger
}

// NewJsonLinesLogger creates a Logger that exports logs in newline
// delimited JSON object format.
func NewJsonLinesLogger(w io.Writer) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		zapcore.InfoLevel,
	)
	return &Logger{zap: zap.New(core)}
}

// NewNop creates a Logger that drops everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// Sync flushes buffered events.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// NewSession creates a logger with attached session ID.
func (l *Logger) NewSession() *SessionLogger {
	return l.session(uuid.NewString())
}

func (l *Logger) session(id string) *SessionLogger {
	return &SessionLogger{zap: l.zap.With(zap.String("session_id", id)), sessionID: id}
}

// SessionLogger logs messages with a shared session ID.
type SessionLogger struct {
	zap       *zap.Logger
	sessionID string
}

// SessionID returns the ID attached to every event.
func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

// SessionStart records the start of a session in dir.
func (l *SessionLogger) SessionStart(dir string) {
	l.zap.Info(MsgSessionStart, zap.String("dir", dir))
}

// SessionEnd records the status the session exits with.
func (l *SessionLogger) SessionEnd(status int) {
	l.zap.Info(MsgSessionEnd, zap.Int("status", status))
}

// Dispatch records one command. path is empty for builtins and for
// commands that weren't found.
func (l *SessionLogger) Dispatch(argv []string, builtin bool, path string, status int) {
	fields := []zap.Field{
		zap.Strings("command", argv),
		zap.Bool("builtin", builtin),
		zap.Int("status", status),
	}
	if path != "" {
		fields = append(fields, zap.String("path", path))
	}
	l.zap.Info(MsgDispatch, fields...)
}

// SyntaxError records a line that couldn't be tokenized.
func (l *SessionLogger) SyntaxError(line string, err error) {
	l.zap.Info(MsgSyntaxError, zap.String("line", line), zap.Error(err))
}
