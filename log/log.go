package log

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Level uint32

const (
	LevelFatal = Level(logrus.FatalLevel)
	LevelError = Level(logrus.ErrorLevel)
	LevelWarn  = Level(logrus.WarnLevel)
	LevelInfo  = Level(logrus.InfoLevel)
	LevelDebug = Level(logrus.DebugLevel)
	LevelTrace = Level(logrus.TraceLevel)
)

type contextKey string

const loggerCtxKey = contextKey("logger")

var (
	currentLevel  = LevelError
	loggerMu      sync.RWMutex
	defaultLogger = newDefaultLogger()
)

func newDefaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.TraceLevel)
	return l
}

// SetLevel sets the global log level used by all log functions.
func SetLevel(l Level) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	currentLevel = l
}

// SetLevelString parses the level name and sets it as the global level.
// Unknown names fall back to "error".
func SetLevelString(l string) {
	SetLevel(levelFromString(l))
}

func levelFromString(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "fatal":
		return LevelFatal
	case "error":
		return LevelError
	case "warn", "warning":
		return LevelWarn
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	case "trace":
		return LevelTrace
	}
	return LevelError
}

func CurrentLevel() Level {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return currentLevel
}

func IsGreaterOrEqualTo(level Level) bool {
	return CurrentLevel() >= level
}

// SetDefaultLogger replaces the underlying logrus logger. Used by tests to
// install hooks.
func SetDefaultLogger(l *logrus.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = l
}

func logger() *logrus.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// NewContext returns a context carrying a logger with the given key/value
// pairs attached. Pairs already present in ctx are kept.
func NewContext(ctx context.Context, keyValuePairs ...interface{}) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	l, ok := ctx.Value(loggerCtxKey).(*logrus.Entry)
	if !ok {
		l = createNewLogger()
	}
	l = addFields(l, keyValuePairs)
	return context.WithValue(ctx, loggerCtxKey, l)
}

// ShortDur formats a duration rounded for log output.
func ShortDur(d time.Duration) string {
	var s string
	switch {
	case d > time.Hour:
		s = d.Round(time.Hour).String()
	case d > time.Minute:
		s = d.Round(time.Minute).String()
	case d > time.Second:
		s = d.Round(time.Second).String()
	case d > time.Millisecond:
		s = d.Round(time.Millisecond).String()
	case d > time.Microsecond:
		s = d.Round(time.Microsecond).String()
	default:
		return d.String()
	}
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}

func Fatal(args ...interface{}) {
	log(LevelFatal, args...)
	os.Exit(1)
}

func Error(args ...interface{}) {
	log(LevelError, args...)
}

func Warn(args ...interface{}) {
	log(LevelWarn, args...)
}

func Info(args ...interface{}) {
	log(LevelInfo, args...)
}

func Debug(args ...interface{}) {
	log(LevelDebug, args...)
}

func Trace(args ...interface{}) {
	log(LevelTrace, args...)
}

func log(level Level, args ...interface{}) {
	if !IsGreaterOrEqualTo(level) || len(args) == 0 {
		return
	}
	l, msg := parseArgs(args)
	l.Log(logrus.Level(level), msg)
}

// parseArgs accepts an optional leading context (or *logrus.Entry), then the
// message, then key/value pairs. A bare error among the pairs is logged
// under the "error" key.
func parseArgs(args []interface{}) (*logrus.Entry, string) {
	var l *logrus.Entry
	if args[0] == nil {
		l = createNewLogger()
		args = args[1:]
	} else if extracted, err := extractLogger(args[0]); err == nil {
		l = extracted
		args = args[1:]
	} else {
		l = createNewLogger()
	}
	if len(args) == 0 {
		return l, ""
	}
	l = addFields(l, args[1:])
	return l, message(args[0])
}

func message(msg interface{}) string {
	switch m := msg.(type) {
	case error:
		return m.Error()
	case string:
		return m
	case nil:
		return ""
	}
	return fmt.Sprint(msg)
}

func createNewLogger() *logrus.Entry {
	return logrus.NewEntry(logger())
}

func extractLogger(ctx interface{}) (*logrus.Entry, error) {
	switch c := ctx.(type) {
	case *logrus.Entry:
		return c, nil
	case context.Context:
		if l, ok := c.Value(loggerCtxKey).(*logrus.Entry); ok {
			return l, nil
		}
		return createNewLogger(), nil
	}
	return nil, errors.New("no logger found")
}

func addFields(l *logrus.Entry, keyValuePairs []interface{}) *logrus.Entry {
	for i := 0; i < len(keyValuePairs); i++ {
		switch name := keyValuePairs[i].(type) {
		case error:
			l = l.WithField("error", name.Error())
		case string:
			if i+1 >= len(keyValuePairs) {
				l = l.WithField(name, "!!!!Invalid number of arguments in log call!!!!")
				continue
			}
			i++
			switch v := keyValuePairs[i].(type) {
			case time.Duration:
				l = l.WithField(name, ShortDur(v))
			case error:
				l = l.WithField(name, v.Error())
			default:
				l = l.WithField(name, v)
			}
		}
	}
	return l
}
