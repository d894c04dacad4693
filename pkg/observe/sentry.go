package observe

import (
	"encoding/json"
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

const (
	_sentryMaxErrorDepth        int           = 9
	_sentryFlushTimeout         time.Duration = 5 * time.Second
	_sentryServerRequestTimeout time.Duration = 5 * time.Second
	_logTimestampLayout                       = "2006-01-02T15:04:05.000Z07:00"
)

// SentryHook is a log sink: plugged into the logger's writers it forwards every
// error-level entry to Sentry as an event.
type SentryHook struct {
	appEnv  string
	appName string
	capture func(*sentry.Event) *sentry.EventID
}

func NewSentryHook(appEnv, appName, dsn string, isDebug bool) (*SentryHook, error) {
	if dsn == "" {
		return nil, errors.New("sentry: no DSN")
	}

	sentryTransport := sentry.NewHTTPTransport()
	sentryTransport.Timeout = _sentryServerRequestTimeout
	if err := sentry.Init(
		sentry.ClientOptions{
			AttachStacktrace: true,
			Debug:            isDebug,
			Dsn:              dsn,
			Environment:      appEnv,
			MaxErrorDepth:    _sentryMaxErrorDepth,
			ServerName:       appName,
			Transport:        sentryTransport,
		}); err != nil {
		return nil, errors.Wrap(err, "sentry init")
	}

	return &SentryHook{
		appEnv:  appEnv,
		appName: appName,
		capture: sentry.CaptureEvent,
	}, nil
}

func (*SentryHook) mapLevel(zl zapcore.Level) sentry.Level {
	switch zl {
	case zapcore.DebugLevel, zapcore.InvalidLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.FatalLevel, zapcore.PanicLevel, zapcore.DPanicLevel:
		return sentry.LevelFatal
	}

	return sentry.LevelDebug
}

type logEntry struct {
	Level      string `json:"level"`
	CallerFile string `json:"caller_file"`
	CallerLine int    `json:"caller_line"`
	CallerFunc string `json:"caller_func"`
	Stack      string `json:"stack"`
	Message    string `json:"msg"`
	Error      string `json:"error"`
	RunID      string `json:"run_id"`
	Step       string `json:"step"`
	Timestamp  string `json:"timestamp"`
}

// Write never fails: a line it cannot understand is reported and dropped so the
// primary log output is unaffected.
func (h *SentryHook) Write(p []byte) (n int, err error) {
	var entry logEntry
	if err := json.Unmarshal(p, &entry); err != nil {
		h.report(errors.Wrap(err, "[SentryHook] json.Unmarshal data"))
		return len(p), nil
	}

	level, err := zapcore.ParseLevel(entry.Level)
	if err != nil {
		h.report(errors.Wrap(err, "[SentryHook] parse zap level"))
		return len(p), nil
	}

	if level < zapcore.ErrorLevel || entry.Message == "" {
		return len(p), nil
	}

	h.capture(h.event(level, entry))

	return len(p), nil
}

func (h *SentryHook) event(level zapcore.Level, entry logEntry) *sentry.Event {
	timestamp, err := time.Parse(_logTimestampLayout, entry.Timestamp)
	if err != nil {
		timestamp = time.Now()
	}

	event := sentry.NewEvent()
	event.Environment = h.appEnv
	event.ServerName = h.appName
	event.Level = h.mapLevel(level)
	event.Timestamp = timestamp
	event.Message = entry.Message
	event.Extra["Error"] = entry.Error
	event.Extra["CallerFile"] = entry.CallerFile
	event.Extra["CallerLine"] = entry.CallerLine
	event.Extra["CallerFunc"] = entry.CallerFunc
	event.Extra["Stack"] = entry.Stack
	if entry.RunID != "" {
		event.Tags["run_id"] = entry.RunID
	}
	if entry.Step != "" {
		event.Tags["step"] = entry.Step
	}
	event.Exception = append(event.Exception, sentry.Exception{
		Type:       entry.Message,
		Value:      entry.Error,
		Stacktrace: sentry.NewStacktrace(),
	})

	return event
}

// Flush waits for buffered events; call it before the process exits.
func (h *SentryHook) Flush() bool {
	return sentry.Flush(_sentryFlushTimeout)
}

// report writes to the standard logger; the zap logger would loop back into Write.
func (h *SentryHook) report(err error) {
	log.Println(err.Error())
}
