package audit

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Event is one entry of the audit trail
type Event interface {
	// Kind groups events in the trail: authn, check, members or update.
	Kind() string
	Message() string
	Level() logrus.Level
	Fields() logrus.Fields
}

// Logger writes audit events as JSON lines, separate from the application
// log so the trail can be shipped on its own. A nil or disabled Logger
// discards events.
type Logger struct {
	log     *logrus.Logger
	enabled bool
}

// NewLogger creates an audit logger writing to w, or stdout when w is nil
func NewLogger(w io.Writer, enabled bool) *Logger {
	if w == nil {
		w = os.Stdout
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat:   time.RFC3339Nano,
		DisableHTMLEscape: true,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg:  "message",
			logrus.FieldKeyTime: "at",
		},
	})
	return &Logger{log: l, enabled: enabled}
}

func (l *Logger) Enabled() bool {
	return l != nil && l.enabled
}

// Log records event. Empty string fields are left out.
func (l *Logger) Log(event Event) {
	if !l.Enabled() {
		return
	}
	fields := logrus.Fields{"audit": event.Kind()}
	for k, v := range event.Fields() {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		fields[k] = v
	}
	l.log.WithFields(fields).Log(event.Level(), event.Message())
}

// outcome maps success onto the level used by every event kind
func outcome(success bool) logrus.Level {
	if success {
		return logrus.InfoLevel
	}
	return logrus.WarnLevel
}
