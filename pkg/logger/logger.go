// Package logger carries a logrus entry through the request context.
//
// Middleware stamps each request with an id (echoed in X-Request-Id) and
// identity resolution later adds the caller, so every line a predicate or
// handler logs for that request can be correlated.
package logger

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader is read from incoming requests and set on every response
const RequestIDHeader = "X-Request-Id"

const (
	fieldRequestID = "requestID"
	fieldIdentity  = "identity"
)

type entryKey struct{}

// InitLogger configures the standard logrus logger. format is "json" or
// anything else for text; an unparsable level means info.
func InitLogger(level, format string) {
	var f logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"}
	if strings.EqualFold(format, "json") {
		f = &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	}
	logrus.SetFormatter(f)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// Default is the standard logger with no request fields
func Default() *logrus.Entry {
	return logrus.NewEntry(logrus.StandardLogger())
}

// Middleware gives every request an entry tagged with its request id. A
// caller-supplied id is kept when it is a UUID, otherwise a new one is made.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		if err != nil {
			id = uuid.New()
		}
		w.Header().Set(RequestIDHeader, id.String())

		entry := Default().WithField(fieldRequestID, id.String())
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), entry)))
	})
}

// NewContext returns ctx carrying entry
func NewContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, entryKey{}, entry)
}

// FromContext returns the request entry, or Default outside a request
func FromContext(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(entryKey{}).(*logrus.Entry); ok {
			return entry
		}
	}
	return Default()
}

// WithIdentity adds the caller to the request entry
func WithIdentity(ctx context.Context, subject string) context.Context {
	return NewContext(ctx, FromContext(ctx).WithField(fieldIdentity, subject))
}

// RequestID is the id Middleware assigned, empty outside a request
func RequestID(ctx context.Context) string {
	id, _ := FromContext(ctx).Data[fieldRequestID].(string)
	return id
}
