package audit

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// AuthorizationEvent is a request stopped by an authorization predicate.
// Cause is recorded here and never returned to the caller.
type AuthorizationEvent struct {
	Subject   string
	ClientIP  string
	Predicate string
	Method    string
	Path      string
	Cause     string
}

func (e AuthorizationEvent) Kind() string { return "check" }

func (e AuthorizationEvent) Message() string {
	var sb strings.Builder
	if e.Subject == "" {
		sb.WriteString("anonymous")
	} else {
		sb.WriteString(e.Subject)
	}
	sb.WriteString(" was denied " + e.Method + " " + e.Path + " by " + e.Predicate)
	if e.Cause != "" {
		sb.WriteString(": " + e.Cause)
	}
	return sb.String()
}

func (e AuthorizationEvent) Level() logrus.Level { return logrus.WarnLevel }

func (e AuthorizationEvent) Fields() logrus.Fields {
	return logrus.Fields{
		"user":      e.Subject,
		"client":    e.ClientIP,
		"predicate": e.Predicate,
		"operation": e.Method + " " + e.Path,
		"cause":     e.Cause,
		"result":    "denied",
	}
}
