package audit

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// MemberEvent is a membership grant or revocation on a database
type MemberEvent struct {
	Actor      string
	ClientIP   string
	DatabaseID int64
	UserID     int64
	Operation  string // add or remove
	Success    bool
}

func (e MemberEvent) Kind() string { return "members" }

func (e MemberEvent) Message() string {
	verb, prep := "added", "to"
	if e.Operation == "remove" {
		verb, prep = "removed", "from"
	}
	if !e.Success {
		verb = "failed to " + e.Operation
	}
	return fmt.Sprintf("%s %s user %d %s database %d", e.Actor, verb, e.UserID, prep, e.DatabaseID)
}

func (e MemberEvent) Level() logrus.Level { return outcome(e.Success) }

func (e MemberEvent) Fields() logrus.Fields {
	return logrus.Fields{
		"user":      e.Actor,
		"client":    e.ClientIP,
		"database":  e.DatabaseID,
		"member":    e.UserID,
		"operation": e.Operation,
		"success":   e.Success,
	}
}
