package audit

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ChangeEvent is a create, update, delete, install or uninstall of a user,
// database, app or installation
type ChangeEvent struct {
	Actor     string
	ClientIP  string
	Entity    string
	Target    string
	Operation string
	Success   bool
}

func (e ChangeEvent) Kind() string { return "update" }

func (e ChangeEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s performed %s on %s %s", e.Actor, e.Operation, e.Entity, e.Target)
	}
	return fmt.Sprintf("%s tried to perform %s on %s %s", e.Actor, e.Operation, e.Entity, e.Target)
}

func (e ChangeEvent) Level() logrus.Level { return outcome(e.Success) }

func (e ChangeEvent) Fields() logrus.Fields {
	return logrus.Fields{
		"user":      e.Actor,
		"client":    e.ClientIP,
		"entity":    e.Entity,
		"target":    e.Target,
		"operation": e.Operation,
		"success":   e.Success,
	}
}
