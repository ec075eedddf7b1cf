package audit

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LoginEvent is a password login attempt
type LoginEvent struct {
	Email        string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e LoginEvent) Kind() string { return "authn" }

func (e LoginEvent) Message() string {
	if e.Success {
		return e.Email + " successfully logged in"
	}
	if e.ErrorMessage == "" {
		return e.Email + " failed to log in"
	}
	return fmt.Sprintf("%s failed to log in: %s", e.Email, e.ErrorMessage)
}

func (e LoginEvent) Level() logrus.Level { return outcome(e.Success) }

func (e LoginEvent) Fields() logrus.Fields {
	return logrus.Fields{
		"user":    e.Email,
		"client":  e.ClientIP,
		"success": e.Success,
	}
}
