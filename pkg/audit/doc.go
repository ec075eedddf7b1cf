// Package audit records security-relevant operations as JSON lines on a
// writer of their own: logins, denied requests, membership grants and
// revocations, and changes to users, databases, apps and installations.
//
//	trail := audit.NewLogger(os.Stdout, cfg.AuditEnabled)
//	trail.Log(audit.LoginEvent{Email: email, ClientIP: ip, Success: true})
package audit
