package businessflow

import (
	"log"
	"time"

	"github.com/google/uuid"
)

// Security event names
const (
	EventLoginSuccess           = "LOGIN_SUCCESS"
	EventLoginFailed            = "LOGIN_FAILED"
	EventAccountLocked          = "ACCOUNT_LOCKED"
	EventLoginBlocked           = "LOGIN_BLOCKED"
	EventSuspiciousInput        = "SUSPICIOUS_INPUT"
	EventLogout                 = "LOGOUT"
	EventSessionExpired         = "SESSION_EXPIRED"
	EventPasswordChanged        = "PASSWORD_CHANGED"
	EventPasswordChangeRejected = "PASSWORD_CHANGE_REJECTED"
	EventAttemptsCleared        = "ATTEMPTS_CLEARED"
)

// SecurityEvent is one entry of the in-memory security log
type SecurityEvent struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Details   map[string]string `json:"details,omitempty"`
}

// securityLog keeps the most recent events, oldest dropped first. Not safe for concurrent use.
type securityLog struct {
	events []SecurityEvent
	limit  int
}

func newSecurityLog(limit int) *securityLog {
	return &securityLog{limit: limit}
}

func (l *securityLog) add(ts time.Time, event string, details map[string]string) {
	e := SecurityEvent{
		ID:        uuid.NewString(),
		Timestamp: ts,
		Event:     event,
		Details:   details,
	}
	if len(l.events) >= l.limit {
		copy(l.events, l.events[1:])
		l.events[len(l.events)-1] = e
	} else {
		l.events = append(l.events, e)
	}
	log.Printf("security event: %s %v", event, details)
}

// snapshot returns the events newest first
func (l *securityLog) snapshot() []SecurityEvent {
	out := make([]SecurityEvent, len(l.events))
	for i, e := range l.events {
		out[len(l.events)-1-i] = e
	}
	return out
}

func (l *securityLog) clear() {
	l.events = nil
}
