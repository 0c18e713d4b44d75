package businessflow

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/amirphl/personnel-directory/repository"
	"github.com/amirphl/personnel-directory/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionGuard is the single authority for admin authentication: it throttles
// failed logins, locks the account, and expires idle sessions.
type SessionGuard interface {
	Login(ctx context.Context, username, password string, metadata *ClientMetadata) LoginResult
	Logout()
	IsAuthenticated() bool
	ValidateSession(sessionID string) bool
	UpdateActivity()
	ChangePassword(ctx context.Context, newPassword string) PasswordChangeResult
	SecurityStatus() SecurityStatus
	ClearLoginAttempts()
	LoginHistory() []LoginAttempt
	SecurityLogs() []SecurityEvent
	ClearSecurityLogs()
	Close()
}

// LoginResult is the outcome of a login call; rejections are never errors
type LoginResult struct {
	Success   bool
	Message   string
	Username  string
	SessionID string
	ExpiresAt time.Time
}

// PasswordChangeResult is the outcome of a password change
type PasswordChangeResult struct {
	Success bool
	Message string
}

// LoginAttempt records one failed login
type LoginAttempt struct {
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address,omitempty"`
}

// Security levels reported by SecurityStatus
const (
	SecurityLevelLow      = "low"
	SecurityLevelMedium   = "medium"
	SecurityLevelHigh     = "high"
	SecurityLevelCritical = "critical"
)

// SecurityStatus is a read-only snapshot of the guard
type SecurityStatus struct {
	IsLocked             bool
	RemainingLockTime    time.Duration
	RecentAttempts       int
	SessionTimeRemaining time.Duration
	IsSessionActive      bool
	LastActivity         *time.Time
	SecurityLevel        string
}

// SessionGuardConfig configures a guard
type SessionGuardConfig struct {
	AdminUsername string
	BcryptCost    int

	// CountScreenedAttempts makes suspicious-input rejections count as failed attempts
	CountScreenedAttempts bool

	// CheckInterval overrides utils.ActivityCheckInterval when positive
	CheckInterval time.Duration

	// Clock overrides utils.UTCNow when set
	Clock utils.Clock
}

// SessionGuardImpl implements SessionGuard in process memory
type SessionGuardImpl struct {
	adminRepo repository.AdminRepository
	cfg       SessionGuardConfig
	now       utils.Clock

	mu            sync.Mutex
	authenticated bool
	sessionID     string
	attempts      []LoginAttempt
	lockedUntil   *time.Time
	sessionExpiry *time.Time
	lastActivity  *time.Time
	events        *securityLog
	stopCheck     context.CancelFunc
}

// NewSessionGuard creates a logged-out guard
func NewSessionGuard(adminRepo repository.AdminRepository, cfg SessionGuardConfig) SessionGuard {
	now := cfg.Clock
	if now == nil {
		now = utils.UTCNow
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = utils.ActivityCheckInterval
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	return &SessionGuardImpl{
		adminRepo: adminRepo,
		cfg:       cfg,
		now:       now,
		events:    newSecurityLog(utils.SecurityLogCapacity),
	}
}

// HashAdminPassword hashes a password the way login compares it: sanitized, then bcrypt
func HashAdminPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(sanitizeLogin(password)), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Login validates the credentials under the lockout policy
func (g *SessionGuardImpl) Login(ctx context.Context, username, password string, metadata *ClientMetadata) LoginResult {
	if username == "" || password == "" {
		return LoginResult{Message: MsgCredentialsRequired}
	}
	if len([]rune(username)) > utils.MaxUsernameLength || len([]rune(password)) > utils.MaxPasswordLength {
		return LoginResult{Message: MsgInvalidInput}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()

	if IsSuspiciousInput(username) || IsSuspiciousInput(password) {
		g.events.add(now, EventSuspiciousInput, metadata.details())
		if g.cfg.CountScreenedAttempts {
			if locked := g.recordFailureLocked(now, metadata); locked {
				loginAttemptsTotal.WithLabelValues("locked").Inc()
				return LoginResult{Message: MsgLockTriggered}
			}
		}
		loginAttemptsTotal.WithLabelValues("suspicious").Inc()
		return LoginResult{Message: MsgSuspiciousInput}
	}

	username = sanitizeLogin(username)
	password = sanitizeLogin(password)

	if g.isLockedLocked(now) {
		remaining := utils.CeilMinutes(g.lockedUntil.Sub(now))
		g.events.add(now, EventLoginBlocked, metadata.details())
		loginAttemptsTotal.WithLabelValues("blocked").Inc()
		return LoginResult{Message: fmt.Sprintf(MsgAccountLockedFmt, remaining)}
	}

	ok, err := g.verifyLocked(ctx, username, password)
	if err != nil {
		log.Printf("Login: credential lookup failed: %v", err)
		loginAttemptsTotal.WithLabelValues("error").Inc()
		return LoginResult{Message: MsgLoginUnavailable}
	}

	if ok {
		g.attempts = nil
		g.startSessionLocked(now)
		g.events.add(now, EventLoginSuccess, metadata.details())
		loginAttemptsTotal.WithLabelValues("success").Inc()

		if err := g.adminRepo.TouchLastLogin(ctx, g.cfg.AdminUsername); err != nil {
			log.Printf("Login: failed to record last login: %v", err)
		}

		return LoginResult{
			Success:   true,
			Message:   MsgLoginSuccess,
			Username:  g.cfg.AdminUsername,
			SessionID: g.sessionID,
			ExpiresAt: *g.sessionExpiry,
		}
	}

	if locked := g.recordFailureLocked(now, metadata); locked {
		loginAttemptsTotal.WithLabelValues("locked").Inc()
		return LoginResult{Message: MsgLockTriggered}
	}

	g.events.add(now, EventLoginFailed, metadata.details())
	loginAttemptsTotal.WithLabelValues("failed").Inc()
	return LoginResult{Message: fmt.Sprintf(MsgBadCredentialsFmt, g.recentAttemptsLocked(now), utils.MaxLoginAttempts)}
}

func (g *SessionGuardImpl) verifyLocked(ctx context.Context, username, password string) (bool, error) {
	if username != g.cfg.AdminUsername {
		return false, nil
	}

	admin, err := g.adminRepo.ByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if admin == nil || (admin.IsActive != nil && !*admin.IsActive) {
		return false, nil
	}

	return bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) == nil, nil
}

// recordFailureLocked appends an attempt and locks the account when the window is full
func (g *SessionGuardImpl) recordFailureLocked(now time.Time, metadata *ClientMetadata) bool {
	attempt := LoginAttempt{Timestamp: now}
	if metadata != nil {
		attempt.UserAgent = metadata.UserAgent
		attempt.IPAddress = metadata.IPAddress
	}
	g.attempts = append(g.attempts, attempt)

	if g.recentAttemptsLocked(now) >= utils.MaxLoginAttempts {
		until := now.Add(utils.LockoutDuration)
		g.lockedUntil = &until
		g.events.add(now, EventAccountLocked, metadata.details())
		return true
	}
	return false
}

func (g *SessionGuardImpl) recentAttemptsLocked(now time.Time) int {
	n := 0
	for _, a := range g.attempts {
		if now.Sub(a.Timestamp) < utils.LoginAttemptWindow {
			n++
		}
	}
	return n
}

func (g *SessionGuardImpl) isLockedLocked(now time.Time) bool {
	return g.lockedUntil != nil && now.Before(*g.lockedUntil)
}

func (g *SessionGuardImpl) startSessionLocked(now time.Time) {
	expiry := now.Add(utils.SessionTimeout)
	g.authenticated = true
	g.sessionID = uuid.NewString()
	g.sessionExpiry = &expiry
	g.lastActivity = &now
	g.startExpiryCheckLocked()
}

func (g *SessionGuardImpl) startExpiryCheckLocked() {
	if g.stopCheck != nil {
		g.stopCheck()
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.stopCheck = cancel
	interval := g.cfg.CheckInterval

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.mu.Lock()
				g.expireIfIdleLocked(g.now())
				g.mu.Unlock()
			}
		}
	}()
}

// expireIfIdleLocked logs the session out once its expiry has passed
func (g *SessionGuardImpl) expireIfIdleLocked(now time.Time) {
	if g.authenticated && g.sessionExpiry != nil && !now.Before(*g.sessionExpiry) {
		g.events.add(now, EventSessionExpired, nil)
		g.clearSessionLocked()
	}
}

// clearSessionLocked drops every session field together
func (g *SessionGuardImpl) clearSessionLocked() {
	g.authenticated = false
	g.sessionID = ""
	g.sessionExpiry = nil
	g.lastActivity = nil
	if g.stopCheck != nil {
		g.stopCheck()
		g.stopCheck = nil
	}
}

// Logout ends the session; calling it while logged out is a no-op
func (g *SessionGuardImpl) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.authenticated {
		g.events.add(g.now(), EventLogout, nil)
	}
	g.clearSessionLocked()
}

// IsAuthenticated expires an idle session before answering
func (g *SessionGuardImpl) IsAuthenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.expireIfIdleLocked(g.now())
	return g.authenticated
}

// ValidateSession reports whether sessionID belongs to the live session
func (g *SessionGuardImpl) ValidateSession(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.expireIfIdleLocked(g.now())
	return g.authenticated && sessionID != "" && sessionID == g.sessionID
}

// UpdateActivity slides the session expiry forward
func (g *SessionGuardImpl) UpdateActivity() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.expireIfIdleLocked(now)
	if !g.authenticated {
		return
	}

	expiry := now.Add(utils.SessionTimeout)
	g.lastActivity = &now
	g.sessionExpiry = &expiry
}

// ChangePassword replaces the admin password after the strength policy accepts it
func (g *SessionGuardImpl) ChangePassword(ctx context.Context, newPassword string) PasswordChangeResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()

	if ok, msg := ValidatePasswordStrength(newPassword); !ok {
		g.events.add(now, EventPasswordChangeRejected, map[string]string{"reason": msg})
		return PasswordChangeResult{Message: msg}
	}

	admin, err := g.adminRepo.ByUsername(ctx, g.cfg.AdminUsername)
	if err != nil || admin == nil {
		log.Printf("ChangePassword: admin lookup failed: %v", err)
		return PasswordChangeResult{Message: MsgPasswordChangeFailed}
	}

	sanitized := sanitizeLogin(newPassword)
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(sanitized)) == nil {
		g.events.add(now, EventPasswordChangeRejected, map[string]string{"reason": MsgPasswordSameAsOld})
		return PasswordChangeResult{Message: MsgPasswordSameAsOld}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(sanitized), g.cfg.BcryptCost)
	if err != nil {
		log.Printf("ChangePassword: failed to hash password: %v", err)
		return PasswordChangeResult{Message: MsgPasswordChangeFailed}
	}

	if err := g.adminRepo.UpdatePassword(ctx, g.cfg.AdminUsername, string(hash)); err != nil {
		log.Printf("ChangePassword: failed to store password: %v", err)
		return PasswordChangeResult{Message: MsgPasswordChangeFailed}
	}

	g.events.add(now, EventPasswordChanged, nil)
	return PasswordChangeResult{Success: true, Message: MsgPasswordChanged}
}

// SecurityStatus reports lock, attempt and session state without changing it
func (g *SessionGuardImpl) SecurityStatus() SecurityStatus {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	status := SecurityStatus{
		IsLocked:       g.isLockedLocked(now),
		RecentAttempts: g.recentAttemptsLocked(now),
	}

	if status.IsLocked {
		status.RemainingLockTime = g.lockedUntil.Sub(now)
	}
	if g.authenticated && g.sessionExpiry != nil && now.Before(*g.sessionExpiry) {
		status.IsSessionActive = true
		status.SessionTimeRemaining = g.sessionExpiry.Sub(now)
	}
	if g.lastActivity != nil {
		last := *g.lastActivity
		status.LastActivity = &last
	}

	switch {
	case status.IsLocked:
		status.SecurityLevel = SecurityLevelCritical
	case status.RecentAttempts >= 3:
		status.SecurityLevel = SecurityLevelHigh
	case status.RecentAttempts > 0:
		status.SecurityLevel = SecurityLevelMedium
	default:
		status.SecurityLevel = SecurityLevelLow
	}

	return status
}

// ClearLoginAttempts empties the attempt history and lifts any lock
func (g *SessionGuardImpl) ClearLoginAttempts() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.attempts = nil
	g.lockedUntil = nil
	g.events.add(g.now(), EventAttemptsCleared, nil)
}

// LoginHistory returns the recorded failed attempts, newest first
func (g *SessionGuardImpl) LoginHistory() []LoginAttempt {
	g.mu.Lock()
	defer g.mu.Unlock()

	history := slices.Clone(g.attempts)
	slices.Reverse(history)
	return history
}

// SecurityLogs returns the security events, newest first
func (g *SessionGuardImpl) SecurityLogs() []SecurityEvent {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.events.snapshot()
}

// ClearSecurityLogs drops every recorded security event
func (g *SessionGuardImpl) ClearSecurityLogs() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.events.clear()
}

// Close stops the expiry goroutine
func (g *SessionGuardImpl) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopCheck != nil {
		g.stopCheck()
		g.stopCheck = nil
	}
}
