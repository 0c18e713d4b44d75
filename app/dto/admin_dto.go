package dto

import "time"

// AdminLoginRequest carries the admin credentials as typed; SessionGuard screens them.
// The captcha fields are required only when the captcha gate is on.
type AdminLoginRequest struct {
	Username     string   `json:"username" example:"admin"`
	Password     string   `json:"password" example:"Farapokht@2024"`
	CaptchaID    string   `json:"captcha_id,omitempty" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	CaptchaAngle *float64 `json:"captcha_angle,omitempty" example:"137"`
}

type AdminSessionDTO struct {
	AccessToken string    `json:"access_token" example:"jwt"`
	TokenType   string    `json:"token_type" example:"Bearer"`
	ExpiresIn   int       `json:"expires_in" example:"1800"`
	ExpiresAt   time.Time `json:"expires_at" example:"2024-01-15T11:00:00Z"`
}

type AdminCaptchaResponse struct {
	ChallengeID       string    `json:"challenge_id"`
	MasterImageBase64 string    `json:"master_image_base64"`
	ThumbImageBase64  string    `json:"thumb_image_base64"`
	ExpiresAt         time.Time `json:"expires_at"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// SecurityStatusResponse reports durations in whole seconds
type SecurityStatusResponse struct {
	IsLocked             bool       `json:"is_locked"`
	RemainingLockSeconds int        `json:"remaining_lock_seconds"`
	RecentAttempts       int        `json:"recent_attempts"`
	MaxAttempts          int        `json:"max_attempts"`
	IsSessionActive      bool       `json:"is_session_active"`
	SessionSecondsLeft   int        `json:"session_seconds_left"`
	LastActivity         *time.Time `json:"last_activity,omitempty"`
	SecurityLevel        string     `json:"security_level" example:"low"`
}

type LoginAttemptDTO struct {
	Timestamp time.Time `json:"timestamp"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address,omitempty"`
}

type SecurityEventDTO struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Event     string            `json:"event"`
	Details   map[string]string `json:"details,omitempty"`
}
