package handlers

import (
	"log"

	"github.com/amirphl/personnel-directory/app/dto"
	"github.com/amirphl/personnel-directory/app/services"
	businessflow "github.com/amirphl/personnel-directory/business_flow"
	"github.com/amirphl/personnel-directory/utils"
	"github.com/gofiber/fiber/v3"
)

// AdminAuthHandlerInterface defines the contract for admin auth handlers
type AdminAuthHandlerInterface interface {
	InitCaptcha(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
	Status(c fiber.Ctx) error
	ChangePassword(c fiber.Ctx) error
	ClearAttempts(c fiber.Ctx) error
	History(c fiber.Ctx) error
	Logs(c fiber.Ctx) error
	ClearLogs(c fiber.Ctx) error
}

// AdminAuthHandler exposes SessionGuard over HTTP
type AdminAuthHandler struct {
	responder
	guard   businessflow.SessionGuard
	tokens  services.TokenService
	captcha services.CaptchaService // nil when the captcha gate is off
}

// NewAdminAuthHandler creates the admin auth handler; captcha may be nil
func NewAdminAuthHandler(guard businessflow.SessionGuard, tokens services.TokenService, captcha services.CaptchaService) AdminAuthHandlerInterface {
	return &AdminAuthHandler{
		responder: newResponder(),
		guard:     guard,
		tokens:    tokens,
		captcha:   captcha,
	}
}

// InitCaptcha returns a rotate captcha challenge for the next login
func (h *AdminAuthHandler) InitCaptcha(c fiber.Ctx) error {
	if h.captcha == nil {
		return h.ErrorResponse(c, fiber.StatusNotFound, "Captcha is disabled", "CAPTCHA_DISABLED", nil)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	challenge, err := h.captcha.GenerateRotate(ctx)
	if err != nil {
		log.Println("Admin captcha init failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Admin captcha init failed", "ADMIN_CAPTCHA_INIT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Captcha initialized", dto.AdminCaptchaResponse{
		ChallengeID:       challenge.ID,
		MasterImageBase64: challenge.MasterImageBase64,
		ThumbImageBase64:  challenge.ThumbImageBase64,
		ExpiresAt:         challenge.ExpiresAt,
	})
}

// Login authenticates the admin and issues an access token bound to the new session
func (h *AdminAuthHandler) Login(c fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if h.captcha != nil {
		if req.CaptchaID == "" || req.CaptchaAngle == nil || !h.captcha.VerifyRotate(ctx, req.CaptchaID, *req.CaptchaAngle) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.MsgCaptchaInvalid, "INVALID_CAPTCHA", nil)
		}
	}

	result := h.guard.Login(ctx, req.Username, req.Password, clientMetadata(c))
	if !result.Success {
		if h.guard.SecurityStatus().IsLocked {
			return h.ErrorResponse(c, fiber.StatusLocked, result.Message, "ACCOUNT_LOCKED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusUnauthorized, result.Message, "LOGIN_FAILED", nil)
	}

	token, _, err := h.tokens.GenerateAdminToken(result.Username, result.SessionID)
	if err != nil {
		log.Printf("Login: failed to issue token: %v", err)
		h.guard.Logout()
		return h.ErrorResponse(c, fiber.StatusInternalServerError, businessflow.MsgLoginUnavailable, "TOKEN_GENERATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, dto.AdminSessionDTO{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(utils.SessionTimeout.Seconds()),
		ExpiresAt:   result.ExpiresAt,
	})
}

// Logout ends the session and revokes the presented token
func (h *AdminAuthHandler) Logout(c fiber.Ctx) error {
	if token, ok := c.Locals("access_token").(string); ok && token != "" {
		if err := h.tokens.RevokeToken(token); err != nil {
			log.Printf("Logout: failed to revoke token: %v", err)
		}
	}
	h.guard.Logout()
	return h.SuccessResponse(c, fiber.StatusOK, businessflow.MsgLogoutSuccess, nil)
}

// Status reports lock and session state
func (h *AdminAuthHandler) Status(c fiber.Ctx) error {
	s := h.guard.SecurityStatus()
	return h.SuccessResponse(c, fiber.StatusOK, "Security status", dto.SecurityStatusResponse{
		IsLocked:             s.IsLocked,
		RemainingLockSeconds: int(s.RemainingLockTime.Seconds()),
		RecentAttempts:       s.RecentAttempts,
		MaxAttempts:          utils.MaxLoginAttempts,
		IsSessionActive:      s.IsSessionActive,
		SessionSecondsLeft:   int(s.SessionTimeRemaining.Seconds()),
		LastActivity:         s.LastActivity,
		SecurityLevel:        s.SecurityLevel,
	})
}

// ChangePassword replaces the admin password
func (h *AdminAuthHandler) ChangePassword(c fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result := h.guard.ChangePassword(ctx, req.NewPassword)
	if !result.Success {
		return h.ErrorResponse(c, fiber.StatusBadRequest, result.Message, "PASSWORD_REJECTED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, nil)
}

// ClearAttempts drops the failed attempt history and lifts the lock
func (h *AdminAuthHandler) ClearAttempts(c fiber.Ctx) error {
	h.guard.ClearLoginAttempts()
	return h.SuccessResponse(c, fiber.StatusOK, businessflow.MsgAttemptsCleared, nil)
}

// History lists failed login attempts, newest first
func (h *AdminAuthHandler) History(c fiber.Ctx) error {
	attempts := h.guard.LoginHistory()
	items := make([]dto.LoginAttemptDTO, 0, len(attempts))
	for _, a := range attempts {
		items = append(items, dto.LoginAttemptDTO{Timestamp: a.Timestamp, UserAgent: a.UserAgent, IPAddress: a.IPAddress})
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Login history", items)
}

// Logs lists security events, newest first
func (h *AdminAuthHandler) Logs(c fiber.Ctx) error {
	events := h.guard.SecurityLogs()
	items := make([]dto.SecurityEventDTO, 0, len(events))
	for _, e := range events {
		items = append(items, dto.SecurityEventDTO{ID: e.ID, Timestamp: e.Timestamp, Event: e.Event, Details: e.Details})
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Security logs", items)
}

// ClearLogs empties the security log
func (h *AdminAuthHandler) ClearLogs(c fiber.Ctx) error {
	h.guard.ClearSecurityLogs()
	return h.SuccessResponse(c, fiber.StatusOK, "Security logs cleared", nil)
}
