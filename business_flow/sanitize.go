package businessflow

import (
	"regexp"
	"strings"

	"github.com/amirphl/personnel-directory/utils"
)

var (
	unsafeChars = regexp.MustCompile(`[<>"'&]`)

	// stripped from every sanitized value
	scriptTriggers = regexp.MustCompile(`(?i)javascript:|on\w+=|data:|vbscript:|expression\(|url\(`)

	// additionally stripped from login fields
	loginTriggers = regexp.MustCompile(`(?i)import\s|eval\(|document\.|window\.|location\.|cookie|localstorage|sessionstorage`)

	// a hit rejects the login before credentials are checked
	suspiciousLogin = regexp.MustCompile(`(?i)<script|javascript:|on\w+=|eval\(|document\.|window\.|location\.|cookie|localstorage|sessionstorage`)
)

// SanitizeInput trims s, strips markup characters and script triggers, and caps it at maxRunes
func SanitizeInput(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	s = unsafeChars.ReplaceAllString(s, "")
	s = scriptTriggers.ReplaceAllString(s, "")
	return utils.TruncateRunes(s, maxRunes)
}

// sanitizeLogin is SanitizeInput plus the login-only triggers
func sanitizeLogin(s string) string {
	s = strings.TrimSpace(s)
	s = unsafeChars.ReplaceAllString(s, "")
	s = scriptTriggers.ReplaceAllString(s, "")
	s = loginTriggers.ReplaceAllString(s, "")
	return utils.TruncateRunes(s, utils.MaxLoginFieldLength)
}

// IsSuspiciousInput reports script-like content in a login field
func IsSuspiciousInput(s string) bool {
	return suspiciousLogin.MatchString(s)
}
