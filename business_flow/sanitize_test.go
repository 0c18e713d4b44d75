package businessflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{"trims", "  علی احمدی  ", 500, "علی احمدی"},
		{"strips markup", `<b>"Ali" & 'Reza'</b>`, 500, "bAli  Reza/b"},
		{"strips javascript scheme", "JavaScript:alert(1)", 500, "alert(1)"},
		{"strips event handler", "img onerror=x", 500, "img x"},
		{"strips data scheme", "data:text/html", 500, "text/html"},
		{"caps runes", strings.Repeat("ب", 600), 500, strings.Repeat("ب", 500)},
		{"keeps plain", "Ali Ahmadi", 500, "Ali Ahmadi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeInput(tt.input, tt.max))
		})
	}
}

func TestSanitizeLogin(t *testing.T) {
	assert.Equal(t, "admin", sanitizeLogin("  admin  "))
	assert.Equal(t, "x", sanitizeLogin("localStoragex"))
	assert.Len(t, []rune(sanitizeLogin(strings.Repeat("a", 150))), 100)
}

func TestIsSuspiciousInput(t *testing.T) {
	suspicious := []string{
		"<script>alert(1)</script>",
		"<SCRIPT src=x>",
		"javascript:void(0)",
		"x onclick=y",
		"eval(code)",
		"document.write",
		"window.open",
		"location.href",
		"steal cookie",
		"localStorage",
		"sessionStorage",
	}
	for _, in := range suspicious {
		assert.True(t, IsSuspiciousInput(in), in)
	}

	for _, in := range []string{"admin", "Farapokht@2024", "علی", "on the way"} {
		assert.False(t, IsSuspiciousInput(in), in)
	}
}
