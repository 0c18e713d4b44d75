package businessflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		valid    bool
		message  string
	}{
		{"too short", "short", false, MsgPasswordTooShort},
		{"too long", "Aa1!" + strings.Repeat("xy", 63), false, MsgPasswordTooLong},
		{"no lowercase", "ABCDEFG1!", false, MsgPasswordNeedsLower},
		{"no uppercase", "abcdefg1!", false, MsgPasswordNeedsUpper},
		{"no digit", "Abcdefgh!", false, MsgPasswordNeedsDigit},
		{"no special", "Abcdefg12", false, MsgPasswordNeedsSpecial},
		{"unlisted special only", "Abcdefg1#", false, MsgPasswordNeedsSpecial},
		{"repeated characters", "Abccc12!x", false, MsgPasswordWeakPattern},
		{"sequential digits", "Ab123456!", false, MsgPasswordWeakPattern},
		{"sequential letters", "Zabcdef1!", false, MsgPasswordWeakPattern},
		{"common word", "MyQwerty1!", false, MsgPasswordWeakPattern},
		{"contains password", "Password1!", false, MsgPasswordWeakPattern},
		{"contains admin", "SuperAdmin1!", false, MsgPasswordWeakPattern},
		{"class covering", "Abcdef1!", true, MsgPasswordValid},
		{"strong", "Farapokht@2024", true, MsgPasswordValid},
		{"persian letters count toward length", "سلامAb1!", true, MsgPasswordValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, message := ValidatePasswordStrength(tt.password)
			assert.Equal(t, tt.valid, valid)
			assert.Equal(t, tt.message, message)
		})
	}
}
