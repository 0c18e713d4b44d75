package businessflow

import (
	"strings"
	"unicode/utf8"

	"github.com/amirphl/personnel-directory/utils"
)

const passwordSpecials = "@$!%*?&"

// weak substrings, matched case-sensitively
var weakSequences = []string{"123456", "abcdef"}

// weak words, matched case-insensitively
var weakWords = []string{"qwerty", "password", "admin"}

// ValidatePasswordStrength checks a candidate admin password and returns the first failed rule
func ValidatePasswordStrength(password string) (bool, string) {
	n := utf8.RuneCountInString(password)
	if n < utils.MinPasswordLength {
		return false, MsgPasswordTooShort
	}
	if n > utils.MaxPasswordLength {
		return false, MsgPasswordTooLong
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !lower {
		return false, MsgPasswordNeedsLower
	}
	if !upper {
		return false, MsgPasswordNeedsUpper
	}
	if !digit {
		return false, MsgPasswordNeedsDigit
	}
	if !special {
		return false, MsgPasswordNeedsSpecial
	}

	if hasWeakPattern(password) {
		return false, MsgPasswordWeakPattern
	}

	return true, MsgPasswordValid
}

func hasWeakPattern(password string) bool {
	if hasRepeatedRun(password, 3) {
		return true
	}
	for _, seq := range weakSequences {
		if strings.Contains(password, seq) {
			return true
		}
	}
	lower := strings.ToLower(password)
	for _, word := range weakWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// hasRepeatedRun reports n or more identical runes in a row
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for i, r := range s {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
		prev = r
	}
	return false
}
