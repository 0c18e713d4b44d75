package utils

import (
	"time"
)

// Session guard policy constants
const (
	// MaxLoginAttempts is the number of failures inside LoginAttemptWindow that locks the account
	MaxLoginAttempts = 5

	// LockoutDuration is how long login is refused once locked (15 minutes)
	LockoutDuration = 15 * time.Minute

	// LoginAttemptWindow is the trailing window in which failed attempts are counted (5 minutes)
	LoginAttemptWindow = 5 * time.Minute

	// SessionTimeout is the idle time after which an admin session ends (30 minutes)
	SessionTimeout = 30 * time.Minute

	// ActivityCheckInterval is the period of the session expiry check (1 minute)
	ActivityCheckInterval = 1 * time.Minute

	// SecurityLogCapacity is the number of security events kept in memory
	SecurityLogCapacity = 100
)

// Input limits
const (
	MaxUsernameLength = 50
	MaxPasswordLength = 128
	MinPasswordLength = 8

	// MaxLoginFieldLength caps sanitized login fields
	MaxLoginFieldLength = 100

	// MaxImportFieldLength caps sanitized import values
	MaxImportFieldLength = 500
)

// Import file constants
const (
	// DefaultMaxImportFileSize is 5MB
	DefaultMaxImportFileSize = 5 * 1024 * 1024

	// MinImportFileSize rejects empty or truncated uploads
	MinImportFileSize = 10

	// AdminPageSize is the page size of the admin personnel list
	AdminPageSize = 10

	// MaxPageSize bounds directory page sizes
	MaxPageSize = 100
)

// FilterAll disables a project/department/position filter
const FilterAll = "all"

// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
const CORSMaxAge = 86400
