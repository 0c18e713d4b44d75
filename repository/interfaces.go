// Package repository provides data access layer implementations and interfaces for the record store
package repository

import (
	"context"
	"errors"

	"github.com/amirphl/personnel-directory/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// ErrDuplicateKey is returned when a write collides with a unique personnel code or voip number
var ErrDuplicateKey = errors.New("duplicate key")

// PersonnelRepository is the narrow record store contract used by the flows.
// Lookups return (nil, nil) when nothing matches.
type PersonnelRepository interface {
	ByCode(ctx context.Context, code string) (*models.PersonnelRecord, error)
	ByVoip(ctx context.Context, voip string) (*models.PersonnelRecord, error)
	Save(ctx context.Context, record *models.PersonnelRecord) error
	Update(ctx context.Context, code string, patch models.PersonnelPatch) (*models.PersonnelRecord, error)
	DeleteByCode(ctx context.Context, code string) (bool, error)
	ByFilter(ctx context.Context, filter models.PersonnelFilter, limit, offset int) ([]*models.PersonnelRecord, error)
	Count(ctx context.Context, filter models.PersonnelFilter) (int64, error)
}

// LookupRepository manages one of the project, department or position reference tables
type LookupRepository interface {
	GetOrCreate(ctx context.Context, name string) (uint, error)
	Names(ctx context.Context) ([]string, error)
}

// AdminRepository defines operations for the admin credential
type AdminRepository interface {
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	Save(ctx context.Context, admin *models.Admin) error
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	TouchLastLogin(ctx context.Context, username string) error
}

// SettingsRepository loads and stores the appearance settings row
type SettingsRepository interface {
	Load(ctx context.Context) (*models.AppSettings, error)
	Save(ctx context.Context, settings *models.AppSettings) error
}

// Store bundles the repositories of one backend
type Store struct {
	Personnel   PersonnelRepository
	Projects    LookupRepository
	Departments LookupRepository
	Positions   LookupRepository
	Admins      AdminRepository
	Settings    SettingsRepository
}
