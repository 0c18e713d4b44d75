package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/personnel-directory/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LookupRepositoryImpl implements LookupRepository over one of the name-keyed reference tables
type LookupRepositoryImpl[T models.Lookup] struct {
	*BaseRepository[T]
}

// NewLookupRepository creates a new lookup repository for the table of T
func NewLookupRepository[T models.Lookup](db *gorm.DB) LookupRepository {
	return &LookupRepositoryImpl[T]{
		BaseRepository: NewBaseRepository[T](db),
	}
}

// GetOrCreate returns the id of the row called name, inserting it first if needed
func (r *LookupRepositoryImpl[T]) GetOrCreate(ctx context.Context, name string) (uint, error) {
	db := r.getDB(ctx)

	err := db.Model(new(T)).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(map[string]any{"name": name}).Error
	if err != nil {
		return 0, fmt.Errorf("failed to create lookup %q: %w", name, err)
	}

	var row struct{ ID uint }
	err = db.Model(new(T)).Select("id").Where("name = ?", name).Take(&row).Error
	if err != nil {
		return 0, fmt.Errorf("failed to find lookup %q: %w", name, err)
	}

	return row.ID, nil
}

// Names lists every name in the table, alphabetically
func (r *LookupRepositoryImpl[T]) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := r.getDB(ctx).Model(new(T)).Order("name ASC").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list lookups: %w", err)
	}
	return names, nil
}
