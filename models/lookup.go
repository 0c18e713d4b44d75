package models

import "time"

// Project, Department and Position are name-keyed reference tables owned by the record store.

type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:uk_projects_name" json:"name"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (Project) TableName() string { return "projects" }

type Department struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:uk_departments_name" json:"name"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (Department) TableName() string { return "departments" }

type Position struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:uk_positions_name" json:"name"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (Position) TableName() string { return "positions" }

// Lookup is implemented by the reference table models
type Lookup interface {
	Project | Department | Position
}

// Lookups groups the distinct names used by the directory filters
type Lookups struct {
	Projects    []string `json:"projects"`
	Departments []string `json:"departments"`
	Positions   []string `json:"positions"`
}
