package models

import (
	"strings"
	"time"
)

// Personnel is the normalized storage row; project, department and position are references.
type Personnel struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	PersonnelCode string `gorm:"size:32;not null;uniqueIndex:uk_personnel_code" json:"personnel_code"`
	PersianName   string `gorm:"size:255;not null" json:"persian_name"`
	EnglishName   string `gorm:"size:255;not null" json:"english_name"`
	VoipNumber    string `gorm:"size:32;not null;uniqueIndex:uk_personnel_voip_number" json:"voip_number"`

	ProjectID    uint `gorm:"not null;index:idx_personnel_project_id" json:"project_id"`
	DepartmentID uint `gorm:"not null;index:idx_personnel_department_id" json:"department_id"`
	PositionID   uint `gorm:"not null;index:idx_personnel_position_id" json:"position_id"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Project    *Project    `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:RESTRICT" json:"project,omitempty"`
	Department *Department `gorm:"foreignKey:DepartmentID;references:ID;constraint:OnDelete:RESTRICT" json:"department,omitempty"`
	Position   *Position   `gorm:"foreignKey:PositionID;references:ID;constraint:OnDelete:RESTRICT" json:"position,omitempty"`
}

func (Personnel) TableName() string {
	return "personnel"
}

// Record flattens a row with preloaded references
func (p Personnel) Record() PersonnelRecord {
	r := PersonnelRecord{
		PersonnelCode: p.PersonnelCode,
		PersianName:   p.PersianName,
		EnglishName:   p.EnglishName,
		VoipNumber:    p.VoipNumber,
	}
	if p.Project != nil {
		r.Project = p.Project.Name
	}
	if p.Department != nil {
		r.Department = p.Department.Name
	}
	if p.Position != nil {
		r.Position = p.Position.Name
	}
	return r
}

// PersonnelRecord is the flat shape used by flows, import and export
type PersonnelRecord struct {
	PersonnelCode string `json:"personnel_code" validate:"required,numeric,max=32"`
	PersianName   string `json:"persian_name" validate:"required,max=255"`
	EnglishName   string `json:"english_name" validate:"required,max=255"`
	VoipNumber    string `json:"voip_number" validate:"required,numeric,max=32"`
	Project       string `json:"project" validate:"required,max=255"`
	Department    string `json:"department" validate:"required,max=255"`
	Position      string `json:"position" validate:"required,max=255"`
}

// PersonnelPatch carries the mutable fields of an update; nil means unchanged
type PersonnelPatch struct {
	PersianName *string
	EnglishName *string
	VoipNumber  *string
	Project     *string
	Department  *string
	Position    *string
}

// Apply returns r with the non-nil patch fields applied; PersonnelCode is never touched
func (p PersonnelPatch) Apply(r PersonnelRecord) PersonnelRecord {
	if p.PersianName != nil {
		r.PersianName = *p.PersianName
	}
	if p.EnglishName != nil {
		r.EnglishName = *p.EnglishName
	}
	if p.VoipNumber != nil {
		r.VoipNumber = *p.VoipNumber
	}
	if p.Project != nil {
		r.Project = *p.Project
	}
	if p.Department != nil {
		r.Department = *p.Department
	}
	if p.Position != nil {
		r.Position = *p.Position
	}
	return r
}

// PatchFrom builds a patch replacing every mutable field with the values in r
func PatchFrom(r PersonnelRecord) PersonnelPatch {
	return PersonnelPatch{
		PersianName: &r.PersianName,
		EnglishName: &r.EnglishName,
		VoipNumber:  &r.VoipNumber,
		Project:     &r.Project,
		Department:  &r.Department,
		Position:    &r.Position,
	}
}

// PersonnelFilter represents filter criteria for personnel queries
type PersonnelFilter struct {
	// Query matches names, project, department and position case-insensitively
	// and personnel code or voip number as a substring
	Query *string

	Project    *string
	Department *string
	Position   *string
}

// Matches applies the filter to a flat record the same way the SQL filter does
func (f PersonnelFilter) Matches(r PersonnelRecord) bool {
	if f.Project != nil && r.Project != *f.Project {
		return false
	}
	if f.Department != nil && r.Department != *f.Department {
		return false
	}
	if f.Position != nil && r.Position != *f.Position {
		return false
	}
	if f.Query != nil {
		q := strings.ToLower(strings.TrimSpace(*f.Query))
		if q == "" {
			return true
		}
		for _, field := range []string{r.PersianName, r.EnglishName, r.Project, r.Department, r.Position} {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return strings.Contains(r.PersonnelCode, q) || strings.Contains(r.VoipNumber, q)
	}
	return true
}
