package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/personnel-directory/models"
	"gorm.io/gorm"
)

// PersonnelRepositoryImpl implements PersonnelRepository on postgres
type PersonnelRepositoryImpl struct {
	*BaseRepository[models.Personnel]
	projects    LookupRepository
	departments LookupRepository
	positions   LookupRepository
}

// NewPersonnelRepository creates a new personnel repository
func NewPersonnelRepository(db *gorm.DB, projects, departments, positions LookupRepository) PersonnelRepository {
	return &PersonnelRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Personnel](db),
		projects:       projects,
		departments:    departments,
		positions:      positions,
	}
}

func (r *PersonnelRepositoryImpl) joined(ctx context.Context) *gorm.DB {
	return r.getDB(ctx).Model(&models.Personnel{}).
		Joins("Project").
		Joins("Department").
		Joins("Position")
}

func (r *PersonnelRepositoryImpl) byColumn(ctx context.Context, column, value string) (*models.Personnel, error) {
	var row models.Personnel
	err := r.joined(ctx).Where("personnel."+column+" = ?", value).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find personnel by %s: %w", column, err)
	}
	return &row, nil
}

// ByCode retrieves a record by personnel code
func (r *PersonnelRepositoryImpl) ByCode(ctx context.Context, code string) (*models.PersonnelRecord, error) {
	row, err := r.byColumn(ctx, "personnel_code", code)
	if err != nil || row == nil {
		return nil, err
	}
	rec := row.Record()
	return &rec, nil
}

// ByVoip retrieves a record by voip number
func (r *PersonnelRepositoryImpl) ByVoip(ctx context.Context, voip string) (*models.PersonnelRecord, error) {
	row, err := r.byColumn(ctx, "voip_number", voip)
	if err != nil || row == nil {
		return nil, err
	}
	rec := row.Record()
	return &rec, nil
}

// resolve fills the reference ids of row from their names
func (r *PersonnelRepositoryImpl) resolve(ctx context.Context, project, department, position string) (uint, uint, uint, error) {
	projectID, err := r.projects.GetOrCreate(ctx, project)
	if err != nil {
		return 0, 0, 0, err
	}
	departmentID, err := r.departments.GetOrCreate(ctx, department)
	if err != nil {
		return 0, 0, 0, err
	}
	positionID, err := r.positions.GetOrCreate(ctx, position)
	if err != nil {
		return 0, 0, 0, err
	}
	return projectID, departmentID, positionID, nil
}

// Save inserts a new record, creating its project, department and position when needed
func (r *PersonnelRepositoryImpl) Save(ctx context.Context, record *models.PersonnelRecord) error {
	return r.inTx(ctx, func(ctx context.Context) error {
		projectID, departmentID, positionID, err := r.resolve(ctx, record.Project, record.Department, record.Position)
		if err != nil {
			return err
		}

		row := &models.Personnel{
			PersonnelCode: record.PersonnelCode,
			PersianName:   record.PersianName,
			EnglishName:   record.EnglishName,
			VoipNumber:    record.VoipNumber,
			ProjectID:     projectID,
			DepartmentID:  departmentID,
			PositionID:    positionID,
		}
		return r.create(ctx, row)
	})
}

// Update applies patch to the record with the given code; (nil, nil) if it does not exist
func (r *PersonnelRepositoryImpl) Update(ctx context.Context, code string, patch models.PersonnelPatch) (*models.PersonnelRecord, error) {
	var updated *models.PersonnelRecord

	err := r.inTx(ctx, func(ctx context.Context) error {
		row, err := r.byColumn(ctx, "personnel_code", code)
		if err != nil || row == nil {
			return err
		}

		next := patch.Apply(row.Record())
		projectID, departmentID, positionID, err := r.resolve(ctx, next.Project, next.Department, next.Position)
		if err != nil {
			return err
		}

		err = r.getDB(ctx).Model(&models.Personnel{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"persian_name":  next.PersianName,
				"english_name":  next.EnglishName,
				"voip_number":   next.VoipNumber,
				"project_id":    projectID,
				"department_id": departmentID,
				"position_id":   positionID,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update personnel %s: %w", code, translateError(err))
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteByCode removes the record with the given code and reports whether it existed
func (r *PersonnelRepositoryImpl) DeleteByCode(ctx context.Context, code string) (bool, error) {
	res := r.getDB(ctx).Where("personnel_code = ?", code).Delete(&models.Personnel{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete personnel %s: %w", code, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// applyFilter applies filter criteria to a joined personnel query
func (r *PersonnelRepositoryImpl) applyFilter(query *gorm.DB, filter models.PersonnelFilter) *gorm.DB {
	if filter.Project != nil {
		query = query.Where(`"Project".name = ?`, *filter.Project)
	}
	if filter.Department != nil {
		query = query.Where(`"Department".name = ?`, *filter.Department)
	}
	if filter.Position != nil {
		query = query.Where(`"Position".name = ?`, *filter.Position)
	}
	if filter.Query != nil {
		if q := strings.TrimSpace(*filter.Query); q != "" {
			like := "%" + escapeLike(q) + "%"
			query = query.Where(
				`personnel.persian_name ILIKE @q OR personnel.english_name ILIKE @q OR "Project".name ILIKE @q OR "Department".name ILIKE @q OR "Position".name ILIKE @q OR personnel.personnel_code LIKE @q OR personnel.voip_number LIKE @q`,
				map[string]any{"q": like},
			)
		}
	}
	return query
}

// ByFilter retrieves records in insertion order
func (r *PersonnelRepositoryImpl) ByFilter(ctx context.Context, filter models.PersonnelFilter, limit, offset int) ([]*models.PersonnelRecord, error) {
	query := r.applyFilter(r.joined(ctx), filter).Order("personnel.id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Personnel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list personnel: %w", err)
	}

	records := make([]*models.PersonnelRecord, 0, len(rows))
	for _, row := range rows {
		rec := row.Record()
		records = append(records, &rec)
	}
	return records, nil
}

// Count returns the number of records matching the filter
func (r *PersonnelRepositoryImpl) Count(ctx context.Context, filter models.PersonnelFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.joined(ctx), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count personnel: %w", err)
	}
	return count, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
