package businessflow

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/amirphl/personnel-directory/models"
	"github.com/amirphl/personnel-directory/repository"
	"github.com/amirphl/personnel-directory/utils"
)

// PersonnelFlow handles single-record writes against the record store
type PersonnelFlow interface {
	Get(ctx context.Context, code string) (*models.PersonnelRecord, error)
	List(ctx context.Context, query string, page int) (*PersonnelPage, error)
	Add(ctx context.Context, record models.PersonnelRecord) (*models.PersonnelRecord, error)
	Update(ctx context.Context, code string, patch models.PersonnelPatch) (*models.PersonnelRecord, error)
	Delete(ctx context.Context, code string) error
	BulkDelete(ctx context.Context, codes []string) (int, error)
}

// PersonnelPage is one page of the admin list
type PersonnelPage struct {
	Items      []*models.PersonnelRecord
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// PersonnelFlowImpl implements PersonnelFlow
type PersonnelFlowImpl struct {
	personnelRepo repository.PersonnelRepository
	cache         *DirectoryCache
}

// NewPersonnelFlow creates a new personnel flow; cache may be nil
func NewPersonnelFlow(personnelRepo repository.PersonnelRepository, cache *DirectoryCache) PersonnelFlow {
	return &PersonnelFlowImpl{
		personnelRepo: personnelRepo,
		cache:         cache,
	}
}

// ValidatePersonnel returns every rule r breaks, in field order
func ValidatePersonnel(r models.PersonnelRecord) []string {
	var errs []string

	code := strings.TrimSpace(r.PersonnelCode)
	switch {
	case code == "":
		errs = append(errs, MsgPersonnelCodeRequired)
	case !utils.IsDigits(code):
		errs = append(errs, MsgPersonnelCodeDigits)
	}

	if strings.TrimSpace(r.PersianName) == "" {
		errs = append(errs, MsgPersianNameRequired)
	}
	if strings.TrimSpace(r.EnglishName) == "" {
		errs = append(errs, MsgEnglishNameRequired)
	}

	voip := strings.TrimSpace(r.VoipNumber)
	switch {
	case voip == "":
		errs = append(errs, MsgVoipRequired)
	case !utils.IsDigits(voip):
		errs = append(errs, MsgVoipDigits)
	}

	if strings.TrimSpace(r.Project) == "" {
		errs = append(errs, MsgProjectRequired)
	}
	if strings.TrimSpace(r.Department) == "" {
		errs = append(errs, MsgDepartmentRequired)
	}
	if strings.TrimSpace(r.Position) == "" {
		errs = append(errs, MsgPositionRequired)
	}

	return errs
}

func trimRecord(r models.PersonnelRecord) models.PersonnelRecord {
	return models.PersonnelRecord{
		PersonnelCode: strings.TrimSpace(r.PersonnelCode),
		PersianName:   strings.TrimSpace(r.PersianName),
		EnglishName:   strings.TrimSpace(r.EnglishName),
		VoipNumber:    strings.TrimSpace(r.VoipNumber),
		Project:       strings.TrimSpace(r.Project),
		Department:    strings.TrimSpace(r.Department),
		Position:      strings.TrimSpace(r.Position),
	}
}

func validationError(errs []string) *BusinessError {
	return NewBusinessError("VALIDATION_ERROR", strings.Join(errs, "، "), &ValidationError{Field: "personnel", Message: errs[0]})
}

func storeError(op string, err error) *BusinessError {
	log.Printf("%s: record store failure: %v", op, err)
	return NewBusinessError("STORE_FAILURE", MsgStoreFailure, err)
}

// Get returns the record with the given code
func (f *PersonnelFlowImpl) Get(ctx context.Context, code string) (*models.PersonnelRecord, error) {
	rec, err := f.personnelRepo.ByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, storeError("Get", err)
	}
	if rec == nil {
		return nil, NewBusinessError("PERSONNEL_NOT_FOUND", MsgPersonnelNotFound, ErrPersonnelNotFound)
	}
	return rec, nil
}

// List pages through the store in insertion order, utils.AdminPageSize per page
func (f *PersonnelFlowImpl) List(ctx context.Context, query string, page int) (*PersonnelPage, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", MsgInvalidPage, ErrInvalidPage)
	}

	filter := filterFromParams(strings.TrimSpace(query), "", "", "")
	total, err := f.personnelRepo.Count(ctx, filter)
	if err != nil {
		return nil, storeError("List", err)
	}

	items, err := f.personnelRepo.ByFilter(ctx, filter, utils.AdminPageSize, (page-1)*utils.AdminPageSize)
	if err != nil {
		return nil, storeError("List", err)
	}

	return &PersonnelPage{
		Items:      items,
		Page:       page,
		PageSize:   utils.AdminPageSize,
		Total:      total,
		TotalPages: totalPages(total, utils.AdminPageSize),
	}, nil
}

// Add inserts a new record; the personnel code and voip number must both be free
func (f *PersonnelFlowImpl) Add(ctx context.Context, record models.PersonnelRecord) (*models.PersonnelRecord, error) {
	if errs := ValidatePersonnel(record); len(errs) > 0 {
		return nil, validationError(errs)
	}
	record = trimRecord(record)

	existing, err := f.personnelRepo.ByCode(ctx, record.PersonnelCode)
	if err != nil {
		return nil, storeError("Add", err)
	}
	if existing != nil {
		return nil, NewBusinessError("DUPLICATE_PERSONNEL_CODE", MsgDuplicatePersonnelCode, ErrDuplicatePersonnelCode)
	}

	existing, err = f.personnelRepo.ByVoip(ctx, record.VoipNumber)
	if err != nil {
		return nil, storeError("Add", err)
	}
	if existing != nil {
		return nil, NewBusinessError("DUPLICATE_VOIP_NUMBER", MsgDuplicateVoip, ErrDuplicateVoipNumber)
	}

	if err := f.personnelRepo.Save(ctx, &record); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			// lost a race with a concurrent writer
			return nil, NewBusinessError("DUPLICATE_PERSONNEL_CODE", MsgDuplicatePersonnelCode, ErrDuplicatePersonnelCode)
		}
		return nil, storeError("Add", err)
	}

	f.cache.Invalidate(ctx)
	return &record, nil
}

// Update changes the mutable fields of the record with the given code
func (f *PersonnelFlowImpl) Update(ctx context.Context, code string, patch models.PersonnelPatch) (*models.PersonnelRecord, error) {
	code = strings.TrimSpace(code)

	current, err := f.personnelRepo.ByCode(ctx, code)
	if err != nil {
		return nil, storeError("Update", err)
	}
	if current == nil {
		return nil, NewBusinessError("PERSONNEL_NOT_FOUND", MsgPersonnelNotFound, ErrPersonnelNotFound)
	}

	next := trimRecord(patch.Apply(*current))
	if errs := ValidatePersonnel(next); len(errs) > 0 {
		return nil, validationError(errs)
	}

	if next.VoipNumber != current.VoipNumber {
		holder, err := f.personnelRepo.ByVoip(ctx, next.VoipNumber)
		if err != nil {
			return nil, storeError("Update", err)
		}
		if holder != nil && holder.PersonnelCode != code {
			return nil, NewBusinessError("DUPLICATE_VOIP_NUMBER", MsgDuplicateVoip, ErrDuplicateVoipNumber)
		}
	}

	updated, err := f.personnelRepo.Update(ctx, code, models.PatchFrom(next))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, NewBusinessError("DUPLICATE_VOIP_NUMBER", MsgDuplicateVoip, ErrDuplicateVoipNumber)
		}
		return nil, storeError("Update", err)
	}
	if updated == nil {
		return nil, NewBusinessError("PERSONNEL_NOT_FOUND", MsgPersonnelNotFound, ErrPersonnelNotFound)
	}

	f.cache.Invalidate(ctx)
	return updated, nil
}

// Delete removes the record with the given code
func (f *PersonnelFlowImpl) Delete(ctx context.Context, code string) error {
	deleted, err := f.personnelRepo.DeleteByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return storeError("Delete", err)
	}
	if !deleted {
		return NewBusinessError("PERSONNEL_NOT_FOUND", MsgPersonnelNotFound, ErrPersonnelNotFound)
	}

	f.cache.Invalidate(ctx)
	return nil
}

// BulkDelete removes every listed code that exists and returns how many were removed
func (f *PersonnelFlowImpl) BulkDelete(ctx context.Context, codes []string) (int, error) {
	if len(codes) == 0 {
		return 0, NewBusinessError("NO_PERSONNEL_CODES", MsgNoPersonnelCodes, ErrNoPersonnelCodes)
	}

	removed := 0
	for _, code := range codes {
		deleted, err := f.personnelRepo.DeleteByCode(ctx, strings.TrimSpace(code))
		if err != nil {
			if removed > 0 {
				f.cache.Invalidate(ctx)
			}
			return removed, storeError("BulkDelete", err)
		}
		if deleted {
			removed++
		}
	}

	if removed > 0 {
		f.cache.Invalidate(ctx)
	}
	return removed, nil
}

func totalPages(total int64, pageSize int) int {
	if total == 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
