package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/personnel-directory/models"
	"github.com/amirphl/personnel-directory/repository"
	"github.com/amirphl/personnel-directory/utils"
)

// DirectoryFlow serves the public, read-only directory
type DirectoryFlow interface {
	Search(ctx context.Context, query DirectoryQuery) (*DirectoryPage, error)
	Lookups(ctx context.Context) (*models.Lookups, error)
}

// DirectoryQuery is a public search; filters set to "all" or empty are ignored
type DirectoryQuery struct {
	Query      string
	Project    string
	Department string
	Position   string
	Page       int
	PageSize   int
}

// DirectoryPage is one page of search results
type DirectoryPage struct {
	Items      []*models.PersonnelRecord `json:"items"`
	Page       int                       `json:"page"`
	PageSize   int                       `json:"page_size"`
	Total      int64                     `json:"total"`
	TotalPages int                       `json:"total_pages"`
}

// DirectoryFlowImpl implements DirectoryFlow
type DirectoryFlowImpl struct {
	store *repository.Store
	cache *DirectoryCache
}

// NewDirectoryFlow creates a new directory flow; cache may be nil
func NewDirectoryFlow(store *repository.Store, cache *DirectoryCache) DirectoryFlow {
	return &DirectoryFlowImpl{store: store, cache: cache}
}

// Search filters the store and returns the requested page in store order
func (f *DirectoryFlowImpl) Search(ctx context.Context, q DirectoryQuery) (*DirectoryPage, error) {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = utils.AdminPageSize
	}
	if q.Page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", MsgInvalidPage, ErrInvalidPage)
	}
	if q.PageSize < 1 || q.PageSize > utils.MaxPageSize {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", MsgInvalidPageSize, ErrInvalidPageSize)
	}

	filter := filterFromParams(strings.TrimSpace(q.Query), q.Project, q.Department, q.Position)
	cacheKey := searchCacheKey(filter, q.Page, q.PageSize)

	var cached DirectoryPage
	if f.cache.get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	total, err := f.store.Personnel.Count(ctx, filter)
	if err != nil {
		return nil, storeError("Search", err)
	}
	items, err := f.store.Personnel.ByFilter(ctx, filter, q.PageSize, (q.Page-1)*q.PageSize)
	if err != nil {
		return nil, storeError("Search", err)
	}
	if items == nil {
		items = []*models.PersonnelRecord{}
	}

	page := &DirectoryPage{
		Items:      items,
		Page:       q.Page,
		PageSize:   q.PageSize,
		Total:      total,
		TotalPages: totalPages(total, q.PageSize),
	}
	f.cache.set(ctx, cacheKey, page)
	return page, nil
}

// Lookups lists the distinct project, department and position names
func (f *DirectoryFlowImpl) Lookups(ctx context.Context) (*models.Lookups, error) {
	var cached models.Lookups
	if f.cache.get(ctx, "lookups", &cached) {
		return &cached, nil
	}

	projects, err := f.store.Projects.Names(ctx)
	if err != nil {
		return nil, storeError("Lookups", err)
	}
	departments, err := f.store.Departments.Names(ctx)
	if err != nil {
		return nil, storeError("Lookups", err)
	}
	positions, err := f.store.Positions.Names(ctx)
	if err != nil {
		return nil, storeError("Lookups", err)
	}

	lookups := &models.Lookups{
		Projects:    nonNil(projects),
		Departments: nonNil(departments),
		Positions:   nonNil(positions),
	}
	f.cache.set(ctx, "lookups", lookups)
	return lookups, nil
}

func searchCacheKey(f models.PersonnelFilter, page, pageSize int) string {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return fmt.Sprintf("search:%q:%q:%q:%q:%d:%d",
		strings.ToLower(deref(f.Query)), deref(f.Project), deref(f.Department), deref(f.Position), page, pageSize)
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
