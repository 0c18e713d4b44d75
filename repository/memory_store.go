package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/amirphl/personnel-directory/models"
	"github.com/amirphl/personnel-directory/utils"
	"github.com/google/uuid"
)

// memoryStore keeps every table in process memory; state is lost on restart
type memoryStore struct {
	mu sync.RWMutex

	personnel []models.PersonnelRecord
	lookups   map[string]*memoryLookup
	admins    map[string]models.Admin
	settings  *models.AppSettings
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *Store {
	m := &memoryStore{
		lookups: map[string]*memoryLookup{},
		admins:  map[string]models.Admin{},
	}
	for _, table := range []string{"projects", "departments", "positions"} {
		m.lookups[table] = &memoryLookup{store: m, ids: map[string]uint{}}
	}

	return &Store{
		Personnel:   &memoryPersonnel{m},
		Projects:    m.lookups["projects"],
		Departments: m.lookups["departments"],
		Positions:   m.lookups["positions"],
		Admins:      &memoryAdmins{m},
		Settings:    &memorySettings{m},
	}
}

type memoryPersonnel struct{ m *memoryStore }

func (p *memoryPersonnel) indexOf(code string) int {
	return slices.IndexFunc(p.m.personnel, func(r models.PersonnelRecord) bool { return r.PersonnelCode == code })
}

func (p *memoryPersonnel) ByCode(_ context.Context, code string) (*models.PersonnelRecord, error) {
	p.m.mu.RLock()
	defer p.m.mu.RUnlock()

	if i := p.indexOf(code); i >= 0 {
		rec := p.m.personnel[i]
		return &rec, nil
	}
	return nil, nil
}

func (p *memoryPersonnel) ByVoip(_ context.Context, voip string) (*models.PersonnelRecord, error) {
	p.m.mu.RLock()
	defer p.m.mu.RUnlock()

	for _, rec := range p.m.personnel {
		if rec.VoipNumber == voip {
			return &rec, nil
		}
	}
	return nil, nil
}

func (p *memoryPersonnel) Save(_ context.Context, record *models.PersonnelRecord) error {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()

	for _, rec := range p.m.personnel {
		if rec.PersonnelCode == record.PersonnelCode || rec.VoipNumber == record.VoipNumber {
			return fmt.Errorf("failed to save entity: %w", ErrDuplicateKey)
		}
	}

	p.m.touchLookups(*record)
	p.m.personnel = append(p.m.personnel, *record)
	return nil
}

func (p *memoryPersonnel) Update(_ context.Context, code string, patch models.PersonnelPatch) (*models.PersonnelRecord, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()

	i := p.indexOf(code)
	if i < 0 {
		return nil, nil
	}

	next := patch.Apply(p.m.personnel[i])
	for j, rec := range p.m.personnel {
		if j != i && rec.VoipNumber == next.VoipNumber {
			return nil, fmt.Errorf("failed to update personnel %s: %w", code, ErrDuplicateKey)
		}
	}

	p.m.touchLookups(next)
	p.m.personnel[i] = next
	return &next, nil
}

func (p *memoryPersonnel) DeleteByCode(_ context.Context, code string) (bool, error) {
	p.m.mu.Lock()
	defer p.m.mu.Unlock()

	i := p.indexOf(code)
	if i < 0 {
		return false, nil
	}
	p.m.personnel = slices.Delete(p.m.personnel, i, i+1)
	return true, nil
}

func (p *memoryPersonnel) ByFilter(_ context.Context, filter models.PersonnelFilter, limit, offset int) ([]*models.PersonnelRecord, error) {
	p.m.mu.RLock()
	defer p.m.mu.RUnlock()

	var out []*models.PersonnelRecord
	skipped := 0
	for _, rec := range p.m.personnel {
		if !filter.Matches(rec) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (p *memoryPersonnel) Count(_ context.Context, filter models.PersonnelFilter) (int64, error) {
	p.m.mu.RLock()
	defer p.m.mu.RUnlock()

	var n int64
	for _, rec := range p.m.personnel {
		if filter.Matches(rec) {
			n++
		}
	}
	return n, nil
}

// touchLookups registers the reference names of rec; caller holds the write lock
func (m *memoryStore) touchLookups(rec models.PersonnelRecord) {
	m.lookups["projects"].getOrCreateLocked(rec.Project)
	m.lookups["departments"].getOrCreateLocked(rec.Department)
	m.lookups["positions"].getOrCreateLocked(rec.Position)
}

type memoryLookup struct {
	store *memoryStore
	ids   map[string]uint
}

func (l *memoryLookup) getOrCreateLocked(name string) uint {
	if id, ok := l.ids[name]; ok {
		return id
	}
	id := uint(len(l.ids) + 1)
	l.ids[name] = id
	return id
}

func (l *memoryLookup) GetOrCreate(_ context.Context, name string) (uint, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	return l.getOrCreateLocked(name), nil
}

func (l *memoryLookup) Names(_ context.Context) ([]string, error) {
	l.store.mu.RLock()
	defer l.store.mu.RUnlock()

	names := make([]string, 0, len(l.ids))
	for name := range l.ids {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

type memoryAdmins struct{ m *memoryStore }

func (a *memoryAdmins) ByUsername(_ context.Context, username string) (*models.Admin, error) {
	a.m.mu.RLock()
	defer a.m.mu.RUnlock()

	if admin, ok := a.m.admins[username]; ok {
		return &admin, nil
	}
	return nil, nil
}

func (a *memoryAdmins) Save(_ context.Context, admin *models.Admin) error {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()

	if _, ok := a.m.admins[admin.Username]; ok {
		return fmt.Errorf("failed to save entity: %w", ErrDuplicateKey)
	}
	if admin.UUID == uuid.Nil {
		admin.UUID = uuid.New()
	}
	if admin.IsActive == nil {
		admin.IsActive = utils.ToPtr(true)
	}
	now := utils.UTCNow()
	admin.ID = uint(len(a.m.admins) + 1)
	admin.CreatedAt = now
	admin.UpdatedAt = now
	a.m.admins[admin.Username] = *admin
	return nil
}

func (a *memoryAdmins) UpdatePassword(_ context.Context, username, passwordHash string) error {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()

	admin, ok := a.m.admins[username]
	if !ok {
		return fmt.Errorf("admin %s not found", username)
	}
	admin.PasswordHash = passwordHash
	admin.PasswordChangedAt = utils.UTCNowPtr()
	admin.UpdatedAt = utils.UTCNow()
	a.m.admins[username] = admin
	return nil
}

func (a *memoryAdmins) TouchLastLogin(_ context.Context, username string) error {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()

	if admin, ok := a.m.admins[username]; ok {
		admin.LastLoginAt = utils.UTCNowPtr()
		a.m.admins[username] = admin
	}
	return nil
}

type memorySettings struct{ m *memoryStore }

func (s *memorySettings) Load(_ context.Context) (*models.AppSettings, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()

	if s.m.settings == nil {
		return nil, nil
	}
	settings := *s.m.settings
	return &settings, nil
}

func (s *memorySettings) Save(_ context.Context, settings *models.AppSettings) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	stored := *settings
	stored.Key = models.AppSettingsKey
	stored.UpdatedAt = utils.UTCNow()
	s.m.settings = &stored
	return nil
}
