// Package testing provides test fixtures and database setup for the directory tests
package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/personnel-directory/models"
	"github.com/amirphl/personnel-directory/repository"
	"github.com/amirphl/personnel-directory/utils"
	"golang.org/x/crypto/bcrypt"
)

// Default admin credential created by the fixtures
const (
	TestAdminUsername = "admin"
	TestAdminPassword = "Farapokht@2024"
)

// SampleCSV is a valid import file with a Persian header and three rows
const SampleCSV = "کد پرسنلی,نام فارسی,نام انگلیسی,شماره ویپ,پروژه,بخش,سمت\n" +
	"1001,علی احمدی,Ali Ahmadi,2001,فولاد مبارکه,مهندسی,مهندس\n" +
	"1002,فاطمه رضایی,Fatemeh Rezaei,2002,پتروشیمی,تولید,تکنسین\n" +
	"1003,رضا کریمی,Reza Karimi,2003,فولاد مبارکه,تولید,سرپرست\n"

// FakeClock is a manually advanced clock
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock starts a clock at a fixed UTC instant
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	Store *repository.Store
	Clock *FakeClock
}

// NewMemoryFixtures creates fixtures over an empty in-memory store
func NewMemoryFixtures() *TestFixtures {
	return &TestFixtures{Store: repository.NewMemoryStore(), Clock: NewFakeClock()}
}

// NewTestFixtures creates fixtures over a test database
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{Store: repository.NewGormStore(db.DB), Clock: NewFakeClock()}
}

// CreateTestAdmin stores the default admin with a low-cost hash
func (tf *TestFixtures) CreateTestAdmin() (*models.Admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(TestAdminPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Username:     TestAdminUsername,
		PasswordHash: string(hash),
		IsActive:     utils.ToPtr(true),
	}
	if err := tf.Store.Admins.Save(context.Background(), admin); err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}
	return admin, nil
}

// TestPersonnel builds a valid record whose code and voip derive from i
func TestPersonnel(i int, project, department, position string) models.PersonnelRecord {
	return models.PersonnelRecord{
		PersonnelCode: fmt.Sprintf("%d", 5000+i),
		PersianName:   fmt.Sprintf("کارمند %d", i),
		EnglishName:   fmt.Sprintf("Employee %d", i),
		VoipNumber:    fmt.Sprintf("%d", 9000+i),
		Project:       project,
		Department:    department,
		Position:      position,
	}
}

// CreateTestPersonnel stores n records split across two projects
func (tf *TestFixtures) CreateTestPersonnel(n int) ([]models.PersonnelRecord, error) {
	out := make([]models.PersonnelRecord, 0, n)
	for i := 0; i < n; i++ {
		project := "باغ فردوس"
		if i%2 == 1 {
			project = "دفتر اصفهان"
		}
		rec := TestPersonnel(i, project, "مالی", "حسابدار")
		if err := tf.Store.Personnel.Save(context.Background(), &rec); err != nil {
			return nil, fmt.Errorf("failed to create personnel %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// CSV joins a header and rows into import text
func CSV(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}
