package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/amirphl/personnel-directory/models"
	"gorm.io/gorm"
)

// NewGormStore wires the postgres repositories
func NewGormStore(db *gorm.DB) *Store {
	projects := NewLookupRepository[models.Project](db)
	departments := NewLookupRepository[models.Department](db)
	positions := NewLookupRepository[models.Position](db)

	return &Store{
		Personnel:   NewPersonnelRepository(db, projects, departments, positions),
		Projects:    projects,
		Departments: departments,
		Positions:   positions,
		Admins:      NewAdminRepository(db),
		Settings:    NewSettingsRepository(db),
	}
}

// AutoMigrate creates or updates the directory tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Project{},
		&models.Department{},
		&models.Position{},
		&models.Personnel{},
		&models.Admin{},
		&models.AppSettings{},
	)
}

// Seed inserts the starter directory when the store holds no personnel
func Seed(ctx context.Context, store *Store) error {
	count, err := store.Personnel.Count(ctx, models.PersonnelFilter{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	inserted := 0
	for _, rec := range seedPersonnel {
		if err := store.Personnel.Save(ctx, &rec); err != nil {
			if errors.Is(err, ErrDuplicateKey) {
				continue
			}
			return fmt.Errorf("failed to seed personnel %s: %w", rec.PersonnelCode, err)
		}
		inserted++
	}

	log.Printf("Seeded %d personnel records", inserted)
	return nil
}

var seedPersonnel = []models.PersonnelRecord{
	{PersonnelCode: "8635071", PersianName: "ابراهیم براتی کهریز", EnglishName: "ebrahim barati", VoipNumber: "7601", Project: "باغ فردوس", Department: "تاسیسات باغ فردوس", Position: "سرپرست"},
	{PersonnelCode: "8633574", PersianName: "ابراهیم جمشیدی شرودانی", EnglishName: "Ebarahim Jamshidi", VoipNumber: "7900", Project: "باغ فردوس", Department: "آشپزخانه باغ فردوس", Position: "سرآشپز"},
	{PersonnelCode: "8634431", PersianName: "محمدرضا جانی قربان", EnglishName: "ahmadreza jani ghorban", VoipNumber: "7716", Project: "باغ فردوس", Department: "منابع انسانی و اداری باغ فردوس", Position: "کارگر"},
	{PersonnelCode: "9963558", PersianName: "اردشیر رشیدی", EnglishName: "ardeshir rashidi", VoipNumber: "7802", Project: "باغ فردوس", Department: "خرید و پشتیبانی باغ فردوس", Position: "راننده"},
	{PersonnelCode: "8595822", PersianName: "حدیث نورالهی", EnglishName: "hadis norollahi", VoipNumber: "7704", Project: "باغ فردوس", Department: "منابع انسانی و اداری باغ فردوس", Position: "کارشناس منابع انسانی و اداری"},
	{PersonnelCode: "4000354", PersianName: "سحر روشنک", EnglishName: "sahar roshanak", VoipNumber: "7100", Project: "باغ فردوس", Department: "مجموعه باغ فردوس", Position: "سرپرست پروژه"},
	{PersonnelCode: "9615294", PersianName: "عباس بخشیان خراجی", EnglishName: "abbas bakhshian", VoipNumber: "7504", Project: "باغ فردوس", Department: "مالی باغ فردوس", Position: "مسئول حسابدار"},
	{PersonnelCode: "8635144", PersianName: "فاطمه مرادی", EnglishName: "fatemeh moradi", VoipNumber: "7505", Project: "باغ فردوس", Department: "مالی باغ فردوس", Position: "حسابدار"},
	{PersonnelCode: "9927031", PersianName: "مهدی شیخی زازرانی", EnglishName: "mehdi shaikhi", VoipNumber: "7706", Project: "باغ فردوس", Department: "منابع انسانی و اداری باغ فردوس", Position: "کارشناس HSE"},
	{PersonnelCode: "4000336", PersianName: "احسان تذروی ورزنه", EnglishName: "Ehsan Tazarvi", VoipNumber: "3502", Project: "دفتر اصفهان", Department: "واحد مالی اصفهان", Position: "حسابدار"},
}

// SeedRecordCount is the number of starter records
func SeedRecordCount() int { return len(seedPersonnel) }
