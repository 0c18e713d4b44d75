package models

import "time"

// AppSettings holds the appearance settings of the directory; a single row keyed by Key.
type AppSettings struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	Key            string    `gorm:"size:32;not null;uniqueIndex:uk_app_settings_key" json:"-"`
	CompanyName    string    `gorm:"size:255;not null" json:"company_name"`
	AppTitle       string    `gorm:"size:255;not null" json:"app_title"`
	LogoURL        string    `gorm:"type:text" json:"logo_url"`
	FaviconURL     string    `gorm:"type:text" json:"favicon_url"`
	ThemeColor     string    `gorm:"size:16;not null" json:"theme_color"`
	DesignerCredit string    `gorm:"size:255" json:"designer_credit"`
	UpdatedAt      time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (AppSettings) TableName() string { return "app_settings" }

// AppSettingsKey is the key of the only settings row
const AppSettingsKey = "app"

// DefaultAppSettings returns the settings used on first start and after a reset
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Key:            AppSettingsKey,
		CompanyName:    "فراپخت",
		AppTitle:       "دفترچه تلفن آنلاین پرسنل شرکت فراپخت",
		LogoURL:        "/logo-farapokht.png",
		FaviconURL:     "/favicon.ico",
		ThemeColor:     "#f97316",
		DesignerCredit: "طراحی شده توسط هادی علایی",
	}
}

// AppSettingsPatch is a partial settings update; nil means unchanged
type AppSettingsPatch struct {
	CompanyName    *string `json:"company_name" validate:"omitempty,min=1,max=255"`
	AppTitle       *string `json:"app_title" validate:"omitempty,min=1,max=255"`
	LogoURL        *string `json:"logo_url" validate:"omitempty,max=1024"`
	FaviconURL     *string `json:"favicon_url" validate:"omitempty,max=1024"`
	ThemeColor     *string `json:"theme_color" validate:"omitempty,hexcolor"`
	DesignerCredit *string `json:"designer_credit" validate:"omitempty,max=255"`
}

// Apply returns s with the non-nil patch fields applied
func (p AppSettingsPatch) Apply(s AppSettings) AppSettings {
	if p.CompanyName != nil {
		s.CompanyName = *p.CompanyName
	}
	if p.AppTitle != nil {
		s.AppTitle = *p.AppTitle
	}
	if p.LogoURL != nil {
		s.LogoURL = *p.LogoURL
	}
	if p.FaviconURL != nil {
		s.FaviconURL = *p.FaviconURL
	}
	if p.ThemeColor != nil {
		s.ThemeColor = *p.ThemeColor
	}
	if p.DesignerCredit != nil {
		s.DesignerCredit = *p.DesignerCredit
	}
	return s
}
