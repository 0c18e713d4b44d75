package dto

import "time"

type SettingsDTO struct {
	CompanyName    string    `json:"company_name"`
	AppTitle       string    `json:"app_title"`
	LogoURL        string    `json:"logo_url"`
	FaviconURL     string    `json:"favicon_url"`
	ThemeColor     string    `json:"theme_color" example:"#f97316"`
	DesignerCredit string    `json:"designer_credit"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UpdateSettingsRequest is a partial update; omitted fields keep their value
type UpdateSettingsRequest struct {
	CompanyName    *string `json:"company_name,omitempty"`
	AppTitle       *string `json:"app_title,omitempty"`
	LogoURL        *string `json:"logo_url,omitempty"`
	FaviconURL     *string `json:"favicon_url,omitempty"`
	ThemeColor     *string `json:"theme_color,omitempty"`
	DesignerCredit *string `json:"designer_credit,omitempty"`
}
