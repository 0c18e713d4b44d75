package dto

// PersonnelDTO is the wire shape of one directory entry
type PersonnelDTO struct {
	PersonnelCode string `json:"personnel_code" example:"8635071"`
	PersianName   string `json:"persian_name" example:"ابراهیم براتی کهریز"`
	EnglishName   string `json:"english_name" example:"ebrahim barati"`
	VoipNumber    string `json:"voip_number" example:"7601"`
	Project       string `json:"project" example:"باغ فردوس"`
	Department    string `json:"department" example:"تاسیسات باغ فردوس"`
	Position      string `json:"position" example:"سرپرست"`
}

// CreatePersonnelRequest is checked field by field by ValidatePersonnel
type CreatePersonnelRequest struct {
	PersonnelCode string `json:"personnel_code" validate:"max=32"`
	PersianName   string `json:"persian_name" validate:"max=255"`
	EnglishName   string `json:"english_name" validate:"max=255"`
	VoipNumber    string `json:"voip_number" validate:"max=32"`
	Project       string `json:"project" validate:"max=255"`
	Department    string `json:"department" validate:"max=255"`
	Position      string `json:"position" validate:"max=255"`
}

// UpdatePersonnelRequest is partial; a personnel_code in the body is rejected
type UpdatePersonnelRequest struct {
	PersonnelCode *string `json:"personnel_code,omitempty"`
	PersianName   *string `json:"persian_name,omitempty" validate:"omitempty,max=255"`
	EnglishName   *string `json:"english_name,omitempty" validate:"omitempty,max=255"`
	VoipNumber    *string `json:"voip_number,omitempty" validate:"omitempty,max=32"`
	Project       *string `json:"project,omitempty" validate:"omitempty,max=255"`
	Department    *string `json:"department,omitempty" validate:"omitempty,max=255"`
	Position      *string `json:"position,omitempty" validate:"omitempty,max=255"`
}

// Empty reports whether no mutable field is set
func (r UpdatePersonnelRequest) Empty() bool {
	return r.PersianName == nil && r.EnglishName == nil && r.VoipNumber == nil &&
		r.Project == nil && r.Department == nil && r.Position == nil
}

type BulkDeleteRequest struct {
	Codes []string `json:"codes"`
}

type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

// PersonnelListResponse is one page of personnel
type PersonnelListResponse struct {
	Items      []PersonnelDTO `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"total_pages"`
}

type LookupsResponse struct {
	Projects    []string `json:"projects"`
	Departments []string `json:"departments"`
	Positions   []string `json:"positions"`
}

// ImportResponse mirrors the import result
type ImportResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Added   int           `json:"added"`
	Updated int           `json:"updated"`
	Skipped int           `json:"skipped"`
	Errors  []string      `json:"errors"`
	Summary ImportSummary `json:"summary"`
}

type ImportSummary struct {
	TotalRows   int `json:"total_rows"`
	ValidRows   int `json:"valid_rows"`
	Duplicates  int `json:"duplicates"`
	InvalidRows int `json:"invalid_rows"`
}
