package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/amirphl/personnel-directory/models"
	"github.com/amirphl/personnel-directory/utils"
)

// ImportPipeline turns an uploaded CSV file into personnel records and applies them
type ImportPipeline interface {
	ValidateFile(name string, size int64) FileValidation
	ParseContent(text string) (*ImportBatch, error)
	ApplyBatch(ctx context.Context, batch *ImportBatch, policy ConflictPolicy) ImportResult
	Process(ctx context.Context, name string, content []byte, policy ConflictPolicy, filters ImportFilters) ImportResult
}

// ConflictPolicy governs candidates whose personnel code already exists.
// Without UpdateExisting an add that collides on code or voip always counts as
// skipped; SkipDuplicates is carried for callers but does not change that.
type ConflictPolicy struct {
	SkipDuplicates bool
	UpdateExisting bool
}

// ImportFilters keeps only candidates matching each set field; "all" or empty disables a field
type ImportFilters struct {
	Project    string
	Department string
	Position   string
}

// FileValidation is the outcome of ValidateFile
type FileValidation struct {
	Valid  bool
	Errors []string
}

// Message joins the validation errors for display
func (v FileValidation) Message() string {
	return strings.Join(v.Errors, "، ")
}

// ImportBatch is the parsed, not yet applied content of one file
type ImportBatch struct {
	Records     []models.PersonnelRecord
	InvalidRows int
	RowErrors   []string
}

// ImportSummary reports row counts of one import
type ImportSummary struct {
	TotalRows   int `json:"total_rows"`
	ValidRows   int `json:"valid_rows"`
	Duplicates  int `json:"duplicates"`
	InvalidRows int `json:"invalid_rows"`
}

// ImportResult is returned for every import, failed or not
type ImportResult struct {
	// Success is set only when at least one row was added or updated
	Success bool
	Message string
	Added   int
	Updated int
	Skipped int
	Errors  []string
	Summary ImportSummary
}

func failedImport(message string) ImportResult {
	return ImportResult{Message: message, Errors: []string{message}}
}

var fieldLabels = []struct {
	field string
	label string
}{
	{"personnelCode", "کد پرسنلی"},
	{"persianName", "نام فارسی"},
	{"englishName", "نام انگلیسی"},
	{"voipNumber", "شماره ویپ"},
	{"project", "پروژه"},
	{"department", "بخش"},
	{"position", "سمت"},
}

// headerSynonyms maps normalized header cells to canonical fields
var headerSynonyms = buildHeaderSynonyms(map[string][]string{
	"personnelCode": {"کد پرسنلی", "کدپرسنلی", "شماره پرسنلی", "personnel_code", "personnelcode", "personnel code", "employee_id", "code", "id"},
	"persianName":   {"نام فارسی", "نام و نام خانوادگی", "persian_name", "persianname", "name_fa", "fa_name"},
	"englishName":   {"نام انگلیسی", "english_name", "englishname", "name_en", "en_name"},
	"voipNumber":    {"شماره ویپ", "ویپ", "داخلی", "شماره داخلی", "voip_number", "voipnumber", "voip", "extension", "ext"},
	"project":       {"پروژه", "project", "project_name"},
	"department":    {"بخش", "واحد", "department", "dept"},
	"position":      {"سمت", "position", "title", "job_title"},
})

func buildHeaderSynonyms(raw map[string][]string) map[string]string {
	out := make(map[string]string)
	for field, names := range raw {
		for _, name := range names {
			out[normalizeHeader(name)] = field
		}
	}
	return out
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.Trim(strings.TrimSpace(h), `"'`)
	h = strings.ToLower(h)
	return strings.NewReplacer(" ", "_", "-", "_", "\u200c", "_").Replace(h)
}

var (
	dangerousExtension = regexp.MustCompile(`(?i)\.(exe|bat|cmd|com|scr|pif|js|vbs|php|sh)\.`)
	allowedExtensions  = map[string]bool{".csv": true, ".xlsx": true, ".xls": true}

	xlsxSignature = []byte{0x50, 0x4B, 0x03, 0x04}
	xlsSignature  = []byte{0xD0, 0xCF, 0x11, 0xE0}
)

// ImportPipelineImpl implements ImportPipeline on top of PersonnelFlow
type ImportPipelineImpl struct {
	personnelFlow PersonnelFlow
	maxFileSize   int64
}

// NewImportPipeline creates a new import pipeline; maxFileSize <= 0 selects the 5MB default
func NewImportPipeline(personnelFlow PersonnelFlow, maxFileSize int64) ImportPipeline {
	if maxFileSize <= 0 {
		maxFileSize = utils.DefaultMaxImportFileSize
	}
	return &ImportPipelineImpl{
		personnelFlow: personnelFlow,
		maxFileSize:   maxFileSize,
	}
}

// ValidateFile checks name and size of an upload before its content is read
func (p *ImportPipelineImpl) ValidateFile(name string, size int64) FileValidation {
	if strings.TrimSpace(name) == "" {
		return FileValidation{Errors: []string{MsgFileInvalid}}
	}

	var errs []string
	if size > p.maxFileSize {
		errs = append(errs, fmt.Sprintf(MsgFileTooLargeFmt, p.maxFileSize/1024/1024))
	}
	if size < utils.MinImportFileSize {
		errs = append(errs, MsgFileEmpty)
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(name))] {
		errs = append(errs, MsgFileTypeNotAllowed)
	}
	if dangerousExtension.MatchString(name) || hasControlOrSeparator(name) {
		errs = append(errs, MsgFileNameNotAllowed)
	}

	return FileValidation{Valid: len(errs) == 0, Errors: errs}
}

func hasControlOrSeparator(name string) bool {
	for _, r := range name {
		if r < 0x20 || r == 0x7f || r == '/' || r == '\\' {
			return true
		}
	}
	return false
}

// DetectBinaryExcel reports an xlsx (zip) or legacy xls (OLE) signature
func DetectBinaryExcel(content []byte) bool {
	return bytes.HasPrefix(content, xlsxSignature) || bytes.HasPrefix(content, xlsSignature)
}

// ParseContent parses CSV text line by line so a malformed row only costs itself.
// Bad rows are dropped and counted; only a missing header, missing data, or missing
// required columns fail the whole file.
func (p *ImportPipelineImpl) ParseContent(text string) (*ImportBatch, error) {
	text = strings.TrimPrefix(text, "\ufeff")

	if countNonBlankLines(text) < 2 {
		return nil, NewBusinessError("IMPORT_TOO_FEW_LINES", MsgImportTooFewLines, ErrImportHeaderMissing)
	}

	var (
		header  map[int]string
		columns int
		batch   = &ImportBatch{}
	)

	for i, raw := range strings.Split(text, "\n") {
		line := i + 1
		raw = strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}

		row, err := parseLine(raw)
		if err != nil {
			if header == nil {
				return nil, NewBusinessError("INVALID_IMPORT_FILE", MsgFileInvalid, fmt.Errorf("%w: %v", ErrInvalidImportFile, err))
			}
			batch.InvalidRows++
			batch.RowErrors = append(batch.RowErrors, fmt.Sprintf("ردیف %d: قالب ردیف نامعتبر است", line))
			continue
		}
		if isBlankRow(row) {
			continue
		}

		if header == nil {
			header, columns, err = mapHeader(row)
			if err != nil {
				return nil, err
			}
			continue
		}

		if len(row) != columns {
			batch.InvalidRows++
			batch.RowErrors = append(batch.RowErrors, fmt.Sprintf("ردیف %d: تعداد ستون\u200cها با سرستون مطابقت ندارد", line))
			continue
		}

		rec, ok := buildRecord(header, row)
		if !ok {
			batch.InvalidRows++
			batch.RowErrors = append(batch.RowErrors, fmt.Sprintf("ردیف %d: فیلدهای الزامی خالی است", line))
			continue
		}
		batch.Records = append(batch.Records, rec)
	}

	if header == nil {
		return nil, NewBusinessError("IMPORT_TOO_FEW_LINES", MsgImportTooFewLines, ErrImportHeaderMissing)
	}

	return batch, nil
}

// parseLine reads one physical line as a single CSV record; an unclosed quote
// ends at the line break.
func parseLine(line string) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	row, err := reader.Read()
	if err != nil {
		return nil, err
	}
	if _, err := reader.Read(); !errors.Is(err, io.EOF) {
		return nil, errors.New("line holds more than one record")
	}
	return row, nil
}

func countNonBlankLines(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// mapHeader resolves header cells to fields and requires all seven
func mapHeader(row []string) (map[int]string, int, error) {
	header := make(map[int]string)
	found := make(map[string]bool)
	for i, cell := range row {
		field, ok := headerSynonyms[normalizeHeader(cell)]
		if !ok || found[field] {
			continue
		}
		header[i] = field
		found[field] = true
	}

	var missing []string
	for _, fl := range fieldLabels {
		if !found[fl.field] {
			missing = append(missing, fl.label)
		}
	}
	if len(missing) > 0 {
		return nil, 0, NewBusinessErrorf("IMPORT_COLUMNS_MISSING", MsgImportMissingFmt, ErrImportColumnsMissing, strings.Join(missing, "، "))
	}

	return header, len(row), nil
}

func buildRecord(header map[int]string, row []string) (models.PersonnelRecord, bool) {
	var rec models.PersonnelRecord
	for i, field := range header {
		value := SanitizeInput(row[i], utils.MaxImportFieldLength)
		switch field {
		case "personnelCode":
			rec.PersonnelCode = value
		case "persianName":
			rec.PersianName = value
		case "englishName":
			rec.EnglishName = value
		case "voipNumber":
			rec.VoipNumber = value
		case "project":
			rec.Project = value
		case "department":
			rec.Department = value
		case "position":
			rec.Position = value
		}
	}

	for _, v := range []string{rec.PersonnelCode, rec.PersianName, rec.EnglishName, rec.VoipNumber, rec.Project, rec.Department, rec.Position} {
		if v == "" {
			return rec, false
		}
	}
	return rec, true
}

// Filter drops candidates that do not match filters; dropped rows leave every count
func (f ImportFilters) Filter(batch *ImportBatch) *ImportBatch {
	filter := filterFromParams("", f.Project, f.Department, f.Position)

	kept := make([]models.PersonnelRecord, 0, len(batch.Records))
	for _, rec := range batch.Records {
		if filter.Matches(rec) {
			kept = append(kept, rec)
		}
	}

	return &ImportBatch{
		Records:     kept,
		InvalidRows: batch.InvalidRows,
		RowErrors:   batch.RowErrors,
	}
}

// ApplyBatch applies candidates in order under policy; row failures never abort the batch
func (p *ImportPipelineImpl) ApplyBatch(ctx context.Context, batch *ImportBatch, policy ConflictPolicy) ImportResult {
	var result ImportResult
	result.Errors = append(result.Errors, batch.RowErrors...)

	for _, rec := range batch.Records {
		if policy.UpdateExisting {
			_, err := p.personnelFlow.Update(ctx, rec.PersonnelCode, models.PatchFrom(rec))
			if err != nil {
				result.Errors = append(result.Errors, rowError(rec, err))
				importRowsTotal.WithLabelValues("error").Inc()
				continue
			}
			result.Updated++
			importRowsTotal.WithLabelValues("updated").Inc()
			continue
		}

		_, err := p.personnelFlow.Add(ctx, rec)
		switch {
		case err == nil:
			result.Added++
			importRowsTotal.WithLabelValues("added").Inc()
		case IsDuplicate(err):
			result.Skipped++
			importRowsTotal.WithLabelValues("skipped").Inc()
		default:
			result.Errors = append(result.Errors, rowError(rec, err))
			importRowsTotal.WithLabelValues("error").Inc()
		}
	}

	if batch.InvalidRows > 0 {
		importRowsTotal.WithLabelValues("invalid").Add(float64(batch.InvalidRows))
	}

	result.Success = result.Added > 0 || result.Updated > 0
	result.Message = fmt.Sprintf(MsgImportSummaryFmt, result.Added, result.Updated, result.Skipped)
	result.Summary = ImportSummary{
		TotalRows:   len(batch.Records) + batch.InvalidRows,
		ValidRows:   result.Added + result.Updated,
		Duplicates:  result.Skipped,
		InvalidRows: batch.InvalidRows,
	}
	return result
}

func rowError(rec models.PersonnelRecord, err error) string {
	msg := err.Error()
	if be, ok := AsBusinessError(err); ok {
		msg = be.Message
	}
	return fmt.Sprintf("%s: %s", rec.PersonnelCode, msg)
}

// Process runs validation, parsing, filtering and apply for one uploaded file
func (p *ImportPipelineImpl) Process(ctx context.Context, name string, content []byte, policy ConflictPolicy, filters ImportFilters) ImportResult {
	if v := p.ValidateFile(name, int64(len(content))); !v.Valid {
		return ImportResult{Message: v.Message(), Errors: v.Errors}
	}

	if DetectBinaryExcel(content) {
		return failedImport(MsgExcelNotSupported)
	}
	if !utf8.Valid(content) {
		return failedImport(MsgFileInvalid)
	}

	batch, err := p.ParseContent(string(content))
	if err != nil {
		if be, ok := AsBusinessError(err); ok {
			return failedImport(be.Message)
		}
		log.Printf("Process: failed to parse %s: %v", name, err)
		return failedImport(MsgImportFailed)
	}

	result := p.ApplyBatch(ctx, filters.Filter(batch), policy)
	log.Printf("Import %s: added=%d updated=%d skipped=%d invalid=%d errors=%d",
		name, result.Added, result.Updated, result.Skipped, result.Summary.InvalidRows, len(result.Errors))
	return result
}
