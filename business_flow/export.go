package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/amirphl/personnel-directory/models"
	"github.com/amirphl/personnel-directory/repository"
	"github.com/amirphl/personnel-directory/utils"
)

// ExportFlow renders the record store as downloadable files
type ExportFlow interface {
	ExportCSV(ctx context.Context, filters ImportFilters) (string, []byte, error)
	ExportXLSX(ctx context.Context, filters ImportFilters) (string, []byte, error)
	SampleCSV() (string, []byte, error)
}

// exportHeader is also a valid import header
var exportHeader = []string{"کد پرسنلی", "نام فارسی", "نام انگلیسی", "شماره ویپ", "پروژه", "بخش", "سمت"}

var sampleRows = [][]string{
	{"1001", "علی احمدی", "Ali Ahmadi", "2001", "فولاد مبارکه", "مهندسی", "مهندس"},
	{"1002", "فاطمه رضایی", "Fatemeh Rezaei", "2002", "پتروشیمی", "تولید", "تکنسین"},
}

const (
	sampleFilename = "نمونه-فایل-پرسنل.csv"
	exportSheet    = "پرسنل"
	utf8BOM        = "\ufeff"
)

// ExportFlowImpl implements ExportFlow
type ExportFlowImpl struct {
	personnelRepo repository.PersonnelRepository
	now           utils.Clock
}

// NewExportFlow creates a new export flow; now defaults to utils.UTCNow
func NewExportFlow(personnelRepo repository.PersonnelRepository, now utils.Clock) ExportFlow {
	if now == nil {
		now = utils.UTCNow
	}
	return &ExportFlowImpl{personnelRepo: personnelRepo, now: now}
}

func (f *ExportFlowImpl) filename(ext string) string {
	return fmt.Sprintf("personnel-export-%s.%s", f.now().Format("2006-01-02"), ext)
}

func (f *ExportFlowImpl) rows(ctx context.Context, filters ImportFilters) ([][]string, error) {
	filter := filterFromParams("", filters.Project, filters.Department, filters.Position)
	records, err := f.personnelRepo.ByFilter(ctx, filter, 0, 0)
	if err != nil {
		return nil, storeError("Export", err)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordRow(r))
	}
	return rows, nil
}

func recordRow(r *models.PersonnelRecord) []string {
	return []string{r.PersonnelCode, r.PersianName, r.EnglishName, r.VoipNumber, r.Project, r.Department, r.Position}
}

func writeCSV(rows [][]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteString(utf8BOM)

	w := csv.NewWriter(buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, NewBusinessError("CSV_WRITE_ERROR", MsgExportFailed, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, NewBusinessError("CSV_WRITE_ERROR", MsgExportFailed, err)
	}
	return buf.Bytes(), nil
}

// ExportCSV writes every matching record in store order, prefixed with a UTF-8 BOM
func (f *ExportFlowImpl) ExportCSV(ctx context.Context, filters ImportFilters) (string, []byte, error) {
	rows, err := f.rows(ctx, filters)
	if err != nil {
		return "", nil, err
	}

	data, err := writeCSV(rows)
	if err != nil {
		return "", nil, err
	}

	exportsTotal.WithLabelValues("csv").Inc()
	return f.filename("csv"), data, nil
}

// ExportXLSX writes the same rows as ExportCSV into a single-sheet workbook
func (f *ExportFlowImpl) ExportXLSX(ctx context.Context, filters ImportFilters) (string, []byte, error) {
	rows, err := f.rows(ctx, filters)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), exportSheet); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", MsgExportFailed, err)
	}
	if err := xl.SetSheetView(exportSheet, 0, &excelize.ViewOptions{RightToLeft: utils.ToPtr(true)}); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", MsgExportFailed, err)
	}

	header := exportHeader
	if err := xl.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", MsgExportFailed, err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := xl.SetSheetRow(exportSheet, cell, &row); err != nil {
			return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", MsgExportFailed, err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", MsgExportFailed, err)
	}

	exportsTotal.WithLabelValues("xlsx").Inc()
	return f.filename("xlsx"), buf.Bytes(), nil
}

// SampleCSV returns an import template with two example rows
func (f *ExportFlowImpl) SampleCSV() (string, []byte, error) {
	data, err := writeCSV(sampleRows)
	if err != nil {
		return "", nil, err
	}
	exportsTotal.WithLabelValues("sample").Inc()
	return sampleFilename, data, nil
}
