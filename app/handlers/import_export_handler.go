package handlers

import (
	"io"
	"log"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/amirphl/personnel-directory/app/dto"
	businessflow "github.com/amirphl/personnel-directory/business_flow"
	"github.com/gofiber/fiber/v3"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ImportExportHandlerInterface defines the CSV import and the export endpoints
type ImportExportHandlerInterface interface {
	Import(c fiber.Ctx) error
	Export(c fiber.Ctx) error
	Sample(c fiber.Ctx) error
}

type ImportExportHandler struct {
	responder
	pipeline businessflow.ImportPipeline
	export   businessflow.ExportFlow
}

func NewImportExportHandler(pipeline businessflow.ImportPipeline, export businessflow.ExportFlow) ImportExportHandlerInterface {
	return &ImportExportHandler{
		responder: newResponder(),
		pipeline:  pipeline,
		export:    export,
	}
}

// Import applies an uploaded CSV file. Rejections keep the ImportResponse shape in data.
func (h *ImportExportHandler) Import(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.MsgFileInvalid, "INVALID_FILE", nil)
	}

	// reject on name and size before reading the body
	if v := h.pipeline.ValidateFile(fileHeader.Filename, fileHeader.Size); !v.Valid {
		return h.ErrorResponse(c, fiber.StatusBadRequest, v.Message(), "INVALID_FILE", v.Errors)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.MsgFileInvalid, "INVALID_FILE", err.Error())
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		log.Printf("Import: failed to read upload: %v", err)
		return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.MsgFileInvalid, "INVALID_FILE", nil)
	}

	policy := businessflow.ConflictPolicy{
		SkipDuplicates: formBool(c.FormValue("skip_duplicates")),
		UpdateExisting: formBool(c.FormValue("update_existing")),
	}
	filters := businessflow.ImportFilters{
		Project:    c.FormValue("project"),
		Department: c.FormValue("department"),
		Position:   c.FormValue("position"),
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result := h.pipeline.Process(ctx, fileHeader.Filename, content, policy, filters)
	resp := dto.ImportResponse{
		Success: result.Success,
		Message: result.Message,
		Added:   result.Added,
		Updated: result.Updated,
		Skipped: result.Skipped,
		Errors:  result.Errors,
		Summary: dto.ImportSummary(result.Summary),
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}

	if !result.Success {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.APIResponse{
			Success: false,
			Message: result.Message,
			Data:    resp,
			Error:   dto.ErrorDetail{Code: "IMPORT_FAILED"},
		})
	}
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, resp)
}

// Export downloads the filtered directory as CSV (default) or xlsx
func (h *ImportExportHandler) Export(c fiber.Ctx) error {
	filters := businessflow.ImportFilters{
		Project:    c.Query("project"),
		Department: c.Query("department"),
		Position:   c.Query("position"),
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var (
		filename    string
		data        []byte
		err         error
		contentType string
	)
	switch c.Query("format", "csv") {
	case "csv":
		filename, data, err = h.export.ExportCSV(ctx, filters)
		contentType = contentTypeCSV
	case "xlsx":
		filename, data, err = h.export.ExportXLSX(ctx, filters)
		contentType = contentTypeXLSX
	default:
		return h.ErrorResponse(c, fiber.StatusBadRequest, "format must be one of: csv, xlsx", "INVALID_FORMAT", nil)
	}
	if err != nil {
		return h.businessErrorResponse(c, "Export", err)
	}

	return sendAttachment(c, contentType, filename, data)
}

// Sample downloads the import template
func (h *ImportExportHandler) Sample(c fiber.Ctx) error {
	filename, data, err := h.export.SampleCSV()
	if err != nil {
		return h.businessErrorResponse(c, "Sample", err)
	}
	return sendAttachment(c, contentTypeCSV, filename, data)
}

// sendAttachment sets an RFC 5987 filename so Persian names survive
func sendAttachment(c fiber.Ctx, contentType, filename string, data []byte) error {
	c.Set("Content-Type", contentType)
	c.Set("Content-Disposition", `attachment; filename="export`+filepath.Ext(filename)+`"; filename*=UTF-8''`+url.PathEscape(filename))
	return c.Send(data)
}

func formBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
