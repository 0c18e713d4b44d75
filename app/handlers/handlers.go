// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/amirphl/personnel-directory/app/dto"
	businessflow "github.com/amirphl/personnel-directory/business_flow"
	"github.com/amirphl/personnel-directory/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

const defaultRequestTimeout = 30 * time.Second

// responder carries the JSON envelope helpers shared by every handler
type responder struct {
	validator *validator.Validate
}

func newResponder() responder {
	return responder{validator: validator.New()}
}

// ErrorResponse standard JSON error
func (r responder) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

// SuccessResponse standard JSON success
func (r responder) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// bindJSON decodes and validates the body, writing the error response itself when it fails
func (r responder) bindJSON(c fiber.Ctx, req any) (bool, error) {
	if err := c.Bind().JSON(req); err != nil {
		return false, r.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := r.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return false, r.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}
		var validationErrors []string
		for _, fe := range verrs {
			validationErrors = append(validationErrors, getValidationErrorMessage(fe))
		}
		return false, r.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	return true, nil
}

// businessErrorResponse maps flow errors to HTTP status codes
func (r responder) businessErrorResponse(c fiber.Ctx, op string, err error) error {
	be, ok := businessflow.AsBusinessError(err)
	if !ok {
		log.Printf("%s failed: %v", op, err)
		return r.ErrorResponse(c, fiber.StatusInternalServerError, businessflow.MsgStoreFailure, "INTERNAL_ERROR", nil)
	}

	status := fiber.StatusBadRequest
	switch {
	case businessflow.IsPersonnelNotFound(err):
		status = fiber.StatusNotFound
	case businessflow.IsDuplicate(err):
		status = fiber.StatusConflict
	case be.Code == "STORE_FAILURE" || be.Code == "CSV_WRITE_ERROR" || be.Code == "EXCEL_WRITE_ERROR":
		status = fiber.StatusInternalServerError
	}

	var details any
	var ve *businessflow.ValidationError
	if errors.As(err, &ve) {
		details = fiber.Map{"field": ve.Field}
	}
	return r.ErrorResponse(c, status, be.Message, be.Code, details)
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must have at least " + err.Param() + " items"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "numeric":
		return err.Field() + " must contain only numbers"
	case "hexcolor":
		return err.Field() + " must be a hex color like #f97316"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}

// requestContext derives a bounded context for one request
func requestContext(c fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), defaultRequestTimeout)
}

func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if requestID := requestid.FromContext(c); requestID != "" {
		metadata.SetRequestID(requestID)
	}
	return metadata
}

func toPersonnelDTO(r *models.PersonnelRecord) dto.PersonnelDTO {
	return dto.PersonnelDTO{
		PersonnelCode: r.PersonnelCode,
		PersianName:   r.PersianName,
		EnglishName:   r.EnglishName,
		VoipNumber:    r.VoipNumber,
		Project:       r.Project,
		Department:    r.Department,
		Position:      r.Position,
	}
}

func toPersonnelDTOs(records []*models.PersonnelRecord) []dto.PersonnelDTO {
	out := make([]dto.PersonnelDTO, 0, len(records))
	for _, r := range records {
		out = append(out, toPersonnelDTO(r))
	}
	return out
}

func toSettingsDTO(s *models.AppSettings) dto.SettingsDTO {
	return dto.SettingsDTO{
		CompanyName:    s.CompanyName,
		AppTitle:       s.AppTitle,
		LogoURL:        s.LogoURL,
		FaviconURL:     s.FaviconURL,
		ThemeColor:     s.ThemeColor,
		DesignerCredit: s.DesignerCredit,
		UpdatedAt:      s.UpdatedAt,
	}
}
