package handlers

import (
	"io"

	"github.com/amirphl/personnel-directory/app/dto"
	businessflow "github.com/amirphl/personnel-directory/business_flow"
	"github.com/amirphl/personnel-directory/models"
	"github.com/gofiber/fiber/v3"
)

// SettingsHandlerInterface defines the appearance settings endpoints
type SettingsHandlerInterface interface {
	Get(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Reset(c fiber.Ctx) error
	UploadImage(kind string) fiber.Handler
}

type SettingsHandler struct {
	responder
	flow businessflow.SettingsFlow
}

func NewSettingsHandler(flow businessflow.SettingsFlow) SettingsHandlerInterface {
	return &SettingsHandler{
		responder: newResponder(),
		flow:      flow,
	}
}

// Get returns the current settings; public so the directory can brand itself
func (h *SettingsHandler) Get(c fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	settings, err := h.flow.Get(ctx)
	if err != nil {
		return h.businessErrorResponse(c, "Get settings", err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Settings retrieved", toSettingsDTO(settings))
}

// Update applies a partial settings update
func (h *SettingsHandler) Update(c fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	settings, err := h.flow.Update(ctx, models.AppSettingsPatch{
		CompanyName:    req.CompanyName,
		AppTitle:       req.AppTitle,
		LogoURL:        req.LogoURL,
		FaviconURL:     req.FaviconURL,
		ThemeColor:     req.ThemeColor,
		DesignerCredit: req.DesignerCredit,
	})
	if err != nil {
		return h.businessErrorResponse(c, "Update settings", err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, businessflow.MsgSettingsUpdated, toSettingsDTO(settings))
}

// Reset restores the default settings
func (h *SettingsHandler) Reset(c fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	settings, err := h.flow.Reset(ctx)
	if err != nil {
		return h.businessErrorResponse(c, "Reset settings", err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, businessflow.MsgSettingsReset, toSettingsDTO(settings))
}

// UploadImage stores a multipart "file" image in the logo or favicon slot
func (h *SettingsHandler) UploadImage(kind string) fiber.Handler {
	return func(c fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil || fileHeader == nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.MsgImageRequired, "IMAGE_REQUIRED", nil)
		}

		file, err := fileHeader.Open()
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.MsgImageInvalid, "INVALID_IMAGE", err.Error())
		}
		defer file.Close()

		// one byte past the cap is enough for the flow to reject the size
		content, err := io.ReadAll(io.LimitReader(file, 5*1024*1024+1))
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, businessflow.MsgImageInvalid, "INVALID_IMAGE", nil)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		settings, err := h.flow.UploadImage(ctx, kind, content)
		if err != nil {
			return h.businessErrorResponse(c, "Upload "+kind, err)
		}
		return h.SuccessResponse(c, fiber.StatusOK, businessflow.MsgSettingsUpdated, toSettingsDTO(settings))
	}
}
