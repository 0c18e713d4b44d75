package businessflow

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/amirphl/personnel-directory/models"
	"github.com/amirphl/personnel-directory/repository"
)

// Image slots that can be uploaded into the settings
const (
	ImageKindLogo    = "logo"
	ImageKindFavicon = "favicon"
)

const (
	maxImageSize      = 5 * 1024 * 1024
	maxImageDimension = 2000
)

// SettingsFlow reads and edits the appearance settings
type SettingsFlow interface {
	Get(ctx context.Context) (*models.AppSettings, error)
	Update(ctx context.Context, patch models.AppSettingsPatch) (*models.AppSettings, error)
	Reset(ctx context.Context) (*models.AppSettings, error)
	UploadImage(ctx context.Context, kind string, content []byte) (*models.AppSettings, error)
}

// SettingsFlowImpl implements SettingsFlow
type SettingsFlowImpl struct {
	settingsRepo repository.SettingsRepository
	validator    *validator.Validate
}

// NewSettingsFlow creates a new settings flow
func NewSettingsFlow(settingsRepo repository.SettingsRepository) SettingsFlow {
	return &SettingsFlowImpl{
		settingsRepo: settingsRepo,
		validator:    validator.New(),
	}
}

// Get returns the stored settings, or the defaults when none were saved yet
func (f *SettingsFlowImpl) Get(ctx context.Context) (*models.AppSettings, error) {
	settings, err := f.settingsRepo.Load(ctx)
	if err != nil {
		return nil, storeError("GetSettings", err)
	}
	if settings == nil {
		defaults := models.DefaultAppSettings()
		return &defaults, nil
	}
	return settings, nil
}

// Update applies a partial update; empty strings are rejected for required fields
func (f *SettingsFlowImpl) Update(ctx context.Context, patch models.AppSettingsPatch) (*models.AppSettings, error) {
	if err := f.validator.Struct(patch); err != nil {
		var verrs validator.ValidationErrors
		field := "settings"
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field = verrs[0].Field()
		}
		return nil, NewBusinessError("VALIDATION_ERROR", MsgSettingsInvalid, &ValidationError{Field: field, Message: err.Error()})
	}

	current, err := f.Get(ctx)
	if err != nil {
		return nil, err
	}

	next := patch.Apply(*current)
	return f.save(ctx, &next)
}

// Reset restores the defaults
func (f *SettingsFlowImpl) Reset(ctx context.Context) (*models.AppSettings, error) {
	defaults := models.DefaultAppSettings()
	return f.save(ctx, &defaults)
}

// UploadImage validates an image and stores it inline as a data URL in the logo or favicon slot
func (f *SettingsFlowImpl) UploadImage(ctx context.Context, kind string, content []byte) (*models.AppSettings, error) {
	if kind != ImageKindLogo && kind != ImageKindFavicon {
		return nil, NewBusinessError("INVALID_IMAGE_KIND", MsgSettingsInvalid, ErrInvalidSettings)
	}

	dataURL, err := validateImage(content)
	if err != nil {
		return nil, err
	}

	patch := models.AppSettingsPatch{}
	if kind == ImageKindLogo {
		patch.LogoURL = &dataURL
	} else {
		patch.FaviconURL = &dataURL
	}

	current, err := f.Get(ctx)
	if err != nil {
		return nil, err
	}
	next := patch.Apply(*current)
	return f.save(ctx, &next)
}

func (f *SettingsFlowImpl) save(ctx context.Context, settings *models.AppSettings) (*models.AppSettings, error) {
	settings.Key = models.AppSettingsKey
	if err := f.settingsRepo.Save(ctx, settings); err != nil {
		return nil, storeError("SaveSettings", err)
	}
	return settings, nil
}

// validateImage sniffs the content type, caps size and dimensions, and returns a data URL
func validateImage(content []byte) (string, error) {
	if len(content) == 0 {
		return "", NewBusinessError("INVALID_IMAGE", MsgImageInvalid, ErrInvalidImage)
	}

	mimeType := http.DetectContentType(content)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", NewBusinessError("IMAGE_REQUIRED", MsgImageRequired, ErrInvalidImage)
	}
	if len(content) > maxImageSize {
		return "", NewBusinessError("IMAGE_TOO_LARGE", MsgImageTooLarge, ErrInvalidImage)
	}

	// icons have no registered decoder and are accepted as sniffed
	if mimeType != "image/x-icon" {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
		if err != nil {
			return "", NewBusinessError("INVALID_IMAGE", MsgImageInvalid, errors.Join(ErrInvalidImage, err))
		}
		if cfg.Width > maxImageDimension || cfg.Height > maxImageDimension {
			return "", NewBusinessError("IMAGE_TOO_WIDE", MsgImageTooWide, ErrInvalidImage)
		}
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content), nil
}
