package businessflow

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/amirphl/personnel-directory/models"
	testingutil "github.com/amirphl/personnel-directory/testing"
	"github.com/amirphl/personnel-directory/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 0xf9, G: 0x73, B: 0x16, A: 0xff})

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestSettingsFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultsBeforeFirstSave", func(t *testing.T) {
		flow := NewSettingsFlow(testingutil.NewMemoryFixtures().Store.Settings)

		settings, err := flow.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultAppSettings().CompanyName, settings.CompanyName)
		assert.Equal(t, "#f97316", settings.ThemeColor)
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		flow := NewSettingsFlow(testingutil.NewMemoryFixtures().Store.Settings)

		updated, err := flow.Update(ctx, models.AppSettingsPatch{
			CompanyName: utils.ToPtr("شرکت نمونه"),
			ThemeColor:  utils.ToPtr("#123abc"),
		})
		require.NoError(t, err)
		assert.Equal(t, "شرکت نمونه", updated.CompanyName)
		assert.Equal(t, "#123abc", updated.ThemeColor)
		assert.Equal(t, models.DefaultAppSettings().AppTitle, updated.AppTitle)

		settings, err := flow.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "شرکت نمونه", settings.CompanyName)
	})

	t.Run("RejectsInvalidValues", func(t *testing.T) {
		flow := NewSettingsFlow(testingutil.NewMemoryFixtures().Store.Settings)

		_, err := flow.Update(ctx, models.AppSettingsPatch{ThemeColor: utils.ToPtr("orange")})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))

		_, err = flow.Update(ctx, models.AppSettingsPatch{CompanyName: utils.ToPtr("")})
		assert.True(t, IsValidationError(err))

		settings, err := flow.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultAppSettings().ThemeColor, settings.ThemeColor)
	})

	t.Run("Reset", func(t *testing.T) {
		flow := NewSettingsFlow(testingutil.NewMemoryFixtures().Store.Settings)

		_, err := flow.Update(ctx, models.AppSettingsPatch{AppTitle: utils.ToPtr("عنوان")})
		require.NoError(t, err)

		settings, err := flow.Reset(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultAppSettings().AppTitle, settings.AppTitle)

		settings, err = flow.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultAppSettings().AppTitle, settings.AppTitle)
	})
}

func TestSettingsFlowUploadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("StoresDataURL", func(t *testing.T) {
		flow := NewSettingsFlow(testingutil.NewMemoryFixtures().Store.Settings)

		settings, err := flow.UploadImage(ctx, ImageKindLogo, encodePNG(t, 64, 64))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(settings.LogoURL, "data:image/png;base64,"))
		assert.Equal(t, models.DefaultAppSettings().FaviconURL, settings.FaviconURL)

		settings, err = flow.UploadImage(ctx, ImageKindFavicon, encodePNG(t, 16, 16))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(settings.FaviconURL, "data:image/png;base64,"))
		assert.True(t, strings.HasPrefix(settings.LogoURL, "data:image/png;base64,"))
	})

	tests := []struct {
		name    string
		kind    string
		content func(t *testing.T) []byte
		message string
	}{
		{"not an image", ImageKindLogo, func(*testing.T) []byte { return []byte("hello, this is text") }, MsgImageRequired},
		{"empty", ImageKindLogo, func(*testing.T) []byte { return nil }, MsgImageInvalid},
		{"too wide", ImageKindLogo, func(t *testing.T) []byte { return encodePNG(t, 2001, 10) }, MsgImageTooWide},
		{"too tall", ImageKindFavicon, func(t *testing.T) []byte { return encodePNG(t, 10, 2001) }, MsgImageTooWide},
		{"truncated", ImageKindLogo, func(t *testing.T) []byte { return encodePNG(t, 10, 10)[:20] }, MsgImageInvalid},
		{"unknown slot", "banner", func(t *testing.T) []byte { return encodePNG(t, 10, 10) }, MsgSettingsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := NewSettingsFlow(testingutil.NewMemoryFixtures().Store.Settings)

			_, err := flow.UploadImage(ctx, tt.kind, tt.content(t))
			require.Error(t, err)
			be, ok := AsBusinessError(err)
			require.True(t, ok)
			assert.Equal(t, tt.message, be.Message)
		})
	}
}
