package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	testingutil "github.com/amirphl/personnel-directory/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	fixtures := testingutil.NewMemoryFixtures()
	records, err := fixtures.CreateTestPersonnel(4)
	require.NoError(t, err)

	flow := NewExportFlow(fixtures.Store.Personnel, fixtures.Clock.Now)

	t.Run("AllRecords", func(t *testing.T) {
		filename, data, err := flow.ExportCSV(ctx, ImportFilters{})
		require.NoError(t, err)
		assert.Equal(t, "personnel-export-2024-03-20.csv", filename)
		require.True(t, bytes.HasPrefix(data, []byte("\xef\xbb\xbf")))

		rows, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 5)
		assert.Equal(t, exportHeader, rows[0])
		assert.Equal(t, []string{
			records[0].PersonnelCode,
			records[0].PersianName,
			records[0].EnglishName,
			records[0].VoipNumber,
			records[0].Project,
			records[0].Department,
			records[0].Position,
		}, rows[1])
		assert.Equal(t, records[3].PersonnelCode, rows[4][0])
	})

	t.Run("Filtered", func(t *testing.T) {
		_, data, err := flow.ExportCSV(ctx, ImportFilters{Project: "دفتر اصفهان", Department: "all"})
		require.NoError(t, err)

		rows, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, records[1].PersonnelCode, rows[1][0])
		assert.Equal(t, records[3].PersonnelCode, rows[2][0])
	})
}

func TestExportXLSX(t *testing.T) {
	ctx := context.Background()
	fixtures := testingutil.NewMemoryFixtures()
	records, err := fixtures.CreateTestPersonnel(3)
	require.NoError(t, err)

	flow := NewExportFlow(fixtures.Store.Personnel, fixtures.Clock.Now)
	filename, data, err := flow.ExportXLSX(ctx, ImportFilters{})
	require.NoError(t, err)
	assert.Equal(t, "personnel-export-2024-03-20.xlsx", filename)
	assert.True(t, DetectBinaryExcel(data))

	xl, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	rows, err := xl.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, records[2].EnglishName, rows[3][2])
}

func TestSampleCSV(t *testing.T) {
	pipeline, fixtures := newTestPipeline(t)
	flow := NewExportFlow(fixtures.Store.Personnel, nil)

	filename, data, err := flow.SampleCSV()
	require.NoError(t, err)
	assert.Equal(t, "نمونه-فایل-پرسنل.csv", filename)

	result := pipeline.Process(context.Background(), filename, data, ConflictPolicy{}, ImportFilters{})
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Added)
	assert.Empty(t, result.Errors)
}
