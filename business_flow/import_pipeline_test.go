package businessflow

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/amirphl/personnel-directory/models"
	testingutil "github.com/amirphl/personnel-directory/testing"
	"github.com/amirphl/personnel-directory/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const persianHeader = "کد پرسنلی,نام فارسی,نام انگلیسی,شماره ویپ,پروژه,بخش,سمت"

func newTestPipeline(t *testing.T) (ImportPipeline, *testingutil.TestFixtures) {
	t.Helper()
	fixtures := testingutil.NewMemoryFixtures()
	flow := NewPersonnelFlow(fixtures.Store.Personnel, nil)
	return NewImportPipeline(flow, 0), fixtures
}

func TestValidateFile(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	tests := []struct {
		name      string
		filename  string
		size      int64
		wantValid bool
		wantError string
	}{
		{name: "csv", filename: "personnel.csv", size: 1024, wantValid: true},
		{name: "uppercase xlsx", filename: "PERSONNEL.XLSX", size: 1024, wantValid: true},
		{name: "persian name", filename: "نمونه-فایل-پرسنل.csv", size: 1024, wantValid: true},
		{name: "too large", filename: "personnel.csv", size: utils.DefaultMaxImportFileSize + 1, wantError: fmt.Sprintf(MsgFileTooLargeFmt, 5)},
		{name: "too small", filename: "personnel.csv", size: 5, wantError: MsgFileEmpty},
		{name: "wrong extension", filename: "personnel.txt", size: 1024, wantError: MsgFileTypeNotAllowed},
		{name: "double extension", filename: "report.exe.csv", size: 1024, wantError: MsgFileNameNotAllowed},
		{name: "control character", filename: "bad\x00name.csv", size: 1024, wantError: MsgFileNameNotAllowed},
		{name: "path separator", filename: "../etc/passwd.csv", size: 1024, wantError: MsgFileNameNotAllowed},
		{name: "empty name", filename: "", size: 1024, wantError: MsgFileInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := pipeline.ValidateFile(tt.filename, tt.size)
			assert.Equal(t, tt.wantValid, v.Valid)
			if tt.wantError != "" {
				assert.Contains(t, v.Errors, tt.wantError)
			} else {
				assert.Empty(t, v.Errors)
			}
		})
	}

	t.Run("ConfiguredLimit", func(t *testing.T) {
		small := NewImportPipeline(nil, 2*1024*1024)
		v := small.ValidateFile("personnel.csv", 3*1024*1024)
		assert.False(t, v.Valid)
		assert.Contains(t, v.Errors, fmt.Sprintf(MsgFileTooLargeFmt, 2))
	})
}

func TestDetectBinaryExcel(t *testing.T) {
	assert.True(t, DetectBinaryExcel([]byte{0x50, 0x4B, 0x03, 0x04, 0x14, 0x00}))
	assert.True(t, DetectBinaryExcel([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1}))
	assert.False(t, DetectBinaryExcel([]byte(testingutil.SampleCSV)))
	assert.False(t, DetectBinaryExcel([]byte{0x50, 0x4B}))
}

func TestParseContent(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	t.Run("PersianHeader", func(t *testing.T) {
		batch, err := pipeline.ParseContent(testingutil.SampleCSV)
		require.NoError(t, err)
		require.Len(t, batch.Records, 3)
		assert.Equal(t, 0, batch.InvalidRows)
		assert.Equal(t, models.PersonnelRecord{
			PersonnelCode: "1001",
			PersianName:   "علی احمدی",
			EnglishName:   "Ali Ahmadi",
			VoipNumber:    "2001",
			Project:       "فولاد مبارکه",
			Department:    "مهندسی",
			Position:      "مهندس",
		}, batch.Records[0])
	})

	t.Run("HeaderSynonyms", func(t *testing.T) {
		english := strings.Replace(testingutil.SampleCSV, persianHeader,
			`"id","name_fa","name_en","extension","project","department","position"`, 1)

		want, err := pipeline.ParseContent(testingutil.SampleCSV)
		require.NoError(t, err)
		got, err := pipeline.ParseContent(english)
		require.NoError(t, err)
		assert.Equal(t, want.Records, got.Records)
	})

	t.Run("ReorderedColumns", func(t *testing.T) {
		batch, err := pipeline.ParseContent(testingutil.CSV(
			"Position,Department,Project,VoIP_Number,English_Name,Persian_Name,Personnel_Code",
			"مهندس,مهندسی,فولاد مبارکه,2001,Ali Ahmadi,علی احمدی,1001",
		))
		require.NoError(t, err)
		require.Len(t, batch.Records, 1)
		assert.Equal(t, "1001", batch.Records[0].PersonnelCode)
		assert.Equal(t, "مهندس", batch.Records[0].Position)
	})

	t.Run("BOMAndBlankLines", func(t *testing.T) {
		text := "\ufeff" + persianHeader + "\r\n\r\n1001,علی احمدی,Ali Ahmadi,2001,فولاد مبارکه,مهندسی,مهندس\r\n\r\n"
		batch, err := pipeline.ParseContent(text)
		require.NoError(t, err)
		assert.Len(t, batch.Records, 1)
		assert.Equal(t, 0, batch.InvalidRows)
	})

	t.Run("QuotedFields", func(t *testing.T) {
		batch, err := pipeline.ParseContent(testingutil.CSV(
			persianHeader,
			`1001,"احمدی، علی",Ali Ahmadi,2001,فولاد مبارکه,"مهندسی, فنی",مهندس`,
		))
		require.NoError(t, err)
		require.Len(t, batch.Records, 1)
		assert.Equal(t, "احمدی، علی", batch.Records[0].PersianName)
		assert.Equal(t, "مهندسی, فنی", batch.Records[0].Department)
	})

	t.Run("MalformedRowsAreDropped", func(t *testing.T) {
		batch, err := pipeline.ParseContent(testingutil.CSV(
			persianHeader,
			"1001,علی احمدی,Ali Ahmadi,2001,فولاد مبارکه,مهندسی,مهندس",
			"1002,فاطمه رضایی,Fatemeh Rezaei,2002,پتروشیمی,تولید,تکنسین,extra",
			"1003,,Reza Karimi,2003,فولاد مبارکه,تولید,سرپرست",
			"1004,مریم,Maryam,2004,پتروشیمی,تولید",
		))
		require.NoError(t, err)
		assert.Len(t, batch.Records, 1)
		assert.Equal(t, 3, batch.InvalidRows)
		require.Len(t, batch.RowErrors, 3)
		assert.Contains(t, batch.RowErrors[0], "ردیف 3")
	})

	t.Run("UnclosedQuoteStaysInItsRow", func(t *testing.T) {
		batch, err := pipeline.ParseContent(testingutil.CSV(
			persianHeader,
			`1020,"علی,Ali,3020,فولاد مبارکه,مهندسی,مهندس`,
			"1021,فاطمه,Fatemeh,3021,فولاد مبارکه,مهندسی,مهندس",
			"1022,رضا,Reza,3022,فولاد مبارکه,مهندسی,مهندس",
		))
		require.NoError(t, err)
		require.Len(t, batch.Records, 2)
		assert.Equal(t, "1021", batch.Records[0].PersonnelCode)
		assert.Equal(t, "1022", batch.Records[1].PersonnelCode)
		assert.Equal(t, 1, batch.InvalidRows)
		require.Len(t, batch.RowErrors, 1)
		assert.Contains(t, batch.RowErrors[0], "ردیف 2")
	})

	t.Run("SanitizesValues", func(t *testing.T) {
		batch, err := pipeline.ParseContent(testingutil.CSV(
			persianHeader,
			`1001,<b>علی</b>,javascript:Ali,2001,فولاد مبارکه,مهندسی,مهندس`,
		))
		require.NoError(t, err)
		require.Len(t, batch.Records, 1)
		assert.Equal(t, "bعلی/b", batch.Records[0].PersianName)
		assert.Equal(t, "Ali", batch.Records[0].EnglishName)
	})

	t.Run("TooFewLines", func(t *testing.T) {
		for _, text := range []string{"", "\n\n", persianHeader + "\n"} {
			_, err := pipeline.ParseContent(text)
			require.Error(t, err)
			be, ok := AsBusinessError(err)
			require.True(t, ok)
			assert.Equal(t, MsgImportTooFewLines, be.Message)
		}
	})

	t.Run("MissingColumns", func(t *testing.T) {
		_, err := pipeline.ParseContent(testingutil.CSV(
			"کد پرسنلی,نام فارسی,پروژه",
			"1001,علی احمدی,فولاد مبارکه",
		))
		require.Error(t, err)
		be, ok := AsBusinessError(err)
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf(MsgImportMissingFmt, "نام انگلیسی، شماره ویپ، بخش، سمت"), be.Message)
		assert.ErrorIs(t, err, ErrImportColumnsMissing)
	})
}

func TestImportFilters(t *testing.T) {
	pipeline, _ := newTestPipeline(t)

	batch, err := pipeline.ParseContent(testingutil.SampleCSV)
	require.NoError(t, err)
	batch.InvalidRows = 2

	tests := []struct {
		name    string
		filters ImportFilters
		want    []string
	}{
		{name: "none", filters: ImportFilters{}, want: []string{"1001", "1002", "1003"}},
		{name: "all", filters: ImportFilters{Project: "all", Department: "all", Position: "all"}, want: []string{"1001", "1002", "1003"}},
		{name: "project", filters: ImportFilters{Project: "فولاد مبارکه"}, want: []string{"1001", "1003"}},
		{name: "project and department", filters: ImportFilters{Project: "فولاد مبارکه", Department: "تولید"}, want: []string{"1003"}},
		{name: "position", filters: ImportFilters{Position: "تکنسین"}, want: []string{"1002"}},
		{name: "no match", filters: ImportFilters{Project: "ناموجود"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := tt.filters.Filter(batch)
			codes := make([]string, 0, len(filtered.Records))
			for _, r := range filtered.Records {
				codes = append(codes, r.PersonnelCode)
			}
			assert.Equal(t, tt.want, codes)
			assert.Equal(t, 2, filtered.InvalidRows)
		})
	}
}

func TestApplyBatch(t *testing.T) {
	ctx := context.Background()

	existing := models.PersonnelRecord{
		PersonnelCode: "1001",
		PersianName:   "نام قدیمی",
		EnglishName:   "Old Name",
		VoipNumber:    "2001",
		Project:       "پروژه قدیم",
		Department:    "بخش قدیم",
		Position:      "سمت قدیم",
	}

	t.Run("SkipDuplicates", func(t *testing.T) {
		pipeline, fixtures := newTestPipeline(t)
		rec := existing
		require.NoError(t, fixtures.Store.Personnel.Save(ctx, &rec))

		batch, err := pipeline.ParseContent(testingutil.SampleCSV)
		require.NoError(t, err)

		result := pipeline.ApplyBatch(ctx, batch, ConflictPolicy{SkipDuplicates: true})
		assert.True(t, result.Success)
		assert.Equal(t, 2, result.Added)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 0, result.Updated)
		assert.Empty(t, result.Errors)
		assert.Equal(t, fmt.Sprintf(MsgImportSummaryFmt, 2, 0, 1), result.Message)
		assert.Equal(t, ImportSummary{TotalRows: 3, ValidRows: 2, Duplicates: 1}, result.Summary)

		stored, err := fixtures.Store.Personnel.ByCode(ctx, "1001")
		require.NoError(t, err)
		assert.Equal(t, existing, *stored)
	})

	t.Run("DuplicatesSkippedWithoutFlag", func(t *testing.T) {
		pipeline, fixtures := newTestPipeline(t)
		rec := existing
		require.NoError(t, fixtures.Store.Personnel.Save(ctx, &rec))

		batch, err := pipeline.ParseContent(testingutil.SampleCSV)
		require.NoError(t, err)

		result := pipeline.ApplyBatch(ctx, batch, ConflictPolicy{})
		assert.True(t, result.Success)
		assert.Equal(t, 2, result.Added)
		assert.Equal(t, 1, result.Skipped)
		assert.Empty(t, result.Errors)
		assert.Equal(t, 1, result.Summary.Duplicates)
	})

	t.Run("AllSkippedIsNotSuccess", func(t *testing.T) {
		pipeline, _ := newTestPipeline(t)

		batch, err := pipeline.ParseContent(testingutil.SampleCSV)
		require.NoError(t, err)
		first := pipeline.ApplyBatch(ctx, batch, ConflictPolicy{})
		require.True(t, first.Success)

		again := pipeline.ApplyBatch(ctx, batch, ConflictPolicy{})
		assert.False(t, again.Success)
		assert.Equal(t, 3, again.Skipped)
		assert.Equal(t, fmt.Sprintf(MsgImportSummaryFmt, 0, 0, 3), again.Message)
	})

	t.Run("DuplicateVoipIsSkipped", func(t *testing.T) {
		pipeline, fixtures := newTestPipeline(t)
		rec := existing
		rec.PersonnelCode = "7777"
		require.NoError(t, fixtures.Store.Personnel.Save(ctx, &rec))

		batch, err := pipeline.ParseContent(testingutil.SampleCSV)
		require.NoError(t, err)

		result := pipeline.ApplyBatch(ctx, batch, ConflictPolicy{SkipDuplicates: true})
		assert.Equal(t, 2, result.Added)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		pipeline, fixtures := newTestPipeline(t)
		rec := existing
		require.NoError(t, fixtures.Store.Personnel.Save(ctx, &rec))

		batch, err := pipeline.ParseContent(testingutil.CSV(persianHeader,
			"1001,علی احمدی,Ali Ahmadi,2101,فولاد مبارکه,مهندسی,مهندس"))
		require.NoError(t, err)

		result := pipeline.ApplyBatch(ctx, batch, ConflictPolicy{UpdateExisting: true})
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.Updated)
		assert.Equal(t, 0, result.Added)
		assert.Empty(t, result.Errors)

		stored, err := fixtures.Store.Personnel.ByCode(ctx, "1001")
		require.NoError(t, err)
		assert.Equal(t, "1001", stored.PersonnelCode)
		assert.Equal(t, "علی احمدی", stored.PersianName)
		assert.Equal(t, "2101", stored.VoipNumber)
		assert.Equal(t, "فولاد مبارکه", stored.Project)

		count, err := fixtures.Store.Personnel.Count(ctx, models.PersonnelFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("UpdateExistingMissingCodeIsError", func(t *testing.T) {
		pipeline, _ := newTestPipeline(t)

		batch, err := pipeline.ParseContent(testingutil.SampleCSV)
		require.NoError(t, err)

		result := pipeline.ApplyBatch(ctx, batch, ConflictPolicy{UpdateExisting: true})
		assert.False(t, result.Success)
		assert.Equal(t, 0, result.Updated)
		assert.Len(t, result.Errors, 3)
		assert.Equal(t, "1001: "+MsgPersonnelNotFound, result.Errors[0])
	})

	t.Run("ValidationFailureIsError", func(t *testing.T) {
		pipeline, _ := newTestPipeline(t)

		batch, err := pipeline.ParseContent(testingutil.CSV(persianHeader,
			"10A1,علی احمدی,Ali Ahmadi,2001,فولاد مبارکه,مهندسی,مهندس",
			"1002,فاطمه رضایی,Fatemeh Rezaei,2002,پتروشیمی,تولید,تکنسین"))
		require.NoError(t, err)

		result := pipeline.ApplyBatch(ctx, batch, ConflictPolicy{SkipDuplicates: true})
		assert.Equal(t, 1, result.Added)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], MsgPersonnelCodeDigits)
	})
}

func TestProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("MalformedRowTolerance", func(t *testing.T) {
		pipeline, fixtures := newTestPipeline(t)

		content := testingutil.CSV(
			persianHeader,
			"1001,علی احمدی,Ali Ahmadi,2001,فولاد مبارکه,مهندسی,مهندس",
			"1002,فاطمه رضایی,Fatemeh Rezaei,2002,پتروشیمی,تولید,,تکنسین",
			"1003,رضا کریمی,Reza Karimi,2003,فولاد مبارکه,تولید,سرپرست",
		)
		result := pipeline.Process(ctx, "personnel.csv", []byte(content), ConflictPolicy{SkipDuplicates: true}, ImportFilters{})
		assert.True(t, result.Success)
		assert.Equal(t, 2, result.Added)
		assert.Equal(t, 0, result.Updated)
		assert.Equal(t, 3, result.Summary.TotalRows)
		assert.Equal(t, 2, result.Summary.ValidRows)
		assert.Equal(t, 1, result.Summary.InvalidRows)
		assert.Len(t, result.Errors, 1)

		stored, err := fixtures.Store.Personnel.ByCode(ctx, "1002")
		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("BrokenQuoteCountsEveryRow", func(t *testing.T) {
		pipeline, _ := newTestPipeline(t)

		content := testingutil.CSV(
			"personnel_code,persian_name,english_name,voip_number,project,department,position",
			`1020,"a,b,3020,P,D,Pos`,
			"1021,a,b,3021,P,D,Pos",
			"1022,a,b,3022,P,D,Pos",
		)
		result := pipeline.Process(ctx, "personnel.csv", []byte(content), ConflictPolicy{}, ImportFilters{})
		assert.True(t, result.Success)
		assert.Equal(t, 2, result.Added)
		assert.Equal(t, ImportSummary{TotalRows: 3, ValidRows: 2, InvalidRows: 1}, result.Summary)
	})

	t.Run("ExcelRejected", func(t *testing.T) {
		pipeline, _ := newTestPipeline(t)

		content := append([]byte{0x50, 0x4B, 0x03, 0x04}, make([]byte, 64)...)
		result := pipeline.Process(ctx, "personnel.xlsx", content, ConflictPolicy{}, ImportFilters{})
		assert.False(t, result.Success)
		assert.Equal(t, MsgExcelNotSupported, result.Message)
		assert.Equal(t, []string{MsgExcelNotSupported}, result.Errors)
	})

	t.Run("InvalidFile", func(t *testing.T) {
		pipeline, _ := newTestPipeline(t)

		result := pipeline.Process(ctx, "personnel.txt", []byte(testingutil.SampleCSV), ConflictPolicy{}, ImportFilters{})
		assert.False(t, result.Success)
		assert.Equal(t, MsgFileTypeNotAllowed, result.Message)
	})

	t.Run("StructuralError", func(t *testing.T) {
		pipeline, _ := newTestPipeline(t)

		result := pipeline.Process(ctx, "personnel.csv", []byte(persianHeader+"\n"), ConflictPolicy{}, ImportFilters{})
		assert.False(t, result.Success)
		assert.Equal(t, MsgImportTooFewLines, result.Message)
	})

	t.Run("FiltersLeaveCounts", func(t *testing.T) {
		pipeline, _ := newTestPipeline(t)

		result := pipeline.Process(ctx, "personnel.csv", []byte(testingutil.SampleCSV),
			ConflictPolicy{SkipDuplicates: true}, ImportFilters{Project: "پتروشیمی"})
		assert.True(t, result.Success)
		assert.Equal(t, 1, result.Added)
		assert.Equal(t, 1, result.Summary.TotalRows)
	})
}

func TestCSVRoundTrip(t *testing.T) {
	ctx := context.Background()
	pipeline, fixtures := newTestPipeline(t)

	records, err := fixtures.CreateTestPersonnel(12)
	require.NoError(t, err)

	export := NewExportFlow(fixtures.Store.Personnel, fixtures.Clock.Now)
	filename, data, err := export.ExportCSV(ctx, ImportFilters{})
	require.NoError(t, err)

	result := pipeline.Process(ctx, filename, data, ConflictPolicy{SkipDuplicates: true}, ImportFilters{})
	assert.False(t, result.Success, "nothing was added or updated")
	assert.Equal(t, 0, result.Added)
	assert.Equal(t, len(records), result.Skipped)
	assert.Empty(t, result.Errors)

	count, err := fixtures.Store.Personnel.Count(ctx, models.PersonnelFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(len(records)), count)
}
