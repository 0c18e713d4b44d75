package businessflow

import (
	"context"
	"testing"

	testingutil "github.com/amirphl/personnel-directory/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryFlowSearch(t *testing.T) {
	ctx := context.Background()
	fixtures := testingutil.NewMemoryFixtures()
	records, err := fixtures.CreateTestPersonnel(15)
	require.NoError(t, err)

	flow := NewDirectoryFlow(fixtures.Store, nil)

	t.Run("Defaults", func(t *testing.T) {
		page, err := flow.Search(ctx, DirectoryQuery{})
		require.NoError(t, err)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, 10, page.PageSize)
		assert.Equal(t, int64(15), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.Len(t, page.Items, 10)
	})

	t.Run("SecondPage", func(t *testing.T) {
		page, err := flow.Search(ctx, DirectoryQuery{Page: 2, PageSize: 10})
		require.NoError(t, err)
		require.Len(t, page.Items, 5)
		assert.Equal(t, records[10].PersonnelCode, page.Items[0].PersonnelCode)
	})

	t.Run("PastTheEnd", func(t *testing.T) {
		page, err := flow.Search(ctx, DirectoryQuery{Page: 9})
		require.NoError(t, err)
		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
	})

	t.Run("ProjectFilter", func(t *testing.T) {
		page, err := flow.Search(ctx, DirectoryQuery{Project: "دفتر اصفهان", PageSize: 100})
		require.NoError(t, err)
		assert.Equal(t, int64(7), page.Total)
		for _, item := range page.Items {
			assert.Equal(t, "دفتر اصفهان", item.Project)
		}
	})

	t.Run("AllFilterIgnored", func(t *testing.T) {
		page, err := flow.Search(ctx, DirectoryQuery{Project: "all", Department: "all", Position: "all"})
		require.NoError(t, err)
		assert.Equal(t, int64(15), page.Total)
	})

	t.Run("QueryMatchesNameCodeAndVoip", func(t *testing.T) {
		tests := []struct {
			query string
			want  int64
		}{
			{"EMPLOYEE 3", 1},
			{"کارمند", 15},
			{"5014", 1},
			{"9001", 1},
			{"حسابدار", 15},
			{"ناموجود", 0},
		}
		for _, tt := range tests {
			page, err := flow.Search(ctx, DirectoryQuery{Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Total, tt.query)
		}
	})

	t.Run("InvalidPaging", func(t *testing.T) {
		_, err := flow.Search(ctx, DirectoryQuery{Page: -1})
		assert.True(t, IsInvalidPage(err))

		_, err = flow.Search(ctx, DirectoryQuery{PageSize: 101})
		assert.True(t, IsInvalidPageSize(err))
	})
}

func TestDirectoryFlowLookups(t *testing.T) {
	ctx := context.Background()
	fixtures := testingutil.NewMemoryFixtures()
	flow := NewDirectoryFlow(fixtures.Store, nil)

	lookups, err := flow.Lookups(ctx)
	require.NoError(t, err)
	assert.Empty(t, lookups.Projects)
	assert.NotNil(t, lookups.Projects)

	_, err = fixtures.CreateTestPersonnel(4)
	require.NoError(t, err)

	lookups, err = flow.Lookups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"باغ فردوس", "دفتر اصفهان"}, lookups.Projects)
	assert.Equal(t, []string{"مالی"}, lookups.Departments)
	assert.Equal(t, []string{"حسابدار"}, lookups.Positions)
}
