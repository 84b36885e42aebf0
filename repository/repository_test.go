package repository_test

import (
	"testing"
	"time"

	"github.com/dynalinks/dynalinks/models"
	"github.com/dynalinks/dynalinks/repository"
	testingutil "github.com/dynalinks/dynalinks/testing"
	"github.com/dynalinks/dynalinks/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *testingutil.TestDB {
	t.Helper()

	testDB, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("failed to teardown test database: %v", err)
		}
	})
	return testDB
}

func TestDynamicLinkRepository(t *testing.T) {
	testDB := setupDB(t)
	repo := repository.NewDynamicLinkRepository(testDB.DB)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	t.Run("SaveAndByShortCode", func(t *testing.T) {
		link, err := fixtures.CreateTestLink()
		require.NoError(t, err)

		found, err := repo.ByShortCode(ctx, link.ShortCode)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, link.ShortCode, found.ShortCode)
		assert.Equal(t, link.FallbackURL, found.FallbackURL)
		assert.NotEqual(t, "", found.UUID.String())
	})

	t.Run("ByShortCodeNotFound", func(t *testing.T) {
		found, err := repo.ByShortCode(ctx, "nosuch1")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("ActiveByShortCodeSkipsInactive", func(t *testing.T) {
		link, err := fixtures.CreateInactiveLink()
		require.NoError(t, err)

		found, err := repo.ActiveByShortCode(ctx, link.ShortCode)
		require.NoError(t, err)
		assert.Nil(t, found)

		// Plain lookup still resolves it
		found, err = repo.ByShortCode(ctx, link.ShortCode)
		require.NoError(t, err)
		assert.NotNil(t, found)
	})

	t.Run("CodeExistsIncludesInactive", func(t *testing.T) {
		link, err := fixtures.CreateInactiveLink()
		require.NoError(t, err)

		exists, err := repo.CodeExists(ctx, link.ShortCode)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("SaveDuplicateCodeFails", func(t *testing.T) {
		link, err := fixtures.CreateTestLink()
		require.NoError(t, err)

		dup := &models.DynamicLink{
			ShortCode:   link.ShortCode,
			FallbackURL: "https://example.com/other",
			IsActive:    utils.ToPtr(true),
		}
		err = repo.Save(ctx, dup)
		require.Error(t, err)
		assert.True(t, repository.IsUniqueViolation(err))
	})

	t.Run("UpdateFields", func(t *testing.T) {
		link, err := fixtures.CreateTestLink()
		require.NoError(t, err)

		updated, err := repo.UpdateFields(ctx, link.ShortCode, map[string]any{
			"title":        "Updated Title",
			"fallback_url": "https://example.com/updated",
		})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "Updated Title", *updated.Title)
		assert.Equal(t, "https://example.com/updated", updated.FallbackURL)
		assert.True(t, updated.UpdatedAt.After(link.UpdatedAt) || updated.UpdatedAt.Equal(link.UpdatedAt))
	})

	t.Run("UpdateFieldsMissingCode", func(t *testing.T) {
		updated, err := repo.UpdateFields(ctx, "nosuch1", map[string]any{"title": "x"})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("SoftDelete", func(t *testing.T) {
		link, err := fixtures.CreateTestLink()
		require.NoError(t, err)

		id, err := repo.SoftDelete(ctx, link.ShortCode)
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, link.ID, *id)

		found, err := repo.ByShortCode(ctx, link.ShortCode)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.False(t, utils.IsTrue(found.IsActive))
	})

	t.Run("ListLinksActiveOnly", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		_, err := fixtures.CreateTestLink()
		require.NoError(t, err)
		_, err = fixtures.CreateInactiveLink()
		require.NoError(t, err)

		all, err := repo.ListLinks(ctx, false, 0, 0)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		active, err := repo.ListLinks(ctx, true, 0, 0)
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})
}

func TestLinkClickRepository(t *testing.T) {
	testDB := setupDB(t)
	clickRepo := repository.NewLinkClickRepository(testDB.DB)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -30)

	link, err := fixtures.CreateTestLink()
	require.NoError(t, err)

	_, err = fixtures.CreateTestClick(link, "ios", "US", now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = fixtures.CreateTestClick(link, "ios", "US", now.Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = fixtures.CreateTestClick(link, "android", "DE", now.Add(-24*time.Hour))
	require.NoError(t, err)
	// Outside the window
	_, err = fixtures.CreateTestClick(link, "desktop", "FR", now.AddDate(0, 0, -60))
	require.NoError(t, err)

	t.Run("CountByShortCode", func(t *testing.T) {
		count, err := clickRepo.CountByShortCode(ctx, link.ShortCode, since)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("CountByPlatform", func(t *testing.T) {
		rows, err := clickRepo.CountByPlatform(ctx, link.ShortCode, since)
		require.NoError(t, err)

		counts := make(map[string]int64)
		for _, row := range rows {
			counts[row.Key] = row.Count
		}
		assert.Equal(t, int64(2), counts["ios"])
		assert.Equal(t, int64(1), counts["android"])
		assert.NotContains(t, counts, "desktop")
	})

	t.Run("CountByCountry", func(t *testing.T) {
		rows, err := clickRepo.CountByCountry(ctx, link.ShortCode, since, 10)
		require.NoError(t, err)
		require.NotEmpty(t, rows)
		// Ordered by count descending
		assert.Equal(t, "US", rows[0].Key)
		assert.Equal(t, int64(2), rows[0].Count)
	})

	t.Run("CountByDate", func(t *testing.T) {
		rows, err := clickRepo.CountByDate(ctx, link.ShortCode, since)
		require.NoError(t, err)
		require.NotEmpty(t, rows)

		var total int64
		for _, row := range rows {
			assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, row.Key)
			total += row.Count
		}
		assert.Equal(t, int64(3), total)
	})

	t.Run("CountDistinctIPs", func(t *testing.T) {
		count, err := clickRepo.CountDistinctIPs(ctx, link.ShortCode, since)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, count, int64(1))
		assert.LessOrEqual(t, count, int64(3))
	})

	t.Run("ListByShortCode", func(t *testing.T) {
		rows, err := clickRepo.ListByShortCode(ctx, link.ShortCode, since, "created_at DESC")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt))
	})
}
