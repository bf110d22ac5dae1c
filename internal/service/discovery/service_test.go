package discovery_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hobbycircles/hobby-circles/internal/app"
	"github.com/hobbycircles/hobby-circles/internal/cache"
	"github.com/hobbycircles/hobby-circles/internal/config"
	"github.com/hobbycircles/hobby-circles/internal/db"
	"github.com/hobbycircles/hobby-circles/internal/geo"
	"github.com/hobbycircles/hobby-circles/internal/service/discovery"
)

//
// Test helpers
//

// setupService spins up an in-memory SQLite DB, applies migrations,
// starts a miniredis, and wires everything into a discovery.Service.
//
// Each test gets its own isolated DB + Redis.
func setupService(t *testing.T) *discovery.Service {
	t.Helper()

	// In-memory SQLite
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	// Auto-migrate schema
	require.NoError(t, dbase.AutoMigrate(&db.User{}, &db.Activity{}))

	// Fake Redis
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	redisCache := cache.NewRedisCache(cfg)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // discard logs in tests

	appCtx := app.New(dbase, redisCache, logger)
	return discovery.NewService(appCtx)
}

// seedHyderabadRoster registers the demo roster through the service so the
// full registration path is exercised.
func seedHyderabadRoster(t *testing.T, svc *discovery.Service) {
	t.Helper()

	roster := []discovery.RegisterInput{
		{Username: "HyderabadBuddy", Lat: 17.385044, Lon: 78.486671, Interests: []string{"Badminton", "Food", "Board Games"}, Bio: "Love exploring new places!"},
		{Username: "SportyPal", Lat: 17.390000, Lon: 78.480000, Interests: []string{"Badminton", "Football", "Cycling"}, Bio: "Always up for sports!"},
		{Username: "FoodieFriend", Lat: 17.380000, Lon: 78.490000, Interests: []string{"Food", "Movies", "Photography"}, Bio: "Foodie and movie buff"},
		{Username: "BookLover", Lat: 17.370000, Lon: 78.480000, Interests: []string{"Board Games", "Reading", "Coffee"}, Bio: "Coffee and books person"},
		{Username: "TechieGeek", Lat: 17.375000, Lon: 78.485000, Interests: []string{"Board Games", "Gaming", "Food"}, Bio: "Tech enthusiast"},
		{Username: "OutdoorExplorer", Lat: 17.395000, Lon: 78.475000, Interests: []string{"Cycling", "Hiking", "Photography"}, Bio: "Adventure seeker"},
	}
	for _, in := range roster {
		_, err := svc.Register(context.Background(), in)
		require.NoError(t, err)
	}
}

//
// Tests
//

func TestRegisterReturnsConfirmation(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	msg, err := svc.Register(ctx, discovery.RegisterInput{
		Username:  "SportyPal",
		Lat:       17.39,
		Lon:       78.48,
		Interests: []string{"Badminton"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome SportyPal! Your profile is ready.", msg)
}

// TestFindMatchesEndToEnd pins the reference scenario: two users ~0.11km
// apart sharing exactly one interest.
func TestFindMatchesEndToEnd(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.Register(ctx, discovery.RegisterInput{Username: "A", Lat: 0, Lon: 0, Interests: []string{"x", "y"}})
	require.NoError(t, err)
	_, err = svc.Register(ctx, discovery.RegisterInput{Username: "B", Lat: 0, Lon: 0.001, Interests: []string{"y", "z"}})
	require.NoError(t, err)

	matches, err := svc.FindMatches(ctx, "A", 1, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	assert.Equal(t, "B", matches[0].Username)
	assert.Equal(t, []string{"y"}, matches[0].SharedInterests)
	assert.Equal(t, []string{"y", "z"}, matches[0].AllInterests)
	assert.InDelta(t, 0.11, matches[0].DistanceKm, 1e-9)
}

func TestFindMatchesUnknownUserIsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	seedHyderabadRoster(t, svc)

	matches, err := svc.FindMatches(ctx, "Nobody", 10, "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindMatchesExcludesSelf(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	seedHyderabadRoster(t, svc)

	matches, err := svc.FindMatches(ctx, "HyderabadBuddy", 50, "")
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.NotEqual(t, "HyderabadBuddy", m.Username)
	}
}

func TestFindMatchesSortedByDistanceWithSharedInterests(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	seedHyderabadRoster(t, svc)

	matches, err := svc.FindMatches(ctx, "HyderabadBuddy", 5, "")
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	for i, m := range matches {
		assert.NotEmpty(t, m.SharedInterests, "match %s must share at least one interest", m.Username)
		if i > 0 {
			assert.GreaterOrEqual(t, m.DistanceKm, matches[i-1].DistanceKm)
		}
	}
}

func TestFindMatchesSpecificInterestFilter(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	seedHyderabadRoster(t, svc)

	matches, err := svc.FindMatches(ctx, "HyderabadBuddy", 10, "Badminton")
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	for _, m := range matches {
		assert.Contains(t, m.SharedInterests, "Badminton")
	}

	// SportyPal shares Badminton; FoodieFriend shares Food but not Badminton
	usernames := make([]string, 0, len(matches))
	for _, m := range matches {
		usernames = append(usernames, m.Username)
	}
	assert.Contains(t, usernames, "SportyPal")
	assert.NotContains(t, usernames, "FoodieFriend")
}

func TestFindMatchesRadiusCutoffInclusive(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.Register(ctx, discovery.RegisterInput{Username: "center", Lat: 0, Lon: 0, Interests: []string{"chess"}})
	require.NoError(t, err)
	_, err = svc.Register(ctx, discovery.RegisterInput{Username: "edge", Lat: 0, Lon: 0.01, Interests: []string{"chess"}})
	require.NoError(t, err)

	exact := geo.Distance(0, 0, 0, 0.01)

	// exactly at the boundary: included
	matches, err := svc.FindMatches(ctx, "center", exact, "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "edge", matches[0].Username)

	// radius just below the distance: excluded
	matches, err = svc.FindMatches(ctx, "center", exact-1e-9, "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

// Two candidates whose rounded distances tie must come back in
// registration order, not in any resorted order.
func TestFindMatchesTiesKeepRegistrationOrder(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.Register(ctx, discovery.RegisterInput{Username: "center", Lat: 0, Lon: 0, Interests: []string{"chess"}})
	require.NoError(t, err)
	// both ~0.1112 km away, rounding to the same 0.11; names chosen so
	// alphabetical order disagrees with registration order
	_, err = svc.Register(ctx, discovery.RegisterInput{Username: "zed", Lat: 0, Lon: 0.001, Interests: []string{"chess"}})
	require.NoError(t, err)
	_, err = svc.Register(ctx, discovery.RegisterInput{Username: "alpha", Lat: 0.001, Lon: 0, Interests: []string{"chess"}})
	require.NoError(t, err)

	matches, err := svc.FindMatches(ctx, "center", 1, "")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, matches[0].DistanceKm, matches[1].DistanceKm)
	assert.Equal(t, "zed", matches[0].Username)
	assert.Equal(t, "alpha", matches[1].Username)
}

func TestFindMatchesNoCaseFolding(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.Register(ctx, discovery.RegisterInput{Username: "a", Lat: 0, Lon: 0, Interests: []string{"badminton"}})
	require.NoError(t, err)
	_, err = svc.Register(ctx, discovery.RegisterInput{Username: "b", Lat: 0, Lon: 0, Interests: []string{"Badminton"}})
	require.NoError(t, err)

	matches, err := svc.FindMatches(ctx, "a", 1, "")
	require.NoError(t, err)
	assert.Empty(t, matches, "interest comparison is exact, not case-insensitive")
}

// A duplicate registration does not shadow the original: the engine keys
// off the earliest record and never offers a same-named row as a candidate.
func TestFindMatchesWithDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.Register(ctx, discovery.RegisterInput{Username: "twin", Lat: 0, Lon: 0, Interests: []string{"chess"}})
	require.NoError(t, err)
	_, err = svc.Register(ctx, discovery.RegisterInput{Username: "twin", Lat: 45, Lon: 45, Interests: []string{"chess"}})
	require.NoError(t, err)
	_, err = svc.Register(ctx, discovery.RegisterInput{Username: "rival", Lat: 0, Lon: 0.001, Interests: []string{"chess"}})
	require.NoError(t, err)

	matches, err := svc.FindMatches(ctx, "twin", 1, "")
	require.NoError(t, err)
	require.Len(t, matches, 1, "the far duplicate is excluded by name, the nearby rival matches the first record's position")
	assert.Equal(t, "rival", matches[0].Username)
}

func TestCountMatchesCacheFirst(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	seedHyderabadRoster(t, svc)

	// First call → engine
	count1, err := svc.CountMatches(ctx, "HyderabadBuddy", 5, "")
	require.NoError(t, err)
	assert.Positive(t, count1)

	// A new nearby user would change the answer, but the cache holds
	_, err = svc.Register(ctx, discovery.RegisterInput{Username: "Newcomer", Lat: 17.385, Lon: 78.4866, Interests: []string{"Food"}})
	require.NoError(t, err)

	count2, err := svc.CountMatches(ctx, "HyderabadBuddy", 5, "")
	require.NoError(t, err)
	assert.Equal(t, count1, count2)

	// Different query signature misses the cache
	count3, err := svc.CountMatches(ctx, "HyderabadBuddy", 6, "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, count3, count1)
}

func TestPostActivityAssignsSequentialIds(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	for i := 1; i <= 3; i++ {
		id, err := svc.PostActivity(ctx, discovery.PostActivityInput{
			Username:     "HyderabadBuddy",
			ActivityType: "Badminton",
			Description:  fmt.Sprintf("game %d", i),
			TimeSlot:     "This evening",
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(i), id)
	}
}

func TestRecentActivitiesWindow(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	for i := 1; i <= 6; i++ {
		_, err := svc.PostActivity(ctx, discovery.PostActivityInput{
			Username:     "poster",
			ActivityType: "Other",
			Description:  fmt.Sprintf("activity %d", i),
			TimeSlot:     "Tomorrow",
			Location:     "",
		})
		require.NoError(t, err)
	}

	recent, err := svc.RecentActivities(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, "activity 2", recent[0].Description)
	assert.Equal(t, "activity 6", recent[4].Description)
}

func TestGetStatsCountsAndCaches(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)
	seedHyderabadRoster(t, svc)

	_, err := svc.PostActivity(ctx, discovery.PostActivityInput{
		Username:     "HyderabadBuddy",
		ActivityType: "Badminton",
		Description:  "evening doubles",
		TimeSlot:     "This evening",
	})
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.Users)
	assert.Equal(t, int64(1), stats.Activities)

	// Second read comes from the cache and agrees
	stats2, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats, stats2)
}

func TestGetUserStrictNotFound(t *testing.T) {
	ctx := context.Background()
	svc := setupService(t)

	_, err := svc.GetUser(ctx, "ghost")
	require.Error(t, err)
}
