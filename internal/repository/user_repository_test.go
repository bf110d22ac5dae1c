package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hobbycircles/hobby-circles/internal/db"
	"github.com/hobbycircles/hobby-circles/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(&db.User{}, &db.Activity{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func TestCreateAndFindByUsername(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	user := &db.User{
		Username:  "HyderabadBuddy",
		Lat:       17.385044,
		Lon:       78.486671,
		Interests: []string{"Badminton", "Food", "Board Games"},
		Bio:       "Love exploring new places!",
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	found, err := repo.FindByUsername(ctx, "HyderabadBuddy")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, 17.385044, found.Lat)
	assert.Equal(t, []string{"Badminton", "Food", "Board Games"}, found.Interests)
}

func TestFindByUsernameMissing(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	_, err := repo.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// Duplicate usernames are accepted and lookups resolve to the earliest
// registration. This pins the registry's first-match behavior.
func TestDuplicateUsernameResolvesToFirst(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	first := &db.User{Username: "twin", Lat: 10, Lon: 20, Interests: []string{"Chess"}}
	second := &db.User{Username: "twin", Lat: 30, Lon: 40, Interests: []string{"Tennis"}}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	found, err := repo.FindByUsername(ctx, "twin")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, 10.0, found.Lat)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestListAllInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	names := []string{"charlie", "alice", "bob"}
	for _, n := range names {
		require.NoError(t, repo.Create(ctx, &db.User{Username: n, Interests: []string{"x"}}))
	}

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	for i, n := range names {
		assert.Equal(t, n, users[i].Username)
	}
}

func TestListPagePaginates(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	for _, n := range []string{"u1", "u2", "u3", "u4", "u5"} {
		require.NoError(t, repo.Create(ctx, &db.User{Username: n}))
	}

	page1, token, err := repo.ListPage(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, token)
	assert.Equal(t, "u1", page1[0].Username)
	assert.Equal(t, "u2", page1[1].Username)

	page2, token, err := repo.ListPage(ctx, token, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.NotNil(t, token)
	assert.Equal(t, "u3", page2[0].Username)

	page3, token, err := repo.ListPage(ctx, token, 2)
	require.NoError(t, err)
	require.Len(t, page3, 1)
	assert.Equal(t, "u5", page3[0].Username)
	assert.Nil(t, token)
}

func TestListPageRejectsBadToken(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepository(setupTestDB(t))

	bad := "not-base64!!"
	_, _, err := repo.ListPage(ctx, &bad, 10)
	assert.Error(t, err)
}
