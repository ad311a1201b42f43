package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/internal/domain/types"
)

func testUser(name string) *models.User {
	return &models.User{
		Username:       name,
		HashedPassword: "$2a$04$abcdefghijklmnopqrstuuJ7b1nqS3mX0mH7y7VvH8nUQy6o2rQy2",
		FullName:       "Alice A",
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC),
	}
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, testUser("alice")))

	got, err := repo.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "Alice A", got.FullName)
	assert.Equal(t, testUser("alice").HashedPassword, got.HashedPassword)
	assert.True(t, got.CreatedAt.Equal(testUser("alice").CreatedAt))
}

func TestUserRepo_GetMissing(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))

	got, err := repo.GetUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepo_DuplicateKeepsFirst(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, testUser("alice")))

	second := testUser("alice")
	second.FullName = "Impostor"
	second.HashedPassword = "other"
	err := repo.CreateUser(ctx, second)
	assert.ErrorIs(t, err, types.ErrUserExists)

	got, err := repo.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice A", got.FullName)
	assert.Equal(t, testUser("alice").HashedPassword, got.HashedPassword)

	var count int
	require.NoError(t, repo.db.Reader.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestUserRepo_UsernameIsCaseSensitive(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, testUser("alice")))
	require.NoError(t, repo.CreateUser(ctx, testUser("Alice")))

	got, err := repo.GetUser(ctx, "ALICE")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepo_CancelledContext(t *testing.T) {
	repo := NewUserRepo(setupTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetUser(ctx, "alice")
	assert.Error(t, err)
}

func TestNewDB_FileSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	require.NoError(t, NewUserRepo(db).CreateUser(context.Background(), testUser("alice")))
	require.NoError(t, db.Close())

	db, err = NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, path, db.Path())

	got, err := NewUserRepo(db).GetUser(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice A", got.FullName)
}

func TestNewDB_PathWithURIReservedCharacters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "with #hash")
	require.NoError(t, os.Mkdir(dir, 0o700))
	path := filepath.Join(dir, "users?v=1.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, path, db.Path())
	require.NoError(t, NewUserRepo(db).CreateUser(context.Background(), testUser("alice")))

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file created at the literal path")
}
