package users

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/contenthub/contenthub/internal/database"
	"github.com/contenthub/contenthub/internal/models"
)

func newTestRepo(t *testing.T) *SQLRepository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLRepository(db)
}

func johnDoe() *models.User {
	return &models.User{
		Name:        "John Doe",
		Email:       "a@x.com",
		PhoneNumber: "+2348012345678",
		Country:     "Nigeria",
		State:       "Lagos",
	}
}

func TestSQLRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, johnDoe())
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, created.Email, got.Email)
	require.Equal(t, created.CreatedAt, got.CreatedAt)

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	require.Equal(t, created.ID, byEmail.ID)

	byPhone, err := repo.GetByPhone(ctx, "+2348012345678")
	require.NoError(t, err)
	require.NotNil(t, byPhone)
	require.Equal(t, created.ID, byPhone.ID)
}

func TestSQLRepository_AbsentIsNil(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, 42)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = repo.GetByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSQLRepository_UniqueConstraints(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, johnDoe())
	require.NoError(t, err)

	dupEmail := johnDoe()
	dupEmail.PhoneNumber = "+2348099999999"
	_, err = repo.Create(ctx, dupEmail)
	require.ErrorIs(t, err, ErrEmailTaken)

	dupPhone := johnDoe()
	dupPhone.Email = "b@x.com"
	_, err = repo.Create(ctx, dupPhone)
	require.ErrorIs(t, err, ErrPhoneTaken)

	// exactly one row visible
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestSQLRepository_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, johnDoe())
	require.NoError(t, err)

	created.Name = "Jane Doe"
	require.NoError(t, repo.Update(ctx, created))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", got.Name)

	missing := johnDoe()
	missing.ID = 999
	missing.Email = "missing@x.com"
	missing.PhoneNumber = "+2348000000000"
	require.ErrorIs(t, repo.Update(ctx, missing), ErrNotFound)
}

func TestSQLRepository_ListWithContents(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.Create(ctx, johnDoe())
	require.NoError(t, err)

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO contents (title, content, user_id, created_at) VALUES ('T', 'body text here', ?, 0)`, u.ID)
	require.NoError(t, err)

	list, err := repo.ListWithContents(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Contents, 1)
	require.Equal(t, "T", list[0].Contents[0].Title)

	one, err := repo.GetWithContents(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, one)
	require.Len(t, one.Contents, 1)

	none, err := repo.GetWithContents(ctx, 999)
	require.NoError(t, err)
	require.Nil(t, none)
}
