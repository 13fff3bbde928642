package content

import (
	"context"
	"errors"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/contenthub/contenthub/internal/cache"
	"github.com/contenthub/contenthub/internal/models"
)

// fakeContentRepo counts record store fetches so tests can observe
// whether a read was served from cache.
type fakeContentRepo struct {
	byID map[int64]*models.Content
	next int64

	getFetches  int
	listFetches int
	joinFetches int
	updateErr   error
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{byID: map[int64]*models.Content{}, next: 1}
}

func (f *fakeContentRepo) Create(ctx context.Context, c *models.Content) (*models.Content, error) {
	created := *c
	created.ID = f.next
	created.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	f.next++
	f.byID[created.ID] = &created
	return &created, nil
}

func (f *fakeContentRepo) GetByID(ctx context.Context, id int64) (*models.Content, error) {
	f.getFetches++
	if c, ok := f.byID[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeContentRepo) List(ctx context.Context) ([]models.Content, error) {
	f.listFetches++
	out := make([]models.Content, 0, len(f.byID))
	for id := int64(1); id < f.next; id++ {
		if c, ok := f.byID[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeContentRepo) ListWithOwner(ctx context.Context) ([]models.ContentWithOwner, error) {
	f.joinFetches++
	out := make([]models.ContentWithOwner, 0, len(f.byID))
	for id := int64(1); id < f.next; id++ {
		if c, ok := f.byID[id]; ok {
			out = append(out, models.ContentWithOwner{
				Content: *c,
				Owner:   models.Owner{ID: c.UserID, Name: "John Doe", Email: "a@x.com"},
			})
		}
	}
	return out, nil
}

func (f *fakeContentRepo) Update(ctx context.Context, c *models.Content) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

type fakeUsers struct {
	ids map[int64]bool
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.ids[id] {
		return &models.User{ID: id, Name: "John Doe"}, nil
	}
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *fakeContentRepo, *mr.Miniredis) {
	t.Helper()
	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	repo := newFakeContentRepo()
	svc := NewService(repo, &fakeUsers{ids: map[int64]bool{1: true}}, cache.New(client, ""), 600*time.Second)
	return svc, repo, m
}

func strptr(s string) *string { return &s }

func mustCreate(t *testing.T, svc *Service, body string) *models.Content {
	t.Helper()
	c, err := svc.Create(context.Background(), CreateInput{Title: "T", Body: body, UserID: 1})
	require.NoError(t, err)
	return c
}

func TestGetByID_ReadThroughIsIdempotent(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "body text here")

	first, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, repo.getFetches)

	// second read within TTL must be served from cache
	second, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, repo.getFetches, "second read must not hit the record store")
	require.Equal(t, first, second)
}

func TestGetByID_TTLExpiryRepopulates(t *testing.T) {
	svc, repo, m := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "body text here")

	_, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, repo.getFetches)

	m.FastForward(601 * time.Second)

	_, err = svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, repo.getFetches, "expired entry must fall through to the record store")
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetByID(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetByID_AbsenceIsNotCached(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetByID(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 2, repo.getFetches)
}

func TestUpdate_InvalidatesWithinTTL(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "body text here")

	_, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, UpdateInput{Body: strptr("new body")})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "new body", got.Body, "read after update must reflect the new data even within TTL")
}

func TestUpdate_PartialPreservesFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	img := "/tmp/pic.png"
	created, err := svc.Create(ctx, CreateInput{Title: "T", Image: &img, Body: "body text here", UserID: 1})
	require.NoError(t, err)

	// update only the body: image stays
	got, err := svc.Update(ctx, created.ID, UpdateInput{Body: strptr("new body")})
	require.NoError(t, err)
	require.NotNil(t, got.Image)
	require.Equal(t, img, *got.Image)
	require.Equal(t, "T", got.Title)

	// update only the image: body stays
	got, err = svc.Update(ctx, created.ID, UpdateInput{Image: strptr("/tmp/other.png")})
	require.NoError(t, err)
	require.Equal(t, "new body", got.Body)
	require.Equal(t, "/tmp/other.png", *got.Image)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Update(context.Background(), 42, UpdateInput{Body: strptr("x")})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_FailedWriteLeavesCacheIntact(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "body text here")

	_, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	fetches := repo.getFetches

	repo.updateErr = errors.New("disk full")
	_, err = svc.Update(ctx, created.ID, UpdateInput{Body: strptr("new body")})
	require.Error(t, err)

	// the cached entry still matches the store, so the next read may
	// serve it: update loads once, but no invalidation happened
	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "body text here", got.Body)
	require.Equal(t, fetches+1, repo.getFetches, "only the failed update's load may hit the store")
}

func TestCreate_OwnerMustExist(t *testing.T) {
	svc, repo, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateInput{Title: "T", Body: "body text here", UserID: 99})
	require.ErrorIs(t, err, ErrOwnerNotFound)
	require.Empty(t, repo.byID, "no content row may be created for a missing owner")
}

func TestCreate_InvalidatesCollections(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "body text here")

	joined, err := svc.ListWithOwner(ctx)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	plain, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, plain, 1)
	require.Equal(t, 1, repo.joinFetches)
	require.Equal(t, 1, repo.listFetches)

	mustCreate(t, svc, "second body here")

	joined, err = svc.ListWithOwner(ctx)
	require.NoError(t, err)
	require.Len(t, joined, 2, "listing after create must include the new record")
	plain, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, plain, 2)
	require.Equal(t, 2, repo.joinFetches)
	require.Equal(t, 2, repo.listFetches)
}

func TestCreate_LeavesOtherRecordKeysAlone(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	first := mustCreate(t, svc, "body text here")

	_, err := svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, 1, repo.getFetches)

	mustCreate(t, svc, "second body here")

	// the first record's cache entry is unaffected by the create
	_, err = svc.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, 1, repo.getFetches)
}

func TestUpdate_InvalidatesCollections(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "body text here")

	_, err := svc.ListWithOwner(ctx)
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, UpdateInput{Body: strptr("new body")})
	require.NoError(t, err)

	joined, err := svc.ListWithOwner(ctx)
	require.NoError(t, err)
	require.Equal(t, "new body", joined[0].Body)
	plain, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "new body", plain[0].Body)
	require.Equal(t, 2, repo.joinFetches)
	require.Equal(t, 2, repo.listFetches)
}

func TestList_EmptyResultNotCached(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	joined, err := svc.ListWithOwner(ctx)
	require.NoError(t, err)
	require.Empty(t, joined)
	require.Equal(t, 1, repo.joinFetches)

	// an insert right after must be picked up immediately, proving the
	// empty listing was never cached
	mustCreate(t, svc, "body text here")

	joined, err = svc.ListWithOwner(ctx)
	require.NoError(t, err)
	require.Len(t, joined, 1)
	require.Equal(t, 2, repo.joinFetches)
}

func TestListWithOwner_ServedVerbatimFromCache(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "body text here")

	first, err := svc.ListWithOwner(ctx)
	require.NoError(t, err)
	second, err := svc.ListWithOwner(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.joinFetches)
	require.Equal(t, first, second)
	require.Equal(t, "John Doe", second[0].Owner.Name)
}

func TestReads_DegradeWhenCacheDown(t *testing.T) {
	svc, repo, m := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "body text here")

	m.Close()

	// every read falls through to the record store, no errors surface
	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "body text here", got.Body)

	got, err = svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, repo.getFetches)

	_, err = svc.Update(ctx, created.ID, UpdateInput{Body: strptr("new body")})
	require.NoError(t, err, "failed invalidation must not fail the write")
}

func TestSetImage(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "body text here")

	got, err := svc.SetImage(ctx, created.ID, "content/1/pic.png")
	require.NoError(t, err)
	require.NotNil(t, got.Image)
	require.Equal(t, "content/1/pic.png", *got.Image)
	require.Equal(t, "body text here", got.Body)
}
