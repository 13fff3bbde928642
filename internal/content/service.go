package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/contenthub/contenthub/internal/cache"
	"github.com/contenthub/contenthub/internal/models"
	"github.com/contenthub/contenthub/pkg/metrics"
)

var (
	ErrNotFound      = errors.New("content not found")
	ErrOwnerNotFound = errors.New("owning user not found")
)

// Cache keys. Single records live under content:<id>; the two listing
// projections each have a fixed collection key.
const (
	keyAllContents      = "all_contents"
	keyContentWithUser  = "content_with_user:all"
	patternContentUsers = "content_with_user:*"
)

func contentKey(id int64) string {
	return fmt.Sprintf("content:%d", id)
}

// UserGetter is the slice of the user service the content service
// needs to verify record ownership.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Service orchestrates read-through caching and invalidation for
// content records. Reads populate the cache lazily on a miss; writes
// go to the record store first and delete every cache key whose data
// could now be stale, strictly after the write commits. Cache failures
// never surface to callers: they degrade to direct record store reads.
type Service struct {
	repo  Repository
	users UserGetter
	cache *cache.Cache
	ttl   time.Duration
}

// NewService wires the content service. ttl bounds the staleness of
// every cache entry it populates.
func NewService(repo Repository, users UserGetter, c *cache.Cache, ttl time.Duration) *Service {
	return &Service{repo: repo, users: users, cache: c, ttl: ttl}
}

// CreateInput carries the validated fields for a new content record.
type CreateInput struct {
	Title  string
	Image  *string
	Body   string
	UserID int64
}

// UpdateInput carries a partial content update. Nil fields are left
// untouched.
type UpdateInput struct {
	Image *string
	Body  *string
}

// GetByID returns a single content record, serving from cache when a
// fresh entry exists. Returns ErrNotFound when the record is absent.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.Content, error) {
	key := contentKey(id)
	var cached models.Content
	if s.cache.Get(ctx, key, &cached) {
		metrics.CacheHits.WithLabelValues("content").Inc()
		return &cached, nil
	}
	metrics.CacheMisses.WithLabelValues("content").Inc()

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}
	s.cache.Set(ctx, key, c, s.ttl)
	return c, nil
}

// List returns all content records. An empty result set is returned
// but never cached, so the first insert into an empty store is
// visible on the very next call.
func (s *Service) List(ctx context.Context) ([]models.Content, error) {
	var cached []models.Content
	if s.cache.Get(ctx, keyAllContents, &cached) {
		metrics.CacheHits.WithLabelValues("all_contents").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("all_contents").Inc()

	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		s.cache.Set(ctx, keyAllContents, list, s.ttl)
	}
	return list, nil
}

// ListWithOwner returns all content records joined with their owning
// users. Same miss/populate and empty-set rules as List.
func (s *Service) ListWithOwner(ctx context.Context) ([]models.ContentWithOwner, error) {
	var cached []models.ContentWithOwner
	if s.cache.Get(ctx, keyContentWithUser, &cached) {
		metrics.CacheHits.WithLabelValues("content_with_user").Inc()
		return cached, nil
	}
	metrics.CacheMisses.WithLabelValues("content_with_user").Inc()

	list, err := s.repo.ListWithOwner(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		s.cache.Set(ctx, keyContentWithUser, list, s.ttl)
	}
	return list, nil
}

// Create verifies the owning user exists, inserts the record, then
// invalidates both collection keys. Individual content:<id> keys are
// untouched: other records are unaffected and the new record was
// never cached.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Content, error) {
	owner, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrOwnerNotFound
	}

	created, err := s.repo.Create(ctx, &models.Content{
		Title:  in.Title,
		Image:  in.Image,
		Body:   in.Body,
		UserID: in.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCollections(ctx)
	return created, nil
}

// Update loads the existing record, applies only the supplied fields,
// persists, then invalidates the record's own key plus both collection
// keys. If the write fails nothing is invalidated: the cached state
// still matches the store.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*models.Content, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	if in.Image != nil {
		c.Image = in.Image
	}
	if in.Body != nil {
		c.Body = *in.Body
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, contentKey(id))
	s.invalidateCollections(ctx)
	return c, nil
}

// SetImage stores a new image reference for a record, typically the
// object key of an uploaded media file.
func (s *Service) SetImage(ctx context.Context, id int64, image string) (*models.Content, error) {
	return s.Update(ctx, id, UpdateInput{Image: &image})
}

func (s *Service) invalidateCollections(ctx context.Context) {
	s.cache.Delete(ctx, keyAllContents)
	s.cache.DeleteByPattern(ctx, patternContentUsers)
}
