package users

import (
	"context"
	"errors"

	"github.com/contenthub/contenthub/internal/models"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already exists")
	ErrPhoneTaken = errors.New("phone number already exists")
)

// Service encapsulates user-related business logic. Users are never
// cached: every read goes straight to the record store so reads always
// reflect the latest committed write.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// CreateInput carries the validated fields for a new user.
type CreateInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Country     string
	State       string
}

// UpdateInput carries a partial user update. Nil fields are left
// untouched.
type UpdateInput struct {
	Name        *string
	Email       *string
	PhoneNumber *string
}

// Create inserts a new user. Callers are expected to pre-check email
// and phone uniqueness via GetByEmail/GetByPhone; the store's unique
// constraints remain the backstop and surface as ErrEmailTaken or
// ErrPhoneTaken when the pre-check raced.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	u := &models.User{
		Name:        in.Name,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Country:     in.Country,
		State:       in.State,
	}
	return s.repo.Create(ctx, u)
}

// Update applies a partial update to an existing user. Changing email
// or phone number re-checks uniqueness against all other users.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}

	if in.Email != nil && *in.Email != u.Email {
		existing, err := s.repo.GetByEmail(ctx, *in.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrEmailTaken
		}
	}
	if in.PhoneNumber != nil && *in.PhoneNumber != u.PhoneNumber {
		existing, err := s.repo.GetByPhone(ctx, *in.PhoneNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrPhoneTaken
		}
	}

	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.PhoneNumber != nil {
		u.PhoneNumber = *in.PhoneNumber
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *Service) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.repo.GetByPhone(ctx, phone)
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListWithContents(ctx context.Context) ([]models.UserWithContents, error) {
	return s.repo.ListWithContents(ctx)
}

func (s *Service) GetWithContents(ctx context.Context, id int64) (*models.UserWithContents, error) {
	return s.repo.GetWithContents(ctx, id)
}
