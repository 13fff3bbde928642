package users

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/contenthub/contenthub/internal/models"
)

// Repository defines persistence operations for users. Lookups return
// (nil, nil) when no row matches, so callers can distinguish absence
// from store failure.
type Repository interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListWithContents(ctx context.Context) ([]models.UserWithContents, error)
	GetWithContents(ctx context.Context, id int64) (*models.UserWithContents, error)
	Update(ctx context.Context, u *models.User) error
}

// SQLRepository implements Repository over the SQLite record store.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// toMillis normalizes timestamps into millisecond precision for storage.
func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// fromMillis restores millisecond precision and keeps UTC normalization.
func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// mapUniqueErr translates a SQLite UNIQUE violation into the matching
// domain conflict. The store constraint is the authoritative conflict
// signal: service-level pre-checks can race, this cannot.
func mapUniqueErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return err
	}
	switch {
	case strings.Contains(msg, "users.email"):
		return ErrEmailTaken
	case strings.Contains(msg, "users.phone_number"):
		return ErrPhoneTaken
	}
	return err
}

func (r *SQLRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, email, phone_number, country, state, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.PhoneNumber, u.Country, u.State, toMillis(u.CreatedAt))
	if err != nil {
		return nil, mapUniqueErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user id: %w", err)
	}
	created := *u
	created.ID = id
	created.CreatedAt = fromMillis(toMillis(u.CreatedAt))
	return &created, nil
}

const userColumns = `id, name, email, phone_number, country, state, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	var createdAt int64
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.Country, &u.State, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(createdAt)
	return &u, nil
}

func (r *SQLRepository) getOne(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `email = ?`, email)
}

func (r *SQLRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getOne(ctx, `phone_number = ?`, phone)
}

func (r *SQLRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	out := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func (r *SQLRepository) contentsByUser(ctx context.Context, userID int64) ([]models.Content, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, image, content, user_id, created_at FROM contents WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user contents: %w", err)
	}
	defer rows.Close()
	out := make([]models.Content, 0)
	for rows.Next() {
		var c models.Content
		var image sql.NullString
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.Title, &image, &c.Body, &c.UserID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		if image.Valid {
			c.Image = &image.String
		}
		c.CreatedAt = fromMillis(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListWithContents returns every user together with the content
// records they own. The relationship fetch is an explicit second
// query per user, not an implicit lazy load.
func (r *SQLRepository) ListWithContents(ctx context.Context) ([]models.UserWithContents, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserWithContents, 0, len(list))
	for _, u := range list {
		contents, err := r.contentsByUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, models.UserWithContents{User: u, Contents: contents})
	}
	return out, nil
}

func (r *SQLRepository) GetWithContents(ctx context.Context, id int64) (*models.UserWithContents, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	contents, err := r.contentsByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.UserWithContents{User: *u, Contents: contents}, nil
}

func (r *SQLRepository) Update(ctx context.Context, u *models.User) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, phone_number = ?, country = ?, state = ? WHERE id = ?`,
		u.Name, u.Email, u.PhoneNumber, u.Country, u.State, u.ID)
	if err != nil {
		return mapUniqueErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
