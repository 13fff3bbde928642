package content

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/contenthub/contenthub/internal/models"
)

// Repository defines persistence operations for content records.
// Lookups return (nil, nil) when no row matches.
type Repository interface {
	Create(ctx context.Context, c *models.Content) (*models.Content, error)
	GetByID(ctx context.Context, id int64) (*models.Content, error)
	List(ctx context.Context) ([]models.Content, error)
	ListWithOwner(ctx context.Context) ([]models.ContentWithOwner, error)
	Update(ctx context.Context, c *models.Content) error
}

// SQLRepository implements Repository over the SQLite record store.
type SQLRepository struct {
	db *sql.DB
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func (r *SQLRepository) Create(ctx context.Context, c *models.Content) (*models.Content, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contents (title, image, content, user_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.Title, nullable(c.Image), c.Body, c.UserID, toMillis(c.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert content: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert content id: %w", err)
	}
	created := *c
	created.ID = id
	created.CreatedAt = fromMillis(toMillis(c.CreatedAt))
	return &created, nil
}

const contentColumns = `id, title, image, content, user_id, created_at`

func scanContent(row interface{ Scan(...interface{}) error }) (*models.Content, error) {
	var c models.Content
	var image sql.NullString
	var createdAt int64
	if err := row.Scan(&c.ID, &c.Title, &image, &c.Body, &c.UserID, &createdAt); err != nil {
		return nil, err
	}
	if image.Valid {
		c.Image = &image.String
	}
	c.CreatedAt = fromMillis(createdAt)
	return &c, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Content, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM contents WHERE id = ?`, id)
	c, err := scanContent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get content: %w", err)
	}
	return c, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]models.Content, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+contentColumns+` FROM contents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer rows.Close()
	out := make([]models.Content, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ListWithOwner returns every content record joined with its owning
// user. The join is a single explicit query; the owner projection
// excludes the user's creation timestamp.
func (r *SQLRepository) ListWithOwner(ctx context.Context) ([]models.ContentWithOwner, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.image, c.content, c.user_id, c.created_at,
		       u.id, u.name, u.email, u.phone_number, u.country, u.state
		FROM contents c
		JOIN users u ON u.id = c.user_id
		ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("list contents with owner: %w", err)
	}
	defer rows.Close()
	out := make([]models.ContentWithOwner, 0)
	for rows.Next() {
		var cw models.ContentWithOwner
		var image sql.NullString
		var createdAt int64
		if err := rows.Scan(
			&cw.ID, &cw.Title, &image, &cw.Body, &cw.UserID, &createdAt,
			&cw.Owner.ID, &cw.Owner.Name, &cw.Owner.Email, &cw.Owner.PhoneNumber, &cw.Owner.Country, &cw.Owner.State,
		); err != nil {
			return nil, fmt.Errorf("scan content with owner: %w", err)
		}
		if image.Valid {
			cw.Image = &image.String
		}
		cw.CreatedAt = fromMillis(createdAt)
		out = append(out, cw)
	}
	return out, rows.Err()
}

func (r *SQLRepository) Update(ctx context.Context, c *models.Content) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contents SET title = ?, image = ?, content = ? WHERE id = ?`,
		c.Title, nullable(c.Image), c.Body, c.ID)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
