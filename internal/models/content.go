package models

import "time"

// Content is a record owned by exactly one user. Image is an opaque
// reference (a path or object key) and is stored as-is, unvalidated.
type Content struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Image     *string   `json:"image"`
	Body      string    `json:"content"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ContentWithOwner is the joined projection served by the content
// listing: content fields inline plus the owning user.
type ContentWithOwner struct {
	Content
	Owner Owner `json:"user"`
}
