package models

import "time"

// User represents an application account. Email and phone number are
// unique across all users; the users table enforces this and the user
// service pre-checks it.
type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Country     string    `json:"country"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
}

// Owner is the user projection embedded in content listings. It
// excludes the account creation timestamp.
type Owner struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Country     string `json:"country"`
	State       string `json:"state"`
}

// OwnerOf projects a full user into its listing form.
func OwnerOf(u User) Owner {
	return Owner{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		Country:     u.Country,
		State:       u.State,
	}
}

// UserWithContents pairs a user with every content record they own.
type UserWithContents struct {
	User
	Contents []Content `json:"contents"`
}
