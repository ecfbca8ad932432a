// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/upeosoft/cms/internal/server/auth"
)

// User is a CMS account. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	Profile      Profile   `json:"profile"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Bio       string `json:"bio"`
	Phone     string `json:"phone"`
	Avatar    string `json:"avatar"`
}
