// Package users provides the user service: account storage, registration,
// login, and the HTTP API around them.
package users

import (
	"context"
	"errors"

	"github.com/microlearning/microlearn/internal/models"
)

// ErrNotFound is returned when a requested user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrExists is returned when a username or email is already taken.
var ErrExists = errors.New("user already exists")

// Store defines user account persistence.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]*models.User, error)
	Close() error
}
