package domain

import (
	"context"

	"github.com/MADANW/MuhsinAI/internal/domain/entity"
)

// ============ Repository interface ============

// UserRepository is the user data access interface.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, email, passwordHash string) (*entity.User, error)

	// GetByEmail looks up a user by email (used for login).
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// GetByID looks up a user by ID.
	GetByID(ctx context.Context, userID string) (*entity.User, error)

	// UpdateLastLogin stamps the last successful login time.
	UpdateLastLogin(ctx context.Context, userID string) error

	// UpdateEmail changes the account email. Returns ErrAlreadyExists
	// when another account holds the address.
	UpdateEmail(ctx context.Context, userID, email string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	// Delete removes the user. Owned exchanges go with it.
	Delete(ctx context.Context, userID string) error
}

// ============ Usecase interface ============

// UserUsecase is the user business logic interface.
type UserUsecase interface {
	// Register creates a new account.
	Register(ctx context.Context, email, password string) (*entity.User, error)

	// Login verifies credentials and returns the user.
	Login(ctx context.Context, email, password string) (*entity.User, error)

	// GetUser fetches user information.
	GetUser(ctx context.Context, userID string) (*entity.User, error)

	// UpdateProfile changes the email, the password or both. Empty fields
	// are left unchanged.
	UpdateProfile(ctx context.Context, userID, email, password string) (*entity.User, error)

	// DeleteAccount permanently removes the account and everything it owns.
	DeleteAccount(ctx context.Context, userID string) error
}
