package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"github.com/MADANW/MuhsinAI/internal/domain"
	"github.com/MADANW/MuhsinAI/internal/domain/entity"
)

// userUsecase implements the UserUsecase interface.
type userUsecase struct {
	userRepo domain.UserRepository
	logger   *slog.Logger
}

// NewUserUsecase creates a new UserUsecase instance.
func NewUserUsecase(
	userRepo domain.UserRepository,
	logger *slog.Logger,
) domain.UserUsecase {
	return &userUsecase{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register creates a new account.
func (u *userUsecase) Register(ctx context.Context, email, password string) (*entity.User, error) {
	if err := u.validateRegisterRequest(email, password); err != nil {
		return nil, err
	}

	existingUser, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil && existingUser != nil {
		return nil, domain.NewAlreadyExistsError("User", email)
	}
	if err != nil && !domain.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := u.userRepo.Create(ctx, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	u.logger.Info("user registered successfully", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login verifies credentials. The same error covers unknown email and wrong
// password so account existence does not leak.
func (u *userUsecase) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewInvalidInputError("invalid email or password")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := verifyPassword(user.PasswordHash, password); err != nil {
		return nil, domain.NewInvalidInputError("invalid email or password")
	}

	// Stamp asynchronously so a slow write never delays the login.
	go func() {
		if err := u.userRepo.UpdateLastLogin(context.Background(), user.ID); err != nil {
			u.logger.Error("failed to update last login", "error", err, "user_id", user.ID)
		}
	}()

	u.logger.Info("user logged in successfully", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// GetUser fetches user information.
func (u *userUsecase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the email, the password or both. Empty fields are
// left unchanged; asking for no change at all is an input error.
func (u *userUsecase) UpdateProfile(ctx context.Context, userID, email, password string) (*entity.User, error) {
	if email == "" && password == "" {
		return nil, domain.NewInvalidInputError("nothing to update")
	}

	// Validate everything before touching the store so a bad password can
	// never leave a half-applied email change behind.
	if email != "" && (len(email) > 254 || !emailRegex.MatchString(email)) {
		return nil, domain.NewInvalidInputError("invalid email address")
	}
	if password != "" {
		if err := validatePassword(password); err != nil {
			return nil, err
		}
	}

	if email != "" {
		if err := u.userRepo.UpdateEmail(ctx, userID, email); err != nil {
			return nil, err
		}
	}
	if password != "" {
		passwordHash, err := hashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := u.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
			return nil, err
		}
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	u.logger.Info("profile updated",
		"user_id", userID,
		"email_changed", email != "",
		"password_changed", password != "",
	)
	return user, nil
}

// DeleteAccount permanently removes the account. Owned exchanges cascade
// away with it; there is no undo.
func (u *userUsecase) DeleteAccount(ctx context.Context, userID string) error {
	if err := u.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	u.logger.Info("account deleted", "user_id", userID)
	return nil
}

// ============ Helpers ============

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// validateRegisterRequest checks registration input.
func (u *userUsecase) validateRegisterRequest(email, password string) error {
	if len(email) > 254 || !emailRegex.MatchString(email) {
		return domain.NewInvalidInputError("invalid email address")
	}
	return validatePassword(password)
}

// validatePassword enforces the password length bounds.
func validatePassword(password string) error {
	if len(password) < 8 {
		return domain.NewInvalidInputError("password must be at least 8 characters")
	}
	if len(password) > 100 {
		return domain.NewInvalidInputError("password too long (max 100 characters)")
	}
	return nil
}

// bcrypt reads at most 72 bytes; longer passwords are truncated rather than
// rejected, matching the previous hasher's behavior.
func truncateForBcrypt(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}

// hashPassword hashes a password with bcrypt.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncateForBcrypt(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword checks a password against its hash.
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncateForBcrypt(password))
}
