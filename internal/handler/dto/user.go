package dto

import (
	"time"

	"github.com/MADANW/MuhsinAI/internal/domain/entity"
)

// RegisterRequest is the HTTP registration payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=100"`
}

// LoginRequest is the HTTP login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the authenticated user.
type LoginResponse struct {
	Token  string        `json:"token"`
	Expire string        `json:"expire"`
	User   *UserResponse `json:"user"`
}

// UpdateProfileRequest is the HTTP profile-update payload. Both fields are
// optional; empty fields are left unchanged.
type UpdateProfileRequest struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// DeleteAccountResponse is the receipt for an account deletion.
type DeleteAccountResponse struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	DeletedAt string `json:"deleted_at"`
}

// UserResponse is the public view of a user. The password hash never
// leaves the server.
type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// ToUserResponse converts entity.User to UserResponse DTO.
func ToUserResponse(user *entity.User) *UserResponse {
	resp := &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}

	if user.LastLoginAt != nil {
		lastLogin := user.LastLoginAt.Format(time.RFC3339)
		resp.LastLoginAt = &lastLogin
	}

	return resp
}
