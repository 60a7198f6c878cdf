package types

// APIResponse is the server's uniform envelope.
type APIResponse[T any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User represents user information
type User struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// LoginData represents the data returned after successful login
type LoginData struct {
	Token  string `json:"token"`
	Expire string `json:"expire"`
	User   *User  `json:"user"`
}

// UpdateProfileRequest carries the fields to change. Empty fields are left
// as they are.
type UpdateProfileRequest struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// DeleteAccountData is the server's receipt for an account deletion.
type DeleteAccountData struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	DeletedAt string `json:"deleted_at"`
}
