package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/jwt"

	"github.com/MADANW/MuhsinAI/internal/config"
	"github.com/MADANW/MuhsinAI/internal/domain"
	"github.com/MADANW/MuhsinAI/internal/domain/entity"
	"github.com/MADANW/MuhsinAI/internal/handler/dto"
)

// UserHandler handles auth and user HTTP requests.
type UserHandler struct {
	usecase        domain.UserUsecase
	authMiddleware *jwt.HertzJWTMiddleware
	logger         *slog.Logger
}

// NewUserHandler creates a new user handler and its JWT middleware.
func NewUserHandler(usecase domain.UserUsecase, jwtCfg config.JWTConfig, logger *slog.Logger) *UserHandler {
	authMiddleware, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "muhsinai",
		Key:         []byte(jwtCfg.Secret),
		Timeout:     jwtCfg.TokenTTL,
		MaxRefresh:  jwtCfg.MaxRefresh,
		IdentityKey: "user_id",

		// Login authentication logic
		Authenticator: func(ctx context.Context, c *app.RequestContext) (interface{}, error) {
			var loginReq dto.LoginRequest
			if err := c.BindJSON(&loginReq); err != nil {
				return nil, jwt.ErrMissingLoginValues
			}

			user, err := usecase.Login(ctx, loginReq.Email, loginReq.Password)
			if err != nil {
				logger.Error("login failed", "email", loginReq.Email, "error", err)
				return nil, jwt.ErrFailedAuthentication
			}

			// Stash for LoginResponse below.
			c.Set("user", user)
			return user, nil
		},

		// Token payload: the only claim handlers rely on is user_id.
		PayloadFunc: func(data interface{}) jwt.MapClaims {
			if user, ok := data.(*entity.User); ok {
				return jwt.MapClaims{
					"user_id": user.ID,
					"email":   user.Email,
				}
			}
			return jwt.MapClaims{}
		},

		// Extract identity from a verified token.
		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			if userID, ok := claims["user_id"].(string); ok {
				c.Set("user_id", userID)
				return userID
			}
			return ""
		},

		Authorizator: func(data interface{}, ctx context.Context, c *app.RequestContext) bool {
			return data != nil
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, Response{
				Code:    "UNAUTHORIZED",
				Message: message,
			})
		},

		LoginResponse: func(ctx context.Context, c *app.RequestContext, code int, token string, expire time.Time) {
			user, exists := c.Get("user")
			if !exists {
				c.JSON(consts.StatusInternalServerError, Response{
					Code:    "INTERNAL_ERROR",
					Message: "failed to get user info",
				})
				return
			}
			userEntity := user.(*entity.User)

			c.JSON(consts.StatusOK, Response{
				Code:    "SUCCESS",
				Message: "login successful",
				Data: dto.LoginResponse{
					Token:  token,
					Expire: expire.Format(time.RFC3339),
					User:   dto.ToUserResponse(userEntity),
				},
			})
		},

		RefreshResponse: func(ctx context.Context, c *app.RequestContext, code int, token string, expire time.Time) {
			c.JSON(consts.StatusOK, Response{
				Code:    "SUCCESS",
				Message: "token refreshed",
				Data: dto.LoginResponse{
					Token:  token,
					Expire: expire.Format(time.RFC3339),
				},
			})
		},

		// Tokens are stateless; logout just acknowledges so clients drop
		// their copy.
		LogoutResponse: func(ctx context.Context, c *app.RequestContext, code int) {
			c.JSON(consts.StatusOK, Response{
				Code:    "SUCCESS",
				Message: "logged out",
			})
		},

		TokenLookup:   "header: Authorization, query: token",
		TokenHeadName: "Bearer",
		TimeFunc:      time.Now,
	})

	if err != nil {
		logger.Error("failed to create jwt middleware", "error", err)
		panic(err)
	}

	return &UserHandler{
		usecase:        usecase,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// AuthMiddleware returns JWT authentication middleware (for route protection)
func (h *UserHandler) AuthMiddleware() app.HandlerFunc {
	return h.authMiddleware.MiddlewareFunc()
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *UserHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Error("invalid register request", "error", err)
		ErrorResponse(c, domain.NewInvalidInputError("invalid request body"))
		return
	}

	user, err := h.usecase.Register(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Error("register failed", "error", err)
		ErrorResponse(c, err)
		return
	}

	CreatedResponse(c, dto.ToUserResponse(user))
}

// Login handles user login (delegates to the JWT LoginHandler)
// POST /api/v1/auth/login
func (h *UserHandler) Login(ctx context.Context, c *app.RequestContext) {
	h.authMiddleware.LoginHandler(ctx, c)
}

// RefreshToken exchanges a still-refreshable token for a fresh one
// POST /api/v1/auth/refresh
func (h *UserHandler) RefreshToken(ctx context.Context, c *app.RequestContext) {
	h.authMiddleware.RefreshHandler(ctx, c)
}

// Logout acknowledges a logout
// POST /api/v1/auth/logout
func (h *UserHandler) Logout(ctx context.Context, c *app.RequestContext) {
	h.authMiddleware.LogoutHandler(ctx, c)
}

// GetCurrentUser returns the authenticated user's profile
// GET /api/v1/auth/me
func (h *UserHandler) GetCurrentUser(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(c)
	if !ok {
		h.logger.Error("user_id not found in context")
		ErrorResponse(c, domain.ErrUnauthorized)
		return
	}

	user, err := h.usecase.GetUser(ctx, userID)
	if err != nil {
		h.logger.Error("failed to get current user", "error", err, "user_id", userID)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ToUserResponse(user))
}

// UpdateProfile changes the authenticated user's email, password or both.
// Empty fields are left unchanged; a taken email reports already-exists.
// PUT /api/v1/users/me
func (h *UserHandler) UpdateProfile(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, domain.ErrUnauthorized)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Error("invalid profile update request", "error", err)
		ErrorResponse(c, domain.NewInvalidInputError("invalid request body"))
		return
	}

	user, err := h.usecase.UpdateProfile(ctx, userID, req.Email, req.Password)
	if err != nil {
		h.logger.Error("profile update failed", "error", err, "user_id", userID)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ToUserResponse(user))
}

// DeleteAccount permanently deletes the authenticated user's account and
// all owned exchanges. A valid token is the only confirmation required;
// there is no undo.
// DELETE /api/v1/users/me
func (h *UserHandler) DeleteAccount(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, domain.ErrUnauthorized)
		return
	}

	if err := h.usecase.DeleteAccount(ctx, userID); err != nil {
		h.logger.Error("account deletion failed", "error", err, "user_id", userID)
		ErrorResponse(c, err)
		return
	}

	h.logger.Info("account deleted", "user_id", userID)
	SuccessResponse(c, dto.DeleteAccountResponse{
		Message:   "account deleted",
		UserID:    userID,
		DeletedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

// currentUserID pulls the authenticated user's ID set by IdentityHandler.
func currentUserID(c *app.RequestContext) (string, bool) {
	val, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	userID, ok := val.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
