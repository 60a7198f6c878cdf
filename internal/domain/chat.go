package domain

import (
	"context"

	"github.com/MADANW/MuhsinAI/internal/domain/entity"
)

// ============ Usecase-level DTOs ============

// SendRequest is an internal chat request (usecase input).
type SendRequest struct {
	UserID string
	Prompt string
}

// SendResponse carries the completed exchange back to the transport layer.
type SendResponse struct {
	Exchange *entity.Exchange
	Message  string
	// NotSaved is set when the model call succeeded but persistence failed.
	// The response is still shown; it just will not appear in history.
	NotSaved bool
}

// HistoryPage is one page of a user's exchanges, newest first.
type HistoryPage struct {
	Items      []*entity.Exchange
	Page       int
	PageSize   int
	TotalCount int
}

// ============ Repository interface ============

// ChatRepository is the exchange storage interface.
type ChatRepository interface {
	// CreateExchange persists a completed prompt/response pair.
	CreateExchange(ctx context.Context, ex *entity.Exchange) error

	// GetExchange fetches one exchange by ID regardless of owner.
	GetExchange(ctx context.Context, id string) (*entity.Exchange, error)

	// ListByUser returns a page of the user's exchanges, newest first.
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*entity.Exchange, error)

	// CountByUser returns the user's total exchange count.
	CountByUser(ctx context.Context, userID string) (int, error)

	// DeleteExchange removes an exchange only if userID owns it.
	// Someone else's exchange reports forbidden, a missing one not found.
	DeleteExchange(ctx context.Context, id, userID string) error

	// StatsByUser aggregates the user's scheduling activity.
	StatsByUser(ctx context.Context, userID string) (*entity.UserStats, error)
}

// ============ Upstream client interface ============

// ModelClient talks to the language model service.
type ModelClient interface {
	// Complete sends a prompt and returns the raw model reply.
	Complete(ctx context.Context, prompt string) (string, error)

	// Ping verifies the model service is reachable.
	Ping(ctx context.Context) error
}

// ============ Usecase interface ============

// ChatUsecase is the conversational scheduling interface.
type ChatUsecase interface {
	// Send runs one prompt through the model, parses the reply and
	// persists the exchange.
	Send(ctx context.Context, req *SendRequest) (*SendResponse, error)

	// ListHistory returns a page of the user's past exchanges.
	ListHistory(ctx context.Context, userID string, page, pageSize int) (*HistoryPage, error)

	// GetExchange fetches one of the user's exchanges in full.
	GetExchange(ctx context.Context, userID, exchangeID string) (*entity.Exchange, error)

	// DeleteExchange removes one of the user's exchanges.
	DeleteExchange(ctx context.Context, userID, exchangeID string) error

	// Stats aggregates the user's scheduling activity.
	Stats(ctx context.Context, userID string) (*entity.UserStats, error)
}
