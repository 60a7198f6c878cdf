package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MADANW/MuhsinAI/internal/domain"
	"github.com/MADANW/MuhsinAI/internal/domain/entity"
	"github.com/MADANW/MuhsinAI/internal/schedule"
)

const (
	maxPromptLen    = 2000
	defaultPageSize = 20
	maxPageSize     = 100
)

// chatUsecase implements the ChatUsecase interface.
type chatUsecase struct {
	chatRepo domain.ChatRepository
	model    domain.ModelClient
	logger   *slog.Logger
}

// NewChatUsecase creates a new ChatUsecase instance.
func NewChatUsecase(
	chatRepo domain.ChatRepository,
	model domain.ModelClient,
	logger *slog.Logger,
) domain.ChatUsecase {
	return &chatUsecase{
		chatRepo: chatRepo,
		model:    model,
		logger:   logger,
	}
}

// Send runs one prompt through the model, parses the reply and persists the
// exchange. When the model succeeds but the write fails, the parsed response
// is still returned, flagged NotSaved, together with a NotSavedError.
func (c *chatUsecase) Send(ctx context.Context, req *domain.SendRequest) (*domain.SendResponse, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, domain.NewInvalidInputError("prompt must not be empty")
	}
	if len(prompt) > maxPromptLen {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("prompt too long (max %d characters)", maxPromptLen))
	}

	raw, err := c.model.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result := schedule.Parse(raw)
	if len(result.Defaulted) > 0 {
		c.logger.Warn("schedule fields defaulted",
			"user_id", req.UserID,
			"fields", result.Defaulted,
		)
	}

	ex := &entity.Exchange{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Prompt:      prompt,
		RawResponse: raw,
		Schedule:    result.Schedule,
		CreatedAt:   time.Now().UTC(),
	}

	resp := &domain.SendResponse{
		Exchange: ex,
		Message:  result.Message,
	}

	if err := c.chatRepo.CreateExchange(ctx, ex); err != nil {
		// The model reply is already paid for; losing it over a write
		// failure would be worse than returning it unsaved.
		c.logger.Error("failed to persist exchange",
			"user_id", req.UserID,
			"exchange_id", ex.ID,
			"error", err,
		)
		resp.NotSaved = true
		return resp, &domain.NotSavedError{Err: err}
	}

	c.logger.Info("exchange completed",
		"user_id", req.UserID,
		"exchange_id", ex.ID,
		"is_schedule", result.IsSchedule(),
	)
	return resp, nil
}

// ListHistory returns a page of the user's past exchanges, newest first.
func (c *chatUsecase) ListHistory(ctx context.Context, userID string, page, pageSize int) (*domain.HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	offset := (page - 1) * pageSize

	items, err := c.chatRepo.ListByUser(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	total, err := c.chatRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}

	return &domain.HistoryPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}, nil
}

// GetExchange fetches one of the user's exchanges in full. Someone else's
// exchange reports forbidden, a missing one not found.
func (c *chatUsecase) GetExchange(ctx context.Context, userID, exchangeID string) (*entity.Exchange, error) {
	if strings.TrimSpace(exchangeID) == "" {
		return nil, domain.NewInvalidInputError("exchange id must not be empty")
	}
	ex, err := c.chatRepo.GetExchange(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if ex.UserID != userID {
		return nil, domain.NewForbiddenError("exchange belongs to another user")
	}
	return ex, nil
}

// DeleteExchange removes one of the user's exchanges. Ownership is enforced
// by the repository: someone else's exchange reports forbidden, a missing
// one not found.
func (c *chatUsecase) DeleteExchange(ctx context.Context, userID, exchangeID string) error {
	if strings.TrimSpace(exchangeID) == "" {
		return domain.NewInvalidInputError("exchange id must not be empty")
	}
	if err := c.chatRepo.DeleteExchange(ctx, exchangeID, userID); err != nil {
		return err
	}
	c.logger.Info("exchange deleted", "user_id", userID, "exchange_id", exchangeID)
	return nil
}

// Stats aggregates the user's scheduling activity.
func (c *chatUsecase) Stats(ctx context.Context, userID string) (*entity.UserStats, error) {
	stats, err := c.chatRepo.StatsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}
	return stats, nil
}
