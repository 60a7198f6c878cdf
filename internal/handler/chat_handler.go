package handler

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/MADANW/MuhsinAI/internal/domain"
	"github.com/MADANW/MuhsinAI/internal/handler/dto"
	"github.com/MADANW/MuhsinAI/internal/probe"
)

// ChatHandler handles conversational scheduling HTTP requests.
type ChatHandler struct {
	usecase domain.ChatUsecase
	prober  *probe.Prober
	logger  *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(usecase domain.ChatUsecase, prober *probe.Prober, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		usecase: usecase,
		prober:  prober,
		logger:  logger,
	}
}

// Send runs one prompt through the model and returns the parsed exchange.
// A persistence failure after a successful model call still returns the
// reply, flagged not_saved, because losing a paid-for completion helps
// nobody.
// POST /api/v1/chat
func (h *ChatHandler) Send(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, domain.ErrUnauthorized)
		return
	}

	var req dto.SendRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Error("invalid chat request", "error", err)
		ErrorResponse(c, domain.NewInvalidInputError("invalid request body"))
		return
	}

	resp, err := h.usecase.Send(ctx, &domain.SendRequest{
		UserID: userID,
		Prompt: req.Prompt,
	})
	if err != nil && !domain.IsNotSaved(err) {
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ToSendResponse(resp))
}

// History returns a page of the user's exchanges, newest first
// GET /api/v1/chat/history?page=1&page_size=20
func (h *ChatHandler) History(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, domain.ErrUnauthorized)
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil {
		pageSize = 20
	}

	history, err := h.usecase.ListHistory(ctx, userID, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list history", "error", err, "user_id", userID)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ToHistoryResponse(history))
}

// Show returns one of the user's exchanges in full. Someone else's
// exchange reports forbidden, a missing one not found.
// GET /api/v1/chat/history/:id
func (h *ChatHandler) Show(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, domain.ErrUnauthorized)
		return
	}

	exchangeID := c.Param("id")
	if exchangeID == "" {
		ErrorResponse(c, domain.NewInvalidInputError("exchange id required"))
		return
	}

	ex, err := h.usecase.GetExchange(ctx, userID, exchangeID)
	if err != nil {
		h.logger.Error("failed to get exchange", "error", err, "user_id", userID, "exchange_id", exchangeID)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ToExchangeResponse(ex))
}

// Delete removes one of the user's exchanges. Someone else's exchange
// reports forbidden, a missing one not found.
// DELETE /api/v1/chat/history/:id
func (h *ChatHandler) Delete(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, domain.ErrUnauthorized)
		return
	}

	exchangeID := c.Param("id")
	if exchangeID == "" {
		ErrorResponse(c, domain.NewInvalidInputError("exchange id required"))
		return
	}

	if err := h.usecase.DeleteExchange(ctx, userID, exchangeID); err != nil {
		h.logger.Error("failed to delete exchange", "error", err, "user_id", userID, "exchange_id", exchangeID)
		ErrorResponse(c, err)
		return
	}

	NoContentResponse(c)
}

// Probe checks model service connectivity. Advisory only; a failed probe
// does not stop anyone from sending.
// GET /api/v1/chat/probe
func (h *ChatHandler) Probe(ctx context.Context, c *app.RequestContext) {
	status := h.prober.Check(ctx)
	SuccessResponse(c, status)
}

// Stats aggregates the user's scheduling activity
// GET /api/v1/users/me/stats
func (h *ChatHandler) Stats(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUserID(c)
	if !ok {
		ErrorResponse(c, domain.ErrUnauthorized)
		return
	}

	stats, err := h.usecase.Stats(ctx, userID)
	if err != nil {
		h.logger.Error("failed to get stats", "error", err, "user_id", userID)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ToStatsResponse(stats))
}
