package dto

import (
	"time"

	"github.com/MADANW/MuhsinAI/internal/domain"
	"github.com/MADANW/MuhsinAI/internal/domain/entity"
	"github.com/MADANW/MuhsinAI/internal/schedule"
)

// SendRequest is the HTTP chat payload.
type SendRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// ExchangeResponse is one prompt/response pair on the wire. Schedule is
// null for plain conversational turns.
type ExchangeResponse struct {
	ID        string             `json:"id"`
	Prompt    string             `json:"prompt"`
	Message   string             `json:"message"`
	Schedule  *schedule.Schedule `json:"schedule,omitempty"`
	NotSaved  bool               `json:"not_saved,omitempty"`
	CreatedAt string             `json:"created_at"`
}

// HistoryResponse is one page of exchanges, newest first. Clients decide
// whether more pages exist from items length and total_count.
type HistoryResponse struct {
	Items      []*ExchangeResponse `json:"items"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalCount int                 `json:"total_count"`
}

// StatsResponse aggregates a user's scheduling activity.
type StatsResponse struct {
	TotalExchanges    int            `json:"total_exchanges"`
	TotalSchedules    int            `json:"total_schedules"`
	CategoryUsage     map[string]int `json:"category_usage"`
	AvgEventsPerSched float64        `json:"avg_events_per_schedule"`
	FirstExchangeAt   *string        `json:"first_exchange_at,omitempty"`
	LastExchangeAt    *string        `json:"last_exchange_at,omitempty"`
}

// ToExchangeResponse converts an exchange to its wire form. The message
// shown for historical exchanges is the schedule message when present,
// otherwise the raw reply.
func ToExchangeResponse(ex *entity.Exchange) *ExchangeResponse {
	msg := ex.RawResponse
	if ex.Schedule != nil && ex.Schedule.Message != "" {
		msg = ex.Schedule.Message
	}
	return &ExchangeResponse{
		ID:        ex.ID,
		Prompt:    ex.Prompt,
		Message:   msg,
		Schedule:  ex.Schedule,
		CreatedAt: ex.CreatedAt.Format(time.RFC3339),
	}
}

// ToSendResponse converts a completed send, carrying the parsed message
// and the not-saved flag.
func ToSendResponse(resp *domain.SendResponse) *ExchangeResponse {
	out := ToExchangeResponse(resp.Exchange)
	out.Message = resp.Message
	out.NotSaved = resp.NotSaved
	return out
}

// ToHistoryResponse converts a history page.
func ToHistoryResponse(page *domain.HistoryPage) *HistoryResponse {
	items := make([]*ExchangeResponse, len(page.Items))
	for i, ex := range page.Items {
		items[i] = ToExchangeResponse(ex)
	}
	return &HistoryResponse{
		Items:      items,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalCount: page.TotalCount,
	}
}

// ToStatsResponse converts user stats.
func ToStatsResponse(stats *entity.UserStats) *StatsResponse {
	resp := &StatsResponse{
		TotalExchanges:    stats.TotalExchanges,
		TotalSchedules:    stats.TotalSchedules,
		CategoryUsage:     stats.CategoryUsage,
		AvgEventsPerSched: stats.AvgEventsPerSched,
	}
	if stats.FirstExchangeAt != nil {
		s := stats.FirstExchangeAt.Format(time.RFC3339)
		resp.FirstExchangeAt = &s
	}
	if stats.LastExchangeAt != nil {
		s := stats.LastExchangeAt.Format(time.RFC3339)
		resp.LastExchangeAt = &s
	}
	return resp
}
