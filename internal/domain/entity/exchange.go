package entity

import (
	"time"

	"github.com/MADANW/MuhsinAI/internal/schedule"
)

// Exchange is one persisted prompt/response pair. It belongs to exactly one
// user and is immutable once persisted, except for deletion.
type Exchange struct {
	ID          string
	UserID      string
	Prompt      string
	RawResponse string
	// Schedule is the parsed structured schedule, nil when the model reply
	// carried no parseable schedule (a plain conversational turn).
	Schedule  *schedule.Schedule
	CreatedAt time.Time
}

// UserStats aggregates a user's scheduling activity.
type UserStats struct {
	TotalExchanges    int
	TotalSchedules    int
	CategoryUsage     map[string]int
	AvgEventsPerSched float64
	FirstExchangeAt   *time.Time
	LastExchangeAt    *time.Time
}
