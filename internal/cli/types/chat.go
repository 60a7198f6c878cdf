package types

// DateRange bounds a schedule.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Event is one calendar entry of a schedule.
type Event struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Invalid     bool   `json:"invalid,omitempty"`
}

// Schedule is the structured schedule attached to an exchange.
type Schedule struct {
	Message     string     `json:"message,omitempty"`
	Type        string     `json:"schedule_type"`
	DateRange   *DateRange `json:"date_range,omitempty"`
	Events      []Event    `json:"events"`
	Suggestions []string   `json:"suggestions,omitempty"`
}

// SendRequest represents the chat request payload
type SendRequest struct {
	Prompt string `json:"prompt"`
}

// Exchange is one prompt/response pair as the server returns it.
type Exchange struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Message   string    `json:"message"`
	Schedule  *Schedule `json:"schedule,omitempty"`
	NotSaved  bool      `json:"not_saved,omitempty"`
	CreatedAt string    `json:"created_at"`
}

// HistoryData is one page of exchanges, newest first.
type HistoryData struct {
	Items      []Exchange `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalCount int        `json:"total_count"`
}

// ProbeData is the model connectivity verdict.
type ProbeData struct {
	State     string `json:"state"`
	Error     string `json:"error,omitempty"`
	CheckedAt string `json:"checked_at"`
}

// StatsData aggregates scheduling activity.
type StatsData struct {
	TotalExchanges    int            `json:"total_exchanges"`
	TotalSchedules    int            `json:"total_schedules"`
	CategoryUsage     map[string]int `json:"category_usage"`
	AvgEventsPerSched float64        `json:"avg_events_per_schedule"`
	FirstExchangeAt   *string        `json:"first_exchange_at,omitempty"`
	LastExchangeAt    *string        `json:"last_exchange_at,omitempty"`
}
