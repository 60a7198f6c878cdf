// Package schedule defines the structured schedule produced from model
// output and the lenient parser that extracts it. The model is an
// unreliable upstream: malformed input downgrades to a plain message,
// never an error.
package schedule

import "github.com/bytedance/sonic"

// Type is the kind of schedule generated.
type Type string

const (
	TypeDaily  Type = "daily"
	TypeWeekly Type = "weekly"
	TypeCustom Type = "custom"
)

// Category classifies an event. Unknown values fall back to CategoryWork.
type Category string

const (
	CategoryWork      Category = "work"
	CategoryPersonal  Category = "personal"
	CategoryHealth    Category = "health"
	CategoryEducation Category = "education"
	CategorySocial    Category = "social"
)

// Priority ranks an event. Unknown values fall back to PriorityMedium.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DateRange bounds a schedule. Dates are YYYY-MM-DD strings.
type DateRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Event is a single calendar entry.
type Event struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	// Invalid marks an event whose start time is after its end time.
	// Such events are kept, not rejected.
	Invalid bool `json:"invalid,omitempty"`
}

// Schedule is a structured set of calendar events derived from a model
// response. Events may be empty; that renders as "no events", not an error.
type Schedule struct {
	Message     string     `json:"message,omitempty"`
	Type        Type       `json:"schedule_type"`
	DateRange   *DateRange `json:"date_range,omitempty"`
	Events      []Event    `json:"events"`
	Suggestions []string   `json:"suggestions,omitempty"`
}

// Text renders the schedule as canonical JSON. Parse(s.Text()) yields an
// equivalent schedule.
func (s *Schedule) Text() string {
	data, err := sonic.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data)
}

func validType(t Type) bool {
	switch t {
	case TypeDaily, TypeWeekly, TypeCustom:
		return true
	}
	return false
}

func validCategory(c Category) bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryHealth, CategoryEducation, CategorySocial:
		return true
	}
	return false
}

func validPriority(p Priority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
