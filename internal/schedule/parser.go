package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// Result is the outcome of interpreting a model reply. Exactly one of the
// two shapes applies: Schedule is non-nil for a structured schedule, nil
// for a plain conversational turn. Message always carries the text to show.
type Result struct {
	Schedule *Schedule
	Message  string
	// Defaulted lists fields that were missing or out of range and were
	// coerced to their defaults. Callers log these; the user never sees them.
	Defaulted []string
}

// IsSchedule reports whether the reply contained a parseable schedule.
func (r Result) IsSchedule() bool {
	return r.Schedule != nil
}

// Parse interprets raw model output. It never fails: anything that is not
// a recognizable schedule object becomes a plain message with the raw text.
func Parse(raw string) Result {
	return parseAt(raw, time.Now())
}

func parseAt(raw string, now time.Time) Result {
	obj, ok := extractObject(raw)
	if !ok {
		return Result{Message: strings.TrimSpace(raw)}
	}

	var data map[string]any
	if err := sonic.Unmarshal([]byte(obj), &data); err != nil {
		return Result{Message: strings.TrimSpace(raw)}
	}

	// A schedule must carry both markers; any other JSON in the reply is
	// treated as conversation.
	if _, hasType := data["schedule_type"]; !hasType {
		return Result{Message: strings.TrimSpace(raw)}
	}
	if _, hasEvents := data["events"]; !hasEvents {
		return Result{Message: strings.TrimSpace(raw)}
	}

	sched, defaulted := coerce(data, now)
	msg := sched.Message
	if msg == "" {
		msg = "I've created a schedule for you!"
		sched.Message = msg
	}
	return Result{Schedule: sched, Message: msg, Defaulted: defaulted}
}

// extractObject returns the first balanced JSON object embedded in s.
// The scan is string-aware so braces inside quoted values do not count.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	for start >= 0 {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(s); i++ {
			c := s[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
		// Unbalanced from this position; try the next opening brace.
		next := strings.IndexByte(s[start+1:], '{')
		if next < 0 {
			break
		}
		start = start + 1 + next
	}
	return "", false
}

// coerce sanitizes a decoded schedule object. Missing or out-of-range
// fields take defaults rather than failing; every substitution is recorded.
func coerce(data map[string]any, now time.Time) (*Schedule, []string) {
	var defaulted []string

	sched := &Schedule{
		Message: asString(data["message"]),
	}

	sched.Type = Type(asString(data["schedule_type"]))
	if !validType(sched.Type) {
		sched.Type = TypeCustom
		defaulted = append(defaulted, "schedule_type")
	}

	sched.DateRange = coerceDateRange(data["date_range"], now, &defaulted)

	events, ok := data["events"].([]any)
	if !ok {
		events = nil
		if data["events"] != nil {
			defaulted = append(defaulted, "events")
		}
	}
	sched.Events = make([]Event, 0, len(events))
	for i, raw := range events {
		ev, ok := coerceEvent(raw, i, now, &defaulted)
		if !ok {
			continue
		}
		sched.Events = append(sched.Events, ev)
	}

	if raw, ok := data["suggestions"].([]any); ok {
		for _, s := range raw {
			if str := asString(s); str != "" {
				sched.Suggestions = append(sched.Suggestions, str)
			}
		}
	}

	return sched, defaulted
}

func coerceDateRange(v any, now time.Time, defaulted *[]string) *DateRange {
	m, ok := v.(map[string]any)
	if ok {
		start := asString(m["start_date"])
		end := asString(m["end_date"])
		if start != "" && end != "" {
			return &DateRange{StartDate: start, EndDate: end}
		}
	}
	*defaulted = append(*defaulted, "date_range")
	return &DateRange{
		StartDate: now.Format("2006-01-02"),
		EndDate:   now.AddDate(0, 0, 1).Format("2006-01-02"),
	}
}

func coerceEvent(v any, idx int, now time.Time, defaulted *[]string) (Event, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Event{}, false
	}
	title := asString(m["title"])
	if title == "" {
		// An event without a title is structurally unusable; drop it.
		return Event{}, false
	}

	ev := Event{
		Title:       title,
		Description: asString(m["description"]),
		Date:        asString(m["date"]),
		StartTime:   asString(m["start_time"]),
		EndTime:     asString(m["end_time"]),
		Category:    Category(asString(m["category"])),
		Priority:    Priority(asString(m["priority"])),
	}

	field := func(name string) string {
		return fmt.Sprintf("events[%d].%s", idx, name)
	}

	if ev.Date == "" {
		ev.Date = now.Format("2006-01-02")
		*defaulted = append(*defaulted, field("date"))
	}
	if ev.StartTime == "" {
		ev.StartTime = "09:00"
		*defaulted = append(*defaulted, field("start_time"))
	}
	if ev.EndTime == "" {
		ev.EndTime = "10:00"
		*defaulted = append(*defaulted, field("end_time"))
	}
	if !validCategory(ev.Category) {
		ev.Category = CategoryWork
		*defaulted = append(*defaulted, field("category"))
	}
	if !validPriority(ev.Priority) {
		ev.Priority = PriorityMedium
		*defaulted = append(*defaulted, field("priority"))
	}

	// HH:MM compares lexically. Only flag when both times are well formed;
	// anything else was already defaulted or is left for display as-is.
	if looksLikeTime(ev.StartTime) && looksLikeTime(ev.EndTime) && ev.StartTime > ev.EndTime {
		ev.Invalid = true
	}

	return ev, true
}

func looksLikeTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case nil:
		return ""
	case float64:
		return strings.TrimSpace(fmt.Sprintf("%v", s))
	default:
		return ""
	}
}
