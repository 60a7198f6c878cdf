package schedule

import (
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func TestParsePlainConversation(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no json at all", "Sure! A good morning routine starts with waking up early."},
		{"empty input", ""},
		{"json without markers", `Here you go: {"foo": "bar"}`},
		{"json missing events", `{"schedule_type": "daily", "message": "hi"}`},
		{"json missing schedule_type", `{"events": [], "message": "hi"}`},
		{"unbalanced braces", `{"schedule_type": "daily", "events": [`},
		{"malformed json with markers", `{"schedule_type": daily, "events": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parseAt(tt.raw, testNow)
			if res.IsSchedule() {
				t.Fatalf("expected plain message, got schedule: %+v", res.Schedule)
			}
			if res.Message != strings.TrimSpace(tt.raw) {
				t.Errorf("Message = %q, want raw text %q", res.Message, tt.raw)
			}
		})
	}
}

func TestParseWellFormedSchedule(t *testing.T) {
	raw := `{
		"message": "Here is your Monday plan.",
		"schedule_type": "daily",
		"date_range": {"start_date": "2025-03-10", "end_date": "2025-03-10"},
		"events": [
			{"title": "Standup", "description": "Team sync", "date": "2025-03-10",
			 "start_time": "09:30", "end_time": "09:45", "category": "work", "priority": "high"}
		],
		"suggestions": ["Block focus time after lunch"]
	}`

	res := parseAt(raw, testNow)
	if !res.IsSchedule() {
		t.Fatalf("expected schedule, got plain message %q", res.Message)
	}
	if len(res.Defaulted) != 0 {
		t.Errorf("Defaulted = %v, want none", res.Defaulted)
	}

	s := res.Schedule
	if s.Type != TypeDaily {
		t.Errorf("Type = %q, want daily", s.Type)
	}
	if s.Message != "Here is your Monday plan." || res.Message != s.Message {
		t.Errorf("Message = %q / %q", s.Message, res.Message)
	}
	if len(s.Events) != 1 {
		t.Fatalf("Events = %d, want 1", len(s.Events))
	}
	ev := s.Events[0]
	if ev.Title != "Standup" || ev.Category != CategoryWork || ev.Priority != PriorityHigh {
		t.Errorf("event = %+v", ev)
	}
	if ev.Invalid {
		t.Error("event flagged invalid, times are ordered")
	}
	if len(s.Suggestions) != 1 {
		t.Errorf("Suggestions = %v", s.Suggestions)
	}
}

func TestParseExtractsEmbeddedObject(t *testing.T) {
	raw := "Sure, here's the plan:\n" +
		`{"schedule_type": "weekly", "date_range": {"start_date": "2025-03-10", "end_date": "2025-03-16"}, "events": []}` +
		"\nLet me know if you want changes."

	res := parseAt(raw, testNow)
	if !res.IsSchedule() {
		t.Fatalf("expected schedule extracted from surrounding prose, got %q", res.Message)
	}
	if res.Schedule.Type != TypeWeekly {
		t.Errorf("Type = %q, want weekly", res.Schedule.Type)
	}
	if len(res.Schedule.Events) != 0 {
		t.Errorf("Events = %d, want 0", len(res.Schedule.Events))
	}
}

func TestParseBracesInsideStrings(t *testing.T) {
	raw := `{"schedule_type": "daily", "message": "use {curly} notes", "date_range": {"start_date": "2025-03-10", "end_date": "2025-03-11"}, "events": []}`
	res := parseAt(raw, testNow)
	if !res.IsSchedule() {
		t.Fatalf("brace inside string broke extraction: %q", res.Message)
	}
	if res.Schedule.Message != "use {curly} notes" {
		t.Errorf("Message = %q", res.Schedule.Message)
	}
}

func TestParseDefaultsMissingFields(t *testing.T) {
	raw := `{"schedule_type": "fortnightly", "events": [
		{"title": "Gym"},
		{"description": "no title, dropped"},
		{"title": "Review", "category": "finance", "priority": "urgent"}
	]}`

	res := parseAt(raw, testNow)
	if !res.IsSchedule() {
		t.Fatalf("expected schedule, got %q", res.Message)
	}
	s := res.Schedule

	if s.Type != TypeCustom {
		t.Errorf("unknown schedule_type should default to custom, got %q", s.Type)
	}
	if s.DateRange == nil || s.DateRange.StartDate != "2025-03-10" || s.DateRange.EndDate != "2025-03-11" {
		t.Errorf("DateRange = %+v, want today..tomorrow", s.DateRange)
	}
	if len(s.Events) != 2 {
		t.Fatalf("Events = %d, want 2 (untitled dropped)", len(s.Events))
	}

	gym := s.Events[0]
	if gym.Date != "2025-03-10" || gym.StartTime != "09:00" || gym.EndTime != "10:00" {
		t.Errorf("gym defaults = %+v", gym)
	}
	if gym.Category != CategoryWork {
		t.Errorf("missing category should default to work, got %q", gym.Category)
	}
	if gym.Priority != PriorityMedium {
		t.Errorf("missing priority should default to medium, got %q", gym.Priority)
	}

	review := s.Events[1]
	if review.Category != CategoryWork || review.Priority != PriorityMedium {
		t.Errorf("out-of-range enums should default, got %+v", review)
	}

	if s.Message != "I've created a schedule for you!" || res.Message != s.Message {
		t.Errorf("missing message should take canned text, got %q", s.Message)
	}

	wantDefaulted := []string{
		"schedule_type", "date_range",
		"events[0].date", "events[0].start_time", "events[0].end_time",
		"events[0].category", "events[0].priority",
		"events[2].date", "events[2].start_time", "events[2].end_time",
		"events[2].category", "events[2].priority",
	}
	if len(res.Defaulted) != len(wantDefaulted) {
		t.Fatalf("Defaulted = %v, want %v", res.Defaulted, wantDefaulted)
	}
	for i, f := range wantDefaulted {
		if res.Defaulted[i] != f {
			t.Errorf("Defaulted[%d] = %q, want %q", i, res.Defaulted[i], f)
		}
	}
}

func TestParseFlagsReversedTimes(t *testing.T) {
	raw := `{"schedule_type": "daily", "date_range": {"start_date": "2025-03-10", "end_date": "2025-03-10"}, "events": [
		{"title": "Backwards", "date": "2025-03-10", "start_time": "14:00", "end_time": "13:00", "category": "personal", "priority": "low"},
		{"title": "Fine", "date": "2025-03-10", "start_time": "13:00", "end_time": "14:00", "category": "personal", "priority": "low"}
	]}`

	res := parseAt(raw, testNow)
	if !res.IsSchedule() {
		t.Fatalf("expected schedule, got %q", res.Message)
	}
	if !res.Schedule.Events[0].Invalid {
		t.Error("reversed times should flag the event, not drop it")
	}
	if res.Schedule.Events[1].Invalid {
		t.Error("ordered times wrongly flagged")
	}
}

func TestParseRoundTrip(t *testing.T) {
	raw := `{"message": "plan", "schedule_type": "custom", "date_range": {"start_date": "2025-03-10", "end_date": "2025-03-12"}, "events": [
		{"title": "Deep work", "date": "2025-03-11", "start_time": "08:00", "end_time": "11:00", "category": "work", "priority": "high"}
	], "suggestions": ["take breaks"]}`

	first := parseAt(raw, testNow)
	if !first.IsSchedule() {
		t.Fatal("first parse failed")
	}

	second := parseAt(first.Schedule.Text(), testNow)
	if !second.IsSchedule() {
		t.Fatal("canonical text did not parse back to a schedule")
	}
	if len(second.Defaulted) != 0 {
		t.Errorf("round trip introduced defaults: %v", second.Defaulted)
	}
	if second.Schedule.Text() != first.Schedule.Text() {
		t.Errorf("round trip not stable:\n%s\n%s", first.Schedule.Text(), second.Schedule.Text())
	}
}

func TestLooksLikeTime(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	invalid := []string{"9:30", "0930", "ab:cd", "09-30", "09:300", ""}
	for _, s := range valid {
		if !looksLikeTime(s) {
			t.Errorf("looksLikeTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if looksLikeTime(s) {
			t.Errorf("looksLikeTime(%q) = true, want false", s)
		}
	}
}
