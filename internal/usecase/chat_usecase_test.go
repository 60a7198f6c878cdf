package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MADANW/MuhsinAI/internal/domain"
	"github.com/MADANW/MuhsinAI/internal/domain/entity"
)

// In-memory ChatRepository with injectable failures.
type testChatRepository struct {
	exchanges []*entity.Exchange
	createErr error
}

func (r *testChatRepository) CreateExchange(ctx context.Context, ex *entity.Exchange) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.exchanges = append(r.exchanges, ex)
	return nil
}

func (r *testChatRepository) GetExchange(ctx context.Context, id string) (*entity.Exchange, error) {
	for _, ex := range r.exchanges {
		if ex.ID == id {
			return ex, nil
		}
	}
	return nil, domain.NewNotFoundError("Exchange", id)
}

func (r *testChatRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*entity.Exchange, error) {
	var owned []*entity.Exchange
	for _, ex := range r.exchanges {
		if ex.UserID == userID {
			owned = append(owned, ex)
		}
	}
	if offset >= len(owned) {
		return nil, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], nil
}

func (r *testChatRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	n := 0
	for _, ex := range r.exchanges {
		if ex.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *testChatRepository) DeleteExchange(ctx context.Context, id, userID string) error {
	for i, ex := range r.exchanges {
		if ex.ID != id {
			continue
		}
		if ex.UserID != userID {
			return domain.NewForbiddenError("exchange belongs to another user")
		}
		r.exchanges = append(r.exchanges[:i], r.exchanges[i+1:]...)
		return nil
	}
	return domain.NewNotFoundError("Exchange", id)
}

func (r *testChatRepository) StatsByUser(ctx context.Context, userID string) (*entity.UserStats, error) {
	return &entity.UserStats{CategoryUsage: map[string]int{}}, nil
}

// Canned model client.
type testModelClient struct {
	reply string
	err   error
}

func (c *testModelClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func (c *testModelClient) Ping(ctx context.Context) error {
	return c.err
}

const scheduleReply = `{"message": "Your day is planned.", "schedule_type": "daily",
	"date_range": {"start_date": "2025-03-10", "end_date": "2025-03-10"},
	"events": [{"title": "Standup", "date": "2025-03-10", "start_time": "09:00",
	"end_time": "09:15", "category": "work", "priority": "high"}]}`

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("schedule reply is parsed and persisted", func(t *testing.T) {
		repo := &testChatRepository{}
		uc := NewChatUsecase(repo, &testModelClient{reply: scheduleReply}, testLogger())

		resp, err := uc.Send(ctx, &domain.SendRequest{UserID: "u1", Prompt: "plan my day"})
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		if resp.Exchange.Schedule == nil {
			t.Fatal("schedule not parsed")
		}
		if resp.Message != "Your day is planned." {
			t.Errorf("Message = %q", resp.Message)
		}
		if resp.NotSaved {
			t.Error("NotSaved set on successful persist")
		}
		if len(repo.exchanges) != 1 {
			t.Fatalf("persisted %d exchanges, want 1", len(repo.exchanges))
		}
		if repo.exchanges[0].RawResponse != scheduleReply {
			t.Error("raw response not stored verbatim")
		}
	})

	t.Run("study plan yields five education events", func(t *testing.T) {
		reply := `Here is your plan: {"message": "Study week planned.", "schedule_type": "weekly",
			"date_range": {"start_date": "2025-03-10", "end_date": "2025-03-16"},
			"events": [
				{"title": "Math", "date": "2025-03-10", "start_time": "09:00", "end_time": "15:00", "category": "education", "priority": "high"},
				{"title": "Physics", "date": "2025-03-11", "start_time": "09:00", "end_time": "15:00", "category": "education", "priority": "high"},
				{"title": "Chemistry", "date": "2025-03-12", "start_time": "09:00", "end_time": "15:00", "category": "education", "priority": "medium"},
				{"title": "History", "date": "2025-03-13", "start_time": "09:00", "end_time": "15:00", "category": "education", "priority": "medium"},
				{"title": "Review", "date": "2025-03-14", "start_time": "09:00", "end_time": "15:00", "category": "education", "priority": "low"}
			]}`
		repo := &testChatRepository{}
		uc := NewChatUsecase(repo, &testModelClient{reply: reply}, testLogger())

		resp, err := uc.Send(ctx, &domain.SendRequest{
			UserID: "u1",
			Prompt: "Plan a study schedule for next week with 6 hours daily",
		})
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		sched := resp.Exchange.Schedule
		if sched == nil {
			t.Fatal("schedule not parsed")
		}
		if len(sched.Events) != 5 {
			t.Fatalf("events = %d, want 5", len(sched.Events))
		}
		for _, ev := range sched.Events {
			if string(ev.Category) != "education" {
				t.Errorf("event %q category = %q, want education", ev.Title, ev.Category)
			}
		}
	})

	t.Run("plain reply stays conversational", func(t *testing.T) {
		repo := &testChatRepository{}
		uc := NewChatUsecase(repo, &testModelClient{reply: "Paris is the capital of France."}, testLogger())

		resp, err := uc.Send(ctx, &domain.SendRequest{UserID: "u1", Prompt: "capital of France?"})
		if err != nil {
			t.Fatalf("Send failed: %v", err)
		}
		if resp.Exchange.Schedule != nil {
			t.Error("plain reply produced a schedule")
		}
		if resp.Message != "Paris is the capital of France." {
			t.Errorf("Message = %q", resp.Message)
		}
	})

	t.Run("prompt validation happens before the model call", func(t *testing.T) {
		model := &testModelClient{err: errors.New("must not be reached")}
		uc := NewChatUsecase(&testChatRepository{}, model, testLogger())

		if _, err := uc.Send(ctx, &domain.SendRequest{UserID: "u1", Prompt: "   "}); !domain.IsInvalidInput(err) {
			t.Errorf("empty prompt error = %v, want invalid-input", err)
		}
		long := strings.Repeat("a", maxPromptLen+1)
		if _, err := uc.Send(ctx, &domain.SendRequest{UserID: "u1", Prompt: long}); !domain.IsInvalidInput(err) {
			t.Errorf("long prompt error = %v, want invalid-input", err)
		}
	})

	t.Run("model failure propagates", func(t *testing.T) {
		model := &testModelClient{err: domain.NewModelUnavailableError(errors.New("timeout"))}
		repo := &testChatRepository{}
		uc := NewChatUsecase(repo, model, testLogger())

		resp, err := uc.Send(ctx, &domain.SendRequest{UserID: "u1", Prompt: "plan my day"})
		if !domain.IsModelUnavailable(err) {
			t.Errorf("error = %v, want model-unavailable", err)
		}
		if resp != nil {
			t.Error("no response expected when the model fails")
		}
		if len(repo.exchanges) != 0 {
			t.Error("nothing should be persisted when the model fails")
		}
	})

	t.Run("persist failure returns reply flagged unsaved", func(t *testing.T) {
		repo := &testChatRepository{createErr: errors.New("disk full")}
		uc := NewChatUsecase(repo, &testModelClient{reply: scheduleReply}, testLogger())

		resp, err := uc.Send(ctx, &domain.SendRequest{UserID: "u1", Prompt: "plan my day"})
		if !domain.IsNotSaved(err) {
			t.Fatalf("error = %v, want not-saved", err)
		}
		if resp == nil || !resp.NotSaved {
			t.Fatalf("response should carry the unsaved reply, got %+v", resp)
		}
		if resp.Exchange.Schedule == nil {
			t.Error("unsaved response lost its schedule")
		}
	})
}

func TestListHistory(t *testing.T) {
	ctx := context.Background()
	repo := &testChatRepository{}
	uc := NewChatUsecase(repo, &testModelClient{reply: "ok"}, testLogger())

	for i := 0; i < 25; i++ {
		repo.exchanges = append(repo.exchanges, &entity.Exchange{
			ID: strings.Repeat("x", i+1), UserID: "u1", Prompt: "p",
		})
	}

	t.Run("defaults applied to out-of-range paging", func(t *testing.T) {
		page, err := uc.ListHistory(ctx, "u1", 0, 0)
		if err != nil {
			t.Fatalf("ListHistory failed: %v", err)
		}
		if page.Page != 1 || page.PageSize != defaultPageSize {
			t.Errorf("page = %d size = %d, want 1/%d", page.Page, page.PageSize, defaultPageSize)
		}
		if len(page.Items) != defaultPageSize {
			t.Errorf("items = %d, want %d", len(page.Items), defaultPageSize)
		}
		if page.TotalCount != 25 {
			t.Errorf("TotalCount = %d, want 25", page.TotalCount)
		}
	})

	t.Run("oversized page size clamped", func(t *testing.T) {
		page, err := uc.ListHistory(ctx, "u1", 1, maxPageSize+1)
		if err != nil {
			t.Fatalf("ListHistory failed: %v", err)
		}
		if page.PageSize != defaultPageSize {
			t.Errorf("PageSize = %d, want default", page.PageSize)
		}
	})

	t.Run("past-the-end page is empty not an error", func(t *testing.T) {
		page, err := uc.ListHistory(ctx, "u1", 99, 10)
		if err != nil {
			t.Fatalf("ListHistory failed: %v", err)
		}
		if len(page.Items) != 0 {
			t.Errorf("items = %d, want 0", len(page.Items))
		}
	})
}

func TestGetExchange(t *testing.T) {
	ctx := context.Background()
	repo := &testChatRepository{exchanges: []*entity.Exchange{
		{ID: "ex1", UserID: "u1", Prompt: "plan my day"},
	}}
	uc := NewChatUsecase(repo, &testModelClient{}, testLogger())

	ex, err := uc.GetExchange(ctx, "u1", "ex1")
	if err != nil {
		t.Fatalf("GetExchange failed: %v", err)
	}
	if ex.Prompt != "plan my day" {
		t.Errorf("Prompt = %q", ex.Prompt)
	}

	if _, err := uc.GetExchange(ctx, "u2", "ex1"); !domain.IsForbidden(err) {
		t.Errorf("cross-user get error = %v, want forbidden", err)
	}
	if _, err := uc.GetExchange(ctx, "u1", "ghost"); !domain.IsNotFound(err) {
		t.Errorf("missing exchange error = %v, want not-found", err)
	}
	if _, err := uc.GetExchange(ctx, "u1", "  "); !domain.IsInvalidInput(err) {
		t.Errorf("blank id error = %v, want invalid-input", err)
	}
}

func TestDeleteExchange(t *testing.T) {
	ctx := context.Background()
	repo := &testChatRepository{exchanges: []*entity.Exchange{
		{ID: "ex1", UserID: "u1"},
	}}
	uc := NewChatUsecase(repo, &testModelClient{}, testLogger())

	if err := uc.DeleteExchange(ctx, "u2", "ex1"); !domain.IsForbidden(err) {
		t.Errorf("cross-user delete error = %v, want forbidden", err)
	}
	if err := uc.DeleteExchange(ctx, "u1", ""); !domain.IsInvalidInput(err) {
		t.Errorf("blank id error = %v, want invalid-input", err)
	}
	if err := uc.DeleteExchange(ctx, "u1", "ex1"); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
	if len(repo.exchanges) != 0 {
		t.Error("exchange not removed")
	}
}
