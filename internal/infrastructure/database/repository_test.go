package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MADANW/MuhsinAI/internal/config"
	"github.com/MADANW/MuhsinAI/internal/domain"
	"github.com/MADANW/MuhsinAI/internal/domain/entity"
	"github.com/MADANW/MuhsinAI/internal/schedule"
	appdb "github.com/MADANW/MuhsinAI/pkg/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := appdb.Open(config.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1}, logger)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *entity.User {
	t.Helper()
	u, err := NewUserRepository(db).Create(context.Background(), email, "hash")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db)

	t.Run("create and get", func(t *testing.T) {
		created, err := repo.Create(ctx, "a@example.com", "hash-a")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if created.ID == "" {
			t.Error("Create returned empty ID")
		}

		byEmail, err := repo.GetByEmail(ctx, "a@example.com")
		if err != nil {
			t.Fatalf("GetByEmail failed: %v", err)
		}
		if byEmail.ID != created.ID || byEmail.PasswordHash != "hash-a" {
			t.Errorf("GetByEmail = %+v, want %+v", byEmail, created)
		}

		byID, err := repo.GetByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if byID.Email != "a@example.com" {
			t.Errorf("GetByID email = %q", byID.Email)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		if _, err := repo.Create(ctx, "dup@example.com", "h1"); err != nil {
			t.Fatalf("first Create failed: %v", err)
		}
		_, err := repo.Create(ctx, "dup@example.com", "h2")
		if !domain.IsAlreadyExists(err) {
			t.Errorf("duplicate email error = %v, want already-exists", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if _, err := repo.GetByEmail(ctx, "ghost@example.com"); !domain.IsNotFound(err) {
			t.Errorf("GetByEmail error = %v, want not-found", err)
		}
		if _, err := repo.GetByID(ctx, uuid.NewString()); !domain.IsNotFound(err) {
			t.Errorf("GetByID error = %v, want not-found", err)
		}
	})

	t.Run("update email", func(t *testing.T) {
		u := createTestUser(t, db, "before@example.com")
		if err := repo.UpdateEmail(ctx, u.ID, "after@example.com"); err != nil {
			t.Fatalf("UpdateEmail failed: %v", err)
		}
		after, err := repo.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if after.Email != "after@example.com" {
			t.Errorf("email = %q, want after@example.com", after.Email)
		}

		taken := createTestUser(t, db, "held@example.com")
		if err := repo.UpdateEmail(ctx, u.ID, taken.Email); !domain.IsAlreadyExists(err) {
			t.Errorf("taken email error = %v, want already-exists", err)
		}
		if err := repo.UpdateEmail(ctx, uuid.NewString(), "nobody@example.com"); !domain.IsNotFound(err) {
			t.Errorf("unknown user error = %v, want not-found", err)
		}
	})

	t.Run("update password", func(t *testing.T) {
		u := createTestUser(t, db, "pw@example.com")
		if err := repo.UpdatePassword(ctx, u.ID, "new-hash"); err != nil {
			t.Fatalf("UpdatePassword failed: %v", err)
		}
		after, err := repo.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if after.PasswordHash != "new-hash" {
			t.Errorf("password hash = %q, want new-hash", after.PasswordHash)
		}
		if err := repo.UpdatePassword(ctx, uuid.NewString(), "h"); !domain.IsNotFound(err) {
			t.Errorf("unknown user error = %v, want not-found", err)
		}
	})

	t.Run("delete cascades to exchanges", func(t *testing.T) {
		u := createTestUser(t, db, "doomed@example.com")
		chatRepo := NewChatRepository(db)
		ex := newExchange(u.ID, "soon gone", time.Now().UTC(), nil)
		if err := chatRepo.CreateExchange(ctx, ex); err != nil {
			t.Fatalf("CreateExchange failed: %v", err)
		}

		if err := repo.Delete(ctx, u.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.GetByID(ctx, u.ID); !domain.IsNotFound(err) {
			t.Errorf("deleted user still readable: %v", err)
		}
		if _, err := chatRepo.GetExchange(ctx, ex.ID); !domain.IsNotFound(err) {
			t.Errorf("exchange survived its owner's deletion: %v", err)
		}
		if err := repo.Delete(ctx, u.ID); !domain.IsNotFound(err) {
			t.Errorf("double delete error = %v, want not-found", err)
		}
	})

	t.Run("update last login", func(t *testing.T) {
		u := createTestUser(t, db, "login@example.com")
		if u.LastLoginAt != nil {
			t.Error("fresh user should have nil LastLoginAt")
		}
		if err := repo.UpdateLastLogin(ctx, u.ID); err != nil {
			t.Fatalf("UpdateLastLogin failed: %v", err)
		}
		after, err := repo.GetByID(ctx, u.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if after.LastLoginAt == nil {
			t.Error("LastLoginAt still nil after update")
		}
		if err := repo.UpdateLastLogin(ctx, uuid.NewString()); !domain.IsNotFound(err) {
			t.Errorf("UpdateLastLogin unknown user error = %v, want not-found", err)
		}
	})
}

func newExchange(userID, prompt string, at time.Time, sched *schedule.Schedule) *entity.Exchange {
	return &entity.Exchange{
		ID:          uuid.NewString(),
		UserID:      userID,
		Prompt:      prompt,
		RawResponse: "raw model output",
		Schedule:    sched,
		CreatedAt:   at,
	}
}

func testSchedule(categories ...schedule.Category) *schedule.Schedule {
	s := &schedule.Schedule{
		Message: "plan",
		Type:    schedule.TypeDaily,
		Events:  []schedule.Event{},
	}
	for i, c := range categories {
		s.Events = append(s.Events, schedule.Event{
			Title:     fmt.Sprintf("event %d", i),
			Date:      "2025-03-10",
			StartTime: "09:00",
			EndTime:   "10:00",
			Category:  c,
			Priority:  schedule.PriorityMedium,
		})
	}
	return s
}

func TestChatRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewChatRepository(db)

	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")

	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		var sched *schedule.Schedule
		if i%2 == 0 {
			sched = testSchedule(schedule.CategoryWork, schedule.CategoryHealth)
		}
		ex := newExchange(owner.ID, fmt.Sprintf("prompt %d", i), base.Add(time.Duration(i)*time.Minute), sched)
		if err := repo.CreateExchange(ctx, ex); err != nil {
			t.Fatalf("CreateExchange failed: %v", err)
		}
		ids = append(ids, ex.ID)
	}
	if err := repo.CreateExchange(ctx, newExchange(other.ID, "other prompt", base, nil)); err != nil {
		t.Fatalf("CreateExchange for other user failed: %v", err)
	}

	t.Run("get preserves schedule", func(t *testing.T) {
		ex, err := repo.GetExchange(ctx, ids[0])
		if err != nil {
			t.Fatalf("GetExchange failed: %v", err)
		}
		if ex.Schedule == nil || len(ex.Schedule.Events) != 2 {
			t.Errorf("schedule not round-tripped: %+v", ex.Schedule)
		}
		ex2, err := repo.GetExchange(ctx, ids[1])
		if err != nil {
			t.Fatalf("GetExchange failed: %v", err)
		}
		if ex2.Schedule != nil {
			t.Error("plain exchange came back with a schedule")
		}
	})

	t.Run("list newest first with pagination", func(t *testing.T) {
		page, err := repo.ListByUser(ctx, owner.ID, 0, 2)
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(page) != 2 {
			t.Fatalf("page size = %d, want 2", len(page))
		}
		if page[0].Prompt != "prompt 4" || page[1].Prompt != "prompt 3" {
			t.Errorf("ordering wrong: %q, %q", page[0].Prompt, page[1].Prompt)
		}

		last, err := repo.ListByUser(ctx, owner.ID, 4, 2)
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(last) != 1 || last[0].Prompt != "prompt 0" {
			t.Errorf("last page = %+v", last)
		}

		empty, err := repo.ListByUser(ctx, owner.ID, 10, 2)
		if err != nil {
			t.Fatalf("ListByUser failed: %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("past-the-end page should be empty, got %d", len(empty))
		}
	})

	t.Run("count scoped to user", func(t *testing.T) {
		n, err := repo.CountByUser(ctx, owner.ID)
		if err != nil {
			t.Fatalf("CountByUser failed: %v", err)
		}
		if n != 5 {
			t.Errorf("count = %d, want 5", n)
		}
	})

	t.Run("delete enforces ownership", func(t *testing.T) {
		if err := repo.DeleteExchange(ctx, ids[2], other.ID); !domain.IsForbidden(err) {
			t.Errorf("cross-user delete error = %v, want forbidden", err)
		}
		if _, err := repo.GetExchange(ctx, ids[2]); err != nil {
			t.Fatalf("exchange should survive cross-user delete: %v", err)
		}

		if err := repo.DeleteExchange(ctx, ids[2], owner.ID); err != nil {
			t.Fatalf("owner delete failed: %v", err)
		}
		if _, err := repo.GetExchange(ctx, ids[2]); !domain.IsNotFound(err) {
			t.Errorf("deleted exchange still readable: %v", err)
		}

		if err := repo.DeleteExchange(ctx, ids[2], owner.ID); !domain.IsNotFound(err) {
			t.Errorf("double delete error = %v, want not-found", err)
		}
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := repo.StatsByUser(ctx, owner.ID)
		if err != nil {
			t.Fatalf("StatsByUser failed: %v", err)
		}
		// After the delete above: 4 exchanges, 2 with schedules of 2 events.
		if stats.TotalExchanges != 4 {
			t.Errorf("TotalExchanges = %d, want 4", stats.TotalExchanges)
		}
		if stats.TotalSchedules != 2 {
			t.Errorf("TotalSchedules = %d, want 2", stats.TotalSchedules)
		}
		if stats.AvgEventsPerSched != 2 {
			t.Errorf("AvgEventsPerSched = %v, want 2", stats.AvgEventsPerSched)
		}
		if stats.CategoryUsage["work"] != 2 || stats.CategoryUsage["health"] != 2 {
			t.Errorf("CategoryUsage = %v", stats.CategoryUsage)
		}
		if stats.FirstExchangeAt == nil || stats.LastExchangeAt == nil {
			t.Error("missing first/last timestamps")
		}
	})

	t.Run("stats for empty user", func(t *testing.T) {
		u := createTestUser(t, db, "empty@example.com")
		stats, err := repo.StatsByUser(ctx, u.ID)
		if err != nil {
			t.Fatalf("StatsByUser failed: %v", err)
		}
		if stats.TotalExchanges != 0 || stats.TotalSchedules != 0 || stats.AvgEventsPerSched != 0 {
			t.Errorf("empty stats = %+v", stats)
		}
		if stats.FirstExchangeAt != nil || stats.LastExchangeAt != nil {
			t.Error("empty user should have nil timestamps")
		}
	})
}
