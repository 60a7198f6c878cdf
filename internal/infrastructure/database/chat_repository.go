package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/MADANW/MuhsinAI/internal/domain"
	"github.com/MADANW/MuhsinAI/internal/domain/entity"
	"github.com/MADANW/MuhsinAI/internal/schedule"
)

// chatRepository is the SQLite implementation of domain.ChatRepository.
// Parsed schedules are stored as a JSON column next to the raw response so
// history reads never re-run the parser.
type chatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new ChatRepository instance.
func NewChatRepository(db *sql.DB) domain.ChatRepository {
	return &chatRepository{db: db}
}

// CreateExchange persists a completed prompt/response pair.
func (r *chatRepository) CreateExchange(ctx context.Context, ex *entity.Exchange) error {
	var schedJSON sql.NullString
	if ex.Schedule != nil {
		data, err := sonic.Marshal(ex.Schedule)
		if err != nil {
			return fmt.Errorf("failed to encode schedule: %w", err)
		}
		schedJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exchanges (id, user_id, prompt, raw_response, schedule, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.UserID, ex.Prompt, ex.RawResponse, schedJSON, ex.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create exchange: %w", err)
	}
	return nil
}

// GetExchange fetches one exchange by ID regardless of owner.
func (r *chatRepository) GetExchange(ctx context.Context, id string) (*entity.Exchange, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, prompt, raw_response, schedule, created_at
		 FROM exchanges WHERE id = ?`, id,
	)
	ex, err := scanExchange(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("Exchange", id)
		}
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}
	return ex, nil
}

// ListByUser returns a page of the user's exchanges, newest first.
func (r *chatRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*entity.Exchange, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, prompt, raw_response, schedule, created_at
		 FROM exchanges WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer rows.Close()

	exchanges := make([]*entity.Exchange, 0, limit)
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	return exchanges, nil
}

// CountByUser returns the user's total exchange count.
func (r *chatRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM exchanges WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count exchanges: %w", err)
	}
	return count, nil
}

// DeleteExchange removes an exchange only if userID owns it. The ownership
// check lives in the WHERE clause so there is no read-then-delete race; a
// follow-up existence probe only decides which error to report.
func (r *chatRepository) DeleteExchange(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM exchanges WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete exchange: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete exchange: %w", err)
	}
	if n == 0 {
		var exists int
		err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM exchanges WHERE id = ?`, id,
		).Scan(&exists)
		switch {
		case err == nil:
			return domain.NewForbiddenError("exchange belongs to another user")
		case errors.Is(err, sql.ErrNoRows):
			return domain.NewNotFoundError("Exchange", id)
		default:
			return fmt.Errorf("failed to delete exchange: %w", err)
		}
	}
	return nil
}

// StatsByUser aggregates the user's scheduling activity. Row counts and
// timestamps come from SQL; category usage needs the schedule JSON, so
// those rows are decoded here.
func (r *chatRepository) StatsByUser(ctx context.Context, userID string) (*entity.UserStats, error) {
	stats := &entity.UserStats{CategoryUsage: make(map[string]int)}

	var first, last sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(schedule), MIN(created_at), MAX(created_at)
		 FROM exchanges WHERE user_id = ?`, userID,
	).Scan(&stats.TotalExchanges, &stats.TotalSchedules, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate exchanges: %w", err)
	}
	if first.Valid {
		t := first.Time
		stats.FirstExchangeAt = &t
	}
	if last.Valid {
		t := last.Time
		stats.LastExchangeAt = &t
	}

	if stats.TotalSchedules == 0 {
		return stats, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT schedule FROM exchanges WHERE user_id = ? AND schedule IS NOT NULL`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules: %w", err)
	}
	defer rows.Close()

	totalEvents := 0
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		var sched schedule.Schedule
		if err := sonic.UnmarshalString(raw, &sched); err != nil {
			// A corrupt row should not take the whole stats call down.
			continue
		}
		totalEvents += len(sched.Events)
		for _, ev := range sched.Events {
			stats.CategoryUsage[string(ev.Category)]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load schedules: %w", err)
	}

	stats.AvgEventsPerSched = float64(totalEvents) / float64(stats.TotalSchedules)
	return stats, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExchange(row rowScanner) (*entity.Exchange, error) {
	var ex entity.Exchange
	var schedJSON sql.NullString
	if err := row.Scan(&ex.ID, &ex.UserID, &ex.Prompt, &ex.RawResponse, &schedJSON, &ex.CreatedAt); err != nil {
		return nil, err
	}
	if schedJSON.Valid {
		var sched schedule.Schedule
		if err := sonic.UnmarshalString(schedJSON.String, &sched); err != nil {
			return nil, fmt.Errorf("failed to decode schedule: %w", err)
		}
		ex.Schedule = &sched
	}
	return &ex, nil
}
