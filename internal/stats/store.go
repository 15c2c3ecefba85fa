package stats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Summary は利用実績の集計結果。
type Summary struct {
	// Totals はイベント種別ごとの件数合計。
	Totals map[string]int64 `json:"totals"`
	// Recorded は記録されたレコードの総数。
	Recorded int64 `json:"recorded"`
}

// Store は利用実績の追記と集計を行う。
type Store struct {
	db *sql.DB
}

// NewStore は新しい利用実績ストアを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record は利用実績を1件追記する。
func (s *Store) Record(ctx context.Context, service, event string, count int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_records (id, service, event, count) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), service, event, count,
	)
	if err != nil {
		return fmt.Errorf("利用実績の追記に失敗: %w", err)
	}
	return nil
}

// Summarize はイベント種別ごとの件数合計を集計する。
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event, SUM(count), COUNT(*) FROM usage_records GROUP BY event`,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("利用実績の集計に失敗: %w", err)
	}
	defer rows.Close()

	summary := Summary{Totals: map[string]int64{}}
	for rows.Next() {
		var event string
		var total, records int64
		if err := rows.Scan(&event, &total, &records); err != nil {
			return Summary{}, fmt.Errorf("集計結果の読み取りに失敗: %w", err)
		}
		summary.Totals[event] = total
		summary.Recorded += records
	}
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("集計結果の走査に失敗: %w", err)
	}
	return summary, nil
}
