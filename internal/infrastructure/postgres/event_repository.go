package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
)

// eventRow はDBの行を表す構造体
type eventRow struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	AvailableTickets int       `db:"available_tickets"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
	Version          int       `db:"version"`
}

func (r *eventRow) toEntity() *event.Event {
	return &event.Event{
		ID:               r.ID,
		Name:             r.Name,
		AvailableTickets: r.AvailableTickets,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		Version:          r.Version,
	}
}

// EventRepository はイベント在庫リポジトリのPostgreSQL実装
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository はEventRepositoryを作成する
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create は新しいイベントを作成する
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (name, available_tickets, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		e.Name, e.AvailableTickets, e.CreatedAt, e.UpdatedAt, e.Version,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからイベントを取得する
func (r *EventRepository) GetByID(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	query := `SELECT id, name, available_tickets, created_at, updated_at, version FROM events WHERE id = $1`

	var row eventRow
	err := sqlx.GetContext(ctx, executor(r.db, tx), &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("イベント取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// Save は在庫を書き込む（楽観的ロック）
// 行ロックを待った後にバージョンが変わっていれば0行更新となり競合を返す
func (r *EventRepository) Save(ctx context.Context, tx transaction.Tx, e *event.Event, expectedVersion int) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}

	query := `
		UPDATE events
		SET available_tickets = $1, updated_at = $2, version = version + 1
		WHERE id = $3 AND version = $4
	`
	result, err := sqlTx.ExecContext(ctx, query, e.AvailableTickets, e.UpdatedAt, e.ID, expectedVersion)
	if err != nil {
		return fmt.Errorf("イベント在庫の更新に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrOptimisticLockConflict
	}

	e.Version = expectedVersion + 1
	return nil
}

// ListIDsAwaitingPromotion は空きがあるのに順番待ちが残っているイベントを返す
func (r *EventRepository) ListIDsAwaitingPromotion(ctx context.Context, limit int) ([]string, error) {
	query := `
		SELECT e.id FROM events e
		WHERE e.available_tickets > 0
		  AND EXISTS (SELECT 1 FROM waiting_list w WHERE w.event_id = e.id)
		ORDER BY e.updated_at
		LIMIT $1
	`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, limit); err != nil {
		return nil, fmt.Errorf("繰り上げ待ちイベントの取得に失敗しました: %w", err)
	}
	return ids, nil
}

// インターフェースを満たしているか確認
var _ event.Repository = (*EventRepository)(nil)
