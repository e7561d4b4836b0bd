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
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/waitinglist"
)

type waitingEntryRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	EventID   string    `db:"event_id"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *waitingEntryRow) toEntity() *waitinglist.Entry {
	return &waitinglist.Entry{
		ID: r.ID, UserID: r.UserID, EventID: r.EventID, Position: r.Position,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

// WaitingListRepository は順番待ちリストのPostgreSQL実装
type WaitingListRepository struct{ db *sqlx.DB }

func NewWaitingListRepository(db *sqlx.DB) *WaitingListRepository {
	return &WaitingListRepository{db: db}
}

// Create は UNIQUE(event_id, position) 違反を ErrPositionTaken に変換する
func (r *WaitingListRepository) Create(ctx context.Context, tx transaction.Tx, e *waitinglist.Entry) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	query := `INSERT INTO waiting_list (user_id, event_id, position, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := sqlTx.QueryRowContext(ctx, query, e.UserID, e.EventID, e.Position, e.CreatedAt, e.UpdatedAt).Scan(&e.ID); err != nil {
		switch {
		case isUniqueViolation(err):
			return waitinglist.ErrPositionTaken
		case isForeignKeyViolation(err), isInvalidID(err):
			return foreignKeyError(err)
		}
		return fmt.Errorf("順番待ち登録に失敗: %w", err)
	}
	return nil
}

// NextPosition はイベント行を FOR UPDATE でロックしてから採番する。
// 同じイベントへの順番待ち登録はコミットまで直列化されるため、採番が重複しない
func (r *WaitingListRepository) NextPosition(ctx context.Context, tx transaction.Tx, eventID string) (int, error) {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return 0, err
	}

	var available int
	lockQuery := `SELECT available_tickets FROM events WHERE id = $1 FOR UPDATE`
	if err := sqlTx.QueryRowContext(ctx, lockQuery, eventID).Scan(&available); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return 0, event.ErrEventNotFound
		}
		return 0, fmt.Errorf("イベント行のロックに失敗: %w", err)
	}
	// ロック待ちの間にキャンセルで空きが出た
	if available > 0 {
		return 0, event.ErrOptimisticLockConflict
	}

	var next int
	query := `SELECT COALESCE(MAX(position), 0) + 1 FROM waiting_list WHERE event_id = $1`
	if err := sqlTx.QueryRowContext(ctx, query, eventID).Scan(&next); err != nil {
		return 0, fmt.Errorf("順番待ちポジションの取得に失敗: %w", err)
	}
	return next, nil
}

// Earliest はポジション最小のエントリを返す
// 繰り上げ処理はイベント行の更新で直列化されるため行ロックは取らない
func (r *WaitingListRepository) Earliest(ctx context.Context, tx transaction.Tx, eventID string) (*waitinglist.Entry, error) {
	const query = `SELECT id, user_id, event_id, position, created_at, updated_at FROM waiting_list WHERE event_id = $1 ORDER BY position ASC LIMIT 1`
	var row waitingEntryRow
	if err := sqlx.GetContext(ctx, executor(r.db, tx), &row, query, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, waitinglist.ErrEntryNotFound
		}
		return nil, fmt.Errorf("順番待ち先頭の取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *WaitingListRepository) Remove(ctx context.Context, tx transaction.Tx, e *waitinglist.Entry) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	result, err := sqlTx.ExecContext(ctx, `DELETE FROM waiting_list WHERE id = $1`, e.ID)
	if err != nil {
		return fmt.Errorf("順番待ち削除に失敗: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗: %w", err)
	}
	if rowsAffected == 0 {
		return waitinglist.ErrEntryNotFound
	}
	return nil
}

func (r *WaitingListRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM waiting_list WHERE event_id = $1`, eventID); err != nil {
		return 0, fmt.Errorf("順番待ち件数の取得に失敗: %w", err)
	}
	return count, nil
}

var _ waitinglist.Repository = (*WaitingListRepository)(nil)
