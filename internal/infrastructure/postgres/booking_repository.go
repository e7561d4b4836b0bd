package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
)

// bookingWithEventRow は予約とイベントの結合結果
type bookingWithEventRow struct {
	ID                    string    `db:"id"`
	UserID                string    `db:"user_id"`
	EventID               string    `db:"event_id"`
	Status                string    `db:"status"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
	Version               int       `db:"version"`
	EventName             string    `db:"event_name"`
	EventAvailableTickets int       `db:"event_available_tickets"`
	EventCreatedAt        time.Time `db:"event_created_at"`
	EventUpdatedAt        time.Time `db:"event_updated_at"`
	EventVersion          int       `db:"event_version"`
}

func (r *bookingWithEventRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID:        r.ID,
		UserID:    r.UserID,
		EventID:   r.EventID,
		Status:    booking.Status(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Version:   r.Version,
		Event: &event.Event{
			ID:               r.EventID,
			Name:             r.EventName,
			AvailableTickets: r.EventAvailableTickets,
			CreatedAt:        r.EventCreatedAt,
			UpdatedAt:        r.EventUpdatedAt,
			Version:          r.EventVersion,
		},
	}
}

// BookingRepository は予約リポジトリのPostgreSQL実装
type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	query := `INSERT INTO bookings (user_id, event_id, status, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := sqlTx.QueryRowContext(ctx, query, b.UserID, b.EventID, string(b.Status), b.CreatedAt, b.UpdatedAt, b.Version).Scan(&b.ID); err != nil {
		if isForeignKeyViolation(err) || isInvalidID(err) {
			return foreignKeyError(err)
		}
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	return nil
}

func (r *BookingRepository) Save(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlTx, err := requireTx(tx)
	if err != nil {
		return err
	}
	query := `UPDATE bookings SET status = $1, updated_at = $2, version = version + 1 WHERE id = $3 AND version = $4`
	result, err := sqlTx.ExecContext(ctx, query, string(b.Status), b.UpdatedAt, b.ID, b.Version)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の確認に失敗: %w", err)
	}
	if rowsAffected == 0 {
		return booking.ErrOptimisticLockConflict
	}
	b.Version++
	return nil
}

func (r *BookingRepository) FindActiveByIDForUser(ctx context.Context, tx transaction.Tx, bookingID, userID string) (*booking.Booking, error) {
	query := `
		SELECT b.id, b.user_id, b.event_id, b.status, b.created_at, b.updated_at, b.version,
		       e.name AS event_name, e.available_tickets AS event_available_tickets,
		       e.created_at AS event_created_at, e.updated_at AS event_updated_at, e.version AS event_version
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE b.id = $1 AND b.user_id = $2 AND b.status = $3
	`
	var row bookingWithEventRow
	if err := sqlx.GetContext(ctx, executor(r.db, tx), &row, query, bookingID, userID, string(booking.StatusBooked)); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

var _ booking.Repository = (*BookingRepository)(nil)
