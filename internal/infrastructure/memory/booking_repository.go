package memory

import (
	"context"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/user"
)

// BookingRepository は予約リポジトリのインメモリ実装
type BookingRepository struct{ store *Store }

// Create は外部キー制約と同様にユーザーとイベントの存在を確認する
func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	mtx, err := s.writeTx(tx)
	if err != nil {
		return err
	}
	if _, ok := s.users[b.UserID]; !ok {
		return user.ErrUserNotFound
	}
	if _, ok := s.visibleEvent(mtx, b.EventID); !ok {
		return event.ErrEventNotFound
	}

	b.ID = newID()
	staged := *b
	staged.Event = nil
	mtx.bookings[b.ID] = &staged
	return nil
}

func (r *BookingRepository) Save(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	mtx, err := s.writeTx(tx)
	if err != nil {
		return err
	}
	s.lock(mtx, "booking:"+b.ID)

	current, ok := s.visibleBooking(mtx, b.ID)
	if !ok || current.Version != b.Version {
		return booking.ErrOptimisticLockConflict
	}

	b.Version++
	staged := *b
	staged.Event = nil
	mtx.bookings[b.ID] = &staged
	return nil
}

func (r *BookingRepository) FindActiveByIDForUser(ctx context.Context, tx transaction.Tx, bookingID, userID string) (*booking.Booking, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	mtx, err := s.txFrom(tx)
	if err != nil {
		return nil, err
	}
	b, ok := s.visibleBooking(mtx, bookingID)
	if !ok || b.UserID != userID || !b.IsActive() {
		return nil, booking.ErrBookingNotFound
	}
	e, ok := s.visibleEvent(mtx, b.EventID)
	if !ok {
		return nil, booking.ErrBookingNotFound
	}

	found := *b
	ev := *e
	found.Event = &ev
	return &found, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
