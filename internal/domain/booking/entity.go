package booking

import (
	"time"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
)

// Status は予約の状態を表す
type Status string

const (
	StatusBooked    Status = "BOOKED"
	StatusCancelled Status = "CANCELLED"
)

// Booking はチケット1枚分の予約エンティティ
type Booking struct {
	ID        string
	UserID    string
	EventID   string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int // 楽観的ロック用

	// Event はキャンセル処理時のみ読み込まれる
	Event *event.Event
}

// NewBooking は BOOKED 状態の予約を作成する
func NewBooking(userID, eventID string) *Booking {
	now := time.Now()
	return &Booking{
		UserID:    userID,
		EventID:   eventID,
		Status:    StatusBooked,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsActive は予約が有効（BOOKED）かを返す
func (b *Booking) IsActive() bool {
	return b.Status == StatusBooked
}

// Cancel は予約をキャンセルする。CANCELLED は終端状態
func (b *Booking) Cancel() error {
	if b.Status == StatusCancelled {
		return ErrBookingAlreadyCancelled
	}
	b.Status = StatusCancelled
	b.UpdatedAt = time.Now()
	return nil
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if b.EventID == "" {
		return ErrEventIDRequired
	}
	return nil
}
