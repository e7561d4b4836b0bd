package event

import (
	"strings"
	"time"
)

// Event はチケット在庫を持つイベントエンティティ（在庫の集約ルート）
type Event struct {
	ID               string
	Name             string
	AvailableTickets int
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int // 楽観的ロック用。書き込みのたびに+1される
}

// Status はイベントの販売状況
type Status struct {
	AvailableTickets int
	WaitingCount     int
}

// NewEvent は新しいイベントを作成する
func NewEvent(name string, availableTickets int) *Event {
	now := time.Now()
	return &Event{
		Name:             strings.TrimSpace(name),
		AvailableTickets: availableTickets,
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          0,
	}
}

// Validate はイベント作成時の検証を行う
func (e *Event) Validate() error {
	if e.Name == "" {
		return ErrEventNameRequired
	}
	if e.AvailableTickets <= 0 {
		return ErrInvalidTicketCount
	}
	return nil
}

// HasAvailableTickets は残りチケットがあるかを返す
func (e *Event) HasAvailableTickets() bool {
	return e.AvailableTickets > 0
}

// ReserveTicket は在庫を1枚減らす
func (e *Event) ReserveTicket() error {
	if e.AvailableTickets <= 0 {
		return ErrSoldOut
	}
	e.AvailableTickets--
	e.UpdatedAt = time.Now()
	return nil
}

// ReleaseTicket は在庫を1枚戻す
func (e *Event) ReleaseTicket() {
	e.AvailableTickets++
	e.UpdatedAt = time.Now()
}
