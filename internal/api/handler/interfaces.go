package handler

import (
	"context"

	"github.com/sanosuguru/go-event-ticket-booking/internal/application"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/user"
)

// BookingServiceInterface は予約サービスのインターフェース
type BookingServiceInterface interface {
	BookEventTicket(ctx context.Context, input application.BookTicketInput) (*application.BookTicketResult, error)
	CancelBooking(ctx context.Context, input application.CancelBookingInput) (*application.CancelBookingResult, error)
}

// EventServiceInterface はイベントサービスのインターフェース
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEventStatus(ctx context.Context, eventID string) (*event.Status, error)
}

// UserServiceInterface はユーザーサービスのインターフェース
type UserServiceInterface interface {
	CreateUser(ctx context.Context, input application.CreateUserInput) (*user.User, error)
}

// Pinger は依存先の疎通確認
type Pinger interface {
	Ping(ctx context.Context) error
}
