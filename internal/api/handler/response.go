package handler

import (
	"time"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/user"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/waitinglist"
)

type BookingResponse struct {
	ID        string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID    string    `json:"userId" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	EventID   string    `json:"eventId" example:"9b2f6c1e-1d2a-4f7a-8d1b-3c5e7f9a0b1c"`
	Status    string    `json:"status" example:"BOOKED"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toBookingResponse(b *booking.Booking) *BookingResponse {
	return &BookingResponse{
		ID: b.ID, UserID: b.UserID, EventID: b.EventID,
		Status: string(b.Status), CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt,
	}
}

type WaitingListResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EventID   string    `json:"eventId"`
	Position  int       `json:"position" example:"3"`
	CreatedAt time.Time `json:"createdAt"`
}

func toWaitingListResponse(e *waitinglist.Entry) *WaitingListResponse {
	return &WaitingListResponse{
		ID: e.ID, UserID: e.UserID, EventID: e.EventID,
		Position: e.Position, CreatedAt: e.CreatedAt,
	}
}

type EventResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name" example:"東京ドームコンサート2025"`
	AvailableTickets int       `json:"availableTickets" example:"100"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toEventResponse(e *event.Event) *EventResponse {
	return &EventResponse{
		ID: e.ID, Name: e.Name, AvailableTickets: e.AvailableTickets,
		CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}

type EventStatusResponse struct {
	AvailableTickets int `json:"availableTickets" example:"0"`
	WaitingList      int `json:"waitingList" example:"12"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" example:"山田太郎"`
	Email     string    `json:"email" example:"taro@example.com"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *user.User) *UserResponse {
	return &UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}
