package application

import (
	"context"
	"errors"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/user"
)

// StatusCache はイベント販売状況のキャッシュ
type StatusCache interface {
	Get(ctx context.Context, eventID string) (*event.Status, error)
	Set(ctx context.Context, eventID string, status *event.Status) error
	Invalidate(ctx context.Context, eventID string) error
}

// IsNotFound は対象が存在しないことを表すエラーかを返す
func IsNotFound(err error) bool {
	return errors.Is(err, event.ErrEventNotFound) ||
		errors.Is(err, booking.ErrBookingNotFound) ||
		errors.Is(err, user.ErrUserNotFound)
}
