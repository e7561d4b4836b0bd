package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-ticket-booking/internal/application"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/user"
)

const concurrentUpdateMessage = "Could not book the ticket due to concurrent updates. Please try again."

// 利用者に返してよいドメインエラー。ラップされていても元の文言を返す
var (
	notFoundErrors   = []error{event.ErrEventNotFound, booking.ErrBookingNotFound, user.ErrUserNotFound}
	validationErrors = []error{
		event.ErrEventNameRequired, event.ErrInvalidTicketCount,
		user.ErrUserNameRequired, user.ErrEmailRequired, user.ErrInvalidEmail,
	}
)

func match(err error, targets []error) (error, bool) {
	for _, target := range targets {
		if errors.Is(err, target) {
			return target, true
		}
	}
	return nil, false
}

// bookingError は予約・キャンセルのエラーをHTTPエラーに変換する
// 対象が見つからない場合は 400 を返す
func bookingError(err error) error {
	if errors.Is(err, application.ErrConcurrentUpdate) {
		return echo.NewHTTPError(http.StatusConflict, concurrentUpdateMessage).SetInternal(err)
	}
	if target, ok := match(err, notFoundErrors); ok {
		return echo.NewHTTPError(http.StatusBadRequest, target.Error()).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}

// resourceError はイベント・ユーザーAPIのエラーをHTTPエラーに変換する
func resourceError(err error) error {
	if target, ok := match(err, notFoundErrors); ok {
		return echo.NewHTTPError(http.StatusNotFound, target.Error()).SetInternal(err)
	}
	if target, ok := match(err, validationErrors); ok {
		return echo.NewHTTPError(http.StatusBadRequest, target.Error()).SetInternal(err)
	}
	if errors.Is(err, user.ErrEmailAlreadyExists) {
		return echo.NewHTTPError(http.StatusConflict, user.ErrEmailAlreadyExists.Error()).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
}
