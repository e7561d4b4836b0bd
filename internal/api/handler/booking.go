package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-ticket-booking/internal/application"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type BookTicketRequest struct {
	UserID  string `json:"userId" validate:"required,uuid" example:"7c9e6679-7425-40de-944b-e07fc1f90ae7"`
	EventID string `json:"eventId" validate:"required,uuid" example:"9b2f6c1e-1d2a-4f7a-8d1b-3c5e7f9a0b1c"`
}

type BookTicketResponse struct {
	Message     string               `json:"message"`
	Booking     *BookingResponse     `json:"booking,omitempty"`
	WaitingList *WaitingListResponse `json:"waitingList,omitempty"`
}

type CancelBookingRequest struct {
	UserID    string `json:"userId" validate:"required,uuid"`
	BookingID string `json:"bookingId" validate:"required,uuid"`
}

type CancelBookingResponse struct {
	Message    string           `json:"message"`
	NewBooking *BookingResponse `json:"newBooking,omitempty"`
}

// Book godoc
// @Summary チケットを予約
// @Description 空きがあれば予約し、売り切れの場合は順番待ちに登録します
// @Tags booking
// @Accept json
// @Produce json
// @Param request body BookTicketRequest true "予約情報"
// @Success 200 {object} BookTicketResponse
// @Failure 400 {object} api.ErrorResponse "イベントまたはユーザーが存在しない"
// @Failure 409 {object} api.ErrorResponse "同時更新の競合"
// @Router /booking/book [post]
func (h *BookingHandler) Book(c echo.Context) error {
	var req BookTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.BookEventTicket(c.Request().Context(), application.BookTicketInput{
		UserID: req.UserID, EventID: req.EventID,
	})
	if err != nil {
		return bookingError(err)
	}

	if result.IsWaitlisted() {
		return c.JSON(http.StatusOK, BookTicketResponse{
			Message:     "No tickets available, added to the waiting list",
			WaitingList: toWaitingListResponse(result.WaitingEntry),
		})
	}
	return c.JSON(http.StatusOK, BookTicketResponse{
		Message: "Ticket booked successfully",
		Booking: toBookingResponse(result.Booking),
	})
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約をキャンセルし、順番待ちの先頭ユーザーにチケットを割り当てます
// @Tags booking
// @Accept json
// @Produce json
// @Param request body CancelBookingRequest true "キャンセル情報"
// @Success 200 {object} CancelBookingResponse
// @Failure 400 {object} api.ErrorResponse "予約が存在しないかキャンセル済み"
// @Failure 409 {object} api.ErrorResponse "同時更新の競合"
// @Router /booking/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	var req CancelBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.CancelBooking(c.Request().Context(), application.CancelBookingInput{
		UserID: req.UserID, BookingID: req.BookingID,
	})
	if err != nil {
		return bookingError(err)
	}

	if result.NewBooking == nil {
		return c.JSON(http.StatusOK, CancelBookingResponse{Message: "Booking cancelled successfully"})
	}
	return c.JSON(http.StatusOK, CancelBookingResponse{
		Message:    fmt.Sprintf("Booking cancelled. Ticket assigned to waiting list user: %s", result.NewBooking.UserID),
		NewBooking: toBookingResponse(result.NewBooking),
	})
}
