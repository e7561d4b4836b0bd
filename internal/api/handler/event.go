package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-event-ticket-booking/internal/application"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

type CreateEventRequest struct {
	Name             string `json:"name" validate:"required" example:"東京ドームコンサート2025"`
	AvailableTickets int    `json:"availableTickets" validate:"gt=0" example:"100"`
}

// Create godoc
// @Summary イベントを作成
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "イベント情報"
// @Success 201 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "リクエストの形式が不正です")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	e, err := h.eventService.CreateEvent(c.Request().Context(), application.CreateEventInput{
		Name: req.Name, AvailableTickets: req.AvailableTickets,
	})
	if err != nil {
		return resourceError(err)
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetStatus godoc
// @Summary イベントの販売状況を取得
// @Description 残りチケット数と順番待ちの人数を返します
// @Tags events
// @Produce json
// @Param eventId path string true "イベントID"
// @Success 200 {object} EventStatusResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/status/{eventId} [get]
func (h *EventHandler) GetStatus(c echo.Context) error {
	status, err := h.eventService.GetEventStatus(c.Request().Context(), c.Param("eventId"))
	if err != nil {
		return resourceError(err)
	}
	return c.JSON(http.StatusOK, EventStatusResponse{
		AvailableTickets: status.AvailableTickets,
		WaitingList:      status.WaitingCount,
	})
}
