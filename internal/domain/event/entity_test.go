package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	// Arrange
	name := "テストコンサート"
	availableTickets := 100

	// Act
	event := NewEvent("  "+name+" ", availableTickets)

	// Assert
	assert.Equal(t, name, event.Name)
	assert.Equal(t, availableTickets, event.AvailableTickets)
	assert.Equal(t, 0, event.Version)
	assert.NotZero(t, event.CreatedAt)
	assert.NotZero(t, event.UpdatedAt)
}

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name        string
		event       *Event
		expectedErr error
	}{
		{"有効なイベント", &Event{Name: "テストイベント", AvailableTickets: 10}, nil},
		{"イベント名が空", &Event{Name: "", AvailableTickets: 10}, ErrEventNameRequired},
		{"チケット数が0", &Event{Name: "テストイベント", AvailableTickets: 0}, ErrInvalidTicketCount},
		{"チケット数が負", &Event{Name: "テストイベント", AvailableTickets: -1}, ErrInvalidTicketCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.event.Validate()
			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEvent_ReserveTicket(t *testing.T) {
	t.Run("在庫があれば1枚減る", func(t *testing.T) {
		e := NewEvent("イベント", 2)

		require.NoError(t, e.ReserveTicket())

		assert.Equal(t, 1, e.AvailableTickets)
		assert.True(t, e.HasAvailableTickets())
	})

	t.Run("在庫0では減らず売り切れエラー", func(t *testing.T) {
		e := &Event{Name: "イベント", AvailableTickets: 0}

		err := e.ReserveTicket()

		assert.ErrorIs(t, err, ErrSoldOut)
		assert.Equal(t, 0, e.AvailableTickets)
		assert.False(t, e.HasAvailableTickets())
	})
}

func TestEvent_ReleaseTicket(t *testing.T) {
	e := &Event{Name: "イベント", AvailableTickets: 0}

	e.ReleaseTicket()

	assert.Equal(t, 1, e.AvailableTickets)
	assert.NotZero(t, e.UpdatedAt)
}
