package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-event-ticket-booking/internal/pkg/metrics"
)

func createUser(t *testing.T, s *TestServer, name string) string {
	t.Helper()
	rec := s.Request(http.MethodPost, "/api/v1/users", map[string]string{
		"name": name, "email": name + "@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["id"].(string)
}

func createEvent(t *testing.T, s *TestServer, tickets int) string {
	t.Helper()
	rec := s.Request(http.MethodPost, "/api/v1/events", map[string]interface{}{
		"name": "E2Eテストイベント", "availableTickets": tickets,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["id"].(string)
}

func book(s *TestServer, userID, eventID string) (int, map[string]interface{}, string) {
	rec := s.Request(http.MethodPost, "/api/v1/booking/book", map[string]string{
		"userId": userID, "eventId": eventID,
	})
	var body map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec.Code, body, rec.Body.String()
}

func status(t *testing.T, s *TestServer, eventID string) (available, waiting int) {
	t.Helper()
	rec := s.Request(http.MethodGet, "/api/v1/events/status/"+eventID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	return int(body["availableTickets"].(float64)), int(body["waitingList"].(float64))
}

// TestE2E_HealthCheck はヘルスチェックをテスト
func TestE2E_HealthCheck(t *testing.T) {
	s := NewTestServer(t)

	rec := s.Request(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.Request(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"ok"`)

	// Redis が落ちるとレディネスは503
	s.Redis.Close()
	rec = s.Request(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// TestE2E_BookingFlow は予約→売り切れ→順番待ち→キャンセル→繰り上げの一連の流れ
func TestE2E_BookingFlow(t *testing.T) {
	s := NewTestServer(t)

	alice := createUser(t, s, "alice")
	bob := createUser(t, s, "bob")
	carol := createUser(t, s, "carol")
	eventID := createEvent(t, s, 2)

	// 1. 2枚とも予約される
	code, body, raw := book(s, alice, eventID)
	require.Equal(t, http.StatusOK, code, raw)
	assert.Equal(t, "Ticket booked successfully", body["message"])
	aliceBooking := body["booking"].(map[string]interface{})
	aliceBookingID := aliceBooking["id"].(string)
	assert.Equal(t, "BOOKED", aliceBooking["status"])

	code, _, raw = book(s, bob, eventID)
	require.Equal(t, http.StatusOK, code, raw)

	available, waiting := status(t, s, eventID)
	assert.Equal(t, 0, available)
	assert.Equal(t, 0, waiting)

	// 2. 売り切れなので順番待ち
	code, body, raw = book(s, carol, eventID)
	require.Equal(t, http.StatusOK, code, raw)
	assert.Equal(t, "No tickets available, added to the waiting list", body["message"])
	entry := body["waitingList"].(map[string]interface{})
	assert.Equal(t, float64(1), entry["position"])
	assert.Nil(t, body["booking"])

	// 予約によってキャッシュが無効化され、最新の状況が見える
	available, waiting = status(t, s, eventID)
	assert.Equal(t, 0, available)
	assert.Equal(t, 1, waiting)

	// 3. alice のキャンセルで carol に繰り上げ
	rec := s.Request(http.MethodPost, "/api/v1/booking/cancel", map[string]string{
		"userId": alice, "bookingId": aliceBookingID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decode(t, rec)
	assert.Equal(t, fmt.Sprintf("Booking cancelled. Ticket assigned to waiting list user: %s", carol), body["message"])
	newBooking := body["newBooking"].(map[string]interface{})
	assert.Equal(t, carol, newBooking["userId"])

	available, waiting = status(t, s, eventID)
	assert.Equal(t, 0, available)
	assert.Equal(t, 0, waiting)

	// 4. 同じ予約の再キャンセルは400
	rec = s.Request(http.MethodPost, "/api/v1/booking/cancel", map[string]string{
		"userId": alice, "bookingId": aliceBookingID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 5. carol の予約をキャンセルすると順番待ちがいないので在庫が戻る
	rec = s.Request(http.MethodPost, "/api/v1/booking/cancel", map[string]string{
		"userId": carol, "bookingId": newBooking["id"].(string),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Booking cancelled successfully", decode(t, rec)["message"])

	available, waiting = status(t, s, eventID)
	assert.Equal(t, 1, available)
	assert.Equal(t, 0, waiting)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.WaitlistPromotionsTotal.WithLabelValues(metrics.SourceCancellation)))
}

// TestE2E_NotFound は存在しない対象の扱いをテスト
func TestE2E_NotFound(t *testing.T) {
	s := NewTestServer(t)
	userID := createUser(t, s, "dave")
	eventID := createEvent(t, s, 1)
	missing := "00000000-0000-4000-8000-000000000000"

	tests := []struct {
		name     string
		path     string
		body     map[string]string
		wantCode int
	}{
		{"存在しないイベントの予約", "/api/v1/booking/book", map[string]string{"userId": userID, "eventId": missing}, http.StatusBadRequest},
		{"存在しないユーザーの予約", "/api/v1/booking/book", map[string]string{"userId": missing, "eventId": eventID}, http.StatusBadRequest},
		{"存在しない予約のキャンセル", "/api/v1/booking/cancel", map[string]string{"userId": userID, "bookingId": missing}, http.StatusBadRequest},
		{"UUIDでないID", "/api/v1/booking/book", map[string]string{"userId": "abc", "eventId": eventID}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.Request(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}

	t.Run("存在しないイベントの販売状況は404", func(t *testing.T) {
		rec := s.Request(http.MethodGet, "/api/v1/events/status/"+missing, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("存在しないユーザーでは在庫が減らない", func(t *testing.T) {
		available, _ := status(t, s, eventID)
		assert.Equal(t, 1, available)
	})
}

// TestE2E_DuplicateUser はメールアドレス重複を409で返す
func TestE2E_DuplicateUser(t *testing.T) {
	s := NewTestServer(t)
	createUser(t, s, "erin")

	rec := s.Request(http.MethodPost, "/api/v1/users", map[string]string{
		"name": "erin2", "email": "ERIN@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

// TestE2E_ConcurrentBooking は同時予約で売り越しが起きないことを確認
func TestE2E_ConcurrentBooking(t *testing.T) {
	s := NewTestServer(t)
	const tickets, clients = 5, 20

	eventID := createEvent(t, s, tickets)
	users := make([]string, clients)
	for i := range users {
		users[i] = createUser(t, s, fmt.Sprintf("user%02d", i))
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		booked     int
		waitlisted int
		conflicts  int
		positions  = map[int]bool{}
	)
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			code, body, _ := book(s, userID, eventID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case code == http.StatusConflict:
				conflicts++
			case code != http.StatusOK:
				t.Errorf("unexpected status %d", code)
			case body["booking"] != nil:
				booked++
			default:
				waitlisted++
				pos := int(body["waitingList"].(map[string]interface{})["position"].(float64))
				assert.False(t, positions[pos], "position %d duplicated", pos)
				positions[pos] = true
			}
		}(u)
	}
	wg.Wait()

	assert.Equal(t, clients, booked+waitlisted+conflicts)

	// 409 は在庫カウンタの競合だけ。諦めたクライアントがいても在庫と予約数の合計は変わらない
	available, waiting := status(t, s, eventID)
	assert.LessOrEqual(t, booked, tickets)
	assert.Equal(t, tickets, booked+available)
	assert.Equal(t, waitlisted, waiting)
}

// TestE2E_ConcurrentWaitlist は満席のイベントへの同時申込が全員 200 で順番待ちに入ることを確認
func TestE2E_ConcurrentWaitlist(t *testing.T) {
	s := NewTestServer(t)
	const clients = 20

	eventID := createEvent(t, s, 1)
	code, _, _ := book(s, createUser(t, s, "owner"), eventID)
	require.Equal(t, http.StatusOK, code)
	users := make([]string, clients)
	for i := range users {
		users[i] = createUser(t, s, fmt.Sprintf("waiter%02d", i))
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		positions []int
	)
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			code, body, _ := book(s, userID, eventID)
			mu.Lock()
			defer mu.Unlock()
			if code != http.StatusOK || body["waitingList"] == nil {
				t.Errorf("unexpected response %d %v", code, body)
				return
			}
			positions = append(positions, int(body["waitingList"].(map[string]interface{})["position"].(float64)))
		}(u)
	}
	wg.Wait()

	sort.Ints(positions)
	want := make([]int, clients)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, positions)

	available, waiting := status(t, s, eventID)
	assert.Equal(t, 0, available)
	assert.Equal(t, clients, waiting)
}

// TestE2E_Metrics は予約結果がメトリクスに記録されることを確認
func TestE2E_Metrics(t *testing.T) {
	s := NewTestServer(t)
	userID := createUser(t, s, "frank")
	eventID := createEvent(t, s, 1)

	book(s, userID, eventID)
	book(s, userID, eventID)

	rec := s.Request(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bookings_total{result="booked"} 1`)
	assert.Contains(t, rec.Body.String(), `bookings_total{result="waitlisted"} 1`)
}
