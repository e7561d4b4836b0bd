package application

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/waitinglist"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockEventRepository implements event.Repository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, e *event.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Event), args.Error(1)
}

// Save は成功時に実装と同じくバージョンを進める
func (m *MockEventRepository) Save(ctx context.Context, tx transaction.Tx, e *event.Event, expectedVersion int) error {
	args := m.Called(ctx, tx, e, expectedVersion)
	if err := args.Error(0); err != nil {
		return err
	}
	e.Version = expectedVersion + 1
	return nil
}

func (m *MockEventRepository) ListIDsAwaitingPromotion(ctx context.Context, limit int) ([]string, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockBookingRepository implements booking.Repository
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	args := m.Called(ctx, tx, b)
	if args.Error(0) == nil && b.ID == "" {
		b.ID = "booking-new"
	}
	return args.Error(0)
}

func (m *MockBookingRepository) Save(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	args := m.Called(ctx, tx, b)
	if args.Error(0) == nil {
		b.Version++
	}
	return args.Error(0)
}

func (m *MockBookingRepository) FindActiveByIDForUser(ctx context.Context, tx transaction.Tx, bookingID, userID string) (*booking.Booking, error) {
	args := m.Called(ctx, tx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

// MockWaitingListRepository implements waitinglist.Repository
type MockWaitingListRepository struct {
	mock.Mock
}

func (m *MockWaitingListRepository) Create(ctx context.Context, tx transaction.Tx, e *waitinglist.Entry) error {
	args := m.Called(ctx, tx, e)
	return args.Error(0)
}

func (m *MockWaitingListRepository) NextPosition(ctx context.Context, tx transaction.Tx, eventID string) (int, error) {
	args := m.Called(ctx, tx, eventID)
	return args.Int(0), args.Error(1)
}

func (m *MockWaitingListRepository) Earliest(ctx context.Context, tx transaction.Tx, eventID string) (*waitinglist.Entry, error) {
	args := m.Called(ctx, tx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waitinglist.Entry), args.Error(1)
}

func (m *MockWaitingListRepository) Remove(ctx context.Context, tx transaction.Tx, e *waitinglist.Entry) error {
	args := m.Called(ctx, tx, e)
	return args.Error(0)
}

func (m *MockWaitingListRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

// MockStatusCache implements StatusCache
type MockStatusCache struct {
	mock.Mock
}

func (m *MockStatusCache) Get(ctx context.Context, eventID string) (*event.Status, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*event.Status), args.Error(1)
}

func (m *MockStatusCache) Set(ctx context.Context, eventID string, status *event.Status) error {
	args := m.Called(ctx, eventID, status)
	return args.Error(0)
}

func (m *MockStatusCache) Invalidate(ctx context.Context, eventID string) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

var (
	_ transaction.Manager    = (*MockTxManager)(nil)
	_ transaction.Tx         = (*MockTx)(nil)
	_ event.Repository       = (*MockEventRepository)(nil)
	_ booking.Repository     = (*MockBookingRepository)(nil)
	_ waitinglist.Repository = (*MockWaitingListRepository)(nil)
	_ StatusCache            = (*MockStatusCache)(nil)
)
