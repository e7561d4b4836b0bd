package memory

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/user"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/waitinglist"
)

// WaitingListRepository は順番待ちリストのインメモリ実装
type WaitingListRepository struct{ store *Store }

// Create は (event, position) の行ロックを待ち、既に使われていれば ErrPositionTaken。
// NextPosition を経由した採番では起きない
func (r *WaitingListRepository) Create(ctx context.Context, tx transaction.Tx, e *waitinglist.Entry) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	mtx, err := s.writeTx(tx)
	if err != nil {
		return err
	}
	if _, ok := s.users[e.UserID]; !ok {
		return user.ErrUserNotFound
	}
	if _, ok := s.visibleEvent(mtx, e.EventID); !ok {
		return event.ErrEventNotFound
	}
	s.lock(mtx, fmt.Sprintf("position:%s:%d", e.EventID, e.Position))

	for _, existing := range s.visibleEntries(mtx, e.EventID) {
		if existing.Position == e.Position {
			return waitinglist.ErrPositionTaken
		}
	}

	e.ID = newID()
	staged := *e
	mtx.entries[e.ID] = &staged
	return nil
}

// NextPosition はイベント行のロックを取ってから採番する。
// ロックはコミットまで保持されるため、同じイベントへの順番待ち登録は1件ずつ進む
func (r *WaitingListRepository) NextPosition(ctx context.Context, tx transaction.Tx, eventID string) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	mtx, err := s.writeTx(tx)
	if err != nil {
		return 0, err
	}
	s.lock(mtx, "event:"+eventID)

	ev, ok := s.visibleEvent(mtx, eventID)
	if !ok {
		return 0, event.ErrEventNotFound
	}
	// ロック待ちの間にキャンセルで空きが出た
	if ev.HasAvailableTickets() {
		return 0, event.ErrOptimisticLockConflict
	}
	entries := s.visibleEntries(mtx, eventID)
	maxPosition := 0
	for _, e := range entries {
		if e.Position > maxPosition {
			maxPosition = e.Position
		}
	}
	return waitinglist.NextPosition(maxPosition, len(entries) == 0), nil
}

func (r *WaitingListRepository) Earliest(ctx context.Context, tx transaction.Tx, eventID string) (*waitinglist.Entry, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	mtx, err := s.txFrom(tx)
	if err != nil {
		return nil, err
	}
	var earliest *waitinglist.Entry
	for _, e := range s.visibleEntries(mtx, eventID) {
		if earliest == nil || e.Position < earliest.Position {
			earliest = e
		}
	}
	if earliest == nil {
		return nil, waitinglist.ErrEntryNotFound
	}
	found := *earliest
	return &found, nil
}

func (r *WaitingListRepository) Remove(ctx context.Context, tx transaction.Tx, e *waitinglist.Entry) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	mtx, err := s.writeTx(tx)
	if err != nil {
		return err
	}
	if _, ok := mtx.entries[e.ID]; ok {
		delete(mtx.entries, e.ID)
		return nil
	}

	s.lock(mtx, "waiting:"+e.ID)
	if _, ok := s.entries[e.ID]; !ok || mtx.removed[e.ID] {
		return waitinglist.ErrEntryNotFound
	}
	mtx.removed[e.ID] = true
	return nil
}

func (r *WaitingListRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.visibleEntries(nil, eventID)), nil
}

var _ waitinglist.Repository = (*WaitingListRepository)(nil)
