package memory

import (
	"context"
	"sort"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
)

// EventRepository はイベント在庫リポジトリのインメモリ実装
type EventRepository struct{ store *Store }

func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = newID()
	stored := *e
	s.events[e.ID] = &stored
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, tx transaction.Tx, id string) (*event.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	mtx, err := s.txFrom(tx)
	if err != nil {
		return nil, err
	}
	e, ok := s.visibleEvent(mtx, id)
	if !ok {
		return nil, event.ErrEventNotFound
	}
	found := *e
	return &found, nil
}

// Save は行ロックを待ってからバージョンを比較する
func (r *EventRepository) Save(ctx context.Context, tx transaction.Tx, e *event.Event, expectedVersion int) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	mtx, err := s.writeTx(tx)
	if err != nil {
		return err
	}
	s.lock(mtx, "event:"+e.ID)

	current, ok := s.visibleEvent(mtx, e.ID)
	if !ok || current.Version != expectedVersion {
		return event.ErrOptimisticLockConflict
	}
	if e.AvailableTickets < 0 {
		return event.ErrSoldOut
	}

	e.Version = expectedVersion + 1
	staged := *e
	mtx.events[e.ID] = &staged
	return nil
}

func (r *EventRepository) ListIDsAwaitingPromotion(ctx context.Context, limit int) ([]string, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	waiting := make(map[string]bool)
	for _, entry := range s.entries {
		waiting[entry.EventID] = true
	}
	var candidates []*event.Event
	for id := range waiting {
		if e, ok := s.events[id]; ok && e.AvailableTickets > 0 {
			candidates = append(candidates, e)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].UpdatedAt.Before(candidates[j].UpdatedAt)
	})

	ids := make([]string, 0, len(candidates))
	for _, e := range candidates {
		if len(ids) == limit {
			break
		}
		ids = append(ids, e.ID)
	}
	return ids, nil
}

var _ event.Repository = (*EventRepository)(nil)
