package memory

import (
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/waitinglist"
)

// Tx は書き込みをステージし、コミット時にまとめて反映する
type Tx struct {
	store *Store

	events   map[string]*event.Event
	bookings map[string]*booking.Booking
	entries  map[string]*waitinglist.Entry
	removed  map[string]bool

	locks []string
	done  bool
}

// Commit はステージした書き込みを反映し、行ロックを解放する
func (t *Tx) Commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.done {
		return ErrTxDone
	}
	for id, e := range t.events {
		s.events[id] = e
	}
	for id, b := range t.bookings {
		s.bookings[id] = b
	}
	for id := range t.removed {
		delete(s.entries, id)
	}
	for id, e := range t.entries {
		s.entries[id] = e
	}
	t.finish()
	return nil
}

// Rollback はステージした書き込みを破棄する。終了済みなら何もしない
func (t *Tx) Rollback() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.done {
		return nil
	}
	t.finish()
	return nil
}

// finish は s.mu を保持した状態で呼ぶこと
func (t *Tx) finish() {
	for _, key := range t.locks {
		delete(t.store.locks, key)
	}
	t.locks = nil
	t.done = true
	t.store.cond.Broadcast()
}

var _ transaction.Tx = (*Tx)(nil)
