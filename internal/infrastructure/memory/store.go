// Package memory はストア一式のインメモリ実装を提供する。
// 行ロックはコミットかロールバックまで保持され、PostgreSQL の
// READ COMMITTED における UPDATE と一意制約の待ち合わせと同じ振る舞いになる。
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/user"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/waitinglist"
)

var (
	ErrTxRequired = errors.New("トランザクションが必要です")
	ErrTxDone     = errors.New("トランザクションは既に終了しています")
)

// Store はコミット済みの状態と行ロック表を持つ
type Store struct {
	mu   sync.Mutex
	cond *sync.Cond

	users    map[string]*user.User
	emails   map[string]string
	events   map[string]*event.Event
	bookings map[string]*booking.Booking
	entries  map[string]*waitinglist.Entry

	locks map[string]*Tx
}

// NewStore は空のストアを作成する
func NewStore() *Store {
	s := &Store{
		users:    make(map[string]*user.User),
		emails:   make(map[string]string),
		events:   make(map[string]*event.Event),
		bookings: make(map[string]*booking.Booking),
		entries:  make(map[string]*waitinglist.Entry),
		locks:    make(map[string]*Tx),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Begin は新しいトランザクションを開始する
func (s *Store) Begin(ctx context.Context) (transaction.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{
		store:    s,
		events:   make(map[string]*event.Event),
		bookings: make(map[string]*booking.Booking),
		entries:  make(map[string]*waitinglist.Entry),
		removed:  make(map[string]bool),
	}, nil
}

// Ping は常に成功する
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Events はイベント在庫リポジトリを返す
func (s *Store) Events() *EventRepository { return &EventRepository{store: s} }

// Bookings は予約リポジトリを返す
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{store: s} }

// WaitingList は順番待ちリポジトリを返す
func (s *Store) WaitingList() *WaitingListRepository { return &WaitingListRepository{store: s} }

// Users はユーザーリポジトリを返す
func (s *Store) Users() *UserRepository { return &UserRepository{store: s} }

// lock は key の行ロックを tx のために取得する。s.mu を保持した状態で呼ぶこと
func (s *Store) lock(tx *Tx, key string) {
	for {
		holder, ok := s.locks[key]
		if !ok {
			s.locks[key] = tx
			tx.locks = append(tx.locks, key)
			return
		}
		if holder == tx {
			return
		}
		s.cond.Wait()
	}
}

// txFrom は tx をこのストアのトランザクションとして取り出す。nil は読み取り専用
func (s *Store) txFrom(tx transaction.Tx) (*Tx, error) {
	if tx == nil {
		return nil, nil
	}
	mtx, ok := tx.(*Tx)
	if !ok || mtx.store != s {
		return nil, ErrTxRequired
	}
	if mtx.done {
		return nil, ErrTxDone
	}
	return mtx, nil
}

func (s *Store) writeTx(tx transaction.Tx) (*Tx, error) {
	mtx, err := s.txFrom(tx)
	if err != nil {
		return nil, err
	}
	if mtx == nil {
		return nil, ErrTxRequired
	}
	return mtx, nil
}

func newID() string {
	return uuid.New().String()
}

var _ transaction.Manager = (*Store)(nil)

// visibleEvent は tx（nil 可）から見えるイベントを返す。s.mu を保持した状態で呼ぶこと
func (s *Store) visibleEvent(tx *Tx, id string) (*event.Event, bool) {
	if tx != nil {
		if e, ok := tx.events[id]; ok {
			return e, true
		}
	}
	e, ok := s.events[id]
	return e, ok
}

func (s *Store) visibleBooking(tx *Tx, id string) (*booking.Booking, bool) {
	if tx != nil {
		if b, ok := tx.bookings[id]; ok {
			return b, true
		}
	}
	b, ok := s.bookings[id]
	return b, ok
}

// visibleEntries は tx（nil 可）から見えるイベントの順番待ちを返す
func (s *Store) visibleEntries(tx *Tx, eventID string) []*waitinglist.Entry {
	var result []*waitinglist.Entry
	for id, e := range s.entries {
		if e.EventID != eventID {
			continue
		}
		if tx != nil && tx.removed[id] {
			continue
		}
		result = append(result, e)
	}
	if tx != nil {
		for _, e := range tx.entries {
			if e.EventID == eventID {
				result = append(result, e)
			}
		}
	}
	return result
}
