package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/waitinglist"
	"github.com/sanosuguru/go-event-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-event-ticket-booking/internal/pkg/metrics"
)

const (
	// DefaultMaxAttempts は予約の最大試行回数（初回を含む）
	DefaultMaxAttempts = 3

	promotionScanLimit = 100
)

// ErrConcurrentUpdate は競合が解消しないまま試行回数を使い切った場合に返る
var ErrConcurrentUpdate = errors.New("同時更新が競合したため予約できませんでした。再度お試しください")

// BookingService はチケット予約・キャンセル・順番待ち繰り上げを扱う
type BookingService struct {
	txManager   transaction.Manager
	eventRepo   event.Repository
	bookingRepo booking.Repository
	waitingRepo waitinglist.Repository
	cache       StatusCache
	metrics     *metrics.Metrics
	maxAttempts int
}

// BookingOption は BookingService の任意設定
type BookingOption func(*BookingService)

// WithStatusCache はコミット後に無効化するキャッシュを設定する
func WithStatusCache(c StatusCache) BookingOption {
	return func(s *BookingService) { s.cache = c }
}

// WithMetrics はメトリクスを設定する
func WithMetrics(m *metrics.Metrics) BookingOption {
	return func(s *BookingService) { s.metrics = m }
}

// WithMaxAttempts は試行回数を設定する。1未満は無視される
func WithMaxAttempts(n int) BookingOption {
	return func(s *BookingService) {
		if n >= 1 {
			s.maxAttempts = n
		}
	}
}

func NewBookingService(tm transaction.Manager, er event.Repository, br booking.Repository, wr waitinglist.Repository, opts ...BookingOption) *BookingService {
	s := &BookingService{
		txManager:   tm,
		eventRepo:   er,
		bookingRepo: br,
		waitingRepo: wr,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type BookTicketInput struct {
	UserID  string
	EventID string
}

// BookTicketResult は Booking と WaitingEntry のどちらか一方だけが入る
type BookTicketResult struct {
	Booking      *booking.Booking
	WaitingEntry *waitinglist.Entry
}

// IsWaitlisted は順番待ちに回ったかを返す
func (r *BookTicketResult) IsWaitlisted() bool {
	return r.WaitingEntry != nil
}

// BookEventTicket は空きがあれば予約し、なければ順番待ちに登録する
// 在庫の楽観的ロック競合時はトランザクションをやり直す
func (s *BookingService) BookEventTicket(ctx context.Context, input BookTicketInput) (*BookTicketResult, error) {
	log := logger.FromContext(ctx).With(zap.String("event_id", input.EventID), zap.String("user_id", input.UserID))

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result, err := s.tryBook(ctx, input)
		if err == nil {
			s.invalidate(ctx, input.EventID)
			if result.IsWaitlisted() {
				s.metrics.RecordBooking(metrics.ResultWaitlisted)
				log.Info("順番待ちに登録しました", zap.Int("position", result.WaitingEntry.Position))
			} else {
				s.metrics.RecordBooking(metrics.ResultBooked)
				log.Info("チケットを予約しました", zap.String("booking_id", result.Booking.ID))
			}
			return result, nil
		}
		if !isRetryable(err) {
			s.metrics.RecordBooking(bookingErrorResult(err))
			return nil, err
		}
		log.Debug("予約が競合しました", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < s.maxAttempts {
			s.metrics.RecordBookingRetry()
		}
	}

	s.metrics.RecordBooking(metrics.ResultConflict)
	log.Warn("再試行の上限に達しました", zap.Int("max_attempts", s.maxAttempts))
	return nil, ErrConcurrentUpdate
}

// tryBook は1回分の試行を1トランザクションで行う。失敗時は何も残さない
func (s *BookingService) tryBook(ctx context.Context, input BookTicketInput) (*BookTicketResult, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	ev, err := s.eventRepo.GetByID(ctx, tx, input.EventID)
	if err != nil {
		return nil, err
	}

	result := &BookTicketResult{}
	if ev.HasAvailableTickets() {
		readVersion := ev.Version
		if err := ev.ReserveTicket(); err != nil {
			return nil, err
		}
		if err := s.eventRepo.Save(ctx, tx, ev, readVersion); err != nil {
			return nil, err
		}
		b := booking.NewBooking(input.UserID, input.EventID)
		if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
			return nil, err
		}
		result.Booking = b
	} else {
		position, err := s.waitingRepo.NextPosition(ctx, tx, input.EventID)
		if err != nil {
			return nil, err
		}
		entry := waitinglist.NewEntry(input.UserID, input.EventID, position)
		if err := s.waitingRepo.Create(ctx, tx, entry); err != nil {
			return nil, err
		}
		result.WaitingEntry = entry
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return result, nil
}

type CancelBookingInput struct {
	UserID    string
	BookingID string
}

// CancelBookingResult は繰り上げがあった場合のみ NewBooking と PromotedEntry が入る
type CancelBookingResult struct {
	Cancelled     *booking.Booking
	NewBooking    *booking.Booking
	PromotedEntry *waitinglist.Entry
}

// CancelBooking は予約をキャンセルし、空いた1枚を順番待ちの先頭に割り当てる
// 再試行はしない
func (s *BookingService) CancelBooking(ctx context.Context, input CancelBookingInput) (*CancelBookingResult, error) {
	log := logger.FromContext(ctx).With(zap.String("booking_id", input.BookingID), zap.String("user_id", input.UserID))

	result, err := s.cancel(ctx, input)
	if err != nil {
		s.metrics.RecordCancellation(bookingErrorResult(err))
		return nil, err
	}

	s.invalidate(ctx, result.Cancelled.EventID)
	if result.NewBooking != nil {
		s.metrics.RecordCancellation("promoted")
		s.metrics.RecordPromotions(metrics.SourceCancellation, 1)
		log.Info("キャンセルし、順番待ちの先頭に割り当てました",
			zap.String("promoted_user_id", result.NewBooking.UserID),
			zap.Int("position", result.PromotedEntry.Position))
	} else {
		s.metrics.RecordCancellation("cancelled")
		log.Info("予約をキャンセルしました")
	}
	return result, nil
}

func (s *BookingService) cancel(ctx context.Context, input CancelBookingInput) (*CancelBookingResult, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	b, err := s.bookingRepo.FindActiveByIDForUser(ctx, tx, input.BookingID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := b.Cancel(); err != nil {
		return nil, booking.ErrBookingNotFound
	}
	if err := s.bookingRepo.Save(ctx, tx, b); err != nil {
		// 先に別のキャンセルが確定していた
		if errors.Is(err, booking.ErrOptimisticLockConflict) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, err
	}

	ev := b.Event
	if ev == nil {
		if ev, err = s.eventRepo.GetByID(ctx, tx, b.EventID); err != nil {
			return nil, err
		}
	}
	readVersion := ev.Version
	ev.ReleaseTicket()
	if err := s.eventRepo.Save(ctx, tx, ev, readVersion); err != nil {
		if errors.Is(err, event.ErrOptimisticLockConflict) {
			return nil, ErrConcurrentUpdate
		}
		return nil, err
	}

	result := &CancelBookingResult{Cancelled: b}
	newBooking, entry, err := s.promoteEarliest(ctx, tx, ev)
	switch {
	case errors.Is(err, waitinglist.ErrEntryNotFound):
	case errors.Is(err, event.ErrOptimisticLockConflict):
		return nil, ErrConcurrentUpdate
	case err != nil:
		return nil, err
	default:
		result.NewBooking = newBooking
		result.PromotedEntry = entry
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}
	return result, nil
}

// promoteEarliest は順番待ちの先頭（ポジション最小）を予約に変える
// 空なら waitinglist.ErrEntryNotFound を返す
// イベント行を先に更新してから順番待ちを削除する（ロック順を揃えるため）
func (s *BookingService) promoteEarliest(ctx context.Context, tx transaction.Tx, ev *event.Event) (*booking.Booking, *waitinglist.Entry, error) {
	entry, err := s.waitingRepo.Earliest(ctx, tx, ev.ID)
	if err != nil {
		return nil, nil, err
	}

	readVersion := ev.Version
	if err := ev.ReserveTicket(); err != nil {
		return nil, nil, err
	}
	if err := s.eventRepo.Save(ctx, tx, ev, readVersion); err != nil {
		return nil, nil, err
	}
	if err := s.waitingRepo.Remove(ctx, tx, entry); err != nil {
		return nil, nil, err
	}
	b := booking.NewBooking(entry.UserID, ev.ID)
	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		return nil, nil, err
	}
	return b, entry, nil
}

// PromoteWaitingList は空きがある限り順番待ちを先頭から繰り上げ、繰り上げた件数を返す
func (s *BookingService) PromoteWaitingList(ctx context.Context, eventID string) (int, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	ev, err := s.eventRepo.GetByID(ctx, tx, eventID)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for ev.HasAvailableTickets() {
		_, _, err := s.promoteEarliest(ctx, tx, ev)
		if errors.Is(err, waitinglist.ErrEntryNotFound) {
			break
		}
		if err != nil {
			return 0, err
		}
		promoted++
	}
	if promoted == 0 {
		return 0, nil
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("コミットに失敗: %w", err)
	}
	s.invalidate(ctx, eventID)
	s.metrics.RecordPromotions(metrics.SourceReconciler, promoted)
	return promoted, nil
}

// EventsAwaitingPromotion は空きがあるのに順番待ちが残っているイベントを返す
func (s *BookingService) EventsAwaitingPromotion(ctx context.Context) ([]string, error) {
	return s.eventRepo.ListIDsAwaitingPromotion(ctx, promotionScanLimit)
}

// invalidate はキャッシュを無効化する。失敗してもTTLで失効するので警告のみ
func (s *BookingService) invalidate(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("キャッシュ無効化に失敗しました", zap.String("event_id", eventID), zap.Error(err))
	}
}

// isRetryable は新しいトランザクションでやり直せば解消しうる競合かを返す。
// 順番待ちの採番はイベント行のロックで直列化されるため ErrPositionTaken は対象外
func isRetryable(err error) bool {
	return errors.Is(err, event.ErrOptimisticLockConflict)
}

func bookingErrorResult(err error) string {
	switch {
	case IsNotFound(err):
		return metrics.ResultNotFound
	case errors.Is(err, ErrConcurrentUpdate):
		return metrics.ResultConflict
	default:
		return metrics.ResultError
	}
}
