package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	redisinfra "github.com/sanosuguru/go-event-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-event-ticket-booking/internal/pkg/metrics"
)

const (
	reconcilerLockKey = "waitlist-reconciler"

	// ロックは周期の2倍保持し、イベントごとに延長する
	lockTTLFactor = 2
	minLockTTL    = 10 * time.Second
)

// WaitlistPromoter は取り残された順番待ちを繰り上げるインターフェース
type WaitlistPromoter interface {
	EventsAwaitingPromotion(ctx context.Context) ([]string, error)
	PromoteWaitingList(ctx context.Context, eventID string) (int, error)
}

// Locker は複数レプリカで同時に整合処理が走らないようにする
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (redisinfra.Lock, error)
}

// WaitlistReconciler は空きがあるのに順番待ちが残っているイベントを定期的に繰り上げるワーカー
// 予約の順番待ち登録とキャンセルが同時に起きると、空き1枚と待ち1人が残ることがある
type WaitlistReconciler struct {
	promoter WaitlistPromoter
	locker   Locker
	metrics  *metrics.Metrics
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWaitlistReconciler は新しいワーカーを作成。locker と m は nil でもよい
func NewWaitlistReconciler(p WaitlistPromoter, locker Locker, m *metrics.Metrics, interval time.Duration) *WaitlistReconciler {
	return &WaitlistReconciler{
		promoter: p,
		locker:   locker,
		metrics:  m,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start はワーカーを開始。Stop かコンテキストのキャンセルまでブロックする
func (r *WaitlistReconciler) Start(ctx context.Context) {
	logger.Info("順番待ち整合ワーカー開始", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("順番待ち整合ワーカー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("順番待ち整合ワーカー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// Stop はワーカーを停止
func (r *WaitlistReconciler) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// lockTTL は1回の整合処理より長く保持できるロックの有効期限を返す
func (r *WaitlistReconciler) lockTTL() time.Duration {
	ttl := lockTTLFactor * r.interval
	if ttl < minLockTTL {
		ttl = minLockTTL
	}
	return ttl
}

// reconcile は1回分の整合処理を行い、繰り上げた件数を返す
func (r *WaitlistReconciler) reconcile(ctx context.Context) int {
	log := logger.Get()

	var lock redisinfra.Lock
	if r.locker != nil {
		start := time.Now()
		acquired, err := r.locker.AcquireLock(ctx, reconcilerLockKey, r.lockTTL())
		r.metrics.ObserveLock("acquire", start, err)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				log.Debug("他のレプリカが整合処理中のためスキップ")
			} else {
				log.Warn("整合処理のロック取得に失敗", zap.Error(err))
			}
			return 0
		}
		lock = acquired
		defer func() {
			start := time.Now()
			err := lock.Release(ctx)
			r.metrics.ObserveLock("release", start, err)
			if err != nil {
				log.Warn("整合処理のロック解放に失敗", zap.Error(err))
			}
		}()
	}

	eventIDs, err := r.promoter.EventsAwaitingPromotion(ctx)
	if err != nil {
		log.Error("繰り上げ対象イベントの取得失敗", zap.Error(err))
		return 0
	}

	total := 0
	for i, eventID := range eventIDs {
		if lock != nil && i > 0 {
			if err := r.extendLock(ctx, lock); err != nil {
				// 残りは次の周期で処理される
				log.Warn("整合処理のロック延長に失敗したため中断", zap.Int("remaining", len(eventIDs)-i), zap.Error(err))
				break
			}
		}
		n, err := r.promoter.PromoteWaitingList(ctx, eventID)
		if err != nil {
			// 次の周期で再試行される
			log.Warn("順番待ちの繰り上げ失敗", zap.String("event_id", eventID), zap.Error(err))
			continue
		}
		total += n
	}

	if total > 0 {
		log.Info("順番待ちを繰り上げ", zap.Int("count", total), zap.Int("events", len(eventIDs)))
	} else {
		log.Debug("繰り上げ対象なし")
	}
	return total
}

func (r *WaitlistReconciler) extendLock(ctx context.Context, lock redisinfra.Lock) error {
	start := time.Now()
	err := lock.Extend(ctx, r.lockTTL())
	r.metrics.ObserveLock("extend", start, err)
	return err
}
