package event

import (
	"context"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
)

// Repository はイベント在庫リポジトリのインターフェース
type Repository interface {
	// Create は新しいイベントを作成する
	Create(ctx context.Context, event *Event) error

	// GetByID はIDからイベントを取得する（tx が nil の場合はトランザクション外で読む）
	GetByID(ctx context.Context, tx transaction.Tx, id string) (*Event, error)

	// Save は expectedVersion と一致する場合のみ在庫を書き込む（コンペア・アンド・スワップ）
	// 一致しない場合は ErrOptimisticLockConflict を返す。成功時は event.Version が更新される
	Save(ctx context.Context, tx transaction.Tx, event *Event, expectedVersion int) error

	// ListIDsAwaitingPromotion は空きがあるのにキャンセル待ちが残っているイベントのIDを返す
	ListIDsAwaitingPromotion(ctx context.Context, limit int) ([]string, error)
}
