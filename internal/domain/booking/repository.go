package booking

import (
	"context"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// Save は予約の状態を更新する（楽観的ロック、トランザクション必須）
	Save(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// FindActiveByIDForUser はユーザーの有効な予約をイベント付きで取得する
	// 見つからない場合とキャンセル済みの場合はどちらも ErrBookingNotFound
	FindActiveByIDForUser(ctx context.Context, tx transaction.Tx, bookingID, userID string) (*Booking, error)
}
