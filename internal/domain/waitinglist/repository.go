package waitinglist

import (
	"context"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
)

// Repository は順番待ちリストリポジトリのインターフェース
type Repository interface {
	// Create はエントリを追加する（トランザクション必須）
	// ポジションが既に使われている場合は ErrPositionTaken
	Create(ctx context.Context, tx transaction.Tx, entry *Entry) error

	// NextPosition はイベントの次のポジション（最大値+1、空なら1）を返す（トランザクション必須）
	// イベント行をコミットまでロックし、その時点で空きがあれば event.ErrOptimisticLockConflict
	NextPosition(ctx context.Context, tx transaction.Tx, eventID string) (int, error)

	// Earliest はポジションが最小のエントリを返す。空なら ErrEntryNotFound
	Earliest(ctx context.Context, tx transaction.Tx, eventID string) (*Entry, error)

	// Remove はエントリを削除する（トランザクション必須）
	Remove(ctx context.Context, tx transaction.Tx, entry *Entry) error

	// CountByEventID はイベントの順番待ち件数を返す
	CountByEventID(ctx context.Context, eventID string) (int, error)
}
