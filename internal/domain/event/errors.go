package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound          = errors.New("イベントが見つかりません")
	ErrEventNameRequired      = errors.New("イベント名は必須です")
	ErrInvalidTicketCount     = errors.New("チケット数は1以上である必要があります")
	ErrSoldOut                = errors.New("チケットは売り切れです")
	ErrOptimisticLockConflict = errors.New("楽観的ロックの競合が発生しました")
)
