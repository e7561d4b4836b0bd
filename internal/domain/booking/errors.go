package booking

import "errors"

// Booking ドメインのエラー定義
var (
	// ErrBookingNotFound は存在しない予約と既にキャンセル済みの予約を区別しない
	ErrBookingNotFound         = errors.New("予約が見つからないか、既にキャンセルされています")
	ErrBookingAlreadyCancelled = errors.New("予約は既にキャンセルされています")
	ErrUserIDRequired          = errors.New("ユーザーIDは必須です")
	ErrEventIDRequired         = errors.New("イベントIDは必須です")
	ErrOptimisticLockConflict  = errors.New("楽観的ロックの競合が発生しました")
)
