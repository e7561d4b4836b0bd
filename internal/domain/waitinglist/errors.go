package waitinglist

import "errors"

var (
	ErrEntryNotFound = errors.New("順番待ちエントリが見つかりません")
	// ErrPositionTaken は同じイベントで同じポジションが並行して採番された場合に返る
	ErrPositionTaken = errors.New("順番待ちのポジションが競合しました")
)
