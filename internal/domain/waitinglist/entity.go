package waitinglist

import "time"

// Entry はイベントの順番待ちリストの1件
// Position はイベント内で一意で、小さいほど先に繰り上がる
type Entry struct {
	ID        string
	UserID    string
	EventID   string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewEntry は順番待ちエントリを作成する
func NewEntry(userID, eventID string, position int) *Entry {
	now := time.Now()
	return &Entry{
		UserID:    userID,
		EventID:   eventID,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NextPosition は現在の最大ポジションから次のポジションを求める
// 空のリストでは 1 を返す
func NextPosition(maxPosition int, empty bool) int {
	if empty {
		return 1
	}
	return maxPosition + 1
}
