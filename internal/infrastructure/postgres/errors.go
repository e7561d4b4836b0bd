package postgres

import (
	"errors"

	"github.com/lib/pq"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/user"
)

// PostgreSQL のエラーコード
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidTextRepr     = "22P02"
)

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

// イベントを参照する外部キー制約（migrations で命名）
var eventForeignKeys = map[string]bool{
	"fk_bookings_event":     true,
	"fk_waiting_list_event": true,
}

func pqConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

// foreignKeyError は外部キー違反を参照先のドメインエラーに変換する。
// イベント以外の参照と不正なIDはユーザーとして扱う
func foreignKeyError(err error) error {
	if isForeignKeyViolation(err) && eventForeignKeys[pqConstraint(err)] {
		return event.ErrEventNotFound
	}
	return user.ErrUserNotFound
}

func isUniqueViolation(err error) bool {
	return pqCode(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pqCode(err) == codeForeignKeyViolation
}

// isInvalidID は UUID として解釈できないIDが渡された場合に true
func isInvalidID(err error) bool {
	return pqCode(err) == codeInvalidTextRepr
}
