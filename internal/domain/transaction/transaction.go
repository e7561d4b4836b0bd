package transaction

import "context"

// Tx は1回の予約処理を包むトランザクションハンドル
// リポジトリの書き込み系メソッドへ明示的に渡す（コールバック方式は使わない）
type Tx interface {
	// Commit はトランザクションをコミットする
	Commit() error
	// Rollback はトランザクションをロールバックする（コミット後の呼び出しはエラーを返すだけで無害）
	Rollback() error
}

// Manager はトランザクションを開始する
type Manager interface {
	Begin(ctx context.Context) (Tx, error)
}
