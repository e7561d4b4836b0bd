package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/sanosuguru/go-event-ticket-booking/internal/config"
)

// NewConnection はPostgreSQLへの接続を作成する
func NewConnection(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗しました: %w", err)
	}

	// 接続プール設定
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	return db, nil
}

// Pinger は /health/ready 用にDB接続を確認する
type Pinger struct {
	db *sqlx.DB
}

// NewPinger は Pinger を作成する
func NewPinger(db *sqlx.DB) *Pinger {
	return &Pinger{db: db}
}

// Ping はデータベース接続を確認する
func (p *Pinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
