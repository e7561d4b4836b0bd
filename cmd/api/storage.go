package main

import (
	"fmt"

	"github.com/sanosuguru/go-event-ticket-booking/internal/api/handler"
	"github.com/sanosuguru/go-event-ticket-booking/internal/config"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/booking"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/transaction"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/user"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/waitinglist"
	"github.com/sanosuguru/go-event-ticket-booking/internal/infrastructure/memory"
	"github.com/sanosuguru/go-event-ticket-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-event-ticket-booking/internal/pkg/logger"
)

// storage はドライバーごとのリポジトリ一式
type storage struct {
	tm       transaction.Manager
	events   event.Repository
	bookings booking.Repository
	waiting  waitinglist.Repository
	users    user.Repository
	pinger   handler.Pinger
	close    func() error
}

func openStorage(cfg *config.Config) (*storage, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		logger.Warn("インメモリストレージで起動します（再起動でデータは失われます）")
		s := memory.NewStore()
		return &storage{
			tm:       s,
			events:   s.Events(),
			bookings: s.Bookings(),
			waiting:  s.WaitingList(),
			users:    s.Users(),
			pinger:   s,
			close:    func() error { return nil },
		}, nil

	case config.DriverPostgres:
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("DB接続エラー: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if _, err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &storage{
			tm:       postgres.NewTxManager(db),
			events:   postgres.NewEventRepository(db),
			bookings: postgres.NewBookingRepository(db),
			waiting:  postgres.NewWaitingListRepository(db),
			users:    postgres.NewUserRepository(db),
			pinger:   postgres.NewPinger(db),
			close:    db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("不明なストレージドライバー: %q", cfg.Database.Driver)
	}
}
