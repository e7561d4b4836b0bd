package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/event"
	"github.com/sanosuguru/go-event-ticket-booking/internal/domain/waitinglist"
	redisinfra "github.com/sanosuguru/go-event-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-event-ticket-booking/internal/pkg/logger"
)

type EventService struct {
	eventRepo   event.Repository
	waitingRepo waitinglist.Repository
	cache       StatusCache
}

// NewEventService は EventService を作成する。cache は nil でもよい
func NewEventService(eventRepo event.Repository, waitingRepo waitinglist.Repository, cache StatusCache) *EventService {
	return &EventService{eventRepo: eventRepo, waitingRepo: waitingRepo, cache: cache}
}

type CreateEventInput struct {
	Name             string
	AvailableTickets int
}

func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	e := event.NewEvent(input.Name, input.AvailableTickets)
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("バリデーションエラー: %w", err)
	}
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("イベント作成に失敗しました: %w", err)
	}
	return e, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	return s.eventRepo.GetByID(ctx, nil, id)
}

// GetEventStatus は残りチケット数と順番待ち件数を返す（キャッシュ優先）
func (s *EventService) GetEventStatus(ctx context.Context, eventID string) (*event.Status, error) {
	if s.cache != nil {
		status, err := s.cache.Get(ctx, eventID)
		if err == nil {
			return status, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得に失敗しました", zap.String("event_id", eventID), zap.Error(err))
		}
	}

	e, err := s.eventRepo.GetByID(ctx, nil, eventID)
	if err != nil {
		return nil, err
	}
	count, err := s.waitingRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	status := &event.Status{AvailableTickets: e.AvailableTickets, WaitingCount: count}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, eventID, status); cacheErr != nil {
			logger.Warn("キャッシュ保存に失敗しました", zap.String("event_id", eventID), zap.Error(cacheErr))
		}
	}
	return status, nil
}
