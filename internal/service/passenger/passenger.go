package passenger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"rideNowBot/internal/domain/models"
	"rideNowBot/internal/pkg/logger/sl"
	"rideNowBot/pkg/client/journey"
)

const profileCacheTTL = 5 * time.Minute

// Backend — journey-бэкенд с профилями пассажиров
type Backend interface {
	GetPassenger(ctx context.Context, tgID int64) (models.Passenger, error)
	CreatePassenger(ctx context.Context, p models.Passenger) error
}

// Service отвечает на главный вопрос маршрутизации: зарегистрирован ли
// пользователь. Профили кэшируются в redis на несколько минут, чтобы
// не дергать бэкенд на каждом сообщении.
type Service struct {
	backend Backend
	cache   *redis.Client
	log     *slog.Logger
}

func New(backend Backend, cache *redis.Client, log *slog.Logger) *Service {
	return &Service{
		backend: backend,
		cache:   cache,
		log:     log,
	}
}

// Profile возвращает профиль пассажира.
// Незарегистрированный пассажир — journey.ErrNotFound.
func (s *Service) Profile(ctx context.Context, tgID int64) (models.Passenger, error) {
	key := cacheKey(tgID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var p models.Passenger
			if err := json.Unmarshal(raw, &p); err == nil {
				return p, nil
			}
		}
	}

	p, err := s.backend.GetPassenger(ctx, tgID)
	if err != nil {
		return models.Passenger{}, err
	}

	s.cacheProfile(ctx, key, p)

	return p, nil
}

// IsRegistered проверяет наличие активного профиля.
// Недоступный бэкенд трактуется как "не зарегистрирован": пользователь
// попадет в регистрацию повторно, это безопаснее отказа в обслуживании.
func (s *Service) IsRegistered(ctx context.Context, tgID int64) bool {
	p, err := s.Profile(ctx, tgID)
	if err != nil {
		if !errors.Is(err, journey.ErrNotFound) {
			s.log.Warn("passenger backend unavailable",
				slog.Int64("tg_id", tgID), sl.Err(err))
		}
		return false
	}

	return p.IsActive
}

// Register создает профиль пассажира и сразу прогревает кэш
func (s *Service) Register(ctx context.Context, p models.Passenger) error {
	p.IsActive = true

	if err := s.backend.CreatePassenger(ctx, p); err != nil {
		return fmt.Errorf("create passenger: %w", err)
	}

	s.cacheProfile(ctx, cacheKey(p.TelegramID), p)

	return nil
}

func (s *Service) cacheProfile(ctx context.Context, key string, p models.Passenger) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, raw, profileCacheTTL).Err(); err != nil {
		s.log.Warn("failed to cache passenger profile", sl.Err(err))
	}
}

func cacheKey(tgID int64) string {
	return fmt.Sprintf("passenger:%d", tgID)
}
