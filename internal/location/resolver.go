package location

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"rideNowBot/internal/domain/models"
	"rideNowBot/internal/geocode"
	"rideNowBot/internal/pkg/logger/sl"
)

// MaxHistoryItems — сколько сохраненных адресов показываем и принимаем
// в качестве номера из истории
const MaxHistoryItems = 15

// ReverseGeocoder превращает координаты в адрес
type ReverseGeocoder interface {
	Place(ctx context.Context, lat, lng float64) geocode.Place
}

// ForwardSearcher ищет места по текстовому запросу
type ForwardSearcher interface {
	Search(ctx context.Context, query string) ([]geocode.Result, error)
}

// HistoryStore хранит сохраненные адреса пользователя
type HistoryStore interface {
	UserLocations(ctx context.Context, userID int64) ([]models.SavedLocation, error)
	SaveLocation(ctx context.Context, userID int64, loc models.SavedLocation) error
}

// Resolver приводит любой пользовательский ввод к точке с адресом:
// геопозицию через обратное геокодирование, номер из истории к
// сохраненному адресу, остальной текст через поиск по провайдерам.
type Resolver struct {
	reverse ReverseGeocoder
	search  ForwardSearcher
	history HistoryStore
	log     *slog.Logger
}

func NewResolver(reverse ReverseGeocoder, search ForwardSearcher, history HistoryStore, log *slog.Logger) *Resolver {
	return &Resolver{
		reverse: reverse,
		search:  search,
		history: history,
		log:     log,
	}
}

// FromGPS резолвит присланную геопозицию. Ошибок не возвращает:
// при недоступном геокодере адресом становятся координаты.
func (r *Resolver) FromGPS(ctx context.Context, userID int64, loc *models.Location) models.Location {
	place := r.reverse.Place(ctx, loc.Lat, loc.Lng)

	resolved := models.Location{
		Address:    place.FullAddress,
		Lat:        loc.Lat,
		Lng:        loc.Lng,
		Heading:    loc.Heading,
		LivePeriod: loc.LivePeriod,
		Accuracy:   loc.Accuracy,
	}

	r.saveAsync(userID, resolved)

	return resolved
}

// FromText резолвит текстовый ввод. Число в пределах истории трактуется
// как выбор сохраненного адреса, любой другой текст уходит в поиск.
// Места вне зоны обслуживания отклоняются с ErrOutOfServiceArea,
// ненайденные с NotFoundError и подсказкой из справочника городов.
func (r *Resolver) FromText(ctx context.Context, userID int64, text string, history []models.SavedLocation) (models.Location, error) {
	if idx, ok := historyIndex(text, len(history)); ok {
		saved := history[idx-1]
		return models.Location{
			Address: saved.Name,
			Lat:     saved.Lat,
			Lng:     saved.Lng,
		}, nil
	}

	results, err := r.search.Search(ctx, text)
	if err != nil {
		return models.Location{}, err
	}

	if len(results) == 0 {
		return models.Location{}, &geocode.NotFoundError{
			Query:      text,
			Suggestion: geocode.Suggest(text),
		}
	}

	best := results[0]
	if !geocode.InServiceRegion(best.Lat, best.Lng) {
		return models.Location{}, geocode.ErrOutOfServiceArea
	}

	resolved := models.Location{
		Address: best.DisplayName,
		Lat:     best.Lat,
		Lng:     best.Lng,
	}

	r.saveAsync(userID, resolved)

	return resolved, nil
}

// History возвращает до MaxHistoryItems сохраненных адресов пользователя.
// Недоступный бэкенд не ломает поток: возвращается пустой список.
func (r *Resolver) History(ctx context.Context, userID int64) []models.SavedLocation {
	locations, err := r.history.UserLocations(ctx, userID)
	if err != nil {
		r.log.Warn("failed to load location history",
			slog.Int64("user_id", userID), sl.Err(err))
		return nil
	}

	if len(locations) > MaxHistoryItems {
		locations = locations[:MaxHistoryItems]
	}

	return locations
}

// saveAsync пишет адрес в историю в фоне, не задерживая ответ пользователю
func (r *Resolver) saveAsync(userID int64, loc models.Location) {
	if r.history == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		saved := models.SavedLocation{Name: loc.Address, Lat: loc.Lat, Lng: loc.Lng}
		if err := r.history.SaveLocation(ctx, userID, saved); err != nil {
			r.log.Warn("failed to save location to history",
				slog.Int64("user_id", userID), sl.Err(err))
		}
	}()
}

// historyIndex распознает номер сохраненного адреса: целое число
// от 1 до размера истории, но не больше MaxHistoryItems
func historyIndex(text string, historyLen int) (int, bool) {
	idx, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}

	limit := historyLen
	if limit > MaxHistoryItems {
		limit = MaxHistoryItems
	}

	if idx < 1 || idx > limit {
		return 0, false
	}

	return idx, true
}
