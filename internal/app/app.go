package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rideNowBot/config"
	"rideNowBot/internal/delivery"
	"rideNowBot/internal/geocode"
	"rideNowBot/internal/location"
	"rideNowBot/internal/pkg/logger/sl"
	"rideNowBot/internal/repository/postgres"
	"rideNowBot/internal/repository/rediscache"
	"rideNowBot/internal/service/passenger"
	"rideNowBot/internal/statemachine"
	"rideNowBot/internal/telegram"
	"rideNowBot/internal/texts"
	"rideNowBot/pkg/client/journey"
)

type App struct {
	handler *telegram.Handler
	queue   *delivery.Queue
	log     *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	pool, err := postgres.NewPool(ctx, postgres.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Username: cfg.Postgres.Username,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	log.Info("connected to postgres")

	redisClient, err := rediscache.New(ctx, rediscache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	log.Info("connected to redis")

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	transport := telegram.NewBotTransport(api)

	queue := delivery.New(transport, log, delivery.Config{
		QueueSize:      cfg.Delivery.QueueSize,
		WorkerCount:    cfg.Delivery.WorkerCount,
		EnqueueTimeout: cfg.Delivery.EnqueueTimeout,
	})

	journeyClient := journey.New(cfg.Journey.BaseURL, []byte(cfg.Journey.Secret), cfg.Journey.Timeout)

	httpc := &http.Client{Timeout: 10 * time.Second}

	providers := make([]geocode.ForwardProvider, 0, 3)
	if cfg.Geocode.LocationIQKey != "" {
		providers = append(providers, geocode.NewLocationIQProvider(cfg.Geocode.LocationIQKey, httpc))
	}
	providers = append(providers, geocode.NewNominatimProvider(cfg.Geocode.UserAgent, httpc))
	if cfg.Geocode.GoogleKey != "" {
		google, err := geocode.NewGoogleProvider(cfg.Geocode.GoogleKey)
		if err != nil {
			log.Warn("google geocoder disabled", sl.Err(err))
		} else {
			providers = append(providers, google)
		}
	}

	resolver := location.NewResolver(
		geocode.NewReverseGeocoder(httpc, redisClient, cfg.Geocode.UserAgent, log),
		geocode.NewSearcher(redisClient, log, providers...),
		journeyClient,
		log,
	)

	messageStore := postgres.NewMessageStorage(pool)

	bot := telegram.NewBot(telegram.BotConfig{
		Out:        queue,
		Store:      statemachine.NewStore(),
		Texts:      texts.NewResolver(messageStore, redisClient, log),
		Users:      postgres.NewUserStorage(pool),
		Langs:      rediscache.NewLangCache(redisClient),
		Passengers: passenger.New(journeyClient, redisClient, log),
		Locations:  resolver,
		Orders:     journeyClient,
		Flood:      rediscache.NewFloodGate(redisClient, cfg.Flood.Interval),
		Log:        log,
	})

	return &App{
		handler: telegram.NewHandler(api, bot, log),
		queue:   queue,
		log:     log,
	}, nil
}

// Run запускает очередь доставки и прием апдейтов,
// блокируется до отмены контекста
func (a *App) Run(ctx context.Context) error {
	go a.queue.Run(ctx)

	return a.handler.Run(ctx)
}
