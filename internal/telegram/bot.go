package telegram

import (
	"context"
	"log/slog"

	"rideNowBot/internal/delivery"
	"rideNowBot/internal/domain/models"
	"rideNowBot/internal/statemachine"
	"rideNowBot/pkg/client/journey"
)

const defaultLang = "uz"

// Outbound — очередь исходящих действий
type Outbound interface {
	Enqueue(a delivery.Action)
}

// Texts отдает локализованные тексты и распознает кнопки
type Texts interface {
	Text(ctx context.Context, lang, slug string, params map[string]string) string
	Slug(ctx context.Context, lang, text string) string
}

// UserStore — профили Telegram-пользователей в базе
type UserStore interface {
	GetOrCreate(ctx context.Context, tgID int64, fullName, username string) (*models.TelegramUser, error)
	Language(ctx context.Context, tgID int64) (string, error)
	SetLanguage(ctx context.Context, tgID int64, lang string) error
}

// LangCache кэширует код языка пользователя
type LangCache interface {
	Get(ctx context.Context, tgID int64) (string, bool)
	Set(ctx context.Context, tgID int64, lang string)
	Delete(ctx context.Context, tgID int64)
}

// Passengers отвечает за регистрацию в journey-бэкенде
type Passengers interface {
	IsRegistered(ctx context.Context, tgID int64) bool
	Register(ctx context.Context, p models.Passenger) error
}

// Locations резолвит пользовательский ввод в точки с адресом
type Locations interface {
	FromGPS(ctx context.Context, userID int64, loc *models.Location) models.Location
	FromText(ctx context.Context, userID int64, text string, history []models.SavedLocation) (models.Location, error)
	History(ctx context.Context, userID int64) []models.SavedLocation
}

// Orders регистрирует заказы на поездку
type Orders interface {
	CreateOrder(ctx context.Context, order journey.Order) (string, error)
}

// FloodLimiter отсекает слишком частые события
type FloodLimiter interface {
	Allow(ctx context.Context, tgID int64) bool
}

// Bot связывает диалоговую машину с Telegram: принимает события,
// раскидывает их по страницам и ставит ответы в очередь доставки
type Bot struct {
	out        Outbound
	store      *statemachine.Store
	router     *statemachine.Router
	texts      Texts
	users      UserStore
	langs      LangCache
	passengers Passengers
	locations  Locations
	orders     Orders
	flood      FloodLimiter
	log        *slog.Logger
}

type BotConfig struct {
	Out        Outbound
	Store      *statemachine.Store
	Texts      Texts
	Users      UserStore
	Langs      LangCache
	Passengers Passengers
	Locations  Locations
	Orders     Orders
	Flood      FloodLimiter
	Log        *slog.Logger
}

func NewBot(cfg BotConfig) *Bot {
	b := &Bot{
		out:        cfg.Out,
		store:      cfg.Store,
		texts:      cfg.Texts,
		users:      cfg.Users,
		langs:      cfg.Langs,
		passengers: cfg.Passengers,
		locations:  cfg.Locations,
		orders:     cfg.Orders,
		flood:      cfg.Flood,
		log:        cfg.Log,
	}

	b.router = statemachine.NewRouter(statemachine.RouterConfig{
		Actions: b.actionTable(),
		Phases:  b.phaseTable(),
		Guard:   b.registrationGuard,
		SlugOf: func(ctx context.Context, userID int64, text string) string {
			return b.texts.Slug(ctx, b.lang(ctx, userID, ""), text)
		},
		Log: cfg.Log,
	})

	return b
}

// actionTable — неизменяемая таблица действий: callback-данные
// и кнопки главного меню
func (b *Bot) actionTable() map[string]statemachine.Handler {
	return map[string]statemachine.Handler{
		"order":    b.pageOrder,
		"my_trips": b.pageMyTrips,
		"help":     b.pageHelp,

		"start_now":   b.pageStartNow,
		"plan_trip":   b.pagePlanTrip,
		"send_parcel": b.pageSendParcel,

		"one":              b.actionDetails,
		"two":              b.actionDetails,
		"free_car":         b.actionDetails,
		"female_passenger": b.actionDetails,
		"class:economy":    b.actionDetails,
		"class:standard":   b.actionDetails,
		"class:business":   b.actionDetails,
		"start":            b.actionStartTravel,

		"back": b.actionBack,

		"lang:uz": b.actionSetLanguage,
		"lang:ru": b.actionSetLanguage,
		"lang:en": b.actionSetLanguage,
	}
}

// phaseTable — обработчики текста и геопозиций по фазам диалога
func (b *Bot) phaseTable() map[models.Phase]statemachine.Handler {
	return map[models.Phase]statemachine.Handler{
		models.PhaseRegistrationName:    b.phaseRegistrationName,
		models.PhaseRegistrationContact: b.phaseRegistrationContact,
		models.PhaseTravelLocBegin:      b.phaseLocBegin,
		models.PhaseTravelLocEnd:        b.phaseLocEnd,
		models.PhaseTravelDetails:       b.phaseDetails,
		models.PhaseTravelStart:         b.phaseTravelStart,
	}
}

// lang возвращает язык пользователя: кэш, затем база, затем язык
// клиента Telegram, затем язык по умолчанию
func (b *Bot) lang(ctx context.Context, tgID int64, tgLang string) string {
	if b.langs != nil {
		if lang, ok := b.langs.Get(ctx, tgID); ok && lang != "" {
			return lang
		}
	}

	lang, err := b.users.Language(ctx, tgID)
	if err == nil && lang != "" {
		if b.langs != nil {
			b.langs.Set(ctx, tgID, lang)
		}
		return lang
	}

	if tgLang != "" {
		return tgLang
	}

	return defaultLang
}

// hasLanguage сообщает, выбирал ли пользователь язык явно
func (b *Bot) hasLanguage(ctx context.Context, tgID int64) bool {
	if b.langs != nil {
		if lang, ok := b.langs.Get(ctx, tgID); ok && lang != "" {
			return true
		}
	}

	lang, err := b.users.Language(ctx, tgID)
	return err == nil && lang != ""
}

func (b *Bot) send(chatID int64, text string, markup interface{}) {
	b.out.Enqueue(delivery.Action{
		Kind:        delivery.KindSend,
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	})
}

func (b *Bot) edit(chatID int64, messageID int, text string, markup interface{}) {
	b.out.Enqueue(delivery.Action{
		Kind:        delivery.KindEdit,
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup,
	})
}

func (b *Bot) delete(chatID int64, messageID int) {
	b.out.Enqueue(delivery.Action{
		Kind:      delivery.KindDelete,
		ChatID:    chatID,
		MessageID: messageID,
	})
}

// text — локализованный текст без параметров
func (b *Bot) text(ctx context.Context, ev models.Event, slug string) string {
	return b.texts.Text(ctx, b.lang(ctx, ev.UserID, ev.LanguageCode), slug, nil)
}

func (b *Bot) textP(ctx context.Context, ev models.Event, slug string, params map[string]string) string {
	return b.texts.Text(ctx, b.lang(ctx, ev.UserID, ev.LanguageCode), slug, params)
}
