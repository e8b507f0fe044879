package telegram

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"rideNowBot/internal/delivery"
	"rideNowBot/internal/domain/models"
	"rideNowBot/internal/pricing"
	"rideNowBot/internal/statemachine"
	"rideNowBot/pkg/client/journey"
)

type fakeOut struct {
	actions []delivery.Action
}

func (f *fakeOut) Enqueue(a delivery.Action) {
	f.actions = append(f.actions, a)
}

func (f *fakeOut) edits() []delivery.Action {
	var out []delivery.Action
	for _, a := range f.actions {
		if a.Kind == delivery.KindEdit {
			out = append(out, a)
		}
	}
	return out
}

type fakeTexts struct {
	slugs map[string]string
}

func (f *fakeTexts) Text(ctx context.Context, lang, slug string, params map[string]string) string {
	return slug
}

func (f *fakeTexts) Slug(ctx context.Context, lang, text string) string {
	return f.slugs[text]
}

type fakeUsers struct {
	langs map[int64]string
}

func (f *fakeUsers) GetOrCreate(ctx context.Context, tgID int64, fullName, username string) (*models.TelegramUser, error) {
	return &models.TelegramUser{TgID: tgID, FullName: fullName}, nil
}

func (f *fakeUsers) Language(ctx context.Context, tgID int64) (string, error) {
	return f.langs[tgID], nil
}

func (f *fakeUsers) SetLanguage(ctx context.Context, tgID int64, lang string) error {
	if f.langs == nil {
		f.langs = make(map[int64]string)
	}
	f.langs[tgID] = lang
	return nil
}

type fakePassengers struct {
	registered map[int64]bool
}

func (f *fakePassengers) IsRegistered(ctx context.Context, tgID int64) bool {
	return f.registered[tgID]
}

func (f *fakePassengers) Register(ctx context.Context, p models.Passenger) error {
	if f.registered == nil {
		f.registered = make(map[int64]bool)
	}
	f.registered[p.TelegramID] = true
	return nil
}

type fakeLocations struct {
	history []models.SavedLocation
}

func (f *fakeLocations) FromGPS(ctx context.Context, userID int64, loc *models.Location) models.Location {
	return models.Location{Address: "resolved", Lat: loc.Lat, Lng: loc.Lng}
}

func (f *fakeLocations) FromText(ctx context.Context, userID int64, text string, history []models.SavedLocation) (models.Location, error) {
	return models.Location{Address: text, Lat: 41.3, Lng: 69.2}, nil
}

func (f *fakeLocations) History(ctx context.Context, userID int64) []models.SavedLocation {
	return f.history
}

type fakeOrders struct {
	created []journey.Order
}

func (f *fakeOrders) CreateOrder(ctx context.Context, order journey.Order) (string, error) {
	f.created = append(f.created, order)
	return "order-1", nil
}

type fixture struct {
	bot        *Bot
	out        *fakeOut
	orders     *fakeOrders
	passengers *fakePassengers
	users      *fakeUsers
	store      *statemachine.Store
}

func newFixture(registered bool) *fixture {
	out := &fakeOut{}
	orders := &fakeOrders{}
	passengers := &fakePassengers{registered: map[int64]bool{}}
	if registered {
		passengers.registered[1] = true
	}

	users := &fakeUsers{langs: map[int64]string{1: "ru"}}
	store := statemachine.NewStore()

	bot := NewBot(BotConfig{
		Out:   out,
		Store: store,
		Texts: &fakeTexts{slugs: map[string]string{
			"Назад":  "back",
			"Отмена": "cancel",
		}},
		Users:      users,
		Passengers: passengers,
		Locations:  &fakeLocations{},
		Orders:     orders,
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return &fixture{bot: bot, out: out, orders: orders, passengers: passengers, users: users, store: store}
}

func (f *fixture) dispatch(t *testing.T, ev models.Event) {
	t.Helper()

	sess := f.store.Acquire(ev.UserID)
	defer sess.Release()

	if err := f.bot.router.Dispatch(context.Background(), sess, ev); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
}

func (f *fixture) openDetails(t *testing.T) {
	t.Helper()

	sess := f.store.Acquire(1)
	sess.Scratch().LocBegin = &models.Location{Address: "A", Lat: 41.30, Lng: 69.20}
	sess.Scratch().LocEnd = &models.Location{Address: "B", Lat: 41.40, Lng: 69.30}

	err := f.bot.openDetails(context.Background(), sess, models.Event{UserID: 1, ChatID: 1})
	sess.Release()
	if err != nil {
		t.Fatalf("openDetails: %v", err)
	}
}

func TestUnregisteredUserIsRedirectedToRegistration(t *testing.T) {
	f := newFixture(false)

	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, IsCallback: true, Data: "order", FullName: "Ali Valiev"})

	sess := f.store.Acquire(1)
	defer sess.Release()
	if sess.Phase() != models.PhaseRegistrationName {
		t.Errorf("phase = %v, want registration", sess.Phase())
	}
	if len(f.out.actions) != 1 || f.out.actions[0].Text != "ask_full_name" {
		t.Errorf("actions = %+v", f.out.actions)
	}
}

func TestRegistrationFlow(t *testing.T) {
	f := newFixture(false)

	// любое событие уводит в регистрацию
	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, Text: "привет"})
	// имя
	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, Text: "Ali Valiev"})

	sess := f.store.Acquire(1)
	if sess.Phase() != models.PhaseRegistrationContact {
		t.Fatalf("phase = %v, want contact", sess.Phase())
	}
	sess.Release()

	// невалидный номер не проходит
	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, Text: "+79991234567"})
	if f.passengers.registered[1] {
		t.Fatal("foreign number must be rejected")
	}

	// валидный узбекский номер завершает регистрацию
	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, Text: "+998901234567"})
	if !f.passengers.registered[1] {
		t.Fatal("passenger not registered")
	}

	sess = f.store.Acquire(1)
	defer sess.Release()
	if sess.Phase() != models.PhaseUnset {
		t.Errorf("phase after registration = %v", sess.Phase())
	}
}

func TestPhoneValidation(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"+998901234567", true},
		{"+998331234567", true},
		{"+998711234567", true},
		{"+998921234567", false},
		{"+79991234567", false},
		{"998901234567", false},
		{"+99890123456", false},
		{"+9989012345678", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			if got := phoneRe.MatchString(tt.phone); got != tt.valid {
				t.Errorf("phoneRe(%q) = %v, want %v", tt.phone, got, tt.valid)
			}
		})
	}
}

func TestOpenDetailsComputesDefaultPrice(t *testing.T) {
	f := newFixture(true)
	f.openDetails(t)

	sess := f.store.Acquire(1)
	defer sess.Release()

	scratch := sess.Scratch()
	if scratch.PassengerCount != 1 || scratch.TravelClass != pricing.ClassEconomy {
		t.Errorf("defaults = %+v", scratch)
	}
	if scratch.Price != pricing.ComputePrice(scratch.DistanceKm, pricing.ClassEconomy, 1) {
		t.Errorf("price mismatch: %d", scratch.Price)
	}

	// сводка уходит через общую очередь доставки
	var sent bool
	for _, a := range f.out.actions {
		if a.Kind == delivery.KindSend && a.Text == "trip_details" {
			sent = true
		}
	}
	if !sent {
		t.Errorf("trip details not enqueued, actions = %+v", f.out.actions)
	}
}

// Повторное нажатие уже выбранной кнопки не должно дергать edit
func TestDetailsIdempotence(t *testing.T) {
	f := newFixture(true)
	f.openDetails(t)

	press := func(data string) {
		f.dispatch(t, models.Event{UserID: 1, ChatID: 1, MessageID: 77, IsCallback: true, Data: data})
	}

	press("two")
	if got := len(f.out.edits()); got != 1 {
		t.Fatalf("edits after change = %d, want 1", got)
	}
	if f.out.edits()[0].MessageID != 77 {
		t.Errorf("edit must target the callback message, got id %d", f.out.edits()[0].MessageID)
	}

	press("two")
	if got := len(f.out.edits()); got != 1 {
		t.Errorf("repeated press produced extra edit, edits = %d", got)
	}

	press("class:business")
	if got := len(f.out.edits()); got != 2 {
		t.Errorf("class change must re-render, edits = %d", got)
	}

	sess := f.store.Acquire(1)
	defer sess.Release()
	scratch := sess.Scratch()
	if scratch.Price != pricing.ComputePrice(scratch.DistanceKm, pricing.ClassBusiness, 2) {
		t.Errorf("price not recomputed: %+v", scratch)
	}
}

func TestFemaleToggle(t *testing.T) {
	f := newFixture(true)
	f.openDetails(t)

	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, IsCallback: true, Data: "female_passenger"})

	sess := f.store.Acquire(1)
	if !sess.Scratch().HasFemale {
		t.Error("female flag not set")
	}
	sess.Release()

	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, IsCallback: true, Data: "female_passenger"})

	sess = f.store.Acquire(1)
	defer sess.Release()
	if sess.Scratch().HasFemale {
		t.Error("female flag must toggle off")
	}
}

func TestStartTravelCreatesOrder(t *testing.T) {
	f := newFixture(true)
	f.openDetails(t)

	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, MessageID: 77, IsCallback: true, Data: "two"})
	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, MessageID: 77, IsCallback: true, Data: "start"})

	if len(f.orders.created) != 1 {
		t.Fatalf("orders created = %d, want 1", len(f.orders.created))
	}

	order := f.orders.created[0]
	if order.PassengerCount != 2 || order.StartAddress != "A" || order.EndAddress != "B" {
		t.Errorf("order = %+v", order)
	}

	sess := f.store.Acquire(1)
	defer sess.Release()
	if sess.Phase() != models.PhaseTravelStart {
		t.Errorf("phase = %v, want travel_start", sess.Phase())
	}

	// сводка удалена, отправлено searching_driver
	var deleted, searching bool
	for _, a := range f.out.actions {
		if a.Kind == delivery.KindDelete && a.MessageID == 77 {
			deleted = true
		}
		if a.Kind == delivery.KindSend && a.Text == "searching_driver" {
			searching = true
		}
	}
	if !deleted || !searching {
		t.Errorf("actions = %+v", f.out.actions)
	}
}

func TestStaleDetailsCallbackIsIgnored(t *testing.T) {
	f := newFixture(true)

	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, IsCallback: true, Data: "two"})

	if len(f.out.actions) != 0 {
		t.Errorf("stale callback produced actions: %+v", f.out.actions)
	}
}

func TestBackFromDetailsReturnsToDestination(t *testing.T) {
	f := newFixture(true)
	f.openDetails(t)

	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, IsCallback: true, Data: "back"})

	sess := f.store.Acquire(1)
	defer sess.Release()
	if sess.Phase() != models.PhaseTravelLocEnd {
		t.Errorf("phase = %v, want travel_loc_end", sess.Phase())
	}
}

func TestLocationFlow(t *testing.T) {
	f := newFixture(true)

	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, IsCallback: true, Data: "start_now"})

	sess := f.store.Acquire(1)
	if sess.Phase() != models.PhaseTravelLocBegin {
		t.Fatalf("phase = %v", sess.Phase())
	}
	sess.Release()

	// точка отправления геопозицией
	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, Location: &models.Location{Lat: 41.30, Lng: 69.20}})

	sess = f.store.Acquire(1)
	if sess.Phase() != models.PhaseTravelLocEnd {
		t.Fatalf("phase after begin = %v", sess.Phase())
	}
	if sess.Scratch().LocBegin == nil || sess.Scratch().LocBegin.Address != "resolved" {
		t.Fatalf("LocBegin = %+v", sess.Scratch().LocBegin)
	}
	sess.Release()

	// назначение текстом
	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, Text: "Юнусабад"})

	sess = f.store.Acquire(1)
	defer sess.Release()
	if sess.Phase() != models.PhaseTravelDetails {
		t.Errorf("phase after end = %v", sess.Phase())
	}
	if sess.Scratch().LocEnd == nil {
		t.Error("LocEnd not set")
	}
}

func TestBackButtonInLocationPhase(t *testing.T) {
	f := newFixture(true)

	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, IsCallback: true, Data: "start_now"})
	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, Text: "Назад"})

	sess := f.store.Acquire(1)
	defer sess.Release()
	if sess.Phase() != models.PhaseUnset {
		t.Errorf("phase = %v, want unset after back to order page", sess.Phase())
	}
}

// Выбор языка должен работать до регистрации: это первое, что видит
// новый пользователь
func TestUnregisteredUserCanPickLanguage(t *testing.T) {
	f := newFixture(false)

	f.dispatch(t, models.Event{UserID: 2, ChatID: 2, IsCallback: true, Data: "lang:ru"})

	if got := f.users.langs[2]; got != "ru" {
		t.Errorf("language after lang:ru callback = %q, want %q", got, "ru")
	}

	// после выбора языка незарегистрированный пользователь уходит в регистрацию
	sess := f.store.Acquire(2)
	defer sess.Release()
	if sess.Phase() != models.PhaseRegistrationName {
		t.Errorf("phase = %v, want registration", sess.Phase())
	}

	var confirmed, asked bool
	for _, a := range f.out.actions {
		switch a.Text {
		case "language_updated":
			confirmed = true
		case "ask_full_name":
			asked = true
		}
	}
	if !confirmed || !asked {
		t.Errorf("actions = %+v", f.out.actions)
	}
}

// Неизвестный callback со старой клавиатуры не должен сбрасывать черновик
func TestUnknownCallbackKeepsDraft(t *testing.T) {
	f := newFixture(true)
	f.openDetails(t)

	f.dispatch(t, models.Event{UserID: 1, ChatID: 1, MessageID: 77, IsCallback: true, Data: "bogus"})

	sess := f.store.Acquire(1)
	defer sess.Release()
	if sess.Phase() != models.PhaseTravelDetails {
		t.Errorf("phase = %v, want travel_details", sess.Phase())
	}
	if sess.Scratch().LocBegin == nil || sess.Scratch().LocEnd == nil {
		t.Error("trip draft was cleared by unknown callback")
	}
}

func TestRenderHistory(t *testing.T) {
	history := []models.SavedLocation{
		{Name: "Дом"},
		{Name: "Работа"},
	}

	got := renderHistory(history)
	want := "1: Дом\n2: Работа"
	if got != want {
		t.Errorf("renderHistory = %q, want %q", got, want)
	}
}
