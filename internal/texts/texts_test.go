package texts

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type fakeStore struct {
	messages map[string]map[string]string
	slugs    map[string]string
	calls    int
}

func (f *fakeStore) Message(_ context.Context, slug string) (map[string]string, error) {
	f.calls++
	msg, ok := f.messages[slug]
	if !ok {
		return nil, errors.New("not found")
	}
	return msg, nil
}

func (f *fakeStore) SlugByText(_ context.Context, lang, text string) (string, error) {
	return f.slugs[lang+":"+text], nil
}

func testResolver(store *fakeStore) *Resolver {
	return NewResolver(store, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolverText(t *testing.T) {
	store := &fakeStore{
		messages: map[string]map[string]string{
			"greeting":     {"ru": "Привет, {name}!", "uz": "Salom, {name}!"},
			"trip_details": {"en": "From {loc_begin} to {loc_end}, price {price}"},
		},
	}
	r := testResolver(store)
	ctx := context.Background()

	tests := []struct {
		name   string
		lang   string
		slug   string
		params map[string]string
		want   string
	}{
		{"подстановка параметра", "ru", "greeting", map[string]string{"name": "Алишер"}, "Привет, Алишер!"},
		{"другой язык", "uz", "greeting", map[string]string{"name": "Alisher"}, "Salom, Alisher!"},
		{"несколько параметров", "en", "trip_details",
			map[string]string{"loc_begin": "A", "loc_end": "B", "price": "16000"},
			"From A to B, price 16000"},
		{"отсутствующий слаг возвращается как есть", "ru", "no_such_slug", nil, "no_such_slug"},
		{"отсутствующий язык возвращает слаг", "fr", "greeting", nil, "greeting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Text(ctx, tt.lang, tt.slug, tt.params)
			if got != tt.want {
				t.Errorf("Text(%q, %q) = %q, want %q", tt.lang, tt.slug, got, tt.want)
			}
		})
	}
}

func TestResolverSlug(t *testing.T) {
	store := &fakeStore{
		slugs: map[string]string{
			"ru:Назад": "back",
			"uz:Orqaga": "back",
		},
	}
	r := testResolver(store)
	ctx := context.Background()

	if got := r.Slug(ctx, "ru", "Назад"); got != "back" {
		t.Errorf("Slug(ru, Назад) = %q, want back", got)
	}
	if got := r.Slug(ctx, "ru", "Неизвестный текст"); got != "" {
		t.Errorf("Slug for unknown text = %q, want empty", got)
	}
}
