package passenger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"rideNowBot/internal/domain/models"
	"rideNowBot/pkg/client/journey"
)

type fakeBackend struct {
	passengers map[int64]models.Passenger
	getCalls   int
	createErr  error
}

func (f *fakeBackend) GetPassenger(ctx context.Context, tgID int64) (models.Passenger, error) {
	f.getCalls++
	p, ok := f.passengers[tgID]
	if !ok {
		return models.Passenger{}, journey.ErrNotFound
	}
	return p, nil
}

func (f *fakeBackend) CreatePassenger(ctx context.Context, p models.Passenger) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.passengers == nil {
		f.passengers = make(map[int64]models.Passenger)
	}
	f.passengers[p.TelegramID] = p
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIsRegistered(t *testing.T) {
	backend := &fakeBackend{passengers: map[int64]models.Passenger{
		1: {TelegramID: 1, Name: "Ali", IsActive: true},
		2: {TelegramID: 2, Name: "Vali", IsActive: false},
	}}

	s := New(backend, nil, testLogger())

	tests := []struct {
		name string
		tgID int64
		want bool
	}{
		{"активный профиль", 1, true},
		{"деактивированный профиль", 2, false},
		{"нет профиля", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.IsRegistered(context.Background(), tt.tgID); got != tt.want {
				t.Errorf("IsRegistered(%d) = %v, want %v", tt.tgID, got, tt.want)
			}
		})
	}
}

func TestIsRegisteredBackendDownIsFalse(t *testing.T) {
	backend := &backendDown{}
	s := New(backend, nil, testLogger())

	if s.IsRegistered(context.Background(), 1) {
		t.Error("unreachable backend must read as unregistered")
	}
}

type backendDown struct{}

func (b *backendDown) GetPassenger(ctx context.Context, tgID int64) (models.Passenger, error) {
	return models.Passenger{}, errors.New("connection refused")
}

func (b *backendDown) CreatePassenger(ctx context.Context, p models.Passenger) error {
	return errors.New("connection refused")
}

func TestRegisterActivatesProfile(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, nil, testLogger())

	err := s.Register(context.Background(), models.Passenger{TelegramID: 5, Name: "Ali", Contact: "+998901234567"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := s.Profile(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsActive {
		t.Error("registered passenger must be active")
	}
}

func TestRegisterBackendError(t *testing.T) {
	backend := &fakeBackend{createErr: errors.New("boom")}
	s := New(backend, nil, testLogger())

	if err := s.Register(context.Background(), models.Passenger{TelegramID: 5}); err == nil {
		t.Error("expected error")
	}
}
