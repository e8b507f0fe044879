package journey

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rideNowBot/internal/domain/models"
)

func TestGetPassengerNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, []byte("secret"), time.Second)

	_, err := c.GetPassenger(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetPassengerSendsAuthHeaders(t *testing.T) {
	var gotAuth, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		json.NewEncoder(w).Encode(models.Passenger{TelegramID: 42, Name: "Ali", IsActive: true})
	}))
	defer srv.Close()

	c := New(srv.URL, []byte("secret"), time.Second)

	p, err := c.GetPassenger(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Ali" || !p.IsActive {
		t.Errorf("passenger = %+v", p)
	}
	if !strings.HasPrefix(gotAuth, "Bearer ") {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotAgent != "RideNowBot/1.0" {
		t.Errorf("User-Agent = %q", gotAgent)
	}
}

func TestServiceTokenIsCached(t *testing.T) {
	c := New("http://journey", []byte("secret"), time.Second)

	first, err := c.serviceToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.serviceToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Error("token must be reused until expiry")
	}

	// просроченный токен перевыпускается
	c.tokenExp = time.Now().Add(-time.Minute)
	third, err := c.serviceToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if third == "" || third == first && c.tokenExp.Before(time.Now()) {
		t.Error("expired token was not reissued")
	}
	if !c.tokenExp.After(time.Now()) {
		t.Error("tokenExp not refreshed")
	}
}

func TestCreateOrderGeneratesID(t *testing.T) {
	var received Order
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, []byte("secret"), time.Second)

	id, err := c.CreateOrder(context.Background(), Order{
		PassengerTgID:  42,
		StartAddress:   "Chilanzar",
		EndAddress:     "Yunusabad",
		TravelClass:    "economy",
		PassengerCount: 1,
		Price:          7500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("empty order id")
	}
	if received.ID != id {
		t.Errorf("server got id %q, client returned %q", received.ID, id)
	}
}

func TestUserLocationsNotFoundMeansEmptyHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, []byte("secret"), time.Second)

	locations, err := c.UserLocations(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locations != nil {
		t.Errorf("locations = %v, want nil", locations)
	}
}

func TestErrorStatusIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid contact"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, []byte("secret"), time.Second)

	err := c.CreatePassenger(context.Background(), models.Passenger{TelegramID: 42})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid contact") {
		t.Errorf("error must carry response body, got %v", err)
	}
}
