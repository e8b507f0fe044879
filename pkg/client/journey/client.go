package journey

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"rideNowBot/internal/domain/models"
)

// ErrNotFound — сущность отсутствует в journey-бэкенде
var ErrNotFound = errors.New("not found")

const (
	defaultTimeout = 10 * time.Second
	tokenTTL       = time.Hour
	userAgent      = "RideNowBot/1.0"
)

// Client — HTTP-клиент journey-бэкенда: пассажиры, история адресов,
// заказы. Авторизация сервисным JWT, токен кэшируется до истечения.
type Client struct {
	baseURL string
	httpc   *http.Client
	secret  []byte

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func New(baseURL string, secret []byte, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		secret:  secret,
	}
}

// GetPassenger возвращает пассажира по telegram id.
// Отсутствующий пассажир — это ErrNotFound, а не сбой.
func (c *Client) GetPassenger(ctx context.Context, tgID int64) (models.Passenger, error) {
	var p models.Passenger
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/passengers/%d", tgID), nil, &p)
	if err != nil {
		return models.Passenger{}, err
	}
	return p, nil
}

func (c *Client) CreatePassenger(ctx context.Context, p models.Passenger) error {
	return c.do(ctx, http.MethodPost, "/api/passengers", p, nil)
}

// UserLocations возвращает историю адресов пассажира, свежие первыми
func (c *Client) UserLocations(ctx context.Context, tgID int64) ([]models.SavedLocation, error) {
	var locations []models.SavedLocation
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/passengers/%d/locations", tgID), nil, &locations)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return locations, nil
}

func (c *Client) SaveLocation(ctx context.Context, tgID int64, loc models.SavedLocation) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/passengers/%d/locations", tgID), loc, nil)
}

// Order — заявка на поездку для диспетчеризации водителям
type Order struct {
	ID             string  `json:"id"`
	PassengerTgID  int64   `json:"passenger_tg_id"`
	StartAddress   string  `json:"start_address"`
	StartLat       float64 `json:"start_lat"`
	StartLng       float64 `json:"start_lng"`
	EndAddress     string  `json:"end_address"`
	EndLat         float64 `json:"end_lat"`
	EndLng         float64 `json:"end_lng"`
	TravelClass    string  `json:"travel_class"`
	PassengerCount int     `json:"passenger_count"`
	HasFemale      bool    `json:"has_female"`
	DistanceKm     float64 `json:"distance_km"`
	Price          int64   `json:"price"`
}

// CreateOrder регистрирует заказ и возвращает его id
func (c *Client) CreateOrder(ctx context.Context, order Order) (string, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	if err := c.do(ctx, http.MethodPost, "/api/orders", order, nil); err != nil {
		return "", err
	}

	return order.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}

	token, err := c.serviceToken()
	if err != nil {
		return fmt.Errorf("service token: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request to journey: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		return fmt.Errorf("journey status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode journey response: %w", err)
		}
	}

	return nil
}

// serviceToken возвращает кэшированный сервисный JWT,
// перевыпуская его за минуту до истечения
func (c *Client) serviceToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp.Add(-time.Minute)) {
		return c.token, nil
	}

	exp := time.Now().Add(tokenTTL)

	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["service"] = "passenger-bot"
	claims["exp"] = exp.Unix()

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	c.token = signed
	c.tokenExp = exp

	return signed, nil
}
