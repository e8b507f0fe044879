package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"rideNowBot/internal/pkg/logger/sl"
)

const (
	nominatimReverseURL = "https://nominatim.openstreetmap.org/reverse"
	reverseCacheTTL     = time.Hour
)

// ReverseGeocoder превращает координаты в адрес через Nominatim.
// Результаты кэшируются по округленным координатам на час.
// Ошибки провайдера никогда не всплывают: вместо адреса подставляется
// строка с координатами.
type ReverseGeocoder struct {
	httpc     *http.Client
	cache     *twoTierCache
	userAgent string
	lookupURL string
	log       *slog.Logger
}

func NewReverseGeocoder(httpc *http.Client, shared *redis.Client, userAgent string, log *slog.Logger) *ReverseGeocoder {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}

	return &ReverseGeocoder{
		httpc:     httpc,
		cache:     newTwoTierCache(shared, reverseCacheTTL),
		userAgent: userAgent,
		lookupURL: nominatimReverseURL,
		log:       log,
	}
}

// Place возвращает адрес точки. Структурно всегда успешен:
// при недоступном геокодере возвращается адрес из координат.
func (g *ReverseGeocoder) Place(ctx context.Context, lat, lng float64) Place {
	key := fmt.Sprintf("rev:%.6f:%.6f", lat, lng)

	var cached Place
	if g.cache.get(ctx, key, &cached) {
		return cached
	}

	place, err := g.lookup(ctx, lat, lng)
	if err != nil {
		g.log.Warn("reverse geocode failed, using coordinates as address",
			slog.Float64("lat", lat), slog.Float64("lng", lng), sl.Err(err))
		place = coordinatesPlace(lat, lng)
	}

	g.cache.set(ctx, key, place)

	return place
}

type nominatimAddress struct {
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	Quarter       string `json:"quarter"`
	Residential   string `json:"residential"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	Municipality  string `json:"municipality"`
	County        string `json:"county"`
	District      string `json:"district"`
	State         string `json:"state"`
	Region        string `json:"region"`
	Province      string `json:"province"`
	Country       string `json:"country"`
	CountryCode   string `json:"country_code"`
}

type nominatimReverseResponse struct {
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

func (g *ReverseGeocoder) lookup(ctx context.Context, lat, lng float64) (Place, error) {
	params := url.Values{
		"lat":             {fmt.Sprintf("%f", lat)},
		"lon":             {fmt.Sprintf("%f", lng)},
		"format":          {"jsonv2"},
		"addressdetails":  {"1"},
		"zoom":            {"18"},
		"accept-language": {"uz"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.lookupURL+"?"+params.Encode(), nil)
	if err != nil {
		return Place{}, err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpc.Do(req)
	if err != nil {
		return Place{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Place{}, fmt.Errorf("nominatim reverse: status %d", resp.StatusCode)
	}

	var data nominatimReverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Place{}, err
	}

	return parsePlace(data), nil
}

// parsePlace собирает короткий адрес: махалля, город/район, область
func parsePlace(data nominatimReverseResponse) Place {
	a := data.Address

	mahalla := firstNonEmpty(a.Neighbourhood, a.Suburb, a.Quarter, a.Residential)
	city := firstNonEmpty(a.City, a.Town, a.Municipality, a.County, a.District)
	region := firstNonEmpty(a.State, a.Region, a.Province)

	var parts []string
	for _, p := range []string{mahalla, city, region} {
		if p != "" {
			parts = append(parts, p)
		}
	}

	full := strings.Join(parts, ", ")
	if full == "" {
		full = data.DisplayName
	}

	return Place{
		DisplayName: data.DisplayName,
		Mahalla:     mahalla,
		City:        city,
		Region:      region,
		FullAddress: full,
	}
}

func coordinatesPlace(lat, lng float64) Place {
	addr := fmt.Sprintf("Koordinatalar: %.6f, %.6f", lat, lng)
	return Place{
		DisplayName: fmt.Sprintf("Location at %.6f, %.6f", lat, lng),
		FullAddress: addr,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
