package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"rideNowBot/internal/pkg/logger/sl"
)

const (
	locationIQSearchURL = "https://us1.locationiq.com/v1/search"
	nominatimSearchURL  = "https://nominatim.openstreetmap.org/search"

	forwardCacheTTL = 24 * time.Hour
	searchLimit     = 5
)

// ForwardProvider — провайдер прямого геокодирования
type ForwardProvider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}

// Searcher гоняет запрос по цепочке провайдеров, пока не наберет
// достаточно результатов. Найденное кэшируется на сутки.
type Searcher struct {
	providers []ForwardProvider
	cache     *twoTierCache
	log       *slog.Logger
}

func NewSearcher(shared *redis.Client, log *slog.Logger, providers ...ForwardProvider) *Searcher {
	return &Searcher{
		providers: providers,
		cache:     newTwoTierCache(shared, forwardCacheTTL),
		log:       log,
	}
}

// Search возвращает ранжированный список мест по текстовому запросу.
// Провайдеры опрашиваются по очереди, дубли убираются по округленным
// координатам, места внутри зоны обслуживания идут первыми.
func (s *Searcher) Search(ctx context.Context, query string) ([]Result, error) {
	query = normalizeQuery(query)
	if len(query) < 2 {
		return nil, nil
	}

	cacheKey := "fwd:" + query

	var cached []Result
	if s.cache.get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	var all []Result
	for _, p := range s.providers {
		results, err := p.Search(ctx, query, searchLimit*2)
		if err != nil {
			s.log.Warn("geocoding provider failed",
				slog.String("provider", p.Name()), sl.Err(err))
			continue
		}

		all = append(all, results...)
		if len(all) >= searchLimit*2 {
			break
		}
	}

	results := rankResults(dedupeResults(all), searchLimit)
	if len(results) > 0 {
		s.cache.set(ctx, cacheKey, results)
	}

	return results, nil
}

// normalizeQuery чистит запрос и приводит узбекскую кириллицу
// к виду, который понимают геокодеры
func normalizeQuery(query string) string {
	query = strings.ToLower(strings.TrimSpace(query))

	replacer := strings.NewReplacer(
		"ё", "е",
		"ў", "o",
		"қ", "k",
		"ғ", "g",
	)

	return replacer.Replace(query)
}

// dedupeResults убирает дубли по координатам, округленным до 4 знаков
func dedupeResults(results []Result) []Result {
	seen := make(map[string]struct{}, len(results))
	unique := results[:0]

	for _, r := range results {
		key := fmt.Sprintf("%.4f,%.4f", r.Lat, r.Lng)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}

	return unique
}

func rankResults(results []Result, limit int) []Result {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].InRegion != results[j].InRegion {
			return results[i].InRegion
		}
		return results[i].Confidence > results[j].Confidence
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results
}

// nominatimSearchItem — общий формат ответа LocationIQ и Nominatim
type nominatimSearchItem struct {
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Type        string           `json:"type"`
	Importance  float64          `json:"importance"`
	Address     nominatimAddress `json:"address"`
}

func parseSearchItem(item nominatimSearchItem, provider string) (Result, bool) {
	lat, err := strconv.ParseFloat(item.Lat, 64)
	if err != nil {
		return Result{}, false
	}
	lng, err := strconv.ParseFloat(item.Lon, 64)
	if err != nil {
		return Result{}, false
	}

	code := strings.ToLower(item.Address.CountryCode)

	return Result{
		DisplayName: item.DisplayName,
		Lat:         lat,
		Lng:         lng,
		Country:     item.Address.Country,
		CountryCode: code,
		Region:      firstNonEmpty(item.Address.State, item.Address.Region),
		City:        firstNonEmpty(item.Address.City, item.Address.Town, item.Address.Village),
		Type:        item.Type,
		Confidence:  item.Importance,
		Provider:    provider,
		InRegion:    code == "uz",
	}, true
}

// LocationIQProvider — основной провайдер (платный, быстрый)
type LocationIQProvider struct {
	apiKey string
	httpc  *http.Client
}

func NewLocationIQProvider(apiKey string, httpc *http.Client) *LocationIQProvider {
	return &LocationIQProvider{apiKey: apiKey, httpc: httpc}
}

func (p *LocationIQProvider) Name() string { return "locationiq" }

func (p *LocationIQProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{
		"key":              {p.apiKey},
		"q":                {query},
		"format":           {"json"},
		"addressdetails":   {"1"},
		"limit":            {strconv.Itoa(limit)},
		"dedupe":           {"1"},
		"normalizeaddress": {"1"},
	}

	return searchJSON(ctx, p.httpc, locationIQSearchURL+"?"+params.Encode(), "", p.Name())
}

// NominatimProvider — бесплатный резервный провайдер (OpenStreetMap)
type NominatimProvider struct {
	userAgent string
	httpc     *http.Client
}

func NewNominatimProvider(userAgent string, httpc *http.Client) *NominatimProvider {
	return &NominatimProvider{userAgent: userAgent, httpc: httpc}
}

func (p *NominatimProvider) Name() string { return "nominatim" }

func (p *NominatimProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{
		"q":              {query},
		"format":         {"json"},
		"addressdetails": {"1"},
		"limit":          {strconv.Itoa(limit)},
		"countrycodes":   {"uz"},
		"dedupe":         {"1"},
	}

	return searchJSON(ctx, p.httpc, nominatimSearchURL+"?"+params.Encode(), p.userAgent, p.Name())
}

func searchJSON(ctx context.Context, httpc *http.Client, fullURL, userAgent, provider string) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d", provider, resp.StatusCode)
	}

	var items []nominatimSearchItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(items))
	for _, item := range items {
		if r, ok := parseSearchItem(item, provider); ok {
			results = append(results, r)
		}
	}

	return results, nil
}
