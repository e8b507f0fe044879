package geocode

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

// GoogleProvider — дополнительный провайдер через Google Geocoding API.
// Подключается только при заданном API-ключе.
type GoogleProvider struct {
	client *maps.Client
}

func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	return &GoogleProvider{client: client}, nil
}

func (p *GoogleProvider) Name() string { return "google_maps" }

func (p *GoogleProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	r := &maps.GeocodingRequest{
		Address:  query,
		Region:   "uz",
		Language: "uz",
	}

	resp, err := p.client.Geocode(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("geocoding api error: %w", err)
	}

	results := make([]Result, 0, len(resp))
	for _, item := range resp {
		res := Result{
			DisplayName: item.FormattedAddress,
			Lat:         item.Geometry.Location.Lat,
			Lng:         item.Geometry.Location.Lng,
			Confidence:  0.7,
			Provider:    p.Name(),
		}

		for _, comp := range item.AddressComponents {
			for _, t := range comp.Types {
				switch t {
				case "country":
					res.Country = comp.LongName
					res.CountryCode = strings.ToLower(comp.ShortName)
				case "locality":
					res.City = comp.LongName
				case "administrative_area_level_1":
					res.Region = comp.LongName
				}
			}
		}

		res.InRegion = res.CountryCode == "uz"
		results = append(results, res)

		if len(results) >= limit {
			break
		}
	}

	return results, nil
}
