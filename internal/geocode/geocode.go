package geocode

import "errors"

// Границы зоны обслуживания (Узбекистан)
const (
	RegionMinLat = 37.0
	RegionMaxLat = 45.0
	RegionMinLng = 56.0
	RegionMaxLng = 73.0
)

// ErrOutOfServiceArea — найденный адрес вне зоны обслуживания
var ErrOutOfServiceArea = errors.New("location is out of service area")

// NotFoundError — адрес не найден; Suggestion может содержать
// похожее название города из справочника
type NotFoundError struct {
	Query      string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	return "location not found: " + e.Query
}

// Result — один результат прямого геокодирования
type Result struct {
	DisplayName string
	Lat         float64
	Lng         float64
	Country     string
	CountryCode string
	Region      string
	City        string
	Type        string
	Confidence  float64
	Provider    string
	InRegion    bool
}

// Place — результат обратного геокодирования
type Place struct {
	DisplayName string `json:"display_name"`
	Mahalla     string `json:"mahalla"`
	City        string `json:"city"`
	Region      string `json:"region"`
	FullAddress string `json:"full_address"`
}

// InServiceRegion проверяет, лежит ли точка в зоне обслуживания
func InServiceRegion(lat, lng float64) bool {
	return lat >= RegionMinLat && lat <= RegionMaxLat &&
		lng >= RegionMinLng && lng <= RegionMaxLng
}
