package pricing

import "math"

// Классы обслуживания
const (
	ClassEconomy  = "economy"
	ClassStandard = "standard"
	ClassBusiness = "business"
)

// Тарифы: сум за километр для каждого класса
var rates = map[string]int64{
	ClassEconomy:  500,
	ClassStandard: 800,
	ClassBusiness: 1200,
}

const defaultRate = 500

// MaxPassengers — значение 3 означает "3+ / свободная машина"
const MaxPassengers = 3

// Rate возвращает тариф класса. Неизвестный класс считается эконом-классом.
func Rate(travelClass string) int64 {
	if r, ok := rates[travelClass]; ok {
		return r
	}
	return defaultRate
}

// ComputePrice считает стоимость поездки:
// floor(расстояние × тариф класса × число пассажиров).
func ComputePrice(distanceKm float64, travelClass string, passengerCount int) int64 {
	return int64(math.Floor(distanceKm * float64(Rate(travelClass)) * float64(passengerCount)))
}

const earthRadiusKm = 6371.0

// DistanceKm возвращает расстояние по большому кругу между двумя точками
// в километрах (формула гаверсинусов).
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
