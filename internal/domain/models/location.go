package models

// Location — нормализованная точка с адресом.
// Неизменяема после создания.
type Location struct {
	Address    string
	Lat        float64
	Lng        float64
	Heading    int
	LivePeriod int
	Accuracy   float64
}

// SavedLocation — ранее сохраненный адрес пользователя из location-бэкенда
type SavedLocation struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}
