package pricing

import (
	"math"
	"testing"
)

func TestComputePrice(t *testing.T) {
	tests := []struct {
		name       string
		distanceKm float64
		class      string
		count      int
		want       int64
	}{
		{"стандарт, 2 пассажира", 10.0, ClassStandard, 2, 16000},
		{"эконом, 1 пассажир", 10.0, ClassEconomy, 1, 5000},
		{"бизнес, 3 пассажира", 5.0, ClassBusiness, 3, 18000},
		{"дробное расстояние округляется вниз", 1.999, ClassEconomy, 1, 999},
		{"неизвестный класс считается экономом", 10.0, "luxury", 1, 5000},
		{"нулевое расстояние", 0, ClassStandard, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePrice(tt.distanceKm, tt.class, tt.count)
			if got != tt.want {
				t.Errorf("ComputePrice(%v, %q, %d) = %d, want %d",
					tt.distanceKm, tt.class, tt.count, got, tt.want)
			}
		})
	}
}

// Цена зависит только от итоговой тройки параметров, не от порядка изменений
func TestComputePriceIsPure(t *testing.T) {
	first := ComputePrice(12.5, ClassBusiness, 2)

	for i := 0; i < 10; i++ {
		ComputePrice(float64(i), ClassEconomy, 1)
		ComputePrice(float64(i), ClassStandard, 3)
	}

	second := ComputePrice(12.5, ClassBusiness, 2)
	if first != second {
		t.Errorf("price changed between identical calls: %d != %d", first, second)
	}
}

func TestDistanceKm(t *testing.T) {
	// Ташкент — Самарканд, примерно 265-280 км по прямой
	got := DistanceKm(41.311081, 69.240562, 39.6542, 66.9597)
	if got < 250 || got > 300 {
		t.Errorf("Tashkent-Samarkand distance = %v, want ~265-280 km", got)
	}

	if d := DistanceKm(41.0, 69.0, 41.0, 69.0); math.Abs(d) > 1e-9 {
		t.Errorf("distance between identical points = %v, want 0", d)
	}
}
