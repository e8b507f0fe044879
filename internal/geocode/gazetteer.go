package geocode

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Фиксированный справочник крупных городов для подсказок
var knownCities = []string{
	"tashkent",
	"samarkand",
	"bukhara",
	"fergana",
	"namangan",
	"andijan",
	"navoi",
	"khiva",
}

// Suggest подбирает похожее название города, если запрос не нашелся.
// Возвращает пустую строку, когда ничего достаточно близкого нет.
func Suggest(query string) string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return ""
	}

	best := ""
	bestScore := 0.0

	for _, city := range knownCities {
		// дистанция считается в рунах, длины должны считаться так же,
		// иначе кириллица завышает оценку
		dist := levenshtein.ComputeDistance(query, city)
		maxLen := utf8.RuneCountInString(query)
		if n := utf8.RuneCountInString(city); n > maxLen {
			maxLen = n
		}

		score := 1.0 - float64(dist)/float64(maxLen)
		if score > bestScore {
			bestScore = score
			best = city
		}
	}

	if bestScore < 0.6 {
		return ""
	}

	return best
}
