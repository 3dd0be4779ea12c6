package normalize

import (
	"regexp"
	"strconv"
)

// Padrões de permalink do mapa, testados em ordem.
var coordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`@(-?\d+\.\d+),(-?\d+\.\d+)`),
	regexp.MustCompile(`!3d(-?\d+\.\d+)!4d(-?\d+\.\d+)`),
	regexp.MustCompile(`ll=(-?\d+\.\d+),(-?\d+\.\d+)`),
}

// Coordinates extracts latitude/longitude from a map permalink.
// ok is false when no known pattern matches; that is not an error.
func Coordinates(link string) (lat, lng float64, ok bool) {
	if link == "" {
		return 0, 0, false
	}
	for _, re := range coordPatterns {
		m := re.FindStringSubmatch(link)
		if m == nil {
			continue
		}
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lng, errLng := strconv.ParseFloat(m[2], 64)
		if errLat != nil || errLng != nil {
			continue
		}
		return lat, lng, true
	}
	return 0, 0, false
}
