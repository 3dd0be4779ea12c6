// Package normalize converts scraped free-text values into typed fields.
// Nothing here returns an error: malformed input resolves to a safe default.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const phoneMissing = "N/A"

var nonDigit = regexp.MustCompile(`[^\d]`)

// Rating aceita "4.7" e "4,7"; qualquer falha, NaN ou infinito vira 0.
func Rating(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ReviewCount remove tudo que não for dígito ("1.234", "(284)", "2,1 rb").
func ReviewCount(s string) int {
	digits := nonDigit.ReplaceAllString(s, "")
	if digits == "" {
		return 0
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return v
}

// Phone returns nil for the scraper's "N/A" marker.
func Phone(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || s == phoneMissing {
		return nil
	}
	return &s
}

var firstNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// ReviewRating lê a nota de uma avaliação ("5", "4.0", "5 stars", "4 bintang").
// Sem número, assume 5.
func ReviewRating(s string) int {
	m := firstNumber.FindString(s)
	if m == "" {
		return 5
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 5
	}
	return int(v)
}
