package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRating(t *testing.T) {
	testCases := []struct {
		in       string
		expected float64
	}{
		{"4.7", 4.7},
		{"4,7", 4.7},
		{" 4,5 ", 4.5},
		{"5", 5},
		{"", 0},
		{"N/A", 0},
		{"abc", 0},
		{"4.7 stars", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-inf", 0},
		{"1e999", 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Rating(tc.in), "input %q", tc.in)
	}
}

func TestRatingSeparatorsAgree(t *testing.T) {
	pairs := [][2]string{
		{"0.1", "0,1"},
		{"3.9", "3,9"},
		{"4.25", "4,25"},
		{"10.0", "10,0"},
	}
	for _, p := range pairs {
		assert.Equal(t, Rating(p[0]), Rating(p[1]), "%s vs %s", p[0], p[1])
	}
}

func TestReviewCount(t *testing.T) {
	testCases := []struct {
		in       string
		expected int
	}{
		{"284", 284},
		{"1,234", 1234},
		{"1.234", 1234},
		{"(2.345)", 2345},
		{"12 ulasan", 12},
		{"", 0},
		{"N/A", 0},
		{"no reviews", 0},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ReviewCount(tc.in), "input %q", tc.in)
	}
}

func TestPhone(t *testing.T) {
	require.Nil(t, Phone("N/A"))
	require.Nil(t, Phone(" N/A "))
	require.Nil(t, Phone(""))

	p := Phone("0812-3456-7890")
	require.NotNil(t, p)
	assert.Equal(t, "0812-3456-7890", *p)
}

func TestReviewRating(t *testing.T) {
	assert.Equal(t, 5, ReviewRating("5"))
	assert.Equal(t, 4, ReviewRating("4.0"))
	assert.Equal(t, 3, ReviewRating("3 stars"))
	assert.Equal(t, 4, ReviewRating(" 4 bintang "))
	assert.Equal(t, 5, ReviewRating(""))
	assert.Equal(t, 5, ReviewRating("great"))
}

func TestCoordinates(t *testing.T) {
	testCases := []struct {
		name     string
		link     string
		lat, lng float64
		ok       bool
	}{
		{
			name: "at pattern",
			link: "https://www.google.com/maps/place/Kopi/@-7.78,110.37,15z/data=!4m6",
			lat:  -7.78, lng: 110.37, ok: true,
		},
		{
			name: "3d4d pattern",
			link: "https://www.google.com/maps/place/Kopi/data=!4m7!3m6!1s0x2e7a!8m2!3d-7.7829!4d110.3671!16s",
			lat:  -7.7829, lng: 110.3671, ok: true,
		},
		{
			name: "ll query",
			link: "https://maps.google.com/?ll=-7.801,110.364&z=16",
			lat:  -7.801, lng: 110.364, ok: true,
		},
		{
			name: "at wins over 3d4d",
			link: "https://www.google.com/maps/place/X/@-7.1,110.1,17z/data=!3d-7.2!4d110.2",
			lat:  -7.1, lng: 110.1, ok: true,
		},
		{name: "no pattern", link: "https://www.google.com/maps/search/kopi+jogja"},
		{name: "empty", link: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lat, lng, ok := Coordinates(tc.link)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.lat, lat)
				assert.Equal(t, tc.lng, lng)
			}
		})
	}
}
