package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawCafeRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		in   string
	}{
		{name: "empty and null values", in: `{"name":"A","rating":4.5,"opening_hours":[],"phone":"","menu":null}`},
		{name: "numeric counts", in: `{"name":"B","address":"Jl. X","reviews_count":1234,"review_count":"(12)"}`},
		{name: "image shapes", in: `{"name":"C","cafe_images":["https://img/1.jpg",{"image_url":"https://img/2.jpg","w":10}],"images_cleaned":false}`},
		{name: "unknown keys", in: `{"name":"D","plus_code":"X","scraped_at":[1,2]}`},
		{name: "review ratings", in: `{"name":"E","customer_reviews":[{"author":"Ana","rating":5,"text":""}]}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var c RawCafe
			require.NoError(t, json.Unmarshal([]byte(tc.in), &c))

			out, err := json.Marshal(c)
			require.NoError(t, err)
			assert.JSONEq(t, tc.in, string(out))
		})
	}
}

func TestRawCafeWritesChangedValues(t *testing.T) {
	var c RawCafe
	require.NoError(t, json.Unmarshal([]byte(`{"name":"A","rating":4.5,"cafe_images":["https://img/1.jpg"],"menu":null}`), &c))

	assert.Equal(t, FlexString("4.5"), c.Rating)
	c.CafeImages = nil
	c.ImagesCleaned = true
	c.Rating = "4.7"

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"A","rating":"4.7","cafe_images":null,"menu":null,"images_cleaned":true}`, string(out))
}

func TestRawCafeNewRecordOmitsEmpty(t *testing.T) {
	out, err := json.Marshal(RawCafe{Name: "Kopi A", Address: "Jl. Y", Phone: "0812"})
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Kopi A","address":"Jl. Y","phone":"0812"}`, string(out))
}

func TestFlexString(t *testing.T) {
	testCases := []struct {
		in       string
		expected FlexString
	}{
		{`"4,7"`, "4,7"},
		{`4.7`, "4.7"},
		{`1234`, "1234"},
		{`null`, ""},
	}
	for _, tc := range testCases {
		var f FlexString
		require.NoError(t, json.Unmarshal([]byte(tc.in), &f), tc.in)
		assert.Equal(t, tc.expected, f, tc.in)
	}
}
