package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestTo24h(t *testing.T) {
	testCases := []struct {
		in       string
		expected *string
	}{
		{"8.00 am", strp("08:00:00")},
		{"11.00 pm", strp("23:00:00")},
		{"12.00 am", strp("00:00:00")},
		{"12:30 PM", strp("12:30:00")},
		{"7:15 pm", strp("19:15:00")},
		{"9.45 AM", strp("09:45:00")},
		{"10.00pm", strp("22:00:00")},
		{"13.00 pm", nil},
		{"0:30 am", nil},
		{"00.15 PM", nil},
		{"noon", nil},
		{"", nil},
	}

	for _, tc := range testCases {
		got := To24h(tc.in)
		if tc.expected == nil {
			assert.Nil(t, got, "input %q", tc.in)
			continue
		}
		require.NotNil(t, got, "input %q", tc.in)
		assert.Equal(t, *tc.expected, *got, "input %q", tc.in)
	}
}

func TestHoursLine(t *testing.T) {
	t.Run("time range", func(t *testing.T) {
		h, ok := HoursLine("Tuesday \t 8.00 am–11.00 pm \t ")
		require.True(t, ok)
		assert.Equal(t, 2, h.DayOfWeek)
		assert.False(t, h.IsClosed)
		require.NotNil(t, h.OpenTime)
		require.NotNil(t, h.CloseTime)
		assert.Equal(t, "08:00:00", *h.OpenTime)
		assert.Equal(t, "23:00:00", *h.CloseTime)
	})

	t.Run("hyphen and narrow spaces", func(t *testing.T) {
		h, ok := HoursLine("Sunday\t7:00\u202fAM - 10:30\u00a0PM")
		require.True(t, ok)
		assert.Equal(t, 0, h.DayOfWeek)
		assert.Equal(t, "07:00:00", *h.OpenTime)
		assert.Equal(t, "22:30:00", *h.CloseTime)
	})

	t.Run("24 hours", func(t *testing.T) {
		h, ok := HoursLine("Saturday\t24 hours")
		require.True(t, ok)
		assert.Equal(t, 6, h.DayOfWeek)
		assert.Equal(t, "00:00", *h.OpenTime)
		assert.Equal(t, "23:59", *h.CloseTime)
		assert.False(t, h.IsClosed)
	})

	t.Run("closed", func(t *testing.T) {
		h, ok := HoursLine("Monday\tClosed")
		require.True(t, ok)
		assert.Equal(t, 1, h.DayOfWeek)
		assert.True(t, h.IsClosed)
		assert.Nil(t, h.OpenTime)
		assert.Nil(t, h.CloseTime)
	})

	t.Run("day without schedule is dropped", func(t *testing.T) {
		_, ok := HoursLine("Friday\tOpen by appointment")
		assert.False(t, ok)
	})

	t.Run("no day is dropped", func(t *testing.T) {
		_, ok := HoursLine("8.00 am–11.00 pm")
		assert.False(t, ok)
	})
}

func TestHours(t *testing.T) {
	lines := []string{
		"Wednesday\t8.00 am–10.00 pm",
		"Thursday\t8.00 am–10.00 pm",
		"Friday\tHoliday hours",
		"Saturday\t24 hours",
		"Sunday\tClosed",
	}

	hours := HoursFor("cafe-1", lines)
	require.Len(t, hours, 4)

	var gotDays []int
	for _, h := range hours {
		assert.Equal(t, "cafe-1", h.CafeID)
		gotDays = append(gotDays, h.DayOfWeek)
	}
	assert.Equal(t, []int{3, 4, 6, 0}, gotDays)
}

func TestDayOfWeek(t *testing.T) {
	for name, idx := range map[string]int{
		"Sunday": 0, "Monday": 1, "Tuesday": 2, "Wednesday": 3,
		"Thursday": 4, "Friday": 5, "Saturday": 6,
	} {
		got, ok := DayOfWeek(name + "\t9.00 am–5.00 pm")
		require.True(t, ok, name)
		assert.Equal(t, idx, got, name)
	}

	_, ok := DayOfWeek("Senin\t09.00–17.00")
	assert.False(t, ok)
}
