package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunks(t *testing.T) {
	testCases := []struct {
		n    int
		size int
		want []int
	}{
		{n: 0, size: 50, want: nil},
		{n: 50, size: 50, want: []int{50}},
		{n: 120, size: 50, want: []int{50, 50, 20}},
		{n: 3, size: 100, want: []int{3}},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d/%d", tc.n, tc.size), func(t *testing.T) {
			items := make([]int, tc.n)
			var got []int
			for _, c := range Chunks(items, tc.size) {
				got = append(got, len(c))
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSelectAllStopsOnShortPage(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i := 0; i < 25; i++ {
		m.Seed("cafes", Row{"name": fmt.Sprintf("Cafe %02d", i)})
	}

	var offsets []int
	m.FailSelect = func(_ string, q Query) error {
		offsets = append(offsets, q.Offset)
		return nil
	}

	rows, err := SelectAll(ctx, m, "cafes", Query{Columns: []string{"id", "name"}}, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 25)
	assert.Equal(t, []int{0, 10, 20}, offsets)
}

func TestSelectAllExactMultipleFetchesEmptyPage(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for i := 0; i < 20; i++ {
		m.Seed("cafes", Row{"name": fmt.Sprintf("Cafe %02d", i)})
	}
	calls := 0
	m.FailSelect = func(string, Query) error {
		calls++
		return nil
	}

	rows, err := SelectAll(ctx, m, "cafes", Query{}, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 20)
	assert.Equal(t, 3, calls)
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("sync: %w", newError(KindDecode, "select", "cafes", errors.New("bad json")))
	assert.Equal(t, KindDecode, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Contains(t, err.Error(), "select cafes: decode")
}

func TestMemoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("cafes", Row{"id": "1", "name": "A"}, Row{"id": "2", "name": "B"}, Row{"id": "3", "name": "C"})

	n, err := m.Update(ctx, "cafes", Eq{Column: "name", Value: "B"}, Row{"rating": 4.5})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rows, err := m.Select(ctx, "cafes", Query{Where: []Eq{{Column: "id", Value: "2"}}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 4.5, rows[0]["rating"])

	n, err = m.Delete(ctx, "cafes", "id", []any{"1", "3", "missing"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, m.Rows("cafes"), 1)
}

func TestMemoryFailInsertIsTyped(t *testing.T) {
	m := NewMemory()
	m.FailInsert = func(string, []Row) error { return errors.New("boom") }

	err := m.Insert(context.Background(), "cafes", []Row{{"name": "A"}})
	require.Error(t, err)
	assert.Equal(t, KindStatus, KindOf(err))
	assert.Equal(t, 1, m.InsertCalls["cafes"])
	assert.Empty(t, m.Rows("cafes"))
}

func TestMemoryCancelledContextIsTransport(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Insert(ctx, "cafes", []Row{{"name": "A"}})
	assert.Equal(t, KindTransport, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = m.Update(ctx, "cafes", Eq{Column: "id", Value: "1"}, Row{"rating": 1.0})
	assert.Equal(t, KindTransport, KindOf(err))

	m.FailInsert = func(string, []Row) error { return context.DeadlineExceeded }
	err = m.Insert(context.Background(), "cafes", []Row{{"name": "A"}})
	assert.Equal(t, KindTransport, KindOf(err))
}
