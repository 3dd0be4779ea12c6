package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafesync/internal/catalog"
	"cafesync/internal/model"
	"cafesync/internal/reconcile"
	"cafesync/internal/region"
)

func TestSimilarNames(t *testing.T) {
	ds := region.Dataset{
		Regions: []region.Region{{Key: "sleman"}, {Key: "bantul"}},
		Cafes: map[string][]model.RawCafe{
			"sleman": {{Name: "Kopi Klotok"}, {Name: "Tempo Gelato"}, {Name: "Kopi Klotok"}},
			"bantul": {{Name: "Kopi Klotok "}, {Name: "Kopi Klotokk"}, {Name: "Warung Bu Ah"}},
		},
	}

	pairs := SimilarNames(ds, 0.95)
	require.NotEmpty(t, pairs)
	assert.Equal(t, 1.0, pairs[0].Score)

	for _, p := range pairs {
		assert.False(t, p.Left == p.Right && p.LeftRegion == p.RightRegion)
		assert.NotEqual(t, "Tempo Gelato", p.Left)
		assert.NotEqual(t, "Warung Bu Ah", p.Right)
	}

	var crossRegion bool
	for _, p := range pairs {
		if p.LeftRegion == "sleman" && p.RightRegion == "bantul" && p.Score == 1.0 {
			crossRegion = true
		}
	}
	assert.True(t, crossRegion, "same name in two regions must be reported")
}

func TestTables(t *testing.T) {
	var buf bytes.Buffer
	Stats(&buf, []catalog.RegionCount{{Key: "sleman", Name: "Sleman", Count: 3}, {Key: "bantul", Name: "Bantul", Count: 2}})
	assert.Contains(t, buf.String(), "sleman")
	assert.Contains(t, buf.String(), "5")

	buf.Reset()
	Run(&buf, reconcile.Report{Flow: reconcile.FlowSync, Inserted: 4})
	assert.Contains(t, buf.String(), "inserted")
	assert.NotContains(t, buf.String(), "deleted")

	buf.Reset()
	Dupes(&buf, []Pair{{Left: "Kopi A", LeftRegion: "sleman", Right: "Kopi  A", RightRegion: "bantul", Score: 0.98}})
	assert.Contains(t, buf.String(), "0.980")
}
