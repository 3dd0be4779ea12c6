package sheets

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVHeaderVariants(t *testing.T) {
	testCases := []struct {
		name string
		csv  string
		want []Entry
	}{
		{
			name: "english headers",
			csv:  "Name Cafe,Address,Phone,Type\nKopi A, Jl. Kaliurang ,0812,Coffee Shop\n",
			want: []Entry{{Name: "Kopi A", Address: "Jl. Kaliurang", Phone: "0812", Category: "Coffee Shop"}},
		},
		{
			name: "indonesian headers",
			csv:  "Nama Cafe,Alamat\nKopi B,Jl. Magelang\n",
			want: []Entry{{Name: "Kopi B", Address: "Jl. Magelang"}},
		},
		{
			name: "plain name header",
			csv:  "No,Name,Alamat\n1,Kopi C,Bantul\n",
			want: []Entry{{Name: "Kopi C", Address: "Bantul"}},
		},
		{
			name: "rows without address dropped",
			csv:  "Name,Address\nKopi D,\n,Jl. X\n",
			want: nil,
		},
		{
			name: "empty file",
			csv:  "",
			want: nil,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCSV(strings.NewReader(tc.csv))
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	entries := []Entry{
		{Name: "Kopi A", Address: "Jl. Kaliurang KM 5"},
		{Name: "KOPI A", Address: "jl. kaliurang km 5.5, Sleman"},
		{Name: "Kopi A", Address: "Jl. Magelang"},
	}

	got, dupes := Dedupe(entries)
	assert.Equal(t, 1, dupes)
	require.Len(t, got, 2)
	assert.Equal(t, "Jl. Kaliurang KM 5", got[0].Address)
	assert.Equal(t, "kopi a_jl. kaliurang k", DedupeKey(entries[0]))
}

func TestConsolidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/htmlview"):
			_, _ = io.WriteString(w, `<ul><li id="sheet-button-0">Sleman</li><li id="sheet-button-42">Bantul</li></ul>`)
		case strings.HasSuffix(r.URL.Path, "/export"):
			assert.Equal(t, "csv", r.URL.Query().Get("format"))
			switch r.URL.Query().Get("gid") {
			case "0":
				_, _ = io.WriteString(w, "Name Cafe,Address\nKopi A,Jl. Kaliurang\nKopi B,Jl. Magelang\n")
			case "42":
				_, _ = io.WriteString(w, "Nama Cafe,Alamat\nkopi a,JL. KALIURANG\nKopi C,Bantul\n")
			default:
				w.WriteHeader(http.StatusBadRequest)
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient("sheet-id")
	c.Http.SetBaseURL(srv.URL)

	res, err := c.Consolidate(context.Background(), []string{"999"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Downloaded)
	assert.Equal(t, 4, res.Rows)
	assert.Equal(t, 1, res.Duplicates)

	var names []string
	for _, e := range res.Entries {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Kopi A", "Kopi B", "Kopi C"}, names)
}

func TestWriteReadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consolidated_list.json")
	entries := []Entry{{Name: "Kopi A", Address: "Jl. A"}}

	require.NoError(t, WriteJSON(path, entries))
	got, err := ReadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}
