package imagecheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafesync/internal/model"
)

type rejectFaces struct {
	mu    sync.Mutex
	calls int
}

func (r *rejectFaces) Keep(_ context.Context, url string) (bool, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	if strings.Contains(url, "timeout") {
		return false, errors.New("context deadline exceeded")
	}
	return !strings.Contains(url, "face"), nil
}

// cancelOnFirst cancels the run on its first call and answers "reject" to
// everything, the way a checker sees a dropped connection.
type cancelOnFirst struct {
	once   sync.Once
	cancel context.CancelFunc
}

func (c *cancelOnFirst) Keep(context.Context, string) (bool, error) {
	c.once.Do(c.cancel)
	return false, nil
}

type memFiles struct {
	cafes []model.RawCafe
	saves [][]model.RawCafe
}

func (m *memFiles) Load(string) ([]model.RawCafe, error) {
	return append([]model.RawCafe(nil), m.cafes...), nil
}

func (m *memFiles) Save(_ string, cafes []model.RawCafe) error {
	m.saves = append(m.saves, append([]model.RawCafe(nil), cafes...))
	return nil
}

func TestClean(t *testing.T) {
	c := model.RawCafe{
		Name: "Kopi A",
		CafeImages: []model.RawImage{
			model.NewRawImage("https://img/room.jpg"),
			model.NewRawImage("https://img/face.jpg"),
			model.NewRawImage(""),
		},
		Menu: &model.RawMenu{Images: []string{"https://img/menu.jpg", "https://img/face2.jpg"}},
	}

	cleaned, removed, err := Clean(context.Background(), &rejectFaces{}, c)
	require.NoError(t, err)

	assert.Equal(t, 2, removed)
	require.Len(t, cleaned.CafeImages, 2)
	assert.Equal(t, "https://img/room.jpg", cleaned.CafeImages[0].URL)
	assert.Equal(t, []string{"https://img/menu.jpg"}, cleaned.Menu.Images)
	assert.Len(t, c.Menu.Images, 2, "input record must not change")
}

func TestCleanKeepsUndecidedImages(t *testing.T) {
	c := model.RawCafe{
		Name: "Kopi B",
		CafeImages: []model.RawImage{
			model.NewRawImage("https://img/timeout.jpg"),
			model.NewRawImage("https://img/face.jpg"),
		},
		Menu: &model.RawMenu{Images: []string{"https://img/menu-timeout.jpg"}},
	}

	cleaned, removed, err := Clean(context.Background(), &rejectFaces{}, c)
	require.Error(t, err)

	assert.Equal(t, 1, removed)
	require.Len(t, cleaned.CafeImages, 1)
	assert.Equal(t, "https://img/timeout.jpg", cleaned.CafeImages[0].URL)
	assert.Equal(t, []string{"https://img/menu-timeout.jpg"}, cleaned.Menu.Images)
}

func TestRunLeavesUndecidedCafesPending(t *testing.T) {
	files := &memFiles{cafes: []model.RawCafe{
		{Name: "A", CafeImages: []model.RawImage{model.NewRawImage("https://img/a.jpg")}},
		{Name: "B", CafeImages: []model.RawImage{model.NewRawImage("https://img/timeout.jpg")}},
	}}

	res, err := (&Runner{Checker: &rejectFaces{}, Files: files, Workers: 2}).Run(context.Background(), "sleman")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Deferred)
	require.Len(t, files.saves, 1)

	saved := files.saves[0]
	assert.True(t, saved[0].ImagesCleaned)
	assert.False(t, saved[1].ImagesCleaned, "retried on the next run")
	assert.Len(t, saved[1].CafeImages, 1)
}

func TestRunCancelledDoesNotSave(t *testing.T) {
	files := &memFiles{}
	for i := 0; i < 3; i++ {
		files.cafes = append(files.cafes, model.RawCafe{
			Name:       fmt.Sprintf("Cafe %d", i),
			CafeImages: []model.RawImage{model.NewRawImage(fmt.Sprintf("https://img/%d.jpg", i))},
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &Runner{Checker: &cancelOnFirst{cancel: cancel}, Files: files, Workers: 2}

	_, err := r.Run(ctx, "sleman")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, files.saves, "interrupted batch is not written")
	for _, c := range files.cafes {
		assert.Len(t, c.CafeImages, 1)
		assert.False(t, c.ImagesCleaned)
	}
}

func TestRunSavesAfterEveryBatch(t *testing.T) {
	files := &memFiles{}
	for i := 0; i < 120; i++ {
		files.cafes = append(files.cafes, model.RawCafe{
			Name:       fmt.Sprintf("Cafe %03d", i),
			CafeImages: []model.RawImage{model.NewRawImage(fmt.Sprintf("https://img/%d.jpg", i))},
		})
	}
	files.cafes[5].CafeImages = append(files.cafes[5].CafeImages, model.NewRawImage("https://img/face.jpg"))
	files.cafes[7].ImagesCleaned = true

	r := &Runner{Checker: &rejectFaces{}, Files: files, Workers: 4, BatchSize: 50}
	res, err := r.Run(context.Background(), "sleman")
	require.NoError(t, err)

	assert.Equal(t, 119, res.Pending)
	assert.Equal(t, 119, res.Processed)
	assert.Equal(t, 1, res.Removed)
	assert.Equal(t, 3, res.Batches)
	require.Len(t, files.saves, 3)

	first := files.saves[0]
	cleaned := 0
	for _, c := range first {
		if c.ImagesCleaned {
			cleaned++
		}
	}
	assert.Equal(t, 51, cleaned, "first save holds the first batch plus the cafe already done")

	last := files.saves[2]
	for i, c := range last {
		assert.True(t, c.ImagesCleaned, i)
		assert.Equal(t, fmt.Sprintf("Cafe %03d", i), c.Name, "results go back to their own index")
	}
	assert.Len(t, last[5].CafeImages, 1)
}

func TestRunNothingPending(t *testing.T) {
	files := &memFiles{cafes: []model.RawCafe{{Name: "A", ImagesCleaned: true}}}
	checker := &rejectFaces{}

	res, err := (&Runner{Checker: checker, Files: files}).Run(context.Background(), "bantul")
	require.NoError(t, err)
	assert.Zero(t, res.Batches)
	assert.Empty(t, files.saves)
	assert.Zero(t, checker.calls)
}

func TestHTTPChecker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok.jpg" {
			_, _ = w.Write([]byte("jpeg"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPChecker(5 * time.Second)
	ctx := context.Background()

	ok, err := c.Keep(ctx, srv.URL+"/ok.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Keep(ctx, srv.URL+"/missing.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.Keep(ctx, "http://127.0.0.1:1/closed.jpg")
	assert.Error(t, err, "transport failures are not a verdict")
}
