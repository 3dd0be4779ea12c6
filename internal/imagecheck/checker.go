// Package imagecheck filters image URLs out of the region files and marks
// each cafe once its images have been checked.
package imagecheck

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Checker decides whether an image stays in the record. A non-nil error means
// no decision was made and the image must be left alone.
type Checker interface {
	Keep(ctx context.Context, url string) (bool, error)
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// HTTPChecker keeps images that answer 200 and rejects any other status.
// Transport errors and timeouts are returned as errors.
type HTTPChecker struct {
	Http *resty.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		Http: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent).
			SetDoNotParseResponse(true),
	}
}

func (c *HTTPChecker) Keep(ctx context.Context, url string) (bool, error) {
	res, err := c.Http.R().SetContext(ctx).Get(url)
	if err != nil {
		return false, fmt.Errorf("failed to fetch image %s: %w", url, err)
	}
	if body := res.RawBody(); body != nil {
		body.Close()
	}
	return res.StatusCode() == http.StatusOK, nil
}
