package covers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/inkwellapp/inkwell/pkg/config"
	"github.com/pkg/errors"
)

// maxCoverSize caps how many bytes we read from a cover response.
const maxCoverSize = 10 << 20

// Client fetches cover images for books.
type Client interface {
	FetchCover(ctx context.Context, googleBooksID string) ([]byte, error)
}

// GoogleClient fetches cover images from the Google Books content endpoint.
type GoogleClient struct {
	// BaseURL can be overridden in tests to point at a test server.
	BaseURL string

	httpClient *http.Client
	userAgent  string
}

func NewGoogleClient(cfg *config.Config) *GoogleClient {
	return &GoogleClient{
		BaseURL:    "https://books.google.com/books/content",
		httpClient: &http.Client{Timeout: cfg.CoverFetchTimeout},
		userAgent:  cfg.CoverUserAgent,
	}
}

func (c *GoogleClient) FetchCover(ctx context.Context, googleBooksID string) ([]byte, error) {
	if googleBooksID == "" {
		return nil, errors.New("google books id is required")
	}

	query := url.Values{}
	query.Set("id", googleBooksID)
	query.Set("printsec", "frontcover")
	query.Set("img", "1")
	query.Set("zoom", "2")
	coverURL := fmt.Sprintf("%s?%s", c.BaseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cover request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch cover")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("failed to fetch cover: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cover response")
	}
	if len(data) == 0 {
		return nil, errors.New("cover response was empty")
	}

	return data, nil
}
