package slack

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPClient interface for testability
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Downloader fetches private Slack file URLs with the bot's bearer token.
type Downloader struct {
	token      string
	httpClient HTTPClient
	logger     *zap.Logger
}

// NewDownloader creates a downloader. timeout bounds each fetch so a stalled
// Slack endpoint cannot block the calling request indefinitely.
func NewDownloader(token string, timeout time.Duration, logger *zap.Logger) *Downloader {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Downloader{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Fetch downloads the file at url and returns its bytes together with the
// Content-Type reported by the response, which may be empty.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", d.token))

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Warn("File download request failed",
			zap.String("url", url),
			zap.Error(err))
		return nil, "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.logger.Warn("File download returned non-200 status",
			zap.Int("status", resp.StatusCode),
			zap.String("url", url))
		return nil, "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}

	d.logger.Debug("Downloaded attachment",
		zap.String("url", url),
		zap.Int("size", len(content)))

	return content, resp.Header.Get("Content-Type"), nil
}
