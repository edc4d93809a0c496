package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/emonotate/emonotate/internal/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// YouTubeClient resolves public video metadata through the oEmbed endpoint.
type YouTubeClient struct {
	OEmbedURL  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewYouTubeClient(cfg *config.Config, log *zap.Logger) *YouTubeClient {
	return &YouTubeClient{
		OEmbedURL: cfg.YouTube.OEmbedURL,
		HTTPClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: log,
	}
}

// VideoMeta is the subset of the oEmbed response we keep.
type VideoMeta struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(videoID)
}

// VideoMeta fetches the oEmbed document for videoID.
func (c *YouTubeClient) VideoMeta(ctx context.Context, videoID string) (*VideoMeta, error) {
	q := url.Values{}
	q.Set("url", WatchURL(videoID))
	q.Set("format", "json")
	endpoint := c.OEmbedURL + "?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.Logger.Warn("youtube oembed request failed",
			zap.String("video_id", videoID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result VideoMeta
	if err := sonic.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &result, nil
}
