// Package render is the client for the external screenshot/render
// service.
package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/savedlinks/thumbnailer/internal/thumbnail"
	"go.uber.org/zap"
)

const (
	screenshotPath = "/api/v1/screenshot"
	healthPath     = "/health"

	// DefaultTimeout bounds a render call; rendering a heavy page can
	// legitimately take a while.
	DefaultTimeout = 30 * time.Second

	// ProbeTimeout bounds the availability probe, which is off the hot
	// path and must answer fast.
	ProbeTimeout = 3 * time.Second
)

// Options shape a render request.
type Options struct {
	Width                 int
	Height                int
	Format                string
	Quality               int
	Timeout               time.Duration
	FullPage              bool
	WaitUntil             string
	HandleBanners         bool
	BannerTimeout         int
	DetectVideoThumbnails bool
}

// DefaultOptions are the options used when the caller passes none.
func DefaultOptions() Options {
	return Options{
		Width:                 1200,
		Height:                630,
		Format:                "jpeg",
		Quality:               80,
		Timeout:               DefaultTimeout,
		WaitUntil:             "networkidle2",
		HandleBanners:         true,
		BannerTimeout:         3000,
		DetectVideoThumbnails: true,
	}
}

// Result is a successful render. ThumbnailURL is either a pre-hosted URL
// (JSON response shape) or a data URL built from a binary image body.
type Result struct {
	ThumbnailURL     string
	IsVideoThumbnail bool
	Source           string
	Method           string
	Format           string
}

type renderRequest struct {
	URL                   string `json:"url"`
	Width                 int    `json:"width"`
	Height                int    `json:"height"`
	Format                string `json:"format"`
	Quality               int    `json:"quality"`
	Timeout               int64  `json:"timeout"`
	FullPage              bool   `json:"fullPage"`
	WaitUntil             string `json:"waitUntil"`
	HandleBanners         bool   `json:"handleBanners"`
	BannerTimeout         int    `json:"bannerTimeout"`
	DetectVideoThumbnails bool   `json:"detectVideoThumbnails"`
}

type renderResponse struct {
	ThumbnailURL     string `json:"thumbnailUrl"`
	IsVideoThumbnail bool   `json:"isVideoThumbnail"`
	ProcessingTime   int64  `json:"processingTime"`
	Source           string `json:"source"`
	Method           string `json:"method"`
}

// Client talks to the rendering service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a rendering service client. A nil httpClient uses
// http.DefaultClient.
func NewClient(baseURL, apiKey string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
		logger:  logger,
	}
}

// Render requests a screenshot for the URL. Missing credentials or a
// non-2xx answer fail this call only; the resolver falls back further.
func (c *Client) Render(ctx context.Context, url string, opts Options) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: missing api key", thumbnail.ErrUpstreamUnavailable)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := json.Marshal(renderRequest{
		URL:                   url,
		Width:                 opts.Width,
		Height:                opts.Height,
		Format:                opts.Format,
		Quality:               opts.Quality,
		Timeout:               timeout.Milliseconds(),
		FullPage:              opts.FullPage,
		WaitUntil:             opts.WaitUntil,
		HandleBanners:         opts.HandleBanners,
		BannerTimeout:         opts.BannerTimeout,
		DetectVideoThumbnails: opts.DetectVideoThumbnails,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+screenshotPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", thumbnail.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", thumbnail.ErrUpstreamUnavailable, resp.StatusCode)
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		return c.decodeJSON(resp.Body)
	}

	return c.decodeBinary(resp)
}

func (c *Client) decodeJSON(body io.Reader) (*Result, error) {
	var decoded renderResponse
	if err := json.NewDecoder(body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: bad response body: %v", thumbnail.ErrUpstreamUnavailable, err)
	}

	return &Result{
		ThumbnailURL:     decoded.ThumbnailURL,
		IsVideoThumbnail: decoded.IsVideoThumbnail,
		Source:           decoded.Source,
		Method:           decoded.Method,
	}, nil
}

// decodeBinary encodes a binary image body to a data URL so both
// response shapes look the same upstream.
func (c *Client) decodeBinary(resp *http.Response) (*Result, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading image body: %v", thumbnail.ErrUpstreamUnavailable, err)
	}

	format := resp.Header.Get("X-Screenshot-Format")
	if format == "" {
		format = "jpeg"
	}

	dataURL := fmt.Sprintf("data:image/%s;base64,%s", format, base64.StdEncoding.EncodeToString(data))

	return &Result{
		ThumbnailURL:     dataURL,
		IsVideoThumbnail: resp.Header.Get("X-Is-Video-Thumbnail") == "true",
		Method:           resp.Header.Get("X-Video-Detection-Method"),
		Format:           format,
	}, nil
}

// Available probes the service health endpoint with its own short
// timeout. It is for health checks only, never on the resolution path.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
