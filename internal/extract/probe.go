package extract

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// DefaultProbeTimeout bounds a single HEAD validation.
const DefaultProbeTimeout = 5 * time.Second

// Probe validates candidate thumbnail URLs with a HEAD request, checking
// status and Content-Type before a URL is accepted.
type Probe struct {
	client  *http.Client
	timeout time.Duration
}

// NewProbe creates a probe. A nil client uses http.DefaultClient.
func NewProbe(client *http.Client) *Probe {
	if client == nil {
		client = http.DefaultClient
	}

	return &Probe{client: client, timeout: DefaultProbeTimeout}
}

// IsImage reports whether the URL answers a HEAD request with 2xx and an
// image content type.
func (p *Probe) IsImage(ctx context.Context, candidateURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, candidateURL, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	return strings.HasPrefix(resp.Header.Get("Content-Type"), "image/")
}
