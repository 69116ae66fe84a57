package resolver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/savedlinks/thumbnailer/internal/render"
	"github.com/savedlinks/thumbnailer/internal/stats"
	"github.com/savedlinks/thumbnailer/internal/thumbnail"
	"go.uber.org/zap"
)

// persistScreenshot uploads the rendered image to the blob store under
// thumbnails/{key}.jpg and writes the matching registry record. The
// caller result is returned even when persistence fails so a successful
// render is never thrown away.
func (r *Resolver) persistScreenshot(
	ctx context.Context, q *query, rendered *render.Result, key string,
) (*thumbnail.Result, error) {
	result := &thumbnail.Result{
		ThumbnailURL: rendered.ThumbnailURL,
		Kind:         thumbnail.KindScreenshot,
		Source:       renderSource(rendered),
	}

	data, err := r.imageBytes(ctx, rendered.ThumbnailURL)
	if err != nil {
		return result, fmt.Errorf("%w: %v", thumbnail.ErrUploadFailed, err)
	}

	now := time.Now()
	path := fmt.Sprintf("thumbnails/%s.jpg", key)

	ref, err := r.blobs.Put(ctx, path, data, thumbnail.BlobMetadata{
		OriginalURL: q.normalized,
		Kind:        thumbnail.KindScreenshot,
		Source:      result.Source,
		UploadedBy:  q.callerID,
		URLHash:     q.hash,
		CreatedAt:   now,
	})
	if err != nil {
		return result, err
	}

	result.BlobRef = ref
	result.BlobPath = path

	record := &thumbnail.Record{
		Key:            key,
		OriginalURL:    q.normalized,
		URLHash:        q.hash,
		BlobRef:        ref,
		BlobPath:       path,
		Kind:           thumbnail.KindScreenshot,
		Source:         result.Source,
		UploadedBy:     q.callerID,
		LastAccessedAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := r.repo.Save(ctx, record); err != nil {
		return result, fmt.Errorf("registry write: %w", err)
	}

	r.publishGeneratedEvent(record)

	return result, nil
}

// directLinkResult records a metadata-only entry for a direct link (no
// blob upload; the blob reference is the direct URL itself) and shapes
// the caller result. Registry failures are logged, never surfaced.
func (r *Resolver) directLinkResult(
	ctx context.Context, q *query, url string, kind thumbnail.Kind, source string, persist bool,
) *thumbnail.Result {
	result := &thumbnail.Result{
		ThumbnailURL: url,
		Kind:         kind,
		Source:       source,
		BlobRef:      url,
	}

	if persist && !q.noPersist {
		now := time.Now()
		record := &thumbnail.Record{
			Key:            string(q.hash),
			OriginalURL:    q.normalized,
			URLHash:        q.hash,
			BlobRef:        url,
			Kind:           kind,
			Source:         source,
			UploadedBy:     q.callerID,
			LastAccessedAt: now,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if err := r.repo.Save(ctx, record); err != nil {
			r.logger.Warn("direct link not recorded",
				zap.String("url", q.normalized),
				zap.Error(err),
			)
		} else {
			r.publishGeneratedEvent(record)
		}
	}

	r.cacheResult(ctx, q, result)

	return result
}

func (r *Resolver) cacheResult(ctx context.Context, q *query, result *thumbnail.Result) {
	if result == nil || result.Empty() {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return
	}

	r.cache.Set(ctx, resultKeyPrefix+q.normalized, payload, r.cacheTTL)
}

func (r *Resolver) publishGeneratedEvent(record *thumbnail.Record) {
	if r.publishGenerated == nil {
		return
	}

	event := &stats.GeneratedEvent{
		Key:         record.Key,
		OriginalURL: record.OriginalURL,
		Kind:        string(record.Kind),
		Source:      record.Source,
		UploadedBy:  record.UploadedBy,
		CreatedAt:   record.CreatedAt,
	}

	if err := r.publishGenerated(event); err != nil {
		r.logger.Warn("failed to publish generated event",
			zap.String("key", record.Key),
			zap.Error(err),
		)
	}
}

// imageBytes turns the render payload into binary data: data URLs are
// decoded in place, pre-hosted URLs are fetched.
func (r *Resolver) imageBytes(ctx context.Context, payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, "base64,")
		if idx == -1 {
			return nil, fmt.Errorf("unsupported data url encoding")
		}

		return base64.StdEncoding.DecodeString(payload[idx+len("base64,"):])
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, payload, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetching thumbnail: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
