package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
)

// Checker defines the interface for checking a dependency's health.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// RenderProbe reports whether the rendering service answers its health
// endpoint.
type RenderProbe interface {
	Available(ctx context.Context) bool
}

// Handler handles health check operations.
type Handler struct {
	redis  Checker
	render RenderProbe
}

// NewHandler creates a new health handler.
func NewHandler(redis Checker, render RenderProbe) *Handler {
	return &Handler{redis: redis, render: render}
}

// Response is the response for the health check endpoint.
type Response struct {
	Body struct {
		Status string `json:"status"`
		Redis  string `json:"redis"`
		Render string `json:"render"`
	}
}

// Check reports the health of the service and its dependencies. The
// rendering service being down degrades the response but the service
// keeps running; the fallback chain covers for it.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"

	if err := h.redis.Ping(ctx); err != nil {
		resp.Body.Redis = "unhealthy"
		resp.Body.Status = "degraded"
	} else {
		resp.Body.Redis = "healthy"
	}

	if h.render.Available(ctx) {
		resp.Body.Render = "healthy"
	} else {
		resp.Body.Render = "unhealthy"
		resp.Body.Status = "degraded"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Get(api, "/health", h.Check)
}
