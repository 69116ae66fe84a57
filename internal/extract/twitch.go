package extract

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// defaultLookupEndpoints are public profile-image lookup services tried
// in order. Each serves the channel's avatar directly at a templated URL.
var defaultLookupEndpoints = []string{
	"https://unavatar.io/twitch/%s",
	"https://decapi.me/twitch/avatar/%s",
}

// conventionalAvatarURL is the CDN URL shape Twitch uses for profile
// images; tried last since the naming is a convention, not a contract.
const conventionalAvatarURL = "https://static-cdn.jtvnw.net/jtv_user_pictures/%s-profile_image-300x300.png"

// ImageValidator accepts a candidate URL only after an HTTP check.
type ImageValidator interface {
	IsImage(ctx context.Context, candidateURL string) bool
}

// TwitchResolver resolves a channel's profile image through a
// best-effort chain of public lookup services. Every candidate is
// validated by a HEAD content-type check before acceptance.
type TwitchResolver struct {
	probe     ImageValidator
	endpoints []string
	logger    *zap.Logger
}

// NewTwitchResolver creates a resolver using the default lookup chain.
func NewTwitchResolver(probe ImageValidator, logger *zap.Logger) *TwitchResolver {
	return &TwitchResolver{
		probe:     probe,
		endpoints: defaultLookupEndpoints,
		logger:    logger,
	}
}

// NewTwitchResolverWithEndpoints creates a resolver with an explicit
// lookup chain, used by tests.
func NewTwitchResolverWithEndpoints(probe ImageValidator, endpoints []string, logger *zap.Logger) *TwitchResolver {
	return &TwitchResolver{
		probe:     probe,
		endpoints: endpoints,
		logger:    logger,
	}
}

// ProfileImageURL returns a validated profile-image URL for the channel,
// or false when every lookup service and the conventional URL fail.
func (r *TwitchResolver) ProfileImageURL(ctx context.Context, channel string) (string, bool) {
	for _, endpoint := range r.endpoints {
		candidate := fmt.Sprintf(endpoint, channel)
		if r.probe.IsImage(ctx, candidate) {
			return candidate, true
		}

		r.logger.Debug("twitch avatar lookup failed",
			zap.String("channel", channel),
			zap.String("candidate", candidate),
		)
	}

	candidate := fmt.Sprintf(conventionalAvatarURL, channel)
	if r.probe.IsImage(ctx, candidate) {
		return candidate, true
	}

	return "", false
}
