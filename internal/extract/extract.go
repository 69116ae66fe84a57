// Package extract recognizes known video-hosting URL shapes and derives
// direct, stable thumbnail URLs from them without any network call.
package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Platform names as reported in result sources.
const (
	PlatformYouTube     = "youtube"
	PlatformVimeo       = "vimeo"
	PlatformDailymotion = "dailymotion"
	PlatformTwitch      = "twitch"
)

// Match is the result of a successful platform extraction. For Twitch no
// direct thumbnail URL exists; NeedsLookup flags that the channel's
// profile image must be resolved asynchronously.
type Match struct {
	ThumbnailURL string
	Platform     string
	ID           string
	NeedsLookup  bool
}

var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?(?:.*&)?v=([\w-]{6,})`),
	regexp.MustCompile(`youtu\.be/([\w-]{6,})`),
	regexp.MustCompile(`youtube\.com/embed/([\w-]{6,})`),
	regexp.MustCompile(`youtube\.com/shorts/([\w-]{6,})`),
}

var (
	vimeoPattern       = regexp.MustCompile(`vimeo\.com/(\d+)`)
	dailymotionPattern = regexp.MustCompile(`dailymotion\.com/video/([\w]+)`)
	twitchPattern      = regexp.MustCompile(`twitch\.tv/([\w]+)`)
)

// Extract matches url against the known platform families. It is a pure
// function: unrecognized hosts return (Match{}, false), never an error.
func Extract(rawURL string) (Match, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return Match{}, false
	}

	host := strings.ToLower(u.Host)

	switch {
	case strings.Contains(host, "youtube.com"), strings.Contains(host, "youtu.be"):
		for _, pattern := range youtubePatterns {
			if m := pattern.FindStringSubmatch(rawURL); m != nil {
				return Match{
					ThumbnailURL: fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", m[1]),
					Platform:     PlatformYouTube,
					ID:           m[1],
				}, true
			}
		}
	case strings.Contains(host, "vimeo.com"):
		if m := vimeoPattern.FindStringSubmatch(rawURL); m != nil {
			return Match{
				ThumbnailURL: fmt.Sprintf("https://vumbnail.com/%s.jpg", m[1]),
				Platform:     PlatformVimeo,
				ID:           m[1],
			}, true
		}
	case strings.Contains(host, "dailymotion.com"):
		// Match against host+path so a query suffix never leaks into the ID.
		if m := dailymotionPattern.FindStringSubmatch(host + u.Path); m != nil {
			return Match{
				ThumbnailURL: fmt.Sprintf("https://www.dailymotion.com/thumbnail/video/%s", m[1]),
				Platform:     PlatformDailymotion,
				ID:           m[1],
			}, true
		}
	case strings.Contains(host, "twitch.tv"):
		if m := twitchPattern.FindStringSubmatch(rawURL); m != nil {
			return Match{
				Platform:    PlatformTwitch,
				ID:          m[1],
				NeedsLookup: true,
			}, true
		}
	}

	return Match{}, false
}

// IsLiveStreamHost reports whether the URL belongs to the live-stream
// family, whose thumbnails require the async profile-image lookup.
func IsLiveStreamHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	return strings.Contains(strings.ToLower(u.Host), "twitch.tv")
}
