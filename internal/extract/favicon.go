package extract

import (
	"fmt"
	"net/url"
)

// FaviconURL builds the generic favicon-service URL for the URL's
// hostname. The service is public by convention; callers validate the
// result with a HEAD probe before trusting it.
func FaviconURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "", false
	}

	return fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s&sz=128", u.Hostname()), true
}
