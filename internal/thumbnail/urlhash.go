package thumbnail

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL normalizes a URL so that equivalent spellings hash to the
// same key.
// - Lowercases the scheme and host
// - Removes default ports (80 for http, 443 for https)
// - Removes trailing slashes from path (unless path is just "/")
// - Removes empty fragment
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: not absolute: %s", ErrInvalidURL, rawURL)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	host := u.Host
	if strings.HasSuffix(host, ":80") && u.Scheme == "http" {
		u.Host = strings.TrimSuffix(host, ":80")
	} else if strings.HasSuffix(host, ":443") && u.Scheme == "https" {
		u.Host = strings.TrimSuffix(host, ":443")
	}

	if len(u.Path) > 1 && strings.HasSuffix(u.Path, "/") {
		u.Path = strings.TrimSuffix(u.Path, "/")
	}

	u.Fragment = ""

	return u.String(), nil
}

// HashURL computes the SHA-256 digest of the normalized URL's UTF-8
// bytes, hex-encoded. No salt: the same URL must produce the same key
// across restarts and across implementations.
func HashURL(normalizedURL string) URLHash {
	h := sha256.Sum256([]byte(normalizedURL))

	return URLHash(hex.EncodeToString(h[:]))
}
