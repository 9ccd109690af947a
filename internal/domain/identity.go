package domain

import (
	"crypto/md5" //nolint:gosec // non-cryptographic content hash, matches the stored id format
	"encoding/hex"
	"net/url"
	"strings"
)

// UnknownSource is the sentinel prefix for articles whose source name is
// empty or collapses to nothing after sanitization.
const UnknownSource = "unknown"

// ContentHash returns the hex MD5 of title||link. This is the dedup key
// recorded in the seen-set.
func ContentHash(title, link string) string {
	sum := md5.Sum([]byte(title + link)) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// ArticleID computes the canonical article identity:
// "<sanitized-source>_<md5(title||link)>". Every stage that needs an id
// must call this function; a divergent id silently breaks deduplication
// and cross-stage lookup.
func ArticleID(title, link, sourceName string) string {
	return SanitizeSource(sourceName) + "_" + ContentHash(title, link)
}

// SanitizeSource reduces a source name to [A-Za-z0-9_]. An empty result,
// or one consisting only of underscores, collapses to UnknownSource.
func SanitizeSource(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	s := b.String()
	if strings.Trim(s, "_") == "" {
		return UnknownSource
	}
	return s
}

// SourceNameFromURL derives a short source name from a feed URL:
// the first label of the host with any "www." prefix removed.
// Unparseable or hostless URLs yield UnknownSource.
func SourceNameFromURL(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return UnknownSource
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	if i := strings.IndexByte(host, '.'); i > 0 {
		host = host[:i]
	}
	if host == "" {
		return UnknownSource
	}
	return host
}
