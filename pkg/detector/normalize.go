package detector

import (
	"net/url"
	"strings"
)

// hostAliases maps alternate hosts to their canonical form.
var hostAliases = map[string]string{
	"x.com":              "twitter.com",
	"www.x.com":          "twitter.com",
	"mobile.x.com":       "twitter.com",
	"www.twitter.com":    "twitter.com",
	"mobile.twitter.com": "twitter.com",
	"www.youtube.com":    "youtube.com",
	"m.youtube.com":      "youtube.com",
	"www.reddit.com":     "reddit.com",
	"old.reddit.com":     "reddit.com",
	"new.reddit.com":     "reddit.com",
	"np.reddit.com":      "reddit.com",
}

// trackingParams are always removed from query strings.
var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"igshid":  true,
	"si":      true,
	"ref_src": true,
	"ref_url": true,
	"mc_cid":  true,
	"mc_eid":  true,
	"_ga":     true,
	"yclid":   true,
}

// NormalizeURL canonicalizes rawURL: known host aliases are rewritten,
// tracking parameters dropped and trailing slashes removed from the path.
// Strings that do not parse as absolute URLs are returned trimmed.
// NormalizeURL(NormalizeURL(x)) == NormalizeURL(x).
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return trimmed
	}

	u.Host = strings.ToLower(u.Host)
	q := u.Query()

	switch host := u.Host; {
	case host == "youtu.be" || host == "www.youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" && !strings.Contains(id, "/") {
			u.Host = "youtube.com"
			u.Path, u.RawPath = "/watch", ""
			q.Set("v", id)
		}
	case hostAliases[host] != "":
		u.Host = hostAliases[host]
	}

	for key := range q {
		if isTrackingParam(key) {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode()
	u.ForceQuery = false

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = strings.TrimRight(u.RawPath, "/")

	return u.String()
}

func isTrackingParam(key string) bool {
	k := strings.ToLower(key)
	return strings.HasPrefix(k, "utm_") || trackingParams[k]
}
