// Package sanitize repairs string and URL values coming from persisted
// board data or user input.
//
// Persisted snapshots have crossed several schema versions and several
// buggy writers: missing values were serialized as the literal strings
// "undefined" and "null", sometimes concatenated with each other or
// with real content, sometimes as "NaN" or "[object Object]". This
// package is the single place that knows those artifacts; every other
// component calls in here instead of re-checking literals inline.
package sanitize

import (
	"html"
	"net/url"
	"strings"
)

// wholeValueTokens are corruption artifacts matched only against the
// entire (stripped, lowercased) value. Matching them as substrings
// would mangle legitimate content ("banana" contains "nan").
var wholeValueTokens = map[string]struct{}{
	"nan":             {},
	"[object object]": {},
}

// substringTokens are corruption artifacts stripped wherever they
// appear, since buggy writers concatenated them into real content
// ("undefinedMy Title", "My Titlenull").
var substringTokens = []string{
	"undefined",
	"null",
	`""`,
	`''`,
}

// String cleans raw into a safe display string, returning def when the
// value is or reduces to pure corruption.
//
// Stripping runs to a fixpoint so that artifacts assembled out of other
// artifacts ("unde" + "null" + "fined") cannot survive one pass, which
// also makes the function idempotent: String(String(x, d), d) ==
// String(x, d).
func String(raw, def string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def
	}

	for {
		next := stripTokens(s)
		if next == s {
			break
		}
		s = next
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if _, bad := wholeValueTokens[strings.ToLower(s)]; bad {
		return def
	}
	return s
}

// stripTokens removes one round of substring artifacts, case-insensitively.
// Tokens are ASCII, so the haystack is lowered byte-wise to keep byte
// offsets aligned with the original (full Unicode lowering can change
// byte lengths).
func stripTokens(s string) string {
	lower := asciiLower(s)
	for _, tok := range substringTokens {
		for {
			i := strings.Index(lower, tok)
			if i < 0 {
				break
			}
			s = s[:i] + s[i+len(tok):]
			lower = lower[:i] + lower[i+len(tok):]
		}
	}
	return s
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// trackingParams is the closed list of query keys stripped on save:
// the UTM family, the ad click-id family, and mailing/affiliate
// referrer keys. None of them carry navigational meaning.
var trackingParams = map[string]struct{}{
	"utm_source":   {},
	"utm_medium":   {},
	"utm_campaign": {},
	"utm_term":     {},
	"utm_content":  {},
	"utm_id":       {},
	"gclid":        {},
	"gbraid":       {},
	"wbraid":       {},
	"fbclid":       {},
	"msclkid":      {},
	"dclid":        {},
	"twclid":       {},
	"yclid":        {},
	"igshid":       {},
	"mc_cid":       {},
	"mc_eid":       {},
	"ref_src":      {},
	"_hsenc":       {},
	"_hsmi":        {},
}

// URL normalizes raw into an absolute http/https URL with tracking
// parameters removed, or returns "" when no safe URL can be derived.
//
// A schemeless value gets an https:// prefix before parsing, so plain
// "example.com" round-trips to "https://example.com". Any other scheme
// (javascript:, data:, ftp:) is rejected by construction: the prefixed
// value either parses as https or fails to parse at all.
func URL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	low := strings.ToLower(s)
	if !strings.HasPrefix(low, "http://") && !strings.HasPrefix(low, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Hostname() == "" {
		return ""
	}

	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			if _, strip := trackingParams[strings.ToLower(key)]; strip {
				q.Del(key)
			}
		}
		u.RawQuery = q.Encode()
	}
	// A bare trailing "?" carries no query; drop it.
	u.ForceQuery = false

	return u.String()
}

// IsValidURL reports whether s parses as an absolute http/https URL.
func IsValidURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}

// Hostname extracts the display hostname of a URL, without a leading
// www. label. Used as the title fallback for links. Returns the input
// unchanged when it does not parse, matching how broken URLs are still
// shown rather than hidden.
func Hostname(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return strings.TrimSpace(rawURL)
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// EscapeMarkup escapes <, >, &, and both quote characters so the
// result is inert in text and attribute contexts.
func EscapeMarkup(s string) string {
	return html.EscapeString(s)
}
