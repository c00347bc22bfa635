package util

import (
	"net/url"
	"sort"
	"strings"
)

// CanonicalURL lowercases scheme and host, drops the fragment and tracking
// parameters, and sorts the query. Unparseable input is returned trimmed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "ref" || lk == "source" {
			q.Del(k)
		}
	}

	// deterministic query
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Resolve makes href absolute against base. It returns href unchanged when
// either side does not parse.
func Resolve(base, href string) string {
	href = strings.TrimSpace(href)
	if base == "" || href == "" {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}

// ExpandKeyword substitutes {keyword} in a URL template with the
// query-escaped keyword.
func ExpandKeyword(tmpl, keyword string) string {
	return strings.ReplaceAll(tmpl, "{keyword}", url.QueryEscape(keyword))
}
