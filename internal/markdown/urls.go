// Package markdown post-processes model output: linkifying bare URLs,
// bolding statistics, and inserting citation footnotes. All functions
// leave existing [label](url) links untouched.
package markdown

import (
	"fmt"
	"net/url"
	"strings"
)

// domainTitles maps well-known hosts to display names.
var domainTitles = map[string]string{
	"aidsinfo.unaids.org":      "UNAIDS AIDSinfo",
	"who.int":                  "World Health Organization (WHO)",
	"www.who.int":              "World Health Organization (WHO)",
	"prepwatch.org":            "PrEPWatch",
	"phia.icap.columbia.edu":   "ICAP PHIA",
	"icap.columbia.edu":        "ICAP at Columbia University",
}

// publicSuffix2nd marks second-level labels that act as public
// suffixes (co.uk, go.tz and friends), so host shortening keeps three
// labels instead of two.
var publicSuffix2nd = map[string]bool{
	"co": true, "ac": true, "go": true, "or": true, "gov": true, "edu": true,
}

// Link renders a markdown link, defaulting the label to the host.
func Link(rawURL, label string) string {
	if label == "" {
		if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
			label = u.Host
		} else {
			label = rawURL
		}
	}
	return fmt.Sprintf("[%s](%s)", label, rawURL)
}

// TitleForURL produces a readable title for a URL: a curated name for
// known hosts, otherwise the last path segment or a shortened host.
func TitleForURL(rawURL string) string {
	if strings.Contains(rawURL, "effectiveness-behavioural-interventions") {
		return "GPC Behavioural Data"
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	host := strings.ToLower(u.Host)
	if t, ok := domainTitles[host]; ok {
		return t
	}

	pathLast := ""
	if p := strings.TrimRight(u.Path, "/"); p != "" {
		segs := strings.Split(p, "/")
		pathLast = strings.TrimSpace(strings.ReplaceAll(segs[len(segs)-1], "-", " "))
	}
	if pathLast != "" && !strings.Contains(pathLast, ".") {
		return titleCase(pathLast)
	}

	if host != "" {
		parts := strings.Split(host, ".")
		if len(parts) >= 3 && publicSuffix2nd[parts[len(parts)-2]] {
			return strings.Join(parts[len(parts)-3:], ".")
		}
		if len(parts) > 2 {
			return strings.Join(parts[len(parts)-2:], ".")
		}
		return host
	}
	return rawURL
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
		}
	}
	return strings.Join(words, " ")
}

// CleanFilename derives a human label from an object key or URL: the
// last path segment, percent-decoded.
func CleanFilename(ref string) string {
	if ref == "" {
		return "Unknown source"
	}
	part := ref
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		if u, err := url.Parse(ref); err == nil {
			part = strings.TrimPrefix(u.Path, "/")
		}
	}
	segs := strings.Split(part, "/")
	last := segs[len(segs)-1]
	if dec, err := url.PathUnescape(last); err == nil {
		last = dec
	}
	if last == "" {
		return "Unknown source"
	}
	return last
}

// Basename returns a URL's final path segment without query or
// fragment, percent-decoded. Used as a stable per-document key.
func Basename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	p := u.Path
	segs := strings.Split(p, "/")
	name := segs[len(segs)-1]
	if dec, err := url.PathUnescape(name); err == nil {
		name = dec
	}
	return name
}
