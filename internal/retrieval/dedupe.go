package retrieval

import "strings"

// DedupeSources collapses sources that refer to the same document,
// keyed by lowercased label. The survivor for each document keeps the
// highest score; on equal scores a hit with a known page beats one
// without, then an https URL beats a plain one. First-seen order of
// the surviving labels is preserved.
func DedupeSources(sources []Source) []Source {
	type slot struct {
		src   Source
		order int
	}
	best := make(map[string]*slot)
	order := make([]string, 0, len(sources))

	for _, s := range sources {
		key := strings.ToLower(strings.TrimSpace(s.Label))
		cur, ok := best[key]
		if !ok {
			best[key] = &slot{src: s, order: len(order)}
			order = append(order, key)
			continue
		}
		if betterSource(s, cur.src) {
			cur.src = s
		}
	}

	out := make([]Source, 0, len(order))
	for _, key := range order {
		out = append(out, best[key].src)
	}
	return out
}

func betterSource(a, b Source) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	aPage, bPage := a.Page > 0, b.Page > 0
	if aPage != bPage {
		return aPage
	}
	aHTTPS := strings.HasPrefix(a.URL, "https://")
	bHTTPS := strings.HasPrefix(b.URL, "https://")
	if aHTTPS != bHTTPS {
		return aHTTPS
	}
	return false
}

// DocSnippets returns one source per distinct document, keeping the
// first nonempty snippet seen for each label. Used to show the model
// what each candidate document is about.
func DocSnippets(sources []Source, limit int) []Source {
	seen := make(map[string]bool)
	var out []Source
	for _, s := range sources {
		key := strings.ToLower(strings.TrimSpace(s.Label))
		if seen[key] || s.Snippet == "" {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
