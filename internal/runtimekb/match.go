package runtimekb

import (
	"regexp"
	"sort"
	"strings"
)

// Normalize lowercases and trims an utterance for matching.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Match finds the first routing item matching the utterance. An exact
// question match wins over a pattern substring match; within each
// item, patterns are checked in order; the first matching item in
// document order wins. Trailing punctuation does not defeat an exact
// match.
func (kb *KnowledgeBase) Match(utterance string) *RoutingItem {
	if kb == nil {
		return nil
	}
	q := Normalize(utterance)
	qBare := strings.TrimRight(q, " ?!.")
	for i := range kb.QNA {
		item := &kb.QNA[i]
		if exact := Normalize(item.QuestionExact); exact != "" && (exact == q || exact == qBare) {
			return item
		}
		for _, p := range item.Patterns {
			if p != "" && strings.Contains(q, Normalize(p)) {
				return item
			}
		}
	}
	return nil
}

// SourceMetaFor looks up curated metadata for a source code.
func (kb *KnowledgeBase) SourceMetaFor(code string) (SourceMeta, bool) {
	if kb == nil || kb.Sources == nil {
		return SourceMeta{}, false
	}
	m, ok := kb.Sources[code]
	return m, ok
}

var tokenRe = regexp.MustCompile(`[a-z0-9\-]+`)

// Tokenize splits a normalized utterance into matchable tokens.
func Tokenize(s string) map[string]bool {
	toks := map[string]bool{}
	for _, t := range tokenRe.FindAllString(Normalize(s), -1) {
		toks[t] = true
	}
	return toks
}

// RelevantResources ranks the resource map by token overlap with the
// utterance and returns the top n entries. Certain token pairings get
// a bonus so the right tool surfaces for the common query shapes.
func (kb *KnowledgeBase) RelevantResources(utterance string, n int) []ResourceItem {
	if kb == nil || len(kb.Resources) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	qToks := Tokenize(utterance)

	type scored struct {
		score int
		item  ResourceItem
	}
	var ranked []scored
	for _, r := range kb.Resources {
		text := strings.Join([]string{
			r.Name,
			r.Summary,
			strings.Join(r.WhenToUse, " "),
			strings.Join(r.MatchTerms, " "),
			r.Category,
		}, " ")
		rToks := Tokenize(text)
		overlap := 0
		for t := range qToks {
			if rToks[t] {
				overlap++
			}
		}
		if qToks["agyw"] && rToks["agyw"] {
			overlap += 2
		}
		if (qToks["district"] || qToks["subnational"]) && (rToks["sub"] || rToks["district"]) {
			overlap++
		}
		if qToks["prep"] && rToks["prep"] {
			overlap += 2
		}
		if qToks["testing"] && strings.Contains(strings.ToLower(r.Name), "statcompiler") {
			overlap++
		}
		if overlap > 0 {
			ranked = append(ranked, scored{overlap, r})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) == 0 {
		return nil
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]ResourceItem, len(ranked))
	for i, s := range ranked {
		out[i] = s.item
	}
	return out
}
