package markdown

import (
	"math/rand"
	"regexp"
	"strings"
)

var (
	linkBlockRe = regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`)
	bareURLRe   = regexp.MustCompile("(?i)https?://[^\\s<>\\[\\]{}()'\"`]+")

	// percentages like 2%, 12.5%, 1,234.5%
	percentRe = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*(?:\.\d+)?%`)
	// chains like 95-95-95 or 2000–2023
	chainRe = regexp.MustCompile(`\b(\d{1,4}(?:,\d{3})*(?:\.\d+)?)((?:\s*[–-]\s*\d{1,4}(?:,\d{3})*(?:\.\d+)?)+)\b`)
	// standalone numbers with optional thousands separators and decimals
	numberRe = regexp.MustCompile(`\b\d{1,3}(?:,\d{3})*(?:\.\d+)?\b`)

	chainSepRe = regexp.MustCompile(`\s*([–-])\s*`)
)

// splitLinks separates text into plain segments and the link blocks
// between them; joining segments[i] + links[i] reconstructs the text.
func splitLinks(text string) (segments, links []string) {
	links = linkBlockRe.FindAllString(text, -1)
	segments = linkBlockRe.Split(text, -1)
	return
}

func joinLinks(segments, links []string) string {
	var b strings.Builder
	for i, seg := range segments {
		b.WriteString(seg)
		if i < len(links) {
			b.WriteString(links[i])
		}
	}
	return b.String()
}

// LinkifyBareURLs replaces bare URLs outside markdown links with
// [title](url) links.
func LinkifyBareURLs(text string) string {
	if text == "" {
		return text
	}
	segments, links := splitLinks(text)
	for i, seg := range segments {
		segments[i] = bareURLRe.ReplaceAllStringFunc(seg, func(raw string) string {
			trimmed := strings.TrimRight(raw, ".,;:!?")
			return Link(trimmed, TitleForURL(trimmed)) + raw[len(trimmed):]
		})
	}
	return joinLinks(segments, links)
}

func wrapBold(s string) string {
	return "**" + s + "**"
}

// EmphasizeStats bolds percentages, number chains like 95-95-95, and
// standalone numbers, never touching text inside markdown links and
// never double-bolding.
func EmphasizeStats(text string) string {
	if text == "" {
		return text
	}
	segments, links := splitLinks(text)
	for i, seg := range segments {
		segments[i] = emphasizeSegment(seg)
	}
	return joinLinks(segments, links)
}

func emphasizeSegment(seg string) string {
	// Percentages first, including chains like 73%-87%-81%.
	seg = percentRe.ReplaceAllStringFunc(seg, wrapBold)

	// Number chains, skipping any that picked up a percent sign.
	seg = chainRe.ReplaceAllStringFunc(seg, func(full string) string {
		if strings.Contains(full, "%") {
			return full
		}
		m := chainRe.FindStringSubmatch(full)
		if m == nil {
			return full
		}
		var b strings.Builder
		b.WriteString(wrapBold(m[1]))
		rest := m[2]
		// Rebuild: each separator followed by its bolded number.
		pieces := chainSepRe.Split(rest, -1)
		seps := chainSepRe.FindAllStringSubmatch(rest, -1)
		// pieces[0] is empty (rest starts with a separator).
		for j, s := range seps {
			b.WriteString(s[1])
			if j+1 < len(pieces) && strings.TrimSpace(pieces[j+1]) != "" {
				b.WriteString(wrapBold(strings.TrimSpace(pieces[j+1])))
			}
		}
		return b.String()
	})

	// Standalone numbers, skipping already-bolded ones and percents.
	var b strings.Builder
	cursor := 0
	for _, loc := range numberRe.FindAllStringIndex(seg, -1) {
		start, end := loc[0], loc[1]
		before := seg[max(0, start-2):start]
		afterEnd := min(len(seg), end+2)
		after := seg[end:afterEnd]
		if strings.Contains(before, "**") || strings.Contains(after, "**") ||
			(len(after) > 0 && after[0] == '%') {
			continue
		}
		b.WriteString(seg[cursor:start])
		b.WriteString(wrapBold(seg[start:end]))
		cursor = end
	}
	b.WriteString(seg[cursor:])
	return b.String()
}

// FootnoteFallbackURL is used for the sentence footnote when no
// retrieved source or suggested reference exists.
const FootnoteFallbackURL = "https://media.cnn.com/api/v1/images/stellar/prod/" +
	"210226041654-05-pokemon-anniversary-design.jpg" +
	"?q=w_1920,h_1080,x_0,y_0,c_fill"

// AnnotateSentence inserts a single [[1]](url) marker after the 2nd
// or 3rd sentence (chosen via rng), outside existing markdown links.
// Text with fewer than two sentences is returned unchanged.
func AnnotateSentence(text, url string, rng *rand.Rand) string {
	if text == "" || url == "" {
		return text
	}
	segments, links := splitLinks(text)

	type pos struct {
		segIdx int
		offset int
	}
	var ends []pos

	for segIdx, seg := range segments {
		i := 0
		n := len(seg)
		for i < n {
			ch := seg[i]
			if ch != '.' && ch != '!' && ch != '?' {
				i++
				continue
			}
			// Decimal points like 12.20 don't end a sentence.
			if ch == '.' && i > 0 && i+1 < n && isDigit(seg[i-1]) && isDigit(seg[i+1]) {
				i++
				continue
			}
			// Collapse ellipses.
			if ch == '.' && i+2 < n && seg[i+1] == '.' && seg[i+2] == '.' {
				i += 3
				continue
			}
			j := i + 1
			for j < n && isTrailingQuote(seg, j) {
				_, size := trailingQuoteAt(seg, j)
				j += size
			}
			ends = append(ends, pos{segIdx, j})
			i = j
		}
	}

	if len(ends) < 2 {
		return text
	}
	candidates := ends[1:2]
	if len(ends) >= 3 {
		candidates = ends[1:3]
	}
	chosen := candidates[rng.Intn(len(candidates))]

	seg := segments[chosen.segIdx]
	marker := " [[1]](" + url + ")"
	segments[chosen.segIdx] = seg[:chosen.offset] + marker + seg[chosen.offset:]
	return joinLinks(segments, links)
}

var trailingQuotes = []string{`"`, "'", "”", "’", ")", "]"}

func isTrailingQuote(s string, i int) bool {
	_, size := trailingQuoteAt(s, i)
	return size > 0
}

func trailingQuoteAt(s string, i int) (string, int) {
	for _, q := range trailingQuotes {
		if strings.HasPrefix(s[i:], q) {
			return q, len(q)
		}
	}
	return "", 0
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
