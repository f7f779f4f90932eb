package compose

import (
	"math/rand"

	"github.com/i2i-labs/tobi-backend/internal/runtimekb"
)

// Follow-up modes.
const (
	ModeTalk    = "talk"
	ModeSummary = "summary"
)

var linesSite = []string{
	"Want a quick tour of the site, or a concise summary of the data?",
	"Prefer a navigation guide to that tool, or a concise data brief?",
	"Should I show you how to use the site, or give a concise summary of the data?",
	"Would a walkthrough of the site help, or a concise summary of the data?",
	"Do you want a step-through of the site, or a concise data overview?",
	"Shall I explain the site's key features, or provide a concise summary of the data?",
}

var linesSummary = []string{
	"Want a quick summary or a step-by-step walkthrough?",
	"Prefer a concise brief or a deeper guided walkthrough?",
	"Would you like a short summary or an in-depth explanation?",
	"Should I keep it brief, or walk you through it step by step?",
	"Want a high-level summary or a detailed walkthrough?",
	"Prefer a concise recap or a structured, step-by-step guide?",
}

var linesData = []string{
	"Should I summarize the data, or focus on explaining the trends?",
	"Want just the headline figures, or the context behind them?",
	"Prefer the key numbers, or what they mean for decisions?",
	"Do you want the topline stats, or a deeper interpretation?",
	"Shall I give a concise summary of the data, or unpack the drivers?",
	"Would you like the main figures, or an explanation of the implications?",
}

var howTriggers = []string{
	"how do i", "how to", "navigate", "where do i find", "use the site",
}

var numberTriggers = []string{
	"prevalence", "incidence", "rate", "estimate", "trend",
	"number", "count", "data", "stats",
}

// PickFollowUp returns a short, varied follow-up line tailored to the
// question. hasRefSite means a specific site or tool was suggested;
// hasSources means evidence sources were attached.
func PickFollowUp(prompt string, hasRefSite, hasSources bool, mode string, rng *rand.Rand) string {
	q := runtimekb.Normalize(prompt)
	wantsHow := containsAny(q, howTriggers...)
	wantsNumbers := containsAny(q, numberTriggers...)

	choice := func(lines []string) string {
		return lines[rng.Intn(len(lines))]
	}

	if hasRefSite && (wantsHow || !wantsNumbers) {
		return choice(linesSite)
	}
	if wantsNumbers {
		return choice(linesData)
	}
	if mode == ModeSummary || hasSources {
		return choice(linesSummary)
	}
	return "Want a quick summary or a step-by-step walkthrough?"
}
