package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/kstost/firstvibe/internal/normalize"
)

// TokensPerWord is the approximation ratio (1 word ≈ 1.3 tokens).
const TokensPerWord = 1.3

// EstimateTokens estimates the number of tokens in a text string.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	wordCount := 0
	inWord := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if !inWord {
				wordCount++
				inWord = true
			}
		} else {
			inWord = false
		}
	}

	tokens := int(float64(wordCount) * TokensPerWord)
	if tokens == 0 && wordCount > 0 {
		tokens = 1
	}
	return tokens
}

// PurposeUsage is the accumulated usage of one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	// Estimated is set when any call's counts were estimated.
	Estimated bool
}

// UsageTracker accumulates token usage per purpose.
type UsageTracker struct {
	mu   sync.Mutex
	byID map[string]*PurposeUsage
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{byID: make(map[string]*PurposeUsage)}
}

// Add records one call.
func (t *UsageTracker) Add(purpose string, u normalize.Usage, estimated bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	pu, ok := t.byID[purpose]
	if !ok {
		pu = &PurposeUsage{Purpose: purpose}
		t.byID[purpose] = pu
	}
	pu.Calls++
	pu.InputTokens += u.InputTokens
	pu.OutputTokens += u.OutputTokens
	pu.Estimated = pu.Estimated || estimated
}

// Snapshot returns the usage sorted by purpose.
func (t *UsageTracker) Snapshot() []PurposeUsage {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]PurposeUsage, 0, len(t.byID))
	for _, pu := range t.byID {
		out = append(out, *pu)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Purpose < out[j].Purpose })
	return out
}

// Summary renders one line per purpose for the end-of-run report.
func (t *UsageTracker) Summary() string {
	var b strings.Builder
	for _, pu := range t.Snapshot() {
		mark := ""
		if pu.Estimated {
			mark = " (estimated)"
		}
		fmt.Fprintf(&b, "%-8s %2d call(s)  in %7d  out %7d tokens%s\n",
			pu.Purpose, pu.Calls, pu.InputTokens, pu.OutputTokens, mark)
	}
	return b.String()
}
