package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kstost/firstvibe/internal/normalize"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "one word", text: "hello", want: 1},
		{name: "ten words", text: "one two three four five six seven eight nine ten", want: 13},
		{name: "punctuation only", text: "!!! ---", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.text); got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCollector_Counters(t *testing.T) {
	c := New()

	c.ObserveAttempt("openai", "PRD", "RATE_LIMIT", time.Second)
	c.ObserveAttempt("openai", "PRD", "success", 2*time.Second)
	c.ObserveRetry("openai", "RATE_LIMIT")
	c.ObserveEscalation("PRD")

	if got := testutil.ToFloat64(c.attemptsTotal.WithLabelValues("openai", "PRD", "success")); got != 1 {
		t.Errorf("attempts{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.retriesTotal.WithLabelValues("openai", "RATE_LIMIT")); got != 1 {
		t.Errorf("retries = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.escalationsTotal.WithLabelValues("PRD")); got != 1 {
		t.Errorf("escalations = %v, want 1", got)
	}
}

func TestCollector_ObserveUsage(t *testing.T) {
	c := New()

	c.ObserveUsage("gemini", "QUESTION", normalize.Usage{InputTokens: 100, OutputTokens: 50}, "", "")
	c.ObserveUsage("gemini", "QUESTION", normalize.Usage{}, "five words are here now", "ok")

	if got := testutil.ToFloat64(c.tokensTotal.WithLabelValues("gemini", "input")); got != 106 {
		t.Errorf("tokens{input} = %v, want 106", got)
	}

	snap := c.Usage().Snapshot()
	if len(snap) != 1 {
		t.Fatalf("len(Snapshot()) = %d, want 1", len(snap))
	}
	if snap[0].Calls != 2 || !snap[0].Estimated || snap[0].OutputTokens != 51 {
		t.Errorf("Snapshot()[0] = %+v", snap[0])
	}
	if !strings.Contains(c.Usage().Summary(), "(estimated)") {
		t.Errorf("Summary() = %q", c.Usage().Summary())
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := New()
	c.ObserveAttempt("claude", "TODO", "success", time.Second)

	path := filepath.Join(t.TempDir(), "firstvibe.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `firstvibe_ai_attempts_total{outcome="success",provider="claude",purpose="TODO"} 1`) {
		t.Errorf("textfile missing attempt counter:\n%s", data)
	}
}
