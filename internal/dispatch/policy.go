package dispatch

import (
	"github.com/kstost/firstvibe/internal/config"
	"github.com/kstost/firstvibe/internal/domain"
)

// decision is what the retry policy wants after a failed attempt.
type decision int

const (
	decideEscalate decision = iota
	decideBackoff
	decideImmediate
)

// retryPolicy keeps one attempt counter per error class. Only the class of
// the latest failure is counted; when the class changes its counter starts
// fresh.
type retryPolicy struct {
	limits   map[domain.ErrorKind]int
	counts   map[domain.ErrorKind]int
	current  domain.ErrorKind
	observed bool
}

func newRetryPolicy(app config.AppConfig) *retryPolicy {
	return &retryPolicy{
		limits: map[domain.ErrorKind]int{
			domain.KindRateLimit:       app.RateLimitMaxRetries,
			domain.KindMalformedOutput: app.MalformedMaxRetries,
			domain.KindOther:           0,
		},
		counts: make(map[domain.ErrorKind]int),
	}
}

// observe records a failure of kind and decides the next step.
func (p *retryPolicy) observe(kind domain.ErrorKind) decision {
	if !p.observed || kind != p.current {
		p.current = kind
		p.counts[kind] = 0
		p.observed = true
	}
	p.counts[kind]++
	if p.counts[kind] > p.limits[kind] {
		return decideEscalate
	}

	switch kind {
	case domain.KindRateLimit:
		return decideBackoff
	case domain.KindMalformedOutput:
		return decideImmediate
	default:
		return decideEscalate
	}
}

// attempt returns the counter of the current class.
func (p *retryPolicy) attempt() int {
	return p.counts[p.current]
}

// limit returns the bound of the current class.
func (p *retryPolicy) limit() int {
	return p.limits[p.current]
}

// reset clears the counter of the current class after the operator chose
// to keep going.
func (p *retryPolicy) reset() {
	p.counts[p.current] = 0
}
