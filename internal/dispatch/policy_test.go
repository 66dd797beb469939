package dispatch

import (
	"testing"

	"github.com/kstost/firstvibe/internal/config"
	"github.com/kstost/firstvibe/internal/domain"
)

func TestRetryPolicy_Observe(t *testing.T) {
	rl := domain.KindRateLimit
	mo := domain.KindMalformedOutput
	other := domain.KindOther

	tests := []struct {
		name  string
		kinds []domain.ErrorKind
		want  []decision
	}{
		{
			name:  "malformed escalates after max",
			kinds: []domain.ErrorKind{mo, mo, mo},
			want:  []decision{decideImmediate, decideImmediate, decideEscalate},
		},
		{
			name:  "rate limit backs off",
			kinds: []domain.ErrorKind{rl, rl, rl},
			want:  []decision{decideBackoff, decideBackoff, decideBackoff},
		},
		{
			name:  "class switch starts fresh",
			kinds: []domain.ErrorKind{mo, mo, rl, mo, mo},
			want:  []decision{decideImmediate, decideImmediate, decideBackoff, decideImmediate, decideImmediate},
		},
		{
			name:  "other escalates at once",
			kinds: []domain.ErrorKind{other},
			want:  []decision{decideEscalate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newRetryPolicy(config.Default().App)
			for i, k := range tt.kinds {
				if got := p.observe(k); got != tt.want[i] {
					t.Errorf("observe(#%d %v) = %v, want %v", i, k, got, tt.want[i])
				}
			}
		})
	}
}

func TestRetryPolicy_ResetAfterContinue(t *testing.T) {
	p := newRetryPolicy(config.AppConfig{MalformedMaxRetries: 1})
	p.observe(domain.KindMalformedOutput)
	if got := p.observe(domain.KindMalformedOutput); got != decideEscalate {
		t.Fatalf("observe() = %v, want escalate", got)
	}
	p.reset()
	if got := p.observe(domain.KindMalformedOutput); got != decideImmediate {
		t.Errorf("observe() after reset = %v, want immediate", got)
	}
	if p.attempt() != 1 || p.limit() != 1 {
		t.Errorf("attempt/limit = %d/%d, want 1/1", p.attempt(), p.limit())
	}
}

func TestInvokeMachine_Transitions(t *testing.T) {
	m, err := newInvokeMachine("PRD")
	if err != nil {
		t.Fatalf("newInvokeMachine() error = %v", err)
	}
	if m.Current() != stateAttempting {
		t.Fatalf("initial state = %s, want %s", m.Current(), stateAttempting)
	}

	steps := []struct {
		event string
		want  string
	}{
		{eventRateLimited, stateRetryBackoff},
		{eventResume, stateAttempting},
		{eventEscalate, stateEscalate},
		{eventDecline, stateAbort},
	}
	for _, s := range steps {
		if err := m.Fire(s.event); err != nil {
			t.Fatalf("Fire(%s) error = %v", s.event, err)
		}
		if m.Current() != s.want {
			t.Errorf("after %s state = %s, want %s", s.event, m.Current(), s.want)
		}
	}

	for _, event := range []string{eventSucceed, eventResume} {
		if err := m.Fire(event); err == nil {
			t.Errorf("Fire(%s) from abort should fail", event)
		}
	}
}

func TestInvokeMachine_SuccessIsFinal(t *testing.T) {
	m, err := newInvokeMachine("TRD")
	if err != nil {
		t.Fatalf("newInvokeMachine() error = %v", err)
	}
	if err := m.Fire(eventSucceed); err != nil {
		t.Fatalf("Fire(succeed) error = %v", err)
	}
	for _, event := range []string{eventResume, eventMalformed, eventEscalate} {
		if err := m.Fire(event); err == nil {
			t.Errorf("Fire(%s) from success should fail", event)
		}
		if m.Current() != stateSuccess {
			t.Errorf("after %s state = %s, want %s", event, m.Current(), stateSuccess)
		}
	}
}
