// Package dispatch is the single entry point for AI calls. It drives one
// request through the provider adapter, the response normalizer and the
// shape check, retrying rate-limited and malformed attempts and asking the
// operator before giving up.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/kstost/firstvibe/internal/adapter"
	"github.com/kstost/firstvibe/internal/auditlog"
	"github.com/kstost/firstvibe/internal/config"
	"github.com/kstost/firstvibe/internal/domain"
	"github.com/kstost/firstvibe/internal/normalize"
	"github.com/kstost/firstvibe/internal/schema"
)

// keyCooldown is how long a rate-limited key stays out of rotation.
const keyCooldown = time.Minute

const (
	continuePrompt = "Problems keep occurring. Do you want to continue?"
	detailsPrompt  = "Do you want to see the error details? You can share them with the developers to help fix the problem."
)

// Operator answers yes/no questions during escalation.
type Operator interface {
	Confirm(ctx context.Context, message string, def bool) (bool, error)
}

// Progress shows what the dispatcher is waiting for.
type Progress interface {
	Start(text string)
	Update(text string)
	Stop()
}

// Sleeper pauses between rate-limited attempts.
type Sleeper func(ctx context.Context, d time.Duration) error

// Observer receives attempt metrics.
type Observer interface {
	ObserveAttempt(provider, purpose, outcome string, dur time.Duration)
	ObserveRetry(provider, class string)
	ObserveEscalation(purpose string)
	ObserveUsage(provider, purpose string, u normalize.Usage, prompt, completion string)
}

// Dispatcher invokes AI providers.
type Dispatcher struct {
	registry   *adapter.Registry
	operator   Operator
	progress   Progress
	sleep      Sleeper
	recorder   auditlog.Recorder
	metrics    Observer
	logger     *slog.Logger
	out        io.Writer
	httpClient *http.Client
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRegistry replaces the adapter lookup table.
func WithRegistry(r *adapter.Registry) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.registry = r
		}
	}
}

// WithOperator sets who is asked during escalation.
func WithOperator(o Operator) Option {
	return func(d *Dispatcher) {
		d.operator = o
	}
}

// WithProgress sets the progress indicator.
func WithProgress(p Progress) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.progress = p
		}
	}
}

// WithSleeper replaces the backoff pause.
func WithSleeper(s Sleeper) Option {
	return func(d *Dispatcher) {
		if s != nil {
			d.sleep = s
		}
	}
}

// WithRecorder forces an audit recorder. Without it, a file recorder is
// used whenever app.log is enabled.
func WithRecorder(r auditlog.Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// WithMetrics sets the metrics observer.
func WithMetrics(m Observer) Option {
	return func(d *Dispatcher) {
		if m != nil {
			d.metrics = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithOutput sets where error details are printed.
func WithOutput(w io.Writer) Option {
	return func(d *Dispatcher) {
		if w != nil {
			d.out = w
		}
	}
}

// WithHTTPClient sets the HTTP client handed to adapters.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.httpClient = c
	}
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: adapter.DefaultRegistry(),
		progress: nopProgress{},
		sleep:    sleepContext,
		metrics:  nopObserver{},
		logger:   slog.Default(),
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Invoke runs req against the provider selected in cfg. cfg must be freshly
// loaded by the caller; nothing is cached between calls.
//
// It returns only on success, on context cancellation, on a configuration
// problem, or with an *AbortError once the operator declines to continue.
func (d *Dispatcher) Invoke(ctx context.Context, cfg *config.Configuration, req domain.Request) (domain.Response, error) {
	if cfg == nil {
		return domain.Response{}, errors.New("dispatch: nil configuration")
	}
	provider := cfg.Provider
	if req.Model == "" {
		req.Model = cfg.ModelFor(req.Purpose)
	}
	if req.Options == (domain.GenerationOptions{}) {
		req.Options = cfg.OptionsFor(req.Purpose)
	}

	keys := domain.NewKeyRing(domain.ParseKeys(cfg.Active().APIKey), keyCooldown)
	if keys.Len() == 0 {
		return domain.Response{}, fmt.Errorf("%s: %w", provider, domain.ErrNoKeysAvailable)
	}

	machine, err := newInvokeMachine(string(req.Purpose))
	if err != nil {
		return domain.Response{}, err
	}

	run := &invocation{
		Dispatcher: d,
		cfg:        cfg,
		req:        req,
		keys:       keys,
		policy:     newRetryPolicy(cfg.App),
		machine:    machine,
		audit:      d.recorderFor(cfg),
		label:      progressText(req.Purpose),
	}
	return run.loop(ctx)
}

// invocation is the state of one Invoke.
type invocation struct {
	*Dispatcher

	cfg      *config.Configuration
	req      domain.Request
	keys     *domain.KeyRing
	policy   *retryPolicy
	machine  *invokeMachine
	audit    auditlog.Recorder
	label    string

	key     string
	resp    domain.Response
	lastErr error
}

func (r *invocation) loop(ctx context.Context) (domain.Response, error) {
	r.progress.Start(r.label)
	defer r.progress.Stop()

	for {
		var err error
		switch r.machine.Current() {
		case stateAttempting:
			err = r.attempting(ctx)
		case stateRetryBackoff:
			err = r.backoff(ctx)
		case stateRetryImmediate:
			err = r.immediate()
		case stateEscalate:
			err = r.escalate(ctx)
		case stateSuccess:
			return r.resp, nil
		case stateAbort:
			return domain.Response{}, &AbortError{Purpose: r.req.Purpose, Cause: r.lastErr}
		default:
			err = fmt.Errorf("unknown invoke state %q", r.machine.Current())
		}
		if err != nil {
			return domain.Response{}, err
		}
	}
}

func (r *invocation) attempting(ctx context.Context) error {
	key, err := r.keys.Next()
	if err != nil {
		return err
	}
	r.key = key

	start := time.Now()
	resp, err := r.attempt(ctx, key)
	provider := string(r.cfg.Provider)
	purpose := string(r.req.Purpose)

	if err == nil {
		r.metrics.ObserveAttempt(provider, purpose, "success", time.Since(start))
		r.resp = resp
		return r.machine.Fire(eventSucceed)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	kind := domain.KindOf(err)
	r.metrics.ObserveAttempt(provider, purpose, kind.String(), time.Since(start))
	r.lastErr = err
	r.logger.Debug("attempt failed",
		slog.String("provider", provider),
		slog.String("purpose", purpose),
		slog.String("class", kind.String()),
		slog.Any("error", err),
	)

	switch r.policy.observe(kind) {
	case decideBackoff:
		r.metrics.ObserveRetry(provider, kind.String())
		return r.machine.Fire(eventRateLimited)
	case decideImmediate:
		r.metrics.ObserveRetry(provider, kind.String())
		return r.machine.Fire(eventMalformed)
	default:
		return r.machine.Fire(eventEscalate)
	}
}

func (r *invocation) backoff(ctx context.Context) error {
	if r.keys.Bench(r.key) {
		r.logger.Info("API key rate limited, rotating",
			slog.String("provider", string(r.cfg.Provider)),
			slog.Int("active_keys", r.keys.Active()),
		)
		r.progress.Update(fmt.Sprintf("%s (rate limit reached, switching API key %d/%d)",
			r.label, r.policy.attempt(), r.policy.limit()))
		return r.machine.Fire(eventResume)
	}

	delay := r.cfg.App.RateLimitDelay()
	r.progress.Update(fmt.Sprintf("%s (rate limit reached, retrying in %s %d/%d)",
		r.label, delay, r.policy.attempt(), r.policy.limit()))
	if err := r.sleep(ctx, delay); err != nil {
		return err
	}
	return r.machine.Fire(eventResume)
}

func (r *invocation) immediate() error {
	r.progress.Update(fmt.Sprintf("%s (response format mismatch, retrying %d/%d)",
		r.label, r.policy.attempt(), r.policy.limit()))
	return r.machine.Fire(eventResume)
}

func (r *invocation) escalate(ctx context.Context) error {
	r.progress.Stop()
	r.metrics.ObserveEscalation(string(r.req.Purpose))
	r.logger.Warn("escalating to operator",
		slog.String("purpose", string(r.req.Purpose)),
		slog.Any("error", r.lastErr),
	)

	if r.operator == nil {
		return r.machine.Fire(eventDecline)
	}

	again, err := r.operator.Confirm(ctx, continuePrompt, false)
	if err != nil {
		return err
	}
	if again {
		r.policy.reset()
		r.keys.Restore()
		r.progress.Start(r.label)
		return r.machine.Fire(eventResume)
	}

	show, err := r.operator.Confirm(ctx, detailsPrompt, false)
	if err != nil {
		return err
	}
	if show {
		r.printDetails()
	}
	return r.machine.Fire(eventDecline)
}

func (r *invocation) printDetails() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "=== Error details ===")
	fmt.Fprintln(r.out, failureDetails(r.lastErr))
}

// attempt performs one provider call and returns a tagged *domain.Error on
// failure.
func (r *invocation) attempt(ctx context.Context, key string) (domain.Response, error) {
	provider := r.cfg.Provider
	section := r.cfg.Active()

	ai, err := r.registry.Build(provider, adapter.Settings{
		APIKey:     key,
		BaseURL:    section.BaseURL,
		HTTPClient: r.httpClient,
		Logger:     r.logger,
	})
	if err != nil {
		return domain.Response{}, &domain.Error{Kind: domain.KindOther, Provider: provider, Err: err}
	}

	call := adapter.Call{Request: r.req, Recorder: r.audit}
	if r.req.Structured() {
		call.Schema = schema.Translate(r.req.OutputSchema, ai.Dialect())
	}

	res, err := r.generate(ctx, ai, call)
	if err != nil {
		return domain.Response{}, classify(provider, err)
	}
	if res.Envelope == nil {
		return domain.Response{}, malformed(provider, res.Raw, normalize.ErrEmptyEnvelope)
	}

	resp, err := normalize.Extract(res.Envelope, r.req.Structured())
	if err != nil {
		return domain.Response{}, malformed(provider, res.Raw, err)
	}
	if r.req.Structured() {
		if err := schema.CheckShape(r.req.OutputSchema, resp.Data); err != nil {
			return domain.Response{}, malformed(provider, res.Raw, err)
		}
	}

	r.metrics.ObserveUsage(string(provider), string(r.req.Purpose), res.Envelope.Usage(), promptText(r.req), resp.Text)
	return resp, nil
}

func (r *invocation) generate(ctx context.Context, ai adapter.AIProvider, call adapter.Call) (*adapter.Result, error) {
	limit := r.cfg.App.RequestTimeout()
	if limit <= 0 {
		return ai.Generate(ctx, call)
	}
	t := timeout.New[*adapter.Result](timeout.Config{DefaultTimeout: limit})
	return t.Execute(ctx, limit, func(ctx context.Context) (*adapter.Result, error) {
		return ai.Generate(ctx, call)
	})
}

func (d *Dispatcher) recorderFor(cfg *config.Configuration) auditlog.Recorder {
	if d.recorder != nil {
		return d.recorder
	}
	if cfg.App.Log {
		return auditlog.NewFileRecorder(cfg.App.AuditDir(), d.logger)
	}
	return auditlog.Nop{}
}

// classify tags a Generate failure. Only the status code decides rate
// limiting; normalizer sentinels and shape errors mean malformed output.
func classify(provider domain.ProviderType, err error) error {
	var tagged *domain.Error
	if errors.As(err, &tagged) {
		return err
	}

	var status *adapter.StatusError
	if errors.As(err, &status) {
		kind := domain.KindOther
		if status.StatusCode == http.StatusTooManyRequests {
			kind = domain.KindRateLimit
		}
		return &domain.Error{Kind: kind, Provider: provider, StatusCode: status.StatusCode, Raw: status.Body, Err: err}
	}

	var shape *schema.ShapeError
	if normalize.IsMalformed(err) || errors.As(err, &shape) {
		return &domain.Error{Kind: domain.KindMalformedOutput, Provider: provider, Err: err}
	}
	return &domain.Error{Kind: domain.KindOther, Provider: provider, Err: err}
}

func malformed(provider domain.ProviderType, raw []byte, err error) error {
	return &domain.Error{Kind: domain.KindMalformedOutput, Provider: provider, Raw: raw, Err: err}
}

// failureDetails renders the raw payload of err, indented when it is JSON.
func failureDetails(err error) string {
	if err == nil {
		return "(no details)"
	}
	raw := domain.RawOf(err)
	if len(bytes.TrimSpace(raw)) == 0 {
		return err.Error()
	}
	var buf bytes.Buffer
	if json.Indent(&buf, raw, "", "  ") == nil {
		return buf.String()
	}
	return string(raw)
}

func promptText(req domain.Request) string {
	parts := make([]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		parts = append(parts, m.Text)
	}
	return strings.Join(parts, "\n")
}

func progressText(p domain.Purpose) string {
	switch p {
	case domain.PurposeQuestion:
		return "Generating questions..."
	case domain.PurposePRD:
		return "Writing the PRD..."
	case domain.PurposeTRD:
		return "Writing the TRD (technical requirements document)..."
	case domain.PurposeTODO:
		return "Building the TODO list..."
	default:
		return "Waiting for the AI..."
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type nopProgress struct{}

func (nopProgress) Start(string)  {}
func (nopProgress) Update(string) {}
func (nopProgress) Stop()         {}

type nopObserver struct{}

func (nopObserver) ObserveAttempt(string, string, string, time.Duration)         {}
func (nopObserver) ObserveRetry(string, string)                                  {}
func (nopObserver) ObserveEscalation(string)                                     {}
func (nopObserver) ObserveUsage(string, string, normalize.Usage, string, string) {}
