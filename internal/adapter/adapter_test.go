package adapter

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/kstost/firstvibe/internal/auditlog"
	"github.com/kstost/firstvibe/internal/domain"
	"github.com/kstost/firstvibe/internal/normalize"
	"github.com/kstost/firstvibe/internal/providertest"
	"github.com/kstost/firstvibe/internal/schema"
)

func testRequest(structured bool) domain.Request {
	req := domain.Request{
		Purpose: domain.PurposeQuestion,
		Model:   "test-model",
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Text: "You interview product owners."},
			{Role: domain.RoleUser, Text: "A habit tracker"},
		},
		Options: domain.GenerationOptions{Verbosity: "low", ReasoningEffort: "minimal"},
	}
	if structured {
		req.OutputSchema = &schema.Descriptor{
			Name:   "prd_interrogator",
			Strict: true,
			Root: schema.Object(map[string]*schema.Node{
				"questions": schema.ArrayOf(schema.String("")),
			}),
		}
	}
	return req
}

func callFor(p AIProvider, req domain.Request, rec auditlog.Recorder) Call {
	return Call{
		Request:  req,
		Schema:   schema.Translate(req.OutputSchema, p.Dialect()),
		Recorder: rec,
	}
}

type memRecorder struct{ entries []auditlog.Entry }

func (m *memRecorder) Record(e auditlog.Entry) { m.entries = append(m.entries, e) }

func TestOpenAIAdapter_Generate(t *testing.T) {
	srv := providertest.New(t, providertest.OK(providertest.OpenAIText(`{"questions":["q1"]}`)))
	a := NewOpenAIAdapter("sk-test", WithBaseURL(srv.URL))
	rec := &memRecorder{}

	res, err := a.Generate(context.Background(), callFor(a, testRequest(true), rec))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got := srv.Last()
	if got.Path != "/responses" {
		t.Errorf("path = %s, want /responses", got.Path)
	}
	if auth := got.Header.Get("Authorization"); auth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", auth)
	}

	body := got.JSON()
	input := body["input"].([]any)
	if role := input[0].(map[string]any)["role"]; role != "developer" {
		t.Errorf("input[0].role = %v, want developer", role)
	}
	text := body["text"].(map[string]any)
	format := text["format"].(map[string]any)
	if format["type"] != "json_schema" || format["name"] != "prd_interrogator" || format["strict"] != true {
		t.Errorf("text.format = %v", format)
	}
	if text["verbosity"] != "low" {
		t.Errorf("text.verbosity = %v, want low", text["verbosity"])
	}
	if effort := body["reasoning"].(map[string]any)["effort"]; effort != "minimal" {
		t.Errorf("reasoning.effort = %v, want minimal", effort)
	}

	out, err := normalize.Extract(res.Envelope, true)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !reflect.DeepEqual(out.Data, map[string]any{"questions": []any{"q1"}}) {
		t.Errorf("Extract() = %#v", out.Data)
	}
	if u := res.Envelope.Usage(); u.InputTokens != 10 || u.OutputTokens != 20 {
		t.Errorf("Usage() = %+v", u)
	}

	if len(rec.entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(rec.entries))
	}
	if rec.entries[0].Direction != auditlog.DirectionRequest || rec.entries[1].Direction != auditlog.DirectionResponse {
		t.Errorf("audit directions = %s, %s", rec.entries[0].Direction, rec.entries[1].Direction)
	}
}

func TestOpenAIAdapter_TextFormat(t *testing.T) {
	srv := providertest.New(t, providertest.OK(providertest.OpenAIText("# PRD")))
	a := NewOpenAIAdapter("sk-test", WithBaseURL(srv.URL))

	if _, err := a.Generate(context.Background(), callFor(a, testRequest(false), nil)); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	format := srv.Last().JSON()["text"].(map[string]any)["format"].(map[string]any)
	if format["type"] != "text" {
		t.Errorf("text.format.type = %v, want text", format["type"])
	}
	if _, ok := format["schema"]; ok {
		t.Error("free-text call should not send a schema")
	}
}

func TestGeminiAdapter_Generate(t *testing.T) {
	srv := providertest.New(t, providertest.OK(providertest.GeminiText(`{"questions":[]}`)))
	a := NewGeminiAdapter("AIza-test", WithBaseURL(srv.URL))

	res, err := a.Generate(context.Background(), callFor(a, testRequest(true), nil))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got := srv.Last()
	if got.Path != "/models/test-model:generateContent" {
		t.Errorf("path = %s", got.Path)
	}
	if key := got.Header.Get("x-goog-api-key"); key != "AIza-test" {
		t.Errorf("x-goog-api-key = %q", key)
	}

	body := got.JSON()
	contents := body["contents"].([]any)
	if len(contents) != 1 {
		t.Errorf("len(contents) = %d, want 1 (system not in contents)", len(contents))
	}
	sys := body["systemInstruction"].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"]
	if sys != "You interview product owners." {
		t.Errorf("systemInstruction = %v", sys)
	}
	gen := body["generationConfig"].(map[string]any)
	if gen["responseMimeType"] != "application/json" {
		t.Errorf("responseMimeType = %v", gen["responseMimeType"])
	}
	rs := gen["responseSchema"].(map[string]any)
	if rs["type"] != "OBJECT" {
		t.Errorf("responseSchema.type = %v, want OBJECT", rs["type"])
	}
	if _, ok := rs["additionalProperties"]; ok {
		t.Error("responseSchema must not carry additionalProperties")
	}

	out, err := normalize.Extract(res.Envelope, true)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !reflect.DeepEqual(out.Data, map[string]any{"questions": []any{}}) {
		t.Errorf("Extract() = %#v", out.Data)
	}
}

func TestGeminiAdapter_AssistantRole(t *testing.T) {
	srv := providertest.New(t, providertest.OK(providertest.GeminiText("ok")))
	a := NewGeminiAdapter("AIza-test", WithBaseURL(srv.URL))

	req := testRequest(false)
	req.Messages = append(req.Messages,
		domain.Message{Role: domain.RoleAssistant, Text: "What platform?"},
		domain.Message{Role: domain.RoleUser, Text: "Mobile"},
	)
	if _, err := a.Generate(context.Background(), callFor(a, req, nil)); err != nil {
		t.Fatal(err)
	}

	contents := srv.Last().JSON()["contents"].([]any)
	if role := contents[1].(map[string]any)["role"]; role != "model" {
		t.Errorf("contents[1].role = %v, want model", role)
	}
	if _, ok := srv.Last().JSON()["generationConfig"]; ok {
		t.Error("free-text call should not send generationConfig")
	}
}

func TestAnthropicAdapter_Generate(t *testing.T) {
	srv := providertest.New(t, providertest.OK(providertest.ClaudeTool(map[string]any{"questions": []any{"q"}})))
	a := NewAnthropicAdapter("sk-ant-test", WithBaseURL(srv.URL))

	res, err := a.Generate(context.Background(), callFor(a, testRequest(true), nil))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got := srv.Last()
	if got.Path != "/v1/messages" {
		t.Errorf("path = %s", got.Path)
	}
	if got.Header.Get("x-api-key") != "sk-ant-test" || got.Header.Get("anthropic-version") != AnthropicVersion {
		t.Errorf("headers = %v", got.Header)
	}

	body := got.JSON()
	if body["max_tokens"] != float64(AnthropicMaxTokens) {
		t.Errorf("max_tokens = %v", body["max_tokens"])
	}
	tools := body["tools"].([]any)
	if len(tools) != 1 || tools[0].(map[string]any)["name"] != StructuredToolName {
		t.Errorf("tools = %v", tools)
	}
	choice := body["tool_choice"].(map[string]any)
	if choice["type"] != "tool" || choice["name"] != StructuredToolName {
		t.Errorf("tool_choice = %v", choice)
	}
	system := body["system"].([]any)[0].(map[string]any)
	if system["text"] != "You interview product owners." {
		t.Errorf("system = %v", system)
	}

	out, err := normalize.Extract(res.Envelope, true)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !reflect.DeepEqual(out.Data, map[string]any{"questions": []any{"q"}}) {
		t.Errorf("Extract() = %#v", out.Data)
	}
}

func TestAdapters_StatusErrorsPropagate(t *testing.T) {
	tests := []struct {
		name  string
		reply providertest.Reply
		code  int
		msg   string
	}{
		{name: "rate limit", reply: providertest.RateLimited(), code: http.StatusTooManyRequests, msg: "exhausted"},
		{name: "auth", reply: providertest.Fail(http.StatusUnauthorized, "invalid api key"), code: http.StatusUnauthorized, msg: "invalid api key"},
		{name: "plain body", reply: providertest.Reply{Status: http.StatusBadGateway, Body: "upstream down"}, code: http.StatusBadGateway, msg: "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := providertest.New(t, tt.reply, tt.reply, tt.reply)
			for _, p := range []AIProvider{
				NewOpenAIAdapter("k", WithBaseURL(srv.URL)),
				NewGeminiAdapter("k", WithBaseURL(srv.URL)),
				NewAnthropicAdapter("k", WithBaseURL(srv.URL)),
			} {
				_, err := p.Generate(context.Background(), callFor(p, testRequest(false), nil))
				var se *StatusError
				if !errors.As(err, &se) {
					t.Fatalf("%s: error = %v, want *StatusError", p.Name(), err)
				}
				if se.StatusCode != tt.code || !strings.Contains(se.Message, tt.msg) || se.Provider != p.Name() {
					t.Errorf("%s: StatusError = %+v", p.Name(), se)
				}
				if len(se.Body) == 0 {
					t.Errorf("%s: StatusError.Body is empty", p.Name())
				}
			}
		})
	}
}

func TestAdapters_EmptyAndUndecodableBodies(t *testing.T) {
	srv := providertest.New(t, providertest.OK(""), providertest.OK("not json"))
	a := NewAnthropicAdapter("k", WithBaseURL(srv.URL))

	res, err := a.Generate(context.Background(), callFor(a, testRequest(false), nil))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Envelope != nil {
		t.Errorf("Envelope = %v, want nil for empty body", res.Envelope)
	}

	_, err = a.Generate(context.Background(), callFor(a, testRequest(false), nil))
	if !errors.Is(err, normalize.ErrUndecodable) {
		t.Errorf("error = %v, want ErrUndecodable", err)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()

	for _, p := range domain.Providers() {
		a, err := r.Build(p, Settings{APIKey: "k"})
		if err != nil {
			t.Fatalf("Build(%s) error = %v", p, err)
		}
		if a.Name() != p {
			t.Errorf("Build(%s).Name() = %s", p, a.Name())
		}
	}

	if _, err := r.Build("azure", Settings{}); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Build(azure) error = %v, want ErrUnknownProvider", err)
	}
}

func TestNewClient_Options(t *testing.T) {
	c := newClient("k", "https://api.example.com/v1", nil)
	if c.httpClient.Timeout != DefaultTimeout {
		t.Errorf("default Timeout = %v, want %v", c.httpClient.Timeout, DefaultTimeout)
	}

	shared := &http.Client{}
	c = newClient("k", "https://api.example.com/v1", []Option{
		WithHTTPClient(shared),
		WithBaseURL("http://127.0.0.1:9/"),
	})
	if c.httpClient != shared {
		t.Error("WithHTTPClient() did not install the caller's client")
	}
	if shared.Timeout != 0 {
		t.Errorf("caller client Timeout = %v, want untouched", shared.Timeout)
	}
	if c.baseURL != "http://127.0.0.1:9" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
}
