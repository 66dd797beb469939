package auditlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileRecorder_Record(t *testing.T) {
	dir := t.TempDir()
	r := NewFileRecorder(dir, nil)
	r.now = func() time.Time { return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC) }

	r.Record(Entry{
		Purpose:   "PRD",
		Direction: DirectionRequest,
		Provider:  "openai",
		Model:     "gpt-5",
		Payload:   map[string]any{"input": "hello", "apiKey": "sk-should-not-appear"},
	})

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("len(files) = %d, want 1", len(files))
	}
	name := files[0].Name()
	if !strings.HasPrefix(name, "20250801T120000000Z_prd_request_") {
		t.Errorf("file name = %s", name)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "sk-should-not-appear") {
		t.Errorf("audit record leaked api key: %s", data)
	}

	var got Entry
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if got.ID == "" || got.Provider != "openai" || got.Model != "gpt-5" || got.Direction != DirectionRequest {
		t.Errorf("record = %+v", got)
	}
}

func TestFileRecorder_WriteFailureIsSwallowed(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	// a regular file where the directory should be makes MkdirAll fail
	r := NewFileRecorder(filepath.Join(blocker, "logs"), nil)
	r.Record(Entry{Purpose: "TRD", Direction: DirectionResponse, Payload: "x"})
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.Record(Entry{})
}
