// Package auditlog writes request/response audit records for provider calls.
// Recording is fire-and-forget: a failed write is logged and dropped.
package auditlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kstost/firstvibe/internal/security"
)

// Direction tells whether an entry was written before or after the call.
type Direction string

const (
	DirectionRequest  Direction = "request"
	DirectionResponse Direction = "response"
)

// Entry is one audit record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Purpose   string    `json:"purpose"`
	Direction Direction `json:"direction"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Payload   any       `json:"payload"`
}

// Recorder accepts audit entries. Implementations must not block the
// caller on failure and must never return an error to it.
type Recorder interface {
	Record(Entry)
}

// Nop discards every entry.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(Entry) {}

// FileRecorder writes each entry as its own JSON file under Dir.
type FileRecorder struct {
	Dir    string
	Logger *slog.Logger
	now    func() time.Time
}

// NewFileRecorder creates a recorder writing into dir.
func NewFileRecorder(dir string, logger *slog.Logger) *FileRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileRecorder{Dir: dir, Logger: logger, now: time.Now}
}

// Record fills in ID and Timestamp, redacts the payload and writes it.
func (r *FileRecorder) Record(e Entry) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = r.now().UTC()
	}
	e.Payload = security.RedactValue(e.Payload)

	if err := r.write(e); err != nil {
		r.Logger.Debug("audit record dropped", "error", err, "purpose", e.Purpose, "direction", e.Direction)
	}
}

func (r *FileRecorder) write(e Entry) error {
	if err := os.MkdirAll(r.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create audit dir: %w", err)
	}
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}
	return os.WriteFile(filepath.Join(r.Dir, fileName(e)), data, 0o600)
}

// fileName sorts chronologically and stays unique per entry.
func fileName(e Entry) string {
	stamp := e.Timestamp.Format("20060102T150405.000Z")
	stamp = strings.ReplaceAll(stamp, ".", "")
	purpose := strings.ToLower(e.Purpose)
	if purpose == "" {
		purpose = "call"
	}
	return fmt.Sprintf("%s_%s_%s_%s.json", stamp, purpose, e.Direction, e.ID[:8])
}
