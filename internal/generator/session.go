package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/google/uuid"
)

// SessionFile is the interview record written next to the documents.
const SessionFile = "firstvibe.json"

// Question is one generated interview question.
type Question struct {
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
}

// QA is an answered question.
type QA struct {
	Number   int      `json:"question_number"`
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
	Answer   string   `json:"answer"`
}

// Project is the description the interview started from.
type Project struct {
	Description string `json:"description"`
}

// Session is the full interview, persisted as firstvibe.json so documents
// can be regenerated without answering again.
type Session struct {
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Project   Project   `json:"project"`
	History   []QA      `json:"qa_history"`
}

// NewSession starts a session for description.
func NewSession(description string, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Timestamp: now.UTC(),
		Project:   Project{Description: description},
	}
}

// Add appends an answered question and numbers it.
func (s *Session) Add(q Question, answer string) {
	s.History = append(s.History, QA{
		Number:   len(s.History) + 1,
		Question: q.Question,
		Choices:  append([]string(nil), q.Choices...),
		Answer:   answer,
	})
}

// Save writes the session as indented JSON.
func (s *Session) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return WriteFileAtomic(path, append(data, '\n'), 0o644)
}

// LoadSession reads a session file. Transient read failures are retried.
func LoadSession(ctx context.Context, path string) (*Session, error) {
	retryer := retry.New[*Session](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  10 * time.Millisecond,
		BackoffPolicy: retry.BackoffExponential,
	})

	return retryer.Do(ctx, func(ctx context.Context) (*Session, error) {
		// #nosec G304 -- path is chosen by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read session file: %w", err)
		}

		var s Session
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse session file %s: %w", path, err)
		}
		if s.Project.Description == "" {
			return nil, fmt.Errorf("session file %s has no project description", path)
		}
		for i := range s.History {
			s.History[i].Number = i + 1
		}
		return &s, nil
	})
}
