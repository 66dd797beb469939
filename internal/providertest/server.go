// Package providertest runs a scripted fake of the OpenAI, Gemini and
// Anthropic HTTP APIs for tests.
package providertest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// Reply is one scripted HTTP response.
type Reply struct {
	Status int
	Body   string
}

// OK returns a 200 reply with body.
func OK(body string) Reply {
	return Reply{Status: http.StatusOK, Body: body}
}

// RateLimited returns a 429 reply in the shared error format.
func RateLimited() Reply {
	return Fail(http.StatusTooManyRequests, "Resource has been exhausted (e.g. check quota).")
}

// Fail returns an error reply with the given status and message.
func Fail(status int, message string) Reply {
	body, _ := json.Marshal(gin.H{
		"error": gin.H{
			"code":    status,
			"message": message,
			"type":    "error",
		},
	})
	return Reply{Status: status, Body: string(body)}
}

// Recorded is a request the fake received.
type Recorded struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body into a generic map.
func (r Recorded) JSON() map[string]any {
	var out map[string]any
	_ = json.Unmarshal(r.Body, &out)
	return out
}

// Server is a scripted provider fake. Each request pops the next reply;
// once the script runs out every request gets a 500.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	replies  []Reply
	requests []Recorded
}

// New starts a fake server and closes it when the test ends.
func New(t testing.TB, replies ...Reply) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{replies: append([]Reply(nil), replies...)}

	r := gin.New()
	r.Use(recoveryMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	r.Use(s.recordMiddleware())
	r.Use(requireCredentials())

	r.POST("/responses", s.reply)
	r.POST("/models/*action", s.reply)
	r.POST("/v1/messages", s.reply)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Enqueue appends replies to the script.
func (s *Server) Enqueue(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Count returns the number of requests received.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Last returns the most recent request.
func (s *Server) Last() Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}
	}
	return s.requests[len(s.requests)-1]
}

func (s *Server) reply(c *gin.Context) {
	s.mu.Lock()
	if len(s.replies) == 0 {
		s.mu.Unlock()
		c.Data(http.StatusInternalServerError, "application/json", []byte(`{"error":{"message":"script exhausted"}}`))
		return
	}
	next := s.replies[0]
	s.replies = s.replies[1:]
	s.mu.Unlock()

	c.Data(next.Status, "application/json", []byte(next.Body))
}

func (s *Server) recordMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Header: c.Request.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		c.Next()
	}
}

// requireCredentials rejects requests that carry none of the three
// providers' auth headers, the way the real APIs answer 401.
func requireCredentials() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if auth == "" && c.GetHeader("x-goog-api-key") == "" && c.GetHeader("x-api-key") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing API key", "type": "authentication_error"},
			})
			return
		}
		c.Next()
	}
}

// recoveryMiddleware turns panics into 500 responses in the shared error format.
func recoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered", slog.Any("error", err), slog.String("path", c.Request.URL.Path))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{"message": fmt.Sprint(err), "type": "server_error"},
				})
			}
		}()
		c.Next()
	}
}
