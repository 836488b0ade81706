// Package classifiertest provides an in-process fake of the classification
// service for tests.
package classifiertest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Request is one call received by the fake service.
type Request struct {
	Model     string
	Path      string
	RequestID string
	Body      []byte
}

// Decoded unmarshals the request body.
func (r Request) Decoded() map[string]any {
	var out map[string]any
	_ = json.Unmarshal(r.Body, &out)
	return out
}

// HandlerFunc answers one prediction call with a status code and a JSON body.
type HandlerFunc func(model string, body map[string]any) (int, any)

// Server is a fake classification service listening on a local port.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handler  HandlerFunc
	requests []Request
	gate     <-chan struct{}
	arrived  chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithPrediction answers every call with {"model": <model>, "prediction": value}.
func WithPrediction(value any) Option {
	return WithHandler(func(model string, _ map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"model": ModelName(model), "prediction": value}
	})
}

// WithFailure answers every call with status and body.
func WithFailure(status int, body any) Option {
	return WithHandler(func(string, map[string]any) (int, any) {
		return status, body
	})
}

// WithHandler sets the response logic.
func WithHandler(h HandlerFunc) Option {
	return func(s *Server) {
		s.handler = h
	}
}

// WithGate holds every response until gate is closed or receives a value.
// Arrived reports when a held request has reached the server.
func WithGate(gate <-chan struct{}) Option {
	return func(s *Server) {
		s.gate = gate
	}
}

// NewServer starts a fake service. The default handler predicts "<=50K".
// Callers must Close it.
func NewServer(opts ...Option) *Server {
	s := &Server{arrived: make(chan struct{}, 64)}
	WithPrediction("<=50K")(s)
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Post("/predict/{model}", s.predict)
	s.Server = httptest.NewServer(r)
	return s
}

// ModelName is the display name the service reports for a model route.
func ModelName(model string) string {
	switch model {
	case "rf":
		return "Random Forest"
	case "log-reg":
		return "Logistic Regression"
	case "nn":
		return "Neural Network"
	default:
		return model
	}
}

func (s *Server) predict(w http.ResponseWriter, r *http.Request) {
	model := chi.URLParam(r, "model")
	raw, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Model:     model,
		Path:      r.URL.Path,
		RequestID: r.Header.Get("X-Request-ID"),
		Body:      raw,
	})
	handler := s.handler
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		s.arrived <- struct{}{}
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	status, resp := handler(model, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	switch v := resp.(type) {
	case nil:
	case []byte:
		_, _ = w.Write(v)
	case string:
		_, _ = w.Write([]byte(v))
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Arrived signals once per request that reached a gated server.
func (s *Server) Arrived() <-chan struct{} {
	return s.arrived
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns the number of calls received so far.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
