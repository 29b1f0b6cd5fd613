// Package main implements the coordino web server: a thin JSON surface over
// the meeting equity engine for in-browser callers.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter/v2"

	"github.com/jbillay/coordino/pkg/equity"
	"github.com/jbillay/coordino/pkg/evalcache"
	"github.com/jbillay/coordino/pkg/localtime"
	"github.com/jbillay/coordino/pkg/suggest"
	"github.com/jbillay/coordino/pkg/workcfg"
)

var (
	port         = flag.String("port", "8080", "Port for web server")
	registryPath = flag.String("config", "", "Country configuration registry YAML (or set COORDINO_CONFIG)")
	verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	version      = flag.Bool("version", false, "Show version")
)

const (
	maxRequestBody   = 1 << 20
	requestsPerMin   = 30
	responseCacheTTL = 15 * time.Minute
)

type rateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
}

func newRateLimiter() *rateLimiter {
	return &rateLimiter{requests: make(map[string][]time.Time)}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)

	var valid []time.Time
	for _, t := range rl.requests[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= requestsPerMin {
		rl.requests[ip] = valid
		return false
	}

	rl.requests[ip] = append(valid, now)
	return true
}

func main() {
	flag.Parse()

	if *version {
		fmt.Println("coordino server v1.2.0")
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *registryPath == "" {
		*registryPath = os.Getenv("COORDINO_CONFIG")
	}

	var registry *workcfg.Registry
	if *registryPath != "" {
		now := time.Now().UTC()
		var err error
		registry, err = workcfg.LoadRegistry(*registryPath, now.AddDate(-1, 0, 0), now.AddDate(2, 0, 0))
		if err != nil {
			logger.Error("Loading registry failed", "error", err, "path", *registryPath)
			os.Exit(1)
		}
	}

	logger.Info("Server configuration",
		"port", *port,
		"verbose", *verbose,
		"has_registry", registry != nil)

	classifications := evalcache.New(100_000, time.Hour, logger)
	engine := equity.New(logger, registry, equity.WithCache(classifications))

	responses := otter.Must(&otter.Options[string, []byte]{
		MaximumSize:      10_000,
		ExpiryCalculator: otter.ExpiryWriting[string, []byte](responseCacheTTL),
	})

	s := &server{
		engine:    engine,
		responses: responses,
		limiter:   newRateLimiter(),
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/evaluate", s.handle(s.evaluate))
	mux.HandleFunc("POST /api/v1/heatmap", s.handle(s.heatmap))
	mux.HandleFunc("POST /api/v1/suggest", s.handle(s.suggest))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Debug("Failed to write health response", "error", err)
		}
	})

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           s.wrap(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", *port)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}

type server struct {
	engine    *equity.Engine
	responses *otter.Cache[string, []byte]
	limiter   *rateLimiter
	logger    *slog.Logger
}

// apiRequest is the shared payload for all three endpoints.
type apiRequest struct {
	Meeting struct {
		Start           time.Time `json:"start"`
		DurationMinutes int       `json:"duration_minutes"`
	} `json:"meeting"`
	Participants []apiParticipant `json:"participants"`
	TopN         int              `json:"top_n,omitempty"`
}

type apiParticipant struct {
	ID       string              `json:"id"`
	Timezone string              `json:"timezone"`
	Country  string              `json:"country,omitempty"`
	Config   *workcfg.ConfigSpec `json:"config,omitempty"`
}

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *server) wrap(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("PANIC: request handler crashed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
					"request_id", requestID)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()

		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		}

		handler.ServeHTTP(w, r)
	})
}

// handle wires rate limiting, body decoding, the response cache and error
// mapping around one endpoint function.
func (s *server) handle(fn func(ctx context.Context, req *apiRequest) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := w.Header().Get("X-Request-ID")
		clientIP := strings.Split(r.RemoteAddr, ":")[0]

		if !s.limiter.allow(clientIP) {
			s.logger.Error("Rate limit exceeded", "request_id", requestID, "client_ip", clientIP)
			s.writeError(w, http.StatusTooManyRequests, apiError{Error: "Rate limit exceeded", Code: "RATE_LIMITED"})
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
		if err != nil {
			s.writeError(w, http.StatusBadRequest, apiError{Error: "Unreadable request body", Code: "BAD_REQUEST"})
			return
		}

		cacheKey := responseKey(r.URL.Path, body)
		if data, found := s.responses.GetIfPresent(cacheKey); found {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "hit")
			if _, err := w.Write(data); err != nil {
				s.logger.Error("Failed to write cached response", "request_id", requestID, "error", err)
			}
			s.logger.Info("Request completed (cache)",
				"request_id", requestID,
				"path", r.URL.Path,
				"duration_ms", time.Since(start).Milliseconds())
			return
		}

		var req apiRequest
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, apiError{Error: "Invalid JSON body", Code: "BAD_REQUEST"})
			return
		}
		if req.Meeting.Start.IsZero() {
			s.writeError(w, http.StatusBadRequest, apiError{Error: "meeting.start is required", Code: "BAD_REQUEST"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		result, err := fn(ctx, &req)
		if err != nil {
			s.mapError(w, requestID, err)
			return
		}

		data, err := json.Marshal(result)
		if err != nil {
			s.logger.Error("JSON encoding failed", "request_id", requestID, "error", err)
			s.writeError(w, http.StatusInternalServerError, apiError{Error: "Encoding failed", Code: "INTERNAL_ERROR"})
			return
		}
		s.responses.Set(cacheKey, data)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "miss")
		if _, err := w.Write(data); err != nil {
			s.logger.Error("Failed to write response", "request_id", requestID, "error", err)
			return
		}
		s.logger.Info("Request completed",
			"request_id", requestID,
			"path", r.URL.Path,
			"participants", len(req.Participants),
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func (s *server) evaluate(ctx context.Context, req *apiRequest) (any, error) {
	meeting, participants, err := s.convert(req)
	if err != nil {
		return nil, err
	}
	return s.engine.Evaluate(ctx, meeting, participants)
}

func (s *server) heatmap(ctx context.Context, req *apiRequest) (any, error) {
	meeting, participants, err := s.convert(req)
	if err != nil {
		return nil, err
	}
	return s.engine.Heatmap(ctx, meeting, participants)
}

func (s *server) suggest(ctx context.Context, req *apiRequest) (any, error) {
	meeting, participants, err := s.convert(req)
	if err != nil {
		return nil, err
	}
	topN := req.TopN
	if topN <= 0 {
		topN = suggest.DefaultTopN
	}
	return s.engine.Suggest(ctx, meeting, participants, topN)
}

var errBadParticipant = errors.New("invalid participant")

func (s *server) convert(req *apiRequest) (equity.Meeting, []equity.Participant, error) {
	meeting := equity.Meeting{
		Start:    req.Meeting.Start.UTC(),
		Duration: time.Duration(req.Meeting.DurationMinutes) * time.Minute,
	}

	windowFrom := meeting.Start.AddDate(-1, 0, 0)
	windowTo := meeting.Start.AddDate(1, 0, 0)

	participants := make([]equity.Participant, 0, len(req.Participants))
	for i, ap := range req.Participants {
		if ap.ID == "" || ap.Timezone == "" {
			return equity.Meeting{}, nil, fmt.Errorf("%w: entry %d needs id and timezone", errBadParticipant, i)
		}
		p := equity.Participant{
			ID:       ap.ID,
			Timezone: ap.Timezone,
			Country:  strings.ToUpper(ap.Country),
		}
		if ap.Config != nil {
			cfg, err := ap.Config.Compile(windowFrom, windowTo)
			if err != nil {
				return equity.Meeting{}, nil, fmt.Errorf("%w: %q: %w", errBadParticipant, ap.ID, err)
			}
			p.Override = &cfg
		}
		participants = append(participants, p)
	}
	return meeting, participants, nil
}

func (s *server) mapError(w http.ResponseWriter, requestID string, err error) {
	var status int
	var resp apiError

	switch {
	case errors.Is(err, localtime.ErrUnknownTimezone):
		status = http.StatusBadRequest
		resp = apiError{Error: err.Error(), Code: "UNKNOWN_TIMEZONE"}
	case errors.Is(err, errBadParticipant):
		status = http.StatusBadRequest
		resp = apiError{Error: err.Error(), Code: "INVALID_PARTICIPANT"}
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		resp = apiError{Error: "Computation took too long", Code: "TIMEOUT"}
	case errors.Is(err, context.Canceled):
		status = http.StatusRequestTimeout
		resp = apiError{Error: "Request was canceled", Code: "CANCELED"}
	default:
		status = http.StatusInternalServerError
		resp = apiError{Error: "Evaluation failed", Code: "INTERNAL_ERROR"}
	}

	s.logger.Error("Request failed",
		"request_id", requestID,
		"status", status,
		"code", resp.Code,
		"error", err)
	s.writeError(w, status, resp)
}

func (s *server) writeError(w http.ResponseWriter, status int, resp apiError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Failed to encode error response", "encode_error", err)
	}
}

func responseKey(path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
