package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/appycrew-ocr/internal/server/middleware"
	"github.com/jonathan/appycrew-ocr/internal/server/ratelimit"
)

// DefaultMaxBodyBytes caps request bodies; photos arrive base64-encoded.
const DefaultMaxBodyBytes = 10 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	services    *Services
	rateLimiter *ratelimit.Limiter
	maxBody     int64
}

// Config holds server configuration
type Config struct {
	Port         int
	MaxBodyBytes int64
	RateLimit    *ratelimit.Config // nil loads RATE_LIMIT_* from the environment
}

// New creates a new server instance
func New(cfg Config, services *Services) (*Server, error) {
	if services == nil || services.Capture == nil || services.Extractor == nil {
		return nil, fmt.Errorf("server needs at least a capture pipeline and an extractor")
	}

	s := &Server{
		services: services,
		maxBody:  cfg.MaxBodyBytes,
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}

	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiter(rlConfig)

	api := http.NewServeMux()
	api.HandleFunc("POST /api/ocr", s.handleOCR)
	api.HandleFunc("POST /api/ocr/stream", s.handleOCRStream)
	api.HandleFunc("POST /api/vision", s.handleVision)
	api.HandleFunc("POST /api/speech", s.handleSpeech)
	api.HandleFunc("POST /api/voice-translate", s.handleVoiceTranslate)
	api.HandleFunc("POST /api/map", s.handleMap)
	api.HandleFunc("POST /api/fill", s.handleFill)

	var apiHandler http.Handler = api
	if services.SiteTokens != nil {
		apiHandler = middleware.SiteTokenMiddleware(services.SiteTokens.AsTokenValidator())(api)
		log.Printf("[server] site tokens required for /api")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/api/", apiHandler)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // provider calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the server's full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close releases the rate limiter and the services.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.services.Close()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.SiteTokenHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status and which providers are configured.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"ocr":       s.services.OCRProviders(),
		"aiEnabled": s.services.Vision != nil && s.services.Vision.Configured(),
		"speech":    s.services.Speech != nil,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes a {success:false, error, message} body with the status HTTPStatus
// picks for err.
func (s *Server) errorResponse(w http.ResponseWriter, err error, message string) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[api] %v", err)
	}
	body := map[string]any{"success": false, "error": err.Error()}
	if message != "" {
		body["message"] = message
	}
	s.jsonResponse(w, status, body)
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"success":   false,
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Tier=%s Limit=%d Remaining=%d",
		info.Tier, info.Limit, info.Remaining)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
