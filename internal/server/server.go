// Package server serves a built documentation site with live reload and an
// HTML annotation endpoint.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/codenotes/internal/annotate"
)

// DefaultMaxBodyBytes caps the size of an /api/annotate request.
const DefaultMaxBodyBytes int64 = 4 << 20

// LiveReloadPath is the websocket route advertised to pages.
const LiveReloadPath = "/ws"

// Report headers set by /api/annotate.
const (
	HeaderAnnotations = "X-Codenotes-Annotations"
	HeaderBlocks      = "X-Codenotes-Blocks"
	HeaderHiddenLists = "X-Codenotes-Hidden-Lists"
	HeaderUsed        = "X-Codenotes-Used"
)

// Config holds server configuration.
type Config struct {
	Port         int
	Dir          string // built site to serve; empty disables static files
	AllowAll     bool   // allow all CORS and websocket origins (dev mode)
	MaxBodyBytes int64
}

// Server serves the site, the live-reload socket and the annotate API.
type Server struct {
	cfg    Config
	logger *slog.Logger
	hub    *Hub

	mu        sync.Mutex // guards processor
	processor *annotate.Processor

	router     chi.Router
	httpServer *http.Server
}

// New creates a Server. processor handles /api/annotate requests.
func New(cfg Config, processor *annotate.Processor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		hub:       NewHub(cfg.AllowAll, logger),
		processor: processor,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{HeaderAnnotations, HeaderBlocks, HeaderHiddenLists, HeaderUsed},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// The websocket outlives any request timeout, so only the API is limited.
	r.With(middleware.Timeout(30*time.Second)).Post("/api/annotate", s.handleAnnotate)
	r.Get(LiveReloadPath, s.hub.ServeHTTP)

	if s.cfg.Dir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.cfg.Dir)))
	}
	return r
}

// requestLogger logs each request through slog.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// annotateResponse is the JSON body returned when the client accepts JSON.
type annotateResponse struct {
	HTML   string         `json:"html"`
	Report annotateReport `json:"report"`
}

type annotateReport struct {
	Containers  int   `json:"containers"`
	Blocks      int   `json:"blocks"`
	Annotations int   `json:"annotations"`
	Used        []int `json:"used"`
	HiddenLists int   `json:"hidden_lists"`
}

// handleAnnotate annotates the HTML fragment in the request body. The
// fragment is returned as text/html with the report in X-Codenotes-*
// headers, or as JSON when the client asks for application/json.
func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "reading request body")
		return
	}

	s.mu.Lock()
	out, report, err := s.processor.ProcessFragment(string(body))
	s.processor.Reset()
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("annotate request failed", slog.Any("error", err))
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h := w.Header()
	h.Set(HeaderAnnotations, strconv.Itoa(report.Annotations))
	h.Set(HeaderBlocks, strconv.Itoa(report.Blocks))
	h.Set(HeaderHiddenLists, strconv.Itoa(report.HiddenLists))
	h.Set(HeaderUsed, joinInts(report.Used))

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		used := report.Used
		if used == nil {
			used = []int{}
		}
		writeJSON(w, http.StatusOK, annotateResponse{
			HTML: out,
			Report: annotateReport{
				Containers:  report.Containers,
				Blocks:      report.Blocks,
				Annotations: report.Annotations,
				Used:        used,
				HiddenLists: report.HiddenLists,
			},
		})
		return
	}

	h.Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Hub returns the live-reload hub.
func (s *Server) Hub() *Hub { return s.hub }

// Run starts the hub and listens on the configured port until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.Serve(ln) }()
	s.logger.Info("serving documentation", slog.String("addr", "http://"+ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
