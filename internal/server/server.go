package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mfenderov/sentiscore/internal/pipeline"
	"github.com/mfenderov/sentiscore/pkg/models"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// External messages. Internal error kinds are only logged.
const (
	rootMessage           = "Server is running successfully!"
	missingKeywordMessage = "Missing 'keyword' in the request body"
	genericErrorMessage   = "Invalid Keyword Provided."
)

const maxBodyBytes = 1 << 20

// Scorer runs the scoring pipeline for a keyword.
type Scorer interface {
	Run(ctx context.Context, keyword string) (*models.ScoreResult, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Addr            string
	AllowedOrigins  []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Server exposes the scoring pipeline over HTTP.
type Server struct {
	config Config
	scorer Scorer
	log    *slog.Logger
}

// New creates a Server. A nil logger uses slog.Default().
func New(config Config, scorer Scorer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 60 * time.Second
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}
	return &Server{config: config, scorer: scorer, log: log}
}

type scoreResponse struct {
	Data float64 `json:"data"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/", s.handleRoot)
	r.Get("/get_score", s.handleScore)
	r.Post("/get_score", s.handleScore)

	return otelhttp.NewHandler(r, "sentiscore")
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, []string{rootMessage})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req models.ScoreRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.log.Debug("invalid request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: missingKeywordMessage})
		return
	}

	keyword := models.NormalizeKeyword(req.Keyword)
	if keyword == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: missingKeywordMessage})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.RequestTimeout)
	defer cancel()

	result, err := s.scorer.Run(ctx, keyword)
	if err != nil {
		s.logFailure(r, keyword, err)
		if pipeline.KindOf(err) == pipeline.KindInvalidRequest {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: missingKeywordMessage})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: genericErrorMessage})
		return
	}

	writeJSON(w, http.StatusOK, scoreResponse{Data: result.Score})
}

func (s *Server) logFailure(r *http.Request, keyword string, err error) {
	attrs := []any{
		"request_id", middleware.GetReqID(r.Context()),
		"keyword", keyword,
		"kind", pipeline.KindOf(err).String(),
		"error", err,
	}
	var pe *pipeline.Error
	if errors.As(err, &pe) {
		attrs = append(attrs, "url", pe.URL, "strategy", pe.Strategy)
	}
	s.log.Error("score request failed", attrs...)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.config.RequestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", slog.String("addr", s.config.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload) // headers are already sent
}
