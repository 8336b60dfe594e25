package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"

	"recletter/generator"
	"recletter/orchestrator"
)

// Server exposes one orchestrator over JSON. It only reads snapshots and
// calls Generate/Refine; all state lives in the orchestrator.
type Server struct {
	orch    *orchestrator.Orchestrator
	timeout time.Duration
	logger  *slog.Logger
	router  chi.Router
}

func New(orch *orchestrator.Orchestrator, timeout time.Duration, logger *slog.Logger) (*Server, error) {
	if orch == nil {
		return nil, errors.New("orchestrator required")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{orch: orch, timeout: timeout, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.logMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/letter", s.handleSnapshot)
		r.Post("/letter", s.handleGenerate)
		r.Post("/letter/refine", s.handleRefine)
	})

	s.router = r
	return s, nil
}

func (s *Server) Routes() http.Handler {
	return s.router
}

// maxBodyBytes caps request bodies; source material is plain text.
const maxBodyBytes = 1 << 20

// --- Handlers ---

type generateReq struct {
	SubjectContext string `json:"subject_context"`
	SourceMaterial string `json:"source_material"`
}

type refineReq struct {
	Message string `json:"message"`
}

type snapshotResp struct {
	orchestrator.Snapshot
	LetterHTML string `json:"letter_html,omitempty"`
}

type refineResp struct {
	snapshotResp
	Turn orchestrator.RefineResult `json:"turn"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"state":  s.orch.Status(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateReq
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, decodeStatus(err), err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	_, err := s.orch.Generate(ctx, generator.GenerationInput{
		SubjectContext: req.SubjectContext,
		SourceMaterial: req.SourceMaterial,
	})
	if err != nil {
		s.logger.Warn("generate request failed", "error", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	var req refineReq
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, decodeStatus(err), err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	res, err := s.orch.Refine(ctx, req.Message)
	if err != nil && !errors.Is(err, generator.ErrRefinementFailure) {
		writeError(w, statusFor(err), err)
		return
	}
	if err != nil {
		// The apology turn is already part of the transcript.
		s.logger.Warn("refine request degraded", "error", err)
	}
	writeJSON(w, http.StatusOK, refineResp{snapshotResp: s.snapshot(), Turn: res})
}

// --- Helpers ---

func (s *Server) snapshot() snapshotResp {
	snap := s.orch.Snapshot()
	resp := snapshotResp{Snapshot: snap}
	if snap.Document != nil {
		html, err := letterHTML(snap.Document.PrimaryText)
		if err != nil {
			s.logger.Warn("render letter failed", "error", err)
		}
		resp.LetterHTML = html
	}
	return resp
}

func letterHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

func decodeStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, generator.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, generator.ErrSessionNotOpen), errors.Is(err, orchestrator.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, generator.ErrGenerationFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
