package registrysrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qinter/internal/pack"
)

// Server exposes the pack store over the registry's JSON API.
type Server struct {
	store       *Store
	loader      *pack.Loader
	uploadToken string
	logger      *zap.Logger
}

// NewServer returns a registry server. uploadToken guards the upload
// endpoint; an empty token disables uploads entirely.
func NewServer(store *Store, uploadToken string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		store:       store,
		loader:      pack.NewLoader(logger),
		uploadToken: uploadToken,
		logger:      logger.Named("registry"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/packages", s.handleList)
	mux.HandleFunc("GET /api/v1/packages/search", s.handleSearch)
	mux.HandleFunc("GET /api/v1/packages/{name}", s.handleInfo)
	mux.HandleFunc("GET /api/v1/packages/{name}/download", s.handleDownload)
	mux.HandleFunc("POST /api/v1/packages/upload", s.handleUpload)
	return s.logRequests(mux)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("registry listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	sort := r.URL.Query().Get("sort")
	packs, err := s.store.List(r.Context(), sort, limit)
	if err != nil {
		s.internalError(w, "list packs", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"packages": summaries(packs),
		"total":    len(packs),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	limit := queryInt(r, "limit", 50)
	packs, err := s.store.Search(r.Context(), query, limit)
	if err != nil {
		s.internalError(w, "search packs", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": summaries(packs),
		"query":   query,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	p, err := s.store.Latest(r.Context(), name)
	if errors.Is(err, ErrNoSuchPack) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("pack %q not found", name))
		return
	}
	if err != nil {
		s.internalError(w, "pack info", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        p.Name,
		"version":     p.Version,
		"description": p.Description,
		"author":      p.Author,
		"license":     p.License,
		"tags":        p.Tags,
		"homepage":    p.Homepage,
		"repository":  p.Repository,
		"downloads":   p.Downloads,
		"uploaded_at": p.UploadedAt.Format(time.RFC3339),
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	version := r.URL.Query().Get("version")
	p, err := s.store.Version(r.Context(), name, version)
	if errors.Is(err, ErrNoSuchPack) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("pack %q not found", name))
		return
	}
	if err != nil {
		s.internalError(w, "pack download", err)
		return
	}
	if err := s.store.CountDownload(r.Context(), p.Name, p.Version); err != nil {
		// The download still succeeds; the counter is advisory.
		s.logger.Warn("download counter update failed", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    p.Name,
		"version": p.Version,
		"content": p.Content,
	})
}

// handleUpload accepts a raw YAML pack body, validates it against the pack
// schema, and stores it. Authentication is a shared token only.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploadToken == "" {
		writeError(w, http.StatusForbidden, "uploads are disabled")
		return
	}
	if r.Header.Get("X-Registry-Token") != s.uploadToken {
		writeError(w, http.StatusUnauthorized, "invalid registry token")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 10<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload body: "+err.Error())
		return
	}

	p, err := s.loader.Parse(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid pack: "+err.Error())
		return
	}

	stored := StoredPack{
		Name:        p.Metadata.Name,
		Version:     p.Metadata.Version,
		Description: p.Metadata.Description,
		Author:      p.Metadata.Author,
		License:     p.Metadata.License,
		Tags:        p.Metadata.Tags,
		Homepage:    p.Metadata.Homepage,
		Repository:  p.Metadata.Repository,
		Content:     string(body),
	}
	if err := s.store.Put(r.Context(), stored); err != nil {
		s.internalError(w, "store upload", err)
		return
	}

	receipt := uuid.NewString()
	s.logger.Info("pack uploaded",
		zap.String("pack", stored.Name),
		zap.String("version", stored.Version),
		zap.String("receipt", receipt))
	writeJSON(w, http.StatusCreated, map[string]string{
		"name":    stored.Name,
		"version": stored.Version,
		"receipt": receipt,
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func summaries(packs []StoredPack) []map[string]any {
	out := make([]map[string]any, 0, len(packs))
	for _, p := range packs {
		out = append(out, map[string]any{
			"name":        p.Name,
			"version":     p.Version,
			"description": p.Description,
			"author":      p.Author,
			"tags":        p.Tags,
			"downloads":   p.Downloads,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
