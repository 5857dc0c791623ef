// Package server exposes the prompt vault over HTTP: the browsable web
// shell, the catalog document and a JSON API over the vault operations.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dpshade/prompt-vault/internal/catalog"
	"github.com/dpshade/prompt-vault/internal/errors"
	"github.com/dpshade/prompt-vault/internal/logging"
	"github.com/dpshade/prompt-vault/internal/models"
	"github.com/dpshade/prompt-vault/internal/service"
	"github.com/dpshade/prompt-vault/internal/transfer"
)

//go:embed static
var staticFiles embed.FS

// maxBodySize bounds request bodies, import documents included
const maxBodySize = 4 << 20

// Server provides the HTTP interface with middleware support
type Server struct {
	service      *service.Service
	errorHandler *errors.HTTPErrorHandler
	logger       *zap.Logger
	addr         string
	server       *http.Server
}

// NewServer creates a new server instance listening on addr
func NewServer(svc *service.Service, addr string, logger *zap.Logger) *Server {
	logger = logging.OrNop(logger)
	return &Server{
		service:      svc,
		errorHandler: errors.NewHTTPErrorHandler(true, logger),
		logger:       logger,
		addr:         addr,
	}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("OPTIONS /", s.withMiddleware(func(http.ResponseWriter, *http.Request) {}))
	mux.HandleFunc("GET /health", s.withMiddleware(s.handleHealth))

	// App shell and catalog document, the paths the offline cache installs
	mux.HandleFunc("GET /{$}", s.withMiddleware(s.handleStatic("static/index.html", "text/html; charset=utf-8")))
	mux.HandleFunc("GET /index.html", s.withMiddleware(s.handleStatic("static/index.html", "text/html; charset=utf-8")))
	mux.HandleFunc("GET /manifest.webmanifest", s.withMiddleware(s.handleStatic("static/manifest.webmanifest", "application/manifest+json")))
	mux.HandleFunc("GET /prompts.json", s.withMiddleware(s.handleCatalogDocument))

	mux.HandleFunc("GET /api/tabs", s.withMiddleware(s.handleTabs))
	mux.HandleFunc("GET /api/prompts", s.withMiddleware(s.handleListPrompts))
	mux.HandleFunc("GET /api/prompts/{id}", s.withMiddleware(s.handleGetPrompt))
	mux.HandleFunc("POST /api/catalog/reload", s.withMiddleware(s.handleReload))

	mux.HandleFunc("GET /api/favorites", s.withMiddleware(s.handleListFavorites))
	mux.HandleFunc("GET /api/favorites/groups", s.withMiddleware(s.handleFavoriteGroups))
	mux.HandleFunc("POST /api/favorites/{id}", s.withMiddleware(s.handleToggleFavorite))
	mux.HandleFunc("DELETE /api/favorites", s.withMiddleware(s.handleClearFavorites))

	mux.HandleFunc("GET /api/custom", s.withMiddleware(s.handleListCustom))
	mux.HandleFunc("POST /api/custom", s.withMiddleware(s.handleCreateCustom))
	mux.HandleFunc("DELETE /api/custom/{id}", s.withMiddleware(s.handleDeleteCustom))
	mux.HandleFunc("GET /api/custom/export", s.withMiddleware(s.handleExport))
	mux.HandleFunc("POST /api/custom/import", s.withMiddleware(s.handleImport))

	mux.HandleFunc("GET /api/theme", s.withMiddleware(s.handleGetTheme))
	mux.HandleFunc("PUT /api/theme", s.withMiddleware(s.handleSetTheme))
	mux.HandleFunc("GET /api/labels", s.withMiddleware(s.handleLabel))

	return mux
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("server starting", zap.String("addr", "http://"+s.addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// withMiddleware applies middleware to HTTP handlers
func (s *Server) withMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	return s.loggingMiddleware(
		s.corsMiddleware(
			s.errorMiddleware(handler),
		),
	)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)))
	}
}

// corsMiddleware handles CORS headers
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}

// errorMiddleware recovers from panics
func (s *Server) errorMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic in handler", zap.Any("panic", rec), zap.String("path", r.URL.Path))
				s.errorHandler.WriteHTTPError(w, errors.InternalError("Internal server error"))
			}
		}()
		next(w, r)
	}
}

// APIResponse represents a standardized API response
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// PromptView is a catalog prompt with its favorite flag
type PromptView struct {
	models.FlatPrompt
	Favorite bool `json:"favorite"`
}

// writeResponse writes a standardized JSON response
func (s *Server) writeResponse(w http.ResponseWriter, data interface{}, message string, statusCode int) {
	response := APIResponse{
		Success:   statusCode < 400,
		Data:      data,
		Message:   message,
		Timestamp: time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		json.NewEncoder(w).Encode(response)
		return
	}
	w.Write(jsonData)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.errorHandler.WriteHTTPError(w, err)
}

func (s *Server) decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil {
		return errors.ParseError("request body", err)
	}
	return nil
}

func (s *Server) views(prompts []models.FlatPrompt) []PromptView {
	out := make([]PromptView, 0, len(prompts))
	for _, p := range prompts {
		out = append(out, PromptView{FlatPrompt: p, Favorite: s.service.IsFavorite(p.ID)})
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, map[string]interface{}{
		"status":  "ok",
		"service": "prompt-vault",
		"catalog": len(s.service.ListPrompts()),
	}, "", http.StatusOK)
}

func (s *Server) handleStatic(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := staticFiles.ReadFile(name)
		if err != nil {
			s.writeError(w, errors.NotFoundError(name))
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
	}
}

// handleCatalogDocument serves the cached catalog in its document shape
func (s *Server) handleCatalogDocument(w http.ResponseWriter, r *http.Request) {
	c := s.service.Catalog()
	if c == nil {
		s.writeError(w, errors.NotFoundError("catalog"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

func (s *Server) handleTabs(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, s.service.Tabs(), "", http.StatusOK)
}

// handleListPrompts searches every tab when q is non-blank and otherwise
// browses one tab, or all of them when tab is empty
func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q, tab := query.Get("q"), query.Get("tab")

	var prompts []models.FlatPrompt
	switch {
	case catalog.IsSearching(q) && query.Get("fuzzy") == "true":
		prompts = s.service.FuzzySearchPrompts(q)
	case catalog.IsSearching(q):
		prompts = s.service.SearchPrompts(q)
	case tab != "":
		prompts = s.service.PromptsInTab(tab)
	default:
		prompts = s.service.ListPrompts()
	}
	s.writeResponse(w, s.views(prompts), "", http.StatusOK)
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := s.service.GetPrompt(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, PromptView{FlatPrompt: p, Favorite: s.service.IsFavorite(p.ID)}, "", http.StatusOK)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.service.LoadCatalog(r.Context(), true); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, s.service.Tabs(), "Catalog reloaded", http.StatusOK)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, s.views(s.service.FavoritePrompts()), "", http.StatusOK)
}

func (s *Server) handleFavoriteGroups(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, s.service.FavoriteGroups(), "", http.StatusOK)
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	on := s.service.ToggleFavorite(id)
	s.writeResponse(w, map[string]interface{}{"id": id, "favorite": on}, "", http.StatusOK)
}

func (s *Server) handleClearFavorites(w http.ResponseWriter, r *http.Request) {
	s.service.ClearFavorites()
	s.writeResponse(w, nil, "Favorites cleared", http.StatusOK)
}

func (s *Server) handleListCustom(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, s.service.CustomPrompts(), "", http.StatusOK)
}

func (s *Server) handleCreateCustom(w http.ResponseWriter, r *http.Request) {
	var in models.CustomInput
	if err := s.decodeBody(r, &in); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.service.AddCustom(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, p, "Custom prompt created", http.StatusCreated)
}

func (s *Server) handleDeleteCustom(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RemoveCustom(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeResponse(w, nil, "Custom prompt deleted", http.StatusOK)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+transfer.DefaultExportFile+`"`)
	if err := s.service.ExportCustom(w); err != nil {
		s.logger.Warn("export failed", zap.Error(err))
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.ImportCustom(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, err)
		return
	}
	message := "Import finished"
	if res.Rejected {
		message = "Import ignored: document is not an array"
	}
	s.writeResponse(w, res, message, http.StatusOK)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, models.Preferences{Dark: s.service.Dark()}, "", http.StatusOK)
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var prefs models.Preferences
	if err := s.decodeBody(r, &prefs); err != nil {
		s.writeError(w, err)
		return
	}
	s.service.SetDark(prefs.Dark)
	s.writeResponse(w, models.Preferences{Dark: s.service.Dark()}, "", http.StatusOK)
}

func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if text == "" {
		s.writeError(w, errors.NewAppError(errors.ErrCodeMissingField, "text is required"))
		return
	}
	s.writeResponse(w, map[string]string{"raw": text, "label": s.service.FormatLabel(text)}, "", http.StatusOK)
}
