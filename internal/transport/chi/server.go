package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shelfquery/internal/domain"
	"github.com/kailas-cloud/shelfquery/internal/domain/record"
	cataloguc "github.com/kailas-cloud/shelfquery/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/shelfquery/internal/usecase/health"
	"github.com/kailas-cloud/shelfquery/internal/version"
)

// errorCode is the machine-readable code of an error response.
type errorCode string

const (
	codeValidationFailed errorCode = "validation_failed"
	codeNotFound         errorCode = "not_found"
	codeUnauthorized     errorCode = "unauthorized"
	codeMethodNotAllowed errorCode = "method_not_allowed"
	codeInternalError    errorCode = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the read-only catalog API.
type Server struct {
	catalog       *cataloguc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(catalog *cataloguc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		catalog: catalog,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidPage, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidLimit, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidSortField, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidSortOrder, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidFilter, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidSearch, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidID, http.StatusBadRequest, codeValidationFailed),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, fmt.Sprintf("route %s %s not found", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	r.Get("/books", s.ListBooks)
	r.Get("/books/{id}", s.GetBook)
	r.Get("/authors", s.ListAuthors)
	r.Get("/authors/{id}", s.GetAuthor)
	r.Get("/authors/{id}/books", s.ListAuthorBooks)
	r.Get("/search", s.Search)
	r.Get("/search/books", s.SearchBooks)
	r.Get("/search/authors", s.SearchAuthors)
	r.Get("/stats", s.Stats)
	r.Get("/stats/authors", s.AuthorStats)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// ListBooks handles GET /books.
func (s *Server) ListBooks(w http.ResponseWriter, r *http.Request) {
	page, err := s.catalog.ListBooks(r.Context(), r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writePage(w, page, "Books retrieved successfully")
}

// GetBook handles GET /books/{id}.
func (s *Server) GetBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.catalog.GetBook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeSuccess(w, book, "Book retrieved successfully")
}

// ListAuthors handles GET /authors.
func (s *Server) ListAuthors(w http.ResponseWriter, r *http.Request) {
	page, err := s.catalog.ListAuthors(r.Context(), r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writePage(w, page, "Authors retrieved successfully")
}

// GetAuthor handles GET /authors/{id}.
func (s *Server) GetAuthor(w http.ResponseWriter, r *http.Request) {
	author, err := s.catalog.GetAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeSuccess(w, author, "Author retrieved successfully")
}

// ListAuthorBooks handles GET /authors/{id}/books.
func (s *Server) ListAuthorBooks(w http.ResponseWriter, r *http.Request) {
	out, err := s.catalog.AuthorBooks(r.Context(), chi.URLParam(r, "id"), r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Author books retrieved successfully",
		Data: authorBooksResponse{
			Author: out.Author,
			Books:  out.Books.Items(),
		},
		Pagination: paginationFrom(out.Books),
		Timestamp:  timestamp(),
	})
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.Search(r.Context(), r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writePage(w, res.Page, fmt.Sprintf("Found %d results for %q", res.Page.Total(), res.Term))
}

// SearchBooks handles GET /search/books.
func (s *Server) SearchBooks(w http.ResponseWriter, r *http.Request) {
	page, err := s.catalog.SearchBooks(r.Context(), r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writePage(w, page, "Book search completed")
}

// SearchAuthors handles GET /search/authors.
func (s *Server) SearchAuthors(w http.ResponseWriter, r *http.Request) {
	page, err := s.catalog.SearchAuthors(r.Context(), r.URL.Query())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writePage(w, page, "Author search completed")
}

// Stats handles GET /stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.catalog.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeSuccess(w, statsToResponse(st), "Library statistics retrieved successfully")
}

// AuthorStats handles GET /stats/authors.
func (s *Server) AuthorStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.catalog.AuthorStats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	out := make([]authorStatResponse, len(stats))
	for i, st := range stats {
		out[i] = authorStatToResponse(st)
	}
	writeSuccess(w, out, "Author statistics retrieved successfully")
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: timestamp(),
	})
}

func writePage(w http.ResponseWriter, page cataloguc.Page, message string) {
	writeJSON(w, http.StatusOK, envelope{
		Success:    true,
		Message:    message,
		Data:       page.Items(),
		Pagination: paginationFrom(page),
		Timestamp:  timestamp(),
	})
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Success:   false,
		Code:      code,
		Message:   message,
		Timestamp: timestamp(),
	})
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// clientMessage returns the caller-facing text of a domain error without
// exposing storage internals.
func clientMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, domain.ErrNotFound) {
		return err.Error()
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, clientMessage(err))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger.With(zap.String("path", r.URL.Path))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// --- response DTOs ---

type envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       any         `json:"data"`
	Pagination *pagination `json:"pagination,omitempty"`
	Timestamp  string      `json:"timestamp"`
}

type errorResponse struct {
	Success   bool      `json:"success"`
	Code      errorCode `json:"code"`
	Message   string    `json:"message"`
	Timestamp string    `json:"timestamp"`
}

type pagination struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func paginationFrom(p cataloguc.Page) *pagination {
	return &pagination{
		Total:      p.Total(),
		Page:       p.Page(),
		Limit:      p.Limit(),
		TotalPages: p.TotalPages(),
		HasNext:    p.HasNext(),
		HasPrev:    p.HasPrev(),
	}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

type authorBooksResponse struct {
	Author record.Record   `json:"author"`
	Books  []record.Record `json:"books"`
}
