package devapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dracory/slidebase/shared/constants"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMaxUpload caps the size of one uploaded presentation.
const DefaultMaxUpload = 64 << 20

// Server exposes a Store over the /db wire contract.
type Server struct {
	store     *Store
	logger    *slog.Logger
	maxUpload int64
}

// NewServer creates a Server.
func NewServer(store *Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, logger: logger, maxUpload: DefaultMaxUpload}
}

// Routes returns the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/db", func(r chi.Router) {
		r.Get("/tables", s.handleTables)
		r.Get("/table/{name}", s.handleTableRecords)
		r.Get("/table/{name}/record/{id}", s.handleTableRecord)
		r.Get("/files", s.handleFiles)
		r.Delete("/files/{id}", s.handleDeleteFile)
		r.Post("/upload", s.handleUpload)
		r.Post("/clear", s.handleClear)
	})
	r.Get("/api/health", s.handleHealth)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.store.Tables(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleTableRecords(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	records, err := s.store.Records(r.Context(), name)
	if errors.Is(err, ErrTableNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Table %s not found", name))
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"table":   name,
		"count":   len(records),
		"records": records,
	})
}

func (s *Server) handleTableRecord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid record id")
		return
	}
	record, err := s.store.Record(r.Context(), name, uint(id))
	switch {
	case errors.Is(err, ErrTableNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Table %s not found", name))
	case errors.Is(err, ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "Record not found")
	case err != nil:
		s.fail(w, r, err)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"table": name, "record": record})
	}
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.store.Files(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid file id")
		return
	}
	slides, urls, err := s.store.DeleteFile(r.Context(), uint(id))
	if errors.Is(err, ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "File deleted successfully",
		"slides_deleted": slides,
		"url_count":      urls,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".pptx") {
		writeError(w, http.StatusBadRequest, "Only .pptx files are supported")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read upload")
		return
	}
	deck, err := IndexDeck(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse presentation: "+err.Error())
		return
	}

	stored, err := s.store.AddFile(r.Context(), header.Filename, deck)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("presentation uploaded",
		slog.String("file", header.Filename),
		slog.Int("slides", stored.SlideCount),
		slog.Int("urls", stored.URLCount))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "File uploaded successfully",
		"file_id":     stored.ID,
		"filename":    stored.OriginalFilename,
		"slide_count": stored.SlideCount,
		"url_count":   stored.URLCount,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.Clear(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "Database cleared successfully",
		"files_deleted":  counts.Files,
		"slides_deleted": counts.Slides,
		"urls_deleted":   counts.URLs,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	database := "connected"
	if err := s.store.Ping(r.Context()); err != nil {
		database = "error: " + err.Error()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"service":  constants.ServiceName,
		"database": database,
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("devapi request failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
