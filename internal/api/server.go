package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Cyriloo7/Interviewer/internal/agent"
	"github.com/Cyriloo7/Interviewer/internal/export"
)

// maxUploadBytes caps the multipart upload size.
const maxUploadBytes = 64 << 20 // 64 MB

// Server handles HTTP requests for the batch extractor.
type Server struct {
	agent  *agent.Agent
	logger *zap.Logger
}

// NewServer creates a new API server.
func NewServer(a *agent.Agent, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		agent:  a,
		logger: logger,
	}
}

// Router returns the HTTP router.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("GET /results", s.handleResults)
	mux.HandleFunc("GET /export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /export.xlsx", s.handleExportExcel)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"service": "Resume Intelligence Extractor",
		"endpoints": map[string]string{
			"POST /extract":    "Upload a PDF/DOCX resume or a ZIP of resumes",
			"GET /results":     "Get the latest extraction report",
			"GET /export.csv":  "Download results as CSV",
			"GET /export.xlsx": "Download results as an Excel workbook",
			"GET /health":      "Health check",
		},
	})
}

// handleHealth provides a health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

// handleExtract accepts a single document or a ZIP archive and runs the
// batch extraction over it.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Please upload a ZIP file or a PDF/DOCX first")
		return
	}
	defer file.Close()

	if err := s.agent.IngestUpload(r.Context(), header.Filename, file); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	report, err := s.agent.Report()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, report)
}

// handleResults returns the latest extraction report.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	report, err := s.agent.Report()
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, report)
}

// handleExportCSV serves the results as a downloadable CSV file.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	report, err := s.agent.Report()
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	filename := fmt.Sprintf("extracted_resumes_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteCSV(w, report.Rows); err != nil {
		s.logger.Error("failed to write CSV export", zap.Error(err))
	}
}

// handleExportExcel serves the results as a downloadable Excel workbook.
func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	report, err := s.agent.Report()
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	filename := fmt.Sprintf("extracted_resumes_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := export.WriteExcel(w, report); err != nil {
		s.logger.Error("failed to write Excel export", zap.Error(err))
	}
}

// respondJSON sends a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
