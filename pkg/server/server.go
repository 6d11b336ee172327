package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/lirany1/html-screenshot-reporter/pkg/logger"
	"github.com/lirany1/html-screenshot-reporter/pkg/storage"
)

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	ReportDir    string
	HistoryLimit int
}

// Server serves a generated report with its screenshots, and the run history API
type Server struct {
	config  *Config
	router  *mux.Router
	history *storage.Database
}

type runDetail struct {
	Report *storage.ReportRecord `json:"report"`
	Runs   []storage.RunRecord   `json:"runs"`
}

// NewServer creates a new report server. history may be nil, in which case the API answers 503.
func NewServer(cfg *Config, history *storage.Database) *Server {
	s := &Server{
		config:  cfg,
		router:  mux.NewRouter(),
		history: history,
	}
	s.setupRoutes()
	return s
}

// Handler returns the server's router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	logger.Infof("Server running at http://%s", addr)
	logger.Infof("Press Ctrl+C to stop")

	return http.ListenAndServe(addr, s.router)
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/runs", s.handleListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods(http.MethodGet)

	// registered last so it does not shadow the API
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.ReportDir)))
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is not enabled")
		return
	}

	limit := s.config.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	reports, err := s.history.GetRecentReports(limit)
	if err != nil {
		logger.Errorf("Failed to list runs: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": reports})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is not enabled")
		return
	}

	id := mux.Vars(r)["id"]
	report, err := s.history.GetReport(id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		logger.Errorf("Failed to load run %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}

	runs, err := s.history.GetRuns(id)
	if err != nil {
		logger.Errorf("Failed to load runs of %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	writeJSON(w, http.StatusOK, runDetail{Report: report, Runs: runs})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
