package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Scanning
	mux.HandleFunc("/api/scan", s.app.ScanHandler.StartScanHandler) // POST

	// Episodes and per-episode operations
	mux.HandleFunc("/api/episodes", s.app.EpisodeHandler.ListHandler) // GET
	mux.HandleFunc("/api/episodes/", s.handleEpisodeRoutes)           // GET/POST /{id}[/...]

	// Feedback
	mux.HandleFunc("/api/feedback", s.app.FeedbackHandler.SubmitHandler) // POST

	// Jobs
	mux.HandleFunc("/api/jobs", s.app.JobHandler.ListHandler) // GET ?target_type=&target_id=
	mux.HandleFunc("/api/jobs/", s.handleJobRoutes)           // GET /{id}

	// Sources
	mux.HandleFunc("/api/sources", s.app.SourceHandler.ListHandler) // GET
	mux.HandleFunc("/api/sources/", s.handleSourceRoutes)           // GET/PATCH/DELETE /{id}

	// Keywords
	mux.HandleFunc("/api/keywords", s.handleKeywordsRoute)  // GET (list), POST (create)
	mux.HandleFunc("/api/keywords/", s.handleKeywordRoutes) // DELETE /{id}

	// System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)

	return mux
}

// handleEpisodeRoutes dispatches /api/episodes/{id} and its sub-resources:
// /fragments, /detect, /transcript, /feedback/stats.
func (s *Server) handleEpisodeRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/episodes/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(rest, "/")
	episodeID := parts[0]

	switch {
	case len(parts) == 1:
		s.app.EpisodeHandler.GetHandler(w, r, episodeID)
	case len(parts) == 2 && parts[1] == "fragments":
		s.app.EpisodeHandler.FragmentsHandler(w, r, episodeID)
	case len(parts) == 2 && parts[1] == "detect":
		s.app.EpisodeHandler.DetectHandler(w, r, episodeID)
	case len(parts) == 2 && parts[1] == "transcript":
		s.app.EpisodeHandler.TranscriptHandler(w, r, episodeID)
	case len(parts) == 3 && parts[1] == "feedback" && parts[2] == "stats":
		s.app.FeedbackHandler.StatsHandler(w, r, episodeID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleJobRoutes(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		http.NotFound(w, r)
		return
	}
	s.app.JobHandler.GetHandler(w, r, jobID)
}

func (s *Server) handleSourceRoutes(w http.ResponseWriter, r *http.Request) {
	sourceID := strings.TrimPrefix(r.URL.Path, "/api/sources/")
	if sourceID == "" || strings.Contains(sourceID, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.app.SourceHandler.GetHandler(w, r, sourceID)
	case http.MethodPatch:
		s.app.SourceHandler.PatchHandler(w, r, sourceID)
	case http.MethodDelete:
		s.app.SourceHandler.DeleteHandler(w, r, sourceID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleKeywordsRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.app.KeywordHandler.ListHandler(w, r)
	case http.MethodPost:
		s.app.KeywordHandler.CreateHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleKeywordRoutes(w http.ResponseWriter, r *http.Request) {
	keywordID := strings.TrimPrefix(r.URL.Path, "/api/keywords/")
	if keywordID == "" || strings.Contains(keywordID, "/") {
		http.NotFound(w, r)
		return
	}
	s.app.KeywordHandler.DeleteHandler(w, r, keywordID)
}
