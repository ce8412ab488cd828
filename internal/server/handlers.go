package server

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"

	"policybrief/internal/core"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// editionResponse is an edition with its articles attached.
type editionResponse struct {
	core.Edition
	Articles []core.Article `json:"articles"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListEditions(w http.ResponseWriter, r *http.Request) {
	editions, err := s.db.Editions().List(r.Context(), 30)
	if err != nil {
		s.log.Error("failed to list editions", "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to list editions")
		return
	}
	if editions == nil {
		editions = []core.Edition{}
	}
	s.writeJSON(w, http.StatusOK, editions)
}

func (s *Server) handleGetToday(w http.ResponseWriter, r *http.Request) {
	s.respondWithEdition(w, r, time.Now().UTC().Format("2006-01-02"))
}

func (s *Server) handleGetEdition(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !datePattern.MatchString(date) {
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	s.respondWithEdition(w, r, date)
}

func (s *Server) respondWithEdition(w http.ResponseWriter, r *http.Request, date string) {
	edition, err := s.db.Editions().GetByDate(r.Context(), date)
	if err != nil {
		s.log.Error("failed to load edition", "date", date, "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to load edition")
		return
	}
	if edition == nil {
		s.writeError(w, http.StatusNotFound, "no edition for "+date)
		return
	}

	articles, err := s.db.Articles().ListByEdition(r.Context(), edition.ID)
	if err != nil {
		s.log.Error("failed to load articles", "edition_id", edition.ID, "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "failed to load articles")
		return
	}
	if articles == nil {
		articles = []core.Article{}
	}

	s.writeJSON(w, http.StatusOK, editionResponse{Edition: *edition, Articles: articles})
}

// handleCronCurate is the externally invoked curation trigger. The date
// defaults to today (UTC); force=true resets any existing edition first.
func (s *Server) handleCronCurate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if !datePattern.MatchString(date) {
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	// Cron callers fire and forget. The run keeps the request's values but
	// not its cancelation, so a dropped connection or proxy timeout cannot
	// abort a pipeline mid-edition.
	ctx := context.WithoutCancel(r.Context())

	var edition *core.Edition
	var err error
	if r.URL.Query().Get("force") == "true" {
		edition, err = s.curator.ForceRecurate(ctx, date)
	} else {
		edition, err = s.curator.Curate(ctx, date)
	}
	if err != nil {
		s.log.Error("curation failed", "date", date, "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "curation failed")
		return
	}
	s.writeJSON(w, http.StatusOK, edition)
}

func (s *Server) handlePublishEdition(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !datePattern.MatchString(date) {
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	edition, err := s.curator.Publish(r.Context(), date)
	if err != nil {
		s.log.Error("publish failed", "date", date, "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "publish failed")
		return
	}
	s.writeJSON(w, http.StatusOK, edition)
}

func (s *Server) handleResetEdition(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !datePattern.MatchString(date) {
		s.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	if err := s.curator.Reset(r.Context(), date); err != nil {
		s.log.Error("reset failed", "date", date, "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRejectArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.db.Articles().UpdateStatus(r.Context(), id, core.ArticleRejected); err != nil {
		s.log.Error("reject failed", "article_id", id, "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "reject failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(core.ArticleRejected)})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response", "error", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
