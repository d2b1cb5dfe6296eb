package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/matijazezelj/degrees/internal/graph"
	"github.com/matijazezelj/degrees/internal/search"
	"github.com/matijazezelj/degrees/pkg/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) log(r *http.Request) *slog.Logger {
	return s.logger.With("request_id", RequestID(r.Context()))
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name query parameter required")
		return
	}

	ids := s.store.ResolveName(name)
	if len(ids) == 0 {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}

	people := make([]models.Person, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.store.Person(id); ok {
			p.Movies = nil
			people = append(people, p)
		}
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handlePersonByID(w http.ResponseWriter, r *http.Request) {
	p, ok := s.store.Person(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.store.HasPerson(id) {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}
	links := graph.CoStars(s.store, id)
	if links == nil {
		links = []models.Link{}
	}
	writeJSON(w, http.StatusOK, links)
}

func (s *Server) handleMovieByID(w http.ResponseWriter, r *http.Request) {
	m, ok := s.store.Movie(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "movie not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	target := r.URL.Query().Get("target")
	if source == "" || target == "" {
		writeError(w, http.StatusBadRequest, "source and target query parameters required")
		return
	}

	// Identical concurrent queries share one search. The search outlives
	// the first caller's connection and is bounded by searchTimeout instead.
	v, err, shared := s.flight.Do(source+"\x00"+target, func() (any, error) {
		ctx := context.WithoutCancel(r.Context())
		if s.searchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.searchTimeout)
			defer cancel()
		}
		return s.engine.ShortestPath(ctx, source, target)
	})
	if shared {
		s.log(r).Debug("joined in-flight search", "source", source, "target", target)
	}
	res, _ := v.(search.Result)
	switch {
	case errors.Is(err, search.ErrUnknownPerson):
		writeError(w, http.StatusNotFound, "person not found")
		return
	case errors.Is(err, context.DeadlineExceeded):
		s.log(r).Warn("search timed out", "source", source, "target", target, "timeout", s.searchTimeout)
		writeError(w, http.StatusGatewayTimeout, "search timed out")
		return
	case errors.Is(err, context.Canceled):
		// client went away
		return
	case err != nil:
		s.log(r).Error("shortest path", "source", source, "target", target, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	report, err := graph.NewPathReport(s.store, res)
	if err != nil {
		s.log(r).Error("describing path", "source", source, "target", target, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}
