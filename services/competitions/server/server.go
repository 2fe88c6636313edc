// Package server exposes the competitions service over REST.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fisski-backend/lib/httputil"
	"fisski-backend/lib/scrapers/fis"
	"fisski-backend/lib/timezone"
	"fisski-backend/services/competitions"

	"github.com/gorilla/mux"
)

type handlers struct {
	svc competitions.Service
}

func RegisterRoutes(router *mux.Router, svc competitions.Service) {
	h := handlers{svc: svc}

	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/competitions", h.handleListCompetitions).Methods(http.MethodGet)
	api.HandleFunc("/competitions/{competitionId}", h.handleGetCompetition).Methods(http.MethodGet)
}

type healthBody struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (h handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthBody{
		Status:    "healthy",
		Timestamp: timezone.Now().Format(time.RFC3339),
	})
}

func (h handlers) handleListCompetitions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	competitions, err := h.svc.ListCompetitions(r.Context(), competitions.ListFilters{
		Gender:     query.Get("gender"),
		Discipline: query.Get("discipline"),
		Location:   query.Get("location"),
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list competitions", "err", err)
		httputil.InternalError(w, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, competitions)
}

func (h handlers) handleGetCompetition(w http.ResponseWriter, r *http.Request) {
	competitionId := mux.Vars(r)["competitionId"]

	detail, err := h.svc.GetEventDetail(r.Context(), competitionId)
	if errors.Is(err, fis.ErrNotFound) {
		httputil.NotFound(w, "Competition not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to fetch competition details",
			"competition_id", competitionId, "err", err)
		httputil.InternalError(w, err.Error())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, detail)
}
