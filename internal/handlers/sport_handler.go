// File: internal/handlers/sport_handler.go
package handlers

import (
	"net/http"

	"github.com/iyunix/go-linksports/internal/services/sport_services"
)

type SportHandler struct {
	sports *sport_services.SportService
	logger Logger
}

func NewSportHandler(sports *sport_services.SportService, logger Logger) *SportHandler {
	return &SportHandler{sports: sports, logger: logger}
}

// List returns active sports, optionally filtered by ?category= and ?q=.
func (h *SportHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sports, err := h.sports.ListSports(r.Context(), q.Get("category"), q.Get("q"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, sports, "")
}

func (h *SportHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.sports.Categories(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, categories, "")
}

func (h *SportHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	sport, err := h.sports.GetSport(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, sport, "")
}

func (h *SportHandler) ListUserSports(w http.ResponseWriter, r *http.Request) {
	sports, err := h.sports.ListUserSports(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, sports, "")
}

func (h *SportHandler) AddUserSport(w http.ResponseWriter, r *http.Request) {
	var in sport_services.UserSportInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	us, err := h.sports.AddUserSport(r.Context(), currentUser(r).ID, in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusCreated, us, "Sport added")
}

func (h *SportHandler) UpdateUserSport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var in sport_services.UserSportInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	us, err := h.sports.UpdateUserSport(r.Context(), currentUser(r).ID, id, in)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, us, "Sport updated")
}

func (h *SportHandler) DeleteUserSport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.sports.DeleteUserSport(r.Context(), currentUser(r).ID, id); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "Sport removed")
}
