// File: internal/handlers/profile_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/dtos"
	"github.com/iyunix/go-linksports/internal/services/profile_services"
)

type ProfileHandler struct {
	profiles *profile_services.ProfileService
	logger   Logger
}

func NewProfileHandler(profiles *profile_services.ProfileService, logger Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetForUser(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respond(w, r, p, "")
}

func (h *ProfileHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	p, err := h.profiles.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	h.respond(w, r, p, "")
}

// Update accepts {"profile": {...}} or the bare field object.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// CompleteSetup applies the fields and marks the profile completed.
func (h *ProfileHandler) CompleteSetup(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *ProfileHandler) update(w http.ResponseWriter, r *http.Request, complete bool) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	fields, err := decodeProfileFields(w, r, complete)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	actor := currentUser(r).ID
	var p *domain.Profile
	if complete {
		p, err = h.profiles.CompleteSetup(r.Context(), actor, id, fields)
	} else {
		p, err = h.profiles.Update(r.Context(), actor, id, fields)
	}
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	message := "Profile updated successfully"
	if complete {
		message = "Profile setup completed"
	}
	h.respond(w, r, p, message)
}

func (h *ProfileHandler) respond(w http.ResponseWriter, r *http.Request, p *domain.Profile, message string) {
	completion, err := h.profiles.CompletionPercentage(r.Context(), p)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	body, err := dtos.ProfileResponse(p, completion)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, body, message)
}

func decodeProfileFields(w http.ResponseWriter, r *http.Request, allowEmpty bool) (map[string]json.RawMessage, error) {
	var body map[string]json.RawMessage
	if err := decodeJSON(w, r, &body); err != nil {
		if allowEmpty && r.ContentLength == 0 {
			return map[string]json.RawMessage{}, nil
		}
		return nil, err
	}
	if nested, ok := body["profile"]; ok {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(nested, &fields); err != nil {
			return nil, badRequest("profile must be an object")
		}
		return fields, nil
	}
	return body, nil
}
