// File: internal/handlers/connection_handler.go
package handlers

import (
	"net/http"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/dtos"
	"github.com/iyunix/go-linksports/internal/services/social_services"
)

type ConnectionHandler struct {
	connections *social_services.ConnectionService
	logger      Logger
}

func NewConnectionHandler(connections *social_services.ConnectionService, logger Logger) *ConnectionHandler {
	return &ConnectionHandler{connections: connections, logger: logger}
}

// List returns the caller's accepted connections.
func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	conns, err := h.connections.ListAccepted(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, dtos.FromConnections(conns), "")
}

// Requests returns pending requests addressed to the caller.
func (h *ConnectionHandler) Requests(w http.ResponseWriter, r *http.Request) {
	conns, err := h.connections.ListRequests(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, dtos.FromConnections(conns), "")
}

// Create sends a request. An existing connection between the pair is
// returned as-is with 200.
func (h *ConnectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dtos.ConnectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if req.AddresseeID == 0 {
		respondError(w, r, h.logger, badRequest("addressee_id is required"))
		return
	}

	conn, created, err := h.connections.Request(r.Context(), currentUser(r).ID, req.AddresseeID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if !created {
		respondSuccess(w, http.StatusOK, dtos.FromConnection(*conn), "Connection already exists")
		return
	}
	respondSuccess(w, http.StatusCreated, dtos.FromConnection(*conn), "Connection request sent")
}

func (h *ConnectionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	var req dtos.ConnectionStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	conn, err := h.connections.UpdateStatus(r.Context(), id, currentUser(r).ID, domain.ConnectionStatus(req.Status))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, dtos.FromConnection(*conn), "Connection updated")
}

func (h *ConnectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if err := h.connections.Delete(r.Context(), id, currentUser(r).ID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil, "Connection removed")
}
