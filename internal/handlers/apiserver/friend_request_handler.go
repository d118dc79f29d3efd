package apiserver

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"social-go/internal/models"
	"social-go/internal/services"
)

// FriendRequestHandler handles HTTP requests related to friend requests.
type FriendRequestHandler struct {
	graph services.SocialGraphService
	log   *logrus.Logger
}

// NewFriendRequestHandler creates a new FriendRequestHandler.
func NewFriendRequestHandler(graph services.SocialGraphService, log *logrus.Logger) *FriendRequestHandler {
	return &FriendRequestHandler{graph: graph, log: log}
}

// FriendRequestsResponse is the combined view of GET /friend-requests.
type FriendRequestsResponse struct {
	IncomingReqs []models.FriendRequestView `json:"incomingReqs"`
	AcceptedReqs []models.FriendRequestView `json:"acceptedReqs"`
}

// SendFriendRequestHandler handles POST /api/users/friend-request/{id}.
func (h *FriendRequestHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	targetID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	request, err := h.graph.SendFriendRequest(r.Context(), caller.UserID, targetID)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, request)
}

// AcceptFriendRequestHandler handles PUT /api/users/friend-request/{id}/accept.
func (h *FriendRequestHandler) AcceptFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	requestID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	request, err := h.graph.AcceptFriendRequest(r.Context(), caller.UserID, requestID)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, request)
}

// ListFriendRequestsHandler returns incoming pending requests together with
// the caller's sent requests that were accepted.
func (h *FriendRequestHandler) ListFriendRequestsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	incoming, err := h.graph.IncomingRequests(r.Context(), caller.UserID)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	accepted, err := h.graph.AcceptedRequests(r.Context(), caller.UserID)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, FriendRequestsResponse{IncomingReqs: incoming, AcceptedReqs: accepted})
}

// ListIncomingHandler handles GET /api/users/friend-requests/incoming.
func (h *FriendRequestHandler) ListIncomingHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	requests, err := h.graph.IncomingRequests(r.Context(), caller.UserID)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, requests)
}

// ListOutgoingHandler handles GET /api/users/friend-requests/outgoing.
func (h *FriendRequestHandler) ListOutgoingHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	requests, err := h.graph.OutgoingRequests(r.Context(), caller.UserID)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, requests)
}
