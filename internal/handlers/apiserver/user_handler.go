package apiserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"social-go/internal/services"
)

const multipartMemory = 8 << 20

// UserHandler serves the social feed and profile picture endpoints.
type UserHandler struct {
	graph         services.SocialGraphService
	pictures      services.ProfilePictureService
	maxUploadSize int64
	log           *logrus.Logger
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(graph services.SocialGraphService, pictures services.ProfilePictureService, maxUploadSize int64, log *logrus.Logger) *UserHandler {
	return &UserHandler{graph: graph, pictures: pictures, maxUploadSize: maxUploadSize, log: log}
}

// RecommendedUsersHandler handles GET /api/users?limit=N.
func (h *UserHandler) RecommendedUsersHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_input", "limit must be an integer")
			return
		}
		limit = n
	}

	users, err := h.graph.Recommend(r.Context(), caller.UserID, limit)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, users)
}

// MyFriendsHandler handles GET /api/users/friends.
func (h *UserHandler) MyFriendsHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	friends, err := h.graph.FriendsOf(r.Context(), caller.UserID)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, friends)
}

// UploadProfilePictureHandler handles the multipart field "profilePic".
func (h *UserHandler) UploadProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}

	// leave room for the multipart envelope
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "file_too_large",
				fmt.Sprintf("File too large, max %d MB", h.maxUploadSize>>20))
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_input", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("profilePic")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_input", "No file uploaded")
		return
	}
	defer file.Close()

	user, err := h.pictures.Upload(r.Context(), caller.UserID, file, header.Size, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, UserResponse{Success: true, User: user})
}

// RemoveProfilePictureHandler handles DELETE /api/users/remove-profile-picture.
func (h *UserHandler) RemoveProfilePictureHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	user, err := h.pictures.Remove(r.Context(), caller.UserID)
	if err != nil {
		respondError(w, h.log, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, UserResponse{Success: true, User: user})
}
