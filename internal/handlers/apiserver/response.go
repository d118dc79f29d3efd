package apiserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"social-go/internal/auth"
	"social-go/internal/middleware"
	"social-go/internal/services"
)

// ErrorResponse 是 API 错误响应的通用结构体。
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errorMapping pairs a domain error with its HTTP status and machine code.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{auth.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
	{services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrNotFound, http.StatusNotFound, "not_found"},
	{services.ErrInvalidTarget, http.StatusBadRequest, "invalid_target"},
	{services.ErrAlreadyFriends, http.StatusBadRequest, "already_friends"},
	{services.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{services.ErrMissingFields, http.StatusBadRequest, "missing_fields"},
	{services.ErrDuplicateRequest, http.StatusConflict, "duplicate_request"},
	{services.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{services.ErrEmailTaken, http.StatusConflict, "email_taken"},
}

// writeJSONResponse 是一个辅助函数，用于发送 JSON 响应。
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		// headers are gone by now; nothing useful to do on failure
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeJSONError 是一个辅助函数，用于发送 JSON 格式的错误响应。
func writeJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSONResponse(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// respondError maps err to a status. Unknown errors are logged and hidden
// behind a generic 500.
func respondError(w http.ResponseWriter, log *logrus.Logger, r *http.Request, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			writeJSONError(w, m.status, m.code, err.Error())
			return
		}
	}
	log.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("request failed")
	writeJSONError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// requireCaller returns the resolved caller, or writes 401 and reports false.
func requireCaller(w http.ResponseWriter, r *http.Request) (auth.Caller, bool) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized - no caller")
		return auth.Caller{}, false
	}
	return caller, true
}

// pathID parses a numeric mux path variable.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_input", "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// decodeJSON decodes the request body into v, writing 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_input", "invalid request body")
		return false
	}
	return true
}
