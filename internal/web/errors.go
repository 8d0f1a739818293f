package web

// errors.go maps handler errors to JSON responses.
//
// The technical error is logged with the request id; the client receives
// the user message from core.MapError plus a support code.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/bestcontent/internal/core"
	"github.com/JonMunkholm/bestcontent/internal/logging"
)

var errRunNotFound = errors.New("run not found")

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)
	if errors.Is(err, errRunNotFound) {
		userMsg = core.UserMessage{
			Message: "Run not found",
			Action:  "Check the run id; finished runs are kept for a limited time",
			Code:    "RUN404",
		}
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   err.Error(),
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}
