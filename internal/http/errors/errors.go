package errors

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// WriteJSON writes the canonical {"error": ...} failure body.
func WriteJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Internal logs the error with its request ID and returns the error's
// message in the body, mirroring the upstream API contract.
func Internal(w http.ResponseWriter, r *http.Request, err error, message string) {
	LogError(r, message, err)
	WriteJSON(w, http.StatusInternalServerError, err.Error())
}

func BadRequest(w http.ResponseWriter, r *http.Request, err error, clientMessage string) {
	requestID := middleware.GetReqID(r.Context())

	if requestID != "" {
		log.Printf("[WARN] RequestID=%s: bad request: %v", requestID, err)
	} else {
		log.Printf("[WARN] bad request: %v", err)
	}

	WriteJSON(w, http.StatusBadRequest, clientMessage)
}

func NotFound(w http.ResponseWriter, r *http.Request, clientMessage string) {
	WriteJSON(w, http.StatusNotFound, clientMessage)
}

func Unauthorized(w http.ResponseWriter, r *http.Request, clientMessage string) {
	WriteJSON(w, http.StatusUnauthorized, clientMessage)
}

func LogError(r *http.Request, message string, err error) {
	requestID := middleware.GetReqID(r.Context())

	if requestID != "" {
		log.Printf("[ERROR] RequestID=%s: %s: %v", requestID, message, err)
	} else {
		log.Printf("[ERROR] %s: %v", message, err)
	}
}

func LogInfo(r *http.Request, message string) {
	requestID := middleware.GetReqID(r.Context())

	if requestID != "" {
		log.Printf("[INFO] RequestID=%s: %s", requestID, message)
	} else {
		log.Printf("[INFO] %s", message)
	}
}
