package util

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"marklist/backend/internal/shared"
)

// JSONError structure for error responses
type JSONError struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Fields  []shared.FieldError `json:"fields,omitempty"`
}

// WriteJSON is a helper to write JSON responses
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}

// WriteJSONError is a helper to write standardized error JSON responses
func WriteJSONError(w http.ResponseWriter, status int, kind, message string) {
	writeError(w, status, JSONError{Error: kind, Message: message})
}

func writeError(w http.ResponseWriter, status int, body JSONError) {
	log.Printf("HTTP Error %d: %s: %s", status, body.Error, body.Message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error writing JSON error response: %v", err)
	}
}

// HandleServiceError translates service errors to the matching HTTP response.
// Validation problems are echoed field by field; upstream and store details
// are logged and replaced by a generic message.
func HandleServiceError(w http.ResponseWriter, err error) {
	var verrs *shared.ValidationError
	var upstream *shared.UpstreamError
	var storeErr *shared.StoreError

	switch {
	case errors.As(err, &verrs):
		writeError(w, http.StatusBadRequest, JSONError{
			Error:   shared.KindValidation,
			Message: "Invalid student record",
			Fields:  verrs.Fields,
		})
	case errors.Is(err, shared.ErrDuplicateKey):
		WriteJSONError(w, http.StatusConflict, shared.KindDuplicate, "Register Number already exists.")
	case errors.Is(err, shared.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, shared.KindNotFound, "Student not found")
	case errors.As(err, &upstream):
		log.Printf("ERROR: feedback request failed: %v", err)
		WriteJSONError(w, http.StatusInternalServerError, shared.KindUpstream, "Failed to get feedback from AI.")
	case errors.As(err, &storeErr):
		log.Printf("ERROR: store operation failed: %v", err)
		WriteJSONError(w, http.StatusInternalServerError, shared.KindStore, "Database error, please try again later.")
	default:
		log.Printf("ERROR: unexpected service error: %v", err)
		WriteJSONError(w, http.StatusInternalServerError, shared.KindStore, "Internal server error")
	}
}

// ExtractToken extracts the token from the Authorization header (Bearer <token>)
func ExtractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	// Expect header: "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}
