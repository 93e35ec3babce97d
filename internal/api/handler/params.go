package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
	"github.com/daap14/teamhub/internal/api/validation"
	"github.com/daap14/teamhub/internal/auth"
	"github.com/daap14/teamhub/internal/database"
)

// maxBodyBytes caps request bodies at 1MB.
const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst. It writes the error response
// and returns false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", middleware.GetRequestID(r.Context()))
		return false
	}
	return true
}

// rejectFieldErrors writes a VALIDATION_ERROR response when errs is non-empty.
func rejectFieldErrors(w http.ResponseWriter, r *http.Request, errs []validation.FieldError) bool {
	if len(errs) == 0 {
		return false
	}
	response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", errs, middleware.GetRequestID(r.Context()))
	return true
}

// parsePage reads the page and limit query parameters.
func parsePage(w http.ResponseWriter, r *http.Request) (database.Page, bool) {
	requestID := middleware.GetRequestID(r.Context())
	var page database.Page

	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "page must be a positive integer", requestID)
			return page, false
		}
		if n > database.MaxPageNumber {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", fmt.Sprintf("page must not exceed %d", database.MaxPageNumber), requestID)
			return page, false
		}
		page.Number = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			response.Err(w, http.StatusBadRequest, "INVALID_PARAM", "limit must be a positive integer", requestID)
			return page, false
		}
		page.Limit = n
	}

	return page.Normalize(), true
}

// uuidParam parses the named chi URL parameter as a UUID.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", name+" must be a valid UUID", middleware.GetRequestID(r.Context()))
		return uuid.Nil, false
	}
	return id, true
}

// requireIdentity returns the authenticated caller or writes 401.
func requireIdentity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "API key is required", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return identity, true
}
