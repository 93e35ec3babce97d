package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"sigs.k8s.io/yaml"

	"github.com/daap14/teamhub/internal/api/middleware"
	"github.com/daap14/teamhub/internal/api/response"
)

// OpenAPIHandler serves the API description as JSON or as the original YAML.
type OpenAPIHandler struct {
	rawYAML []byte

	once     sync.Once
	jsonSpec []byte
	jsonErr  error
}

// NewOpenAPIHandler creates a handler that converts the YAML document to JSON
// on first request.
func NewOpenAPIHandler(yamlSpec []byte) *OpenAPIHandler {
	return &OpenAPIHandler{rawYAML: yamlSpec}
}

func (h *OpenAPIHandler) document() ([]byte, error) {
	h.once.Do(func() {
		h.jsonSpec, h.jsonErr = yaml.YAMLToJSON(h.rawYAML)
	})
	return h.jsonSpec, h.jsonErr
}

// JSON handles GET /openapi.json.
func (h *OpenAPIHandler) JSON(w http.ResponseWriter, r *http.Request) {
	doc, err := h.document()
	if err != nil {
		slog.Error("failed to convert OpenAPI document to JSON", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to convert OpenAPI document", middleware.GetRequestID(r.Context()))
		return
	}
	h.write(w, "application/json", doc)
}

// YAML handles GET /openapi.yaml.
func (h *OpenAPIHandler) YAML(w http.ResponseWriter, _ *http.Request) {
	h.write(w, "application/yaml", h.rawYAML)
}

func (h *OpenAPIHandler) write(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write OpenAPI response", "error", err)
	}
}
