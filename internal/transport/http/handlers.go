package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/joshdurbin/golinks/internal/domain"
	"github.com/joshdurbin/golinks/internal/service"
)

// ManagementPrefix is the reserved path prefix that never resolves as a shortcut
const ManagementPrefix = "/_"

// Handler holds the HTTP handlers for the redirect endpoint and the
// management surface
type Handler struct {
	links   service.LinkService
	baseURL string
	log     *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(links service.LinkService, baseURL string, log *slog.Logger) *Handler {
	return &Handler{
		links:   links,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log,
	}
}

// Redirect handles GET /{shortcut}. The root path serves the management
// index and reserved paths are never looked up.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path == "/" || r.URL.Path == "" {
		h.Index(w, r)
		return
	}

	if strings.HasPrefix(r.URL.Path, ManagementPrefix) {
		http.NotFound(w, r)
		return
	}

	target, err := h.links.Resolve(r.Context(), r.URL.Path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.log.Debug("shortcut not found", "path", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h.log.Error("failed to resolve shortcut", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// The stored url is sent verbatim; http.Redirect would rewrite
	// scheme-less targets relative to the request path
	w.Header().Set("Location", target)
	w.WriteHeader(http.StatusFound)
}

// Index handles GET /_ with every link and the aggregate statistics
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	links, err := h.links.ListLinks(r.Context())
	if err != nil {
		h.writeError(w, "list links", err)
		return
	}

	h.writeJSON(w, http.StatusOK, domain.IndexResponse{
		Links: links,
		Stats: service.ComputeStats(links),
	})
}

// ListLinks handles GET /_/links
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	links, err := h.links.ListLinks(r.Context())
	if err != nil {
		h.writeError(w, "list links", err)
		return
	}

	h.writeJSON(w, http.StatusOK, links)
}

// GetLink handles GET /_/links/{shortcut}
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	shortcut := strings.TrimPrefix(r.URL.Path, ManagementPrefix+"/links/")
	if shortcut == "" {
		http.Error(w, "Shortcut is required", http.StatusBadRequest)
		return
	}

	link, err := h.links.GetLink(r.Context(), shortcut)
	if err != nil {
		h.writeError(w, "get link", err)
		return
	}

	h.writeJSON(w, http.StatusOK, h.linkResponse(link))
}

// AddLink handles POST /_/add with a form or JSON body
func (h *Handler) AddLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeLinkRequest(r)
	if err != nil {
		h.log.Warn("invalid add request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	link, err := h.links.AddLink(r.Context(), req)
	if err != nil {
		h.writeError(w, "add link", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, h.linkResponse(link))
}

// UpdateLink handles POST /_/update with a form or JSON body
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := decodeLinkRequest(r)
	if err != nil {
		h.log.Warn("invalid update request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.links.UpdateLink(r.Context(), req)
	if err != nil {
		h.writeError(w, "update link", err)
		return
	}
	if !updated {
		http.Error(w, "Shortcut not found", http.StatusNotFound)
		return
	}

	link, err := h.links.GetLink(r.Context(), req.Shortcut)
	if err != nil {
		h.writeError(w, "get link", err)
		return
	}

	h.writeJSON(w, http.StatusOK, h.linkResponse(link))
}

// DeleteLink handles POST /_/delete with a form or JSON body
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.DeleteRequest
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.log.Warn("invalid delete request", "error", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	} else {
		req.Shortcut = r.FormValue("shortcut")
	}

	if req.Shortcut == "" {
		http.Error(w, "Shortcut is required", http.StatusBadRequest)
		return
	}

	deleted, err := h.links.DeleteLink(r.Context(), req.Shortcut)
	if err != nil {
		h.writeError(w, "delete link", err)
		return
	}
	if !deleted {
		http.Error(w, "Shortcut not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /_/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.links.Stats(r.Context())
	if err != nil {
		h.writeError(w, "compute stats", err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

// Health handles GET /_/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) linkResponse(link *domain.Link) domain.LinkResponse {
	return domain.LinkResponse{
		Link:     link,
		ShortURL: h.baseURL + "/" + link.Shortcut,
	}
}

// writeError maps the error taxonomy onto status codes
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrDuplicateShortcut):
		h.log.Debug("rejected request", "op", op, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.log.Error("request failed", "op", op, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

// decodeLinkRequest reads a LinkRequest from a JSON body or from form values.
// An empty form description is treated as absent.
func decodeLinkRequest(r *http.Request) (domain.LinkRequest, error) {
	var req domain.LinkRequest

	if isJSON(r) {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}

	req.Shortcut = r.PostForm.Get("shortcut")
	req.URL = r.PostForm.Get("url")
	if description := r.PostForm.Get("description"); description != "" {
		req.Description = &description
	}

	return req, nil
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}
