package images

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kektor/gallery-images/pkg/handlers"
	"github.com/kektor/gallery-images/pkg/scroll"
)

// ActorHeader carries the acting user id. Authentication itself lives at the
// gateway; the catalog only needs the resolved id.
const ActorHeader = "X-User-Id"

// Handler provides HTTP handlers for the image catalog.
type Handler struct {
	sys       System
	logger    *slog.Logger
	scroll    scroll.Config
	maxUpload int64
}

// NewHandler creates a new images HTTP handler.
func NewHandler(sys System, logger *slog.Logger, scrollCfg scroll.Config) *Handler {
	return &Handler{
		sys:       sys,
		logger:    logger,
		scroll:    scrollCfg,
		maxUpload: 32 << 20,
	}
}

// SetMaxUpload overrides the multipart memory limit for uploads.
func (h *Handler) SetMaxUpload(limit int64) {
	if limit > 0 {
		h.maxUpload = limit
	}
}

// Register mounts all image routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/images", h.List)
	mux.HandleFunc("GET /api/images/{id}", h.Find)
	mux.HandleFunc("GET /api/images/username/{username}", h.ListByUsername)
	mux.HandleFunc("GET /api/images/user/current", h.ListCurrent)
	mux.HandleFunc("POST /api/images/upload", h.Upload)
	mux.HandleFunc("PUT /api/images/{id}", h.Update)
	mux.HandleFunc("DELETE /api/images/{id}", h.Delete)
	mux.HandleFunc("POST /api/images/{id}/like", h.Toggle)
}

// List handles GET /api/images to scroll the full catalog.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req, err := scroll.ParseRequest(r.URL.Query(), h.scroll)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.List(r.Context(), req, actorID(r))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find handles GET /api/images/{id} to retrieve a single image.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Find(r.Context(), id, actorID(r))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// ListByUsername handles GET /api/images/username/{username}.
func (h *Handler) ListByUsername(w http.ResponseWriter, r *http.Request) {
	req, err := scroll.ParseRequest(r.URL.Query(), h.scroll)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.ListByUsername(r.Context(), r.PathValue("username"), req, actorID(r))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// ListCurrent handles GET /api/images/user/current for the acting user's
// own images.
func (h *Handler) ListCurrent(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	req, err := scroll.ParseRequest(r.URL.Query(), h.scroll)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.ListByOwner(r.Context(), actor, req, actor)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Upload handles POST /api/images/upload with a multipart image payload.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrInvalidPayload, err))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: image file required", ErrInvalidPayload))
		return
	}
	defer file.Close()

	cmd := UploadCommand{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
		Description: r.FormValue("description"),
	}

	result, err := h.sys.Upload(r.Context(), cmd, actor)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Update handles PUT /api/images/{id} to change the description.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Update(r.Context(), id, cmd, actor)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /api/images/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id, actor); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Toggle handles POST /api/images/{id}/like.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	id, err := pathID(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Toggle(r.Context(), id, actor)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid image id", ErrInvalidPayload)
	}
	return id, nil
}

// actorID reads the acting user id, defaulting to the anonymous viewer.
func actorID(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.Header.Get(ActorHeader), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// requireActor reads the acting user id for mutating operations.
func requireActor(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.Header.Get(ActorHeader), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrMissingActor
	}
	return id, nil
}
