package delivery

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/media-api/internal/models"
	"github.com/Vovarama1992/media-api/internal/ports"
	"github.com/go-chi/chi/v5"
)

type MediaHandler struct {
	media ports.MediaService
	log   *logger.ZapLogger
}

func NewMediaHandler(media ports.MediaService, log *logger.ZapLogger) *MediaHandler {
	return &MediaHandler{
		media: media,
		log:   log,
	}
}

// GET /api/v1/media?page=&perPage=
func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := decodeListQuery(r)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}

	h.respond(w, http.StatusOK)(h.media.List(r.Context(), q.Page, q.PerPage))
}

// GET /api/v1/media/search?query=
func (h *MediaHandler) Search(w http.ResponseWriter, r *http.Request) {
	q, err := decodeSearchQuery(r)
	if err != nil {
		WriteError(w, h.log, err)
		return
	}

	h.respond(w, http.StatusOK)(h.media.Search(r.Context(), q.Query))
}

// GET /api/v1/media/{id}
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}

	h.respond(w, http.StatusOK)(h.media.Get(r.Context(), id))
}

// POST /api/v1/media
func (h *MediaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMediaRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, h.log, err)
		return
	}
	if err := Validate(req); err != nil {
		WriteError(w, h.log, err)
		return
	}

	h.respond(w, http.StatusCreated)(h.media.Create(r.Context(), req.toModel()))
}

// PATCH /api/v1/media/{id}
func (h *MediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}

	var req UpdateMediaRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, h.log, err)
		return
	}
	if err := Validate(req); err != nil {
		WriteError(w, h.log, err)
		return
	}

	h.respond(w, http.StatusOK)(h.media.Update(r.Context(), id, req.toModel()))
}

// DELETE /api/v1/media/{id}
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, h.log, err)
		return
	}

	h.respond(w, http.StatusOK)(h.media.Delete(r.Context(), id))
}

// respond writes the service result unchanged: the envelope on success, the
// translated fault otherwise.
func (h *MediaHandler) respond(w http.ResponseWriter, status int) func(*models.Envelope, error) {
	return func(env *models.Envelope, err error) {
		if err != nil {
			WriteError(w, h.log, err)
			return
		}
		writeJSON(w, status, env)
	}
}
