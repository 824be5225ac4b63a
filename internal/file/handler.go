package file

import (
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jonfjz/filestore/internal/middleware"
	"github.com/jonfjz/filestore/internal/response"
)

// contentTypeByExt maps filename extensions to the content type served on the
// public path. Anything else is served as a generic binary.
var contentTypeByExt = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
	"mp4":  "video/mp4",
	"webm": "video/webm",
}

const binaryContentType = "application/octet-stream"

// Handler holds HTTP handlers for upload and retrieval endpoints.
type Handler struct {
	svc *Service
	log zerolog.Logger
}

// NewHandler creates a new file Handler.
func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: logger.With().Str("component", "file-handler").Logger()}
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Stores the file under the caller's namespace and notifies subscribers.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			entryId	formData	string	true	"Logical entry the file belongs to"
//	@Param			file	formData	file	true	"File payload"
//	@Success		201		{object}	response.Envelope{data=UploadResult}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Router			/files/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok || ownerID == "" {
		response.BadRequest(w, "user id not found in token")
		return
	}

	entryID := strings.TrimSpace(r.FormValue("entryId"))
	if entryID == "" {
		response.BadRequest(w, "entryId is required")
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "no file uploaded or invalid file")
		return
	}
	defer f.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = binaryContentType
	}

	result, err := h.svc.Upload(r.Context(), ownerID, entryID, header.Filename, contentType, f, header.Size)
	if err != nil {
		h.log.Error().Err(err).Str("entryId", entryID).Msg("upload failed")
		response.InternalError(w)
		return
	}

	response.Created(w, result)
}

// GetFile godoc
//
//	@Summary		Download a stored object
//	@Description	Streams the object back as a generic binary.
//	@Tags			files
//	@Produce		octet-stream
//	@Security		BearerAuth
//	@Param			key	path	string	true	"Storage key"
//	@Success		200	{file}	binary
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/files/{key} [get]
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	// Keys contain slashes, so clients request them percent-encoded and the
	// route param arrives still escaped.
	key := chi.URLParam(r, "key")
	if decoded, err := url.PathUnescape(key); err == nil {
		key = decoded
	}
	h.serve(w, r, key, binaryContentType)
}

// GetPublicFile godoc
//
//	@Summary		Public download
//	@Description	Unauthenticated re-serve of a stored object; content type inferred from the extension.
//	@Tags			uploads
//	@Produce		octet-stream
//	@Param			path	path	string	true	"Storage key"
//	@Success		200		{file}	binary
//	@Failure		404		{object}	response.Envelope
//	@Router			/uploads/{path} [get]
func (h *Handler) GetPublicFile(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/uploads/")
	h.serve(w, r, key, inferContentType(key))
}

// serve streams one object. Every storage failure maps to 404: the client
// contract does not distinguish a missing object from an unreachable backend,
// the log line keeps the real cause. A failure after the first byte cannot
// change the status anymore and only truncates the body.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, key, contentType string) {
	stream, err := h.svc.Open(r.Context(), key)
	if err != nil {
		h.log.Warn().Err(err).Str("key", key).Msg("object fetch failed")
		response.NotFound(w, "file not found")
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, stream); err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("stream interrupted")
	}
}

func inferContentType(key string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
	if ct, ok := contentTypeByExt[ext]; ok {
		return ct
	}
	return binaryContentType
}
