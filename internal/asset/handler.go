package asset

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/jonfjz/filestore/internal/middleware"
	"github.com/jonfjz/filestore/internal/response"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler holds the HTTP handler for the catalog endpoint.
type Handler struct {
	svc *Service
	log zerolog.Logger
}

// NewHandler creates a new asset Handler.
func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: logger.With().Str("component", "asset-handler").Logger()}
}

// GetAssets godoc
//
//	@Summary		List the caller's assets
//	@Description	Paginated catalog of every object in the caller's namespace, newest first.
//	@Tags			assets
//	@Produce		json
//	@Security		BearerAuth
//	@Param			page		query		int	false	"Page number (default 1)"
//	@Param			pageSize	query		int	false	"Items per page, 1-100 (default 20)"
//	@Success		200			{object}	response.Envelope{data=Page}
//	@Failure		400			{object}	response.Envelope
//	@Failure		401			{object}	response.Envelope
//	@Router			/assets [get]
func (h *Handler) GetAssets(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page", defaultPage)
	if !ok || page < 1 {
		response.BadRequest(w, "page must be >= 1")
		return
	}

	pageSize, ok := queryInt(r, "pageSize", defaultPageSize)
	if !ok || pageSize < 1 || pageSize > maxPageSize {
		response.BadRequest(w, "pageSize must be between 1 and 100")
		return
	}

	ownerID, _ := r.Context().Value(middleware.UserIDKey).(string)
	if ownerID == "" {
		response.BadRequest(w, "user id not found in token")
		return
	}

	result, err := h.svc.List(r.Context(), ownerID, page, pageSize)
	if err != nil {
		h.log.Error().Err(err).Str("owner", ownerID).Msg("catalog listing failed")
		response.InternalError(w)
		return
	}

	response.OK(w, result)
}

func queryInt(r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
