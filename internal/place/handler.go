package place

import (
	"net/http"

	"github.com/redmonkez12/placereviews/internal/auth"
	"github.com/redmonkez12/placereviews/internal/httputil"
	"github.com/redmonkez12/placereviews/internal/logging"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type CreatePlaceRequest struct {
	Name      string   `json:"name" validate:"required,max=200"`
	Address   string   `json:"address" validate:"required,max=500"`
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// Create handles place registration
// @Summary      Create a place
// @Tags         places
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePlaceRequest true "Place"
// @Success      201 {object} Place
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /places [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.WWWAuthenticateBearer(w)
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CreatePlaceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid place request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if fields := httputil.Validate(req); fields != nil {
		httputil.RespondValidationError(w, fields)
		return
	}

	created, err := h.service.Create(r.Context(), identity, NewPlace{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	})
	if err != nil {
		logger.Error("failed to create place", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create place", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// List returns every place
// @Summary      List places
// @Tags         places
// @Produce      json
// @Success      200 {array} Place
// @Router       /places [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	places, err := h.service.List(r.Context())
	if err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to list places", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list places", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	httputil.RespondJSON(w, places, http.StatusOK)
}
