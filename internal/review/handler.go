package review

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

// CreateReviewRequest is the body of POST /reviews. Any author field sent by
// the client is ignored.
type CreateReviewRequest struct {
	PlaceName string   `json:"place_name" validate:"required,max=200"`
	Address   string   `json:"address" validate:"required,max=500"`
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
	Rating    int      `json:"rating" validate:"required,min=1,max=5"`
	ImageURL  *string  `json:"image_url,omitempty" validate:"omitempty,url,max=2048"`
}

// Create handles review submission
// @Summary      Create a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateReviewRequest true "Review"
// @Success      201 {object} Review
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /reviews [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := auth.GetIdentityFromContext(r.Context())
	if !ok {
		httputil.WWWAuthenticateBearer(w)
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CreateReviewRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid review request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if fields := httputil.Validate(req); fields != nil {
		httputil.RespondValidationError(w, fields)
		return
	}

	created, err := h.service.Create(r.Context(), identity, NewReview{
		PlaceName: req.PlaceName,
		Address:   req.Address,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Rating:    req.Rating,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		logger.Error("failed to create review", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create review", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, created, http.StatusCreated)
}

// List returns every review
// @Summary      List reviews
// @Tags         reviews
// @Produce      json
// @Success      200 {array} Review
// @Router       /reviews [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.List(r.Context())
	if err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to list reviews", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list reviews", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	httputil.RespondJSON(w, reviews, http.StatusOK)
}
