package summaries

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"annostat-backend/internal/shared/server/middleware"
	"annostat-backend/internal/shared/server/respond"
	"annostat-backend/internal/usage"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches summary routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/summaries", h.create)
	rg.GET("/summaries", h.list)
	rg.GET("/summaries/:id", h.get)
	rg.GET("/summaries/:id/export", h.export)
}

type createRequest struct {
	IndependentDatasetID    string  `json:"independentDatasetId"`
	PairwiseDatasetID       string  `json:"pairwiseDatasetId"`
	CounterfactualDatasetID string  `json:"counterfactualDatasetId"`
	WorkbookDatasetID       string  `json:"workbookDatasetId"`
	Resamples               int     `json:"resamples"`
	Seed                    int64   `json:"seed"`
	ExcludeRaterType        *string `json:"excludeRaterType"`
	Source1                 string  `json:"source1"`
	Source2                 string  `json:"source2"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	run, err := h.Svc.Create(ctx, userID, CreateParams{
		IndependentID:    req.IndependentDatasetID,
		PairwiseID:       req.PairwiseDatasetID,
		CounterfactualID: req.CounterfactualDatasetID,
		WorkbookID:       req.WorkbookDatasetID,
		Resamples:        req.Resamples,
		Seed:             req.Seed,
		ExcludeRaterType: req.ExcludeRaterType,
		Source1:          req.Source1,
		Source2:          req.Source2,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "usage limit reached", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create summary run", nil)
		}
		return
	}

	respond.JSON(c, http.StatusAccepted, toResponse(run))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	run, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "summary run not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch summary run", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toResponse(run))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	runs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list summary runs", nil)
		return
	}

	resp := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toListResponse(run))
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) export(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	run, err := h.Svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "summary run not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch summary run", nil)
		}
		return
	}

	if run.Status != StatusCompleted || run.Result == nil {
		respond.Error(c, http.StatusConflict, "not_ready", "summary run is not completed", nil)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "summary-"+run.ID+".csv"))
	c.Status(http.StatusOK)
	if err := WriteResultCSV(c.Writer, run.Result); err != nil {
		// Headers are already out; all we can do is log.
		_ = err
	}
}
