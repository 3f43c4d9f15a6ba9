package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campushub-api/internal/dto"
	"github.com/noah-isme/campushub-api/internal/models"
	appErrors "github.com/noah-isme/campushub-api/pkg/errors"
	"github.com/noah-isme/campushub-api/pkg/response"
)

type plannerService interface {
	Progress(ctx context.Context, session *models.Session, intakeCourseID string) (*dto.CourseProgressResponse, bool, error)
	Timeline(ctx context.Context, session *models.Session, intakeCourseID string) (*dto.TimelineResponse, error)
	Derive(ctx context.Context, req dto.DeriveDatesRequest) (*dto.DeriveDatesResponse, error)
}

// PlannerHandler exposes course progress, timeline and form date endpoints.
type PlannerHandler struct {
	service plannerService
}

// NewPlannerHandler constructs a planner handler.
func NewPlannerHandler(svc plannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// Progress godoc
// @Summary Course progress
// @Description Share of the course's nominal duration covered by its semesters
// @Tags Planner
// @Produce json
// @Param id path string true "Intake course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /intake-courses/{id}/progress [get]
func (h *PlannerHandler) Progress(c *gin.Context) {
	progress, cacheHit, err := h.service.Progress(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil, map[string]interface{}{"cache_hit": cacheHit})
}

// Timeline godoc
// @Summary Semester timeline
// @Description Semesters ordered by start date with their original positions
// @Tags Planner
// @Produce json
// @Param id path string true "Intake course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /intake-courses/{id}/timeline [get]
func (h *PlannerHandler) Timeline(c *gin.Context) {
	timeline, err := h.service.Timeline(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, timeline, nil)
}

// Derive godoc
// @Summary Derive semester form dates
// @Description Computes the end date from a duration, or the durations from an end date
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.DeriveDatesRequest true "Form values"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /planner/derive [post]
func (h *PlannerHandler) Derive(c *gin.Context) {
	var req dto.DeriveDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Derive(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
