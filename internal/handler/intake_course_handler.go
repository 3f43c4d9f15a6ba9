package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campushub-api/internal/dto"
	"github.com/noah-isme/campushub-api/internal/models"
	"github.com/noah-isme/campushub-api/internal/service"
	"github.com/noah-isme/campushub-api/pkg/export"
	"github.com/noah-isme/campushub-api/pkg/response"
)

type intakeCourseService interface {
	Capacity(ctx context.Context, session *models.Session, id string) (*models.Capacity, error)
	ListByIntake(ctx context.Context, session *models.Session, intakeID string) ([]dto.IntakeCourseSummary, error)
}

type exportService interface {
	Timeline(ctx context.Context, session *models.Session, intakeCourseID string, format export.Format) (*service.ExportFile, error)
}

// IntakeCourseHandler exposes intake course capacity and plan exports.
type IntakeCourseHandler struct {
	service intakeCourseService
	exports exportService
}

// NewIntakeCourseHandler constructs an intake course handler.
func NewIntakeCourseHandler(svc intakeCourseService, exports exportService) *IntakeCourseHandler {
	return &IntakeCourseHandler{service: svc, exports: exports}
}

// Capacity godoc
// @Summary Intake course capacity
// @Tags IntakeCourses
// @Produce json
// @Param id path string true "Intake course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /intake-courses/{id}/capacity [get]
func (h *IntakeCourseHandler) Capacity(c *gin.Context) {
	capacity, err := h.service.Capacity(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, capacity, nil)
}

// ListByIntake godoc
// @Summary Courses of an intake
// @Tags IntakeCourses
// @Produce json
// @Param id path string true "Intake ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /intakes/{id}/courses [get]
func (h *IntakeCourseHandler) ListByIntake(c *gin.Context) {
	items, err := h.service.ListByIntake(c.Request.Context(), sessionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Export godoc
// @Summary Export semester plan
// @Tags IntakeCourses
// @Produce octet-stream
// @Param id path string true "Intake course ID"
// @Param format query string false "csv, pdf, xlsx or ics" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /intake-courses/{id}/export [get]
func (h *IntakeCourseHandler) Export(c *gin.Context) {
	format := export.Format(c.DefaultQuery("format", string(export.FormatCSV)))
	file, err := h.exports.Timeline(c.Request.Context(), sessionFromContext(c), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
