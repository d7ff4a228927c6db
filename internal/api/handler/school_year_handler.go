package handler

import (
	"github.com/gin-gonic/gin"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/service"
	"teaching-hours/backend/pkg/response"
)

// SchoolYearHandler school year lifecycle
type SchoolYearHandler struct {
	yearSvc service.SchoolYearService
}

// NewSchoolYearHandler creates a SchoolYearHandler
func NewSchoolYearHandler(yearSvc service.SchoolYearService) *SchoolYearHandler {
	return &SchoolYearHandler{yearSvc: yearSvc}
}

// ListSchoolYears
// GET /api/v1/school-years
func (h *SchoolYearHandler) ListSchoolYears(c *gin.Context) {
	years, err := h.yearSvc.List(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": years})
}

// GetActiveSchoolYear
// GET /api/v1/school-years/active
func (h *SchoolYearHandler) GetActiveSchoolYear(c *gin.Context) {
	year, err := h.yearSvc.GetActive(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, year)
}

// GetSchoolYear
// GET /api/v1/school-years/:id
func (h *SchoolYearHandler) GetSchoolYear(c *gin.Context) {
	year, err := h.yearSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, year)
}

// CreateSchoolYear
// POST /api/v1/school-years
func (h *SchoolYearHandler) CreateSchoolYear(c *gin.Context) {
	var req dto.CreateSchoolYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	year, err := h.yearSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, year)
}

// ArchiveSchoolYear
// PUT /api/v1/school-years/:id/archive
func (h *SchoolYearHandler) ArchiveSchoolYear(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.yearSvc.Archive(c.Request.Context(), c.Param("id"), callerID); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// Rollover archives the active year and opens the next one
// POST /api/v1/school-years/rollover
func (h *SchoolYearHandler) Rollover(c *gin.Context) {
	var req dto.RolloverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.yearSvc.Rollover(c.Request.Context(), &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, result)
}

// DeleteSchoolYear removes the year and everything recorded in it
// DELETE /api/v1/school-years/:id
func (h *SchoolYearHandler) DeleteSchoolYear(c *gin.Context) {
	if err := h.yearSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}
