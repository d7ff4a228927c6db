package handler

import (
	"github.com/gin-gonic/gin"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/service"
	"teaching-hours/backend/pkg/response"
)

// ClassHandler classes of a school year
type ClassHandler struct {
	classSvc service.ClassService
	years    service.SchoolYearService
}

// NewClassHandler creates a ClassHandler
func NewClassHandler(classSvc service.ClassService, years service.SchoolYearService) *ClassHandler {
	return &ClassHandler{classSvc: classSvc, years: years}
}

// ListClasses
// GET /api/v1/classes
func (h *ClassHandler) ListClasses(c *gin.Context) {
	var req dto.ClassListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	yearID, ok := resolveYear(c, h.years, req.SchoolYearID)
	if !ok {
		return
	}

	classes, err := h.classSvc.List(c.Request.Context(), yearID, req.Grade)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": classes})
}

// GetClass
// GET /api/v1/classes/:id
func (h *ClassHandler) GetClass(c *gin.Context) {
	class, err := h.classSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, class)
}

// CreateClass
// POST /api/v1/classes
func (h *ClassHandler) CreateClass(c *gin.Context) {
	var req dto.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	yearID, ok := resolveYear(c, h.years, req.SchoolYearID)
	if !ok {
		return
	}

	class, err := h.classSvc.Create(c.Request.Context(), yearID, &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, class)
}

// UpdateClass
// PUT /api/v1/classes/:id
func (h *ClassHandler) UpdateClass(c *gin.Context) {
	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	class, err := h.classSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, class)
}

// DeleteClass
// DELETE /api/v1/classes/:id
func (h *ClassHandler) DeleteClass(c *gin.Context) {
	if err := h.classSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}
