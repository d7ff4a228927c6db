package handler

import (
	"github.com/gin-gonic/gin"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/service"
	"teaching-hours/backend/pkg/response"
)

// SubjectHandler subjects of a school year
type SubjectHandler struct {
	subjectSvc service.SubjectService
	years      service.SchoolYearService
}

// NewSubjectHandler creates a SubjectHandler
func NewSubjectHandler(subjectSvc service.SubjectService, years service.SchoolYearService) *SubjectHandler {
	return &SubjectHandler{subjectSvc: subjectSvc, years: years}
}

// ListSubjects
// GET /api/v1/subjects
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	var q dto.SchoolYearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	yearID, ok := resolveYear(c, h.years, q.SchoolYearID)
	if !ok {
		return
	}

	subjects, err := h.subjectSvc.List(c.Request.Context(), yearID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": subjects})
}

// GetSubject
// GET /api/v1/subjects/:id
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	subject, err := h.subjectSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, subject)
}

// CreateSubject
// POST /api/v1/subjects
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
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

	subject, err := h.subjectSvc.Create(c.Request.Context(), yearID, &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, subject)
}

// UpdateSubject
// PUT /api/v1/subjects/:id
func (h *SubjectHandler) UpdateSubject(c *gin.Context) {
	var req dto.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	subject, err := h.subjectSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, subject)
}

// DeleteSubject
// DELETE /api/v1/subjects/:id
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	if err := h.subjectSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}
