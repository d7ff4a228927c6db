package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/service"
	"teaching-hours/backend/pkg/response"
)

const (
	icsContentType = "text/calendar; charset=utf-8"
	maxICSBytes    = 2 << 20
)

// WeekHandler teaching weeks
type WeekHandler struct {
	weekSvc service.WeekService
	years   service.SchoolYearService
}

// NewWeekHandler creates a WeekHandler
func NewWeekHandler(weekSvc service.WeekService, years service.SchoolYearService) *WeekHandler {
	return &WeekHandler{weekSvc: weekSvc, years: years}
}

// ListWeeks weeks of a school year, ordered by number
// GET /api/v1/weeks
func (h *WeekHandler) ListWeeks(c *gin.Context) {
	var req dto.WeekListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	yearID, ok := resolveYear(c, h.years, req.SchoolYearID)
	if !ok {
		return
	}

	weeks, err := h.weekSvc.List(c.Request.Context(), yearID, req.Status)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": weeks})
}

// GetWeek
// GET /api/v1/weeks/:id
func (h *WeekHandler) GetWeek(c *gin.Context) {
	week, err := h.weekSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, week)
}

// CreateWeek
// POST /api/v1/weeks
func (h *WeekHandler) CreateWeek(c *gin.Context) {
	var req dto.CreateWeekRequest
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

	week, err := h.weekSvc.Create(c.Request.Context(), yearID, &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, week)
}

// GenerateWeeks consecutive 7-day weeks
// POST /api/v1/weeks/generate
func (h *WeekHandler) GenerateWeeks(c *gin.Context) {
	var req dto.GenerateWeeksRequest
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

	weeks, err := h.weekSvc.Generate(c.Request.Context(), yearID, &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, gin.H{"list": weeks})
}

// UpdateWeek
// PUT /api/v1/weeks/:id
func (h *WeekHandler) UpdateWeek(c *gin.Context) {
	var req dto.UpdateWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	week, err := h.weekSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, week)
}

// DeleteWeek
// DELETE /api/v1/weeks/:id
func (h *WeekHandler) DeleteWeek(c *gin.Context) {
	if err := h.weekSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportICS creates weeks from the events of an uploaded .ics file
// POST /api/v1/weeks/import
func (h *WeekHandler) ImportICS(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, codeBadRequest, "vui lòng tải lên tệp .ics")
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".ics") {
		response.BadRequest(c, codeBadRequest, "chỉ hỗ trợ tệp .ics")
		return
	}
	if fileHeader.Size > maxICSBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, codeBadRequest, "tệp quá lớn")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	yearID, ok := resolveYear(c, h.years, c.PostForm("school_year_id"))
	if !ok {
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		handleError(c, err)
		return
	}
	defer file.Close()

	result, err := h.weekSvc.ImportICS(c.Request.Context(), yearID, file, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}

// ExportICS the year's weeks as an iCalendar download
// GET /api/v1/weeks/export
func (h *WeekHandler) ExportICS(c *gin.Context) {
	var q dto.SchoolYearQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	yearID, ok := resolveYear(c, h.years, q.SchoolYearID)
	if !ok {
		return
	}

	body, filename, err := h.weekSvc.ExportICS(c.Request.Context(), yearID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Attachment(c, icsContentType, filename, body)
}
