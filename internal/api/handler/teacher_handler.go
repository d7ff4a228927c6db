package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/service"
	"teaching-hours/backend/pkg/response"
)

const maxRosterBytes = 5 << 20

// TeacherHandler teacher profiles
type TeacherHandler struct {
	teacherSvc service.TeacherService
	years      service.SchoolYearService
}

// NewTeacherHandler creates a TeacherHandler
func NewTeacherHandler(teacherSvc service.TeacherService, years service.SchoolYearService) *TeacherHandler {
	return &TeacherHandler{teacherSvc: teacherSvc, years: years}
}

// ListTeachers
// GET /api/v1/teachers
func (h *TeacherHandler) ListTeachers(c *gin.Context) {
	var req dto.TeacherListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	yearID, ok := resolveYear(c, h.years, req.SchoolYearID)
	if !ok {
		return
	}

	teachers, total, err := h.teacherSvc.List(c.Request.Context(), yearID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, teachers, total, req.GetPage(), req.GetPageSize())
}

// GetTeacher
// GET /api/v1/teachers/:id
func (h *TeacherHandler) GetTeacher(c *gin.Context) {
	teacher, err := h.teacherSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, teacher)
}

// CreateTeacher
// POST /api/v1/teachers
func (h *TeacherHandler) CreateTeacher(c *gin.Context) {
	var req dto.CreateTeacherRequest
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

	teacher, err := h.teacherSvc.Create(c.Request.Context(), yearID, &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, teacher)
}

// UpdateTeacher
// PUT /api/v1/teachers/:id
func (h *TeacherHandler) UpdateTeacher(c *gin.Context) {
	var req dto.UpdateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	teacher, err := h.teacherSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, teacher)
}

// DeleteTeacher
// DELETE /api/v1/teachers/:id
func (h *TeacherHandler) DeleteTeacher(c *gin.Context) {
	if err := h.teacherSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportTeachers roster upload (.xlsx, first row is the header)
// POST /api/v1/teachers/import
func (h *TeacherHandler) ImportTeachers(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, codeBadRequest, "vui lòng tải lên tệp Excel")
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
		response.BadRequest(c, codeBadRequest, "chỉ hỗ trợ tệp .xlsx")
		return
	}
	if fileHeader.Size > maxRosterBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, codeBadRequest, "tệp vượt quá 5MB")
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

	rows, err := h.teacherSvc.ParseImportFile(file)
	if err != nil {
		handleError(c, err)
		return
	}

	result, err := h.teacherSvc.ImportTeachers(c.Request.Context(), yearID, rows, callerID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}
