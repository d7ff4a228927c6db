package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/service"
	"teaching-hours/backend/pkg/response"
)

// ExportHandler report downloads
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportReport builds the hours workbook. Accepts query parameters (GET) or a JSON body (POST).
// Teachers may only export their own report.
// GET|POST /api/v1/export/report
func (h *ExportHandler) ExportReport(c *gin.Context) {
	var req dto.ExportRequest
	var err error
	if c.Request.Method == "GET" {
		err = c.ShouldBindQuery(&req)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		bindError(c, err)
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	if !caller.IsAdmin() {
		if caller.TeacherID == "" {
			response.Forbidden(c, codeForbidden, "tài khoản chưa liên kết với giáo viên")
			return
		}
		req.TeacherID = caller.TeacherID
		req.TeacherIDs = nil
	}

	result, err := h.exportSvc.ExportReport(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("X-Sheet-Count", strconv.Itoa(result.SheetCount))
	response.Attachment(c, response.XLSXContentType, result.Filename, result.Workbook.Bytes())
}
