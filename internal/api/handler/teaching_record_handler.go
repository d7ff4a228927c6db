package handler

import (
	"github.com/gin-gonic/gin"

	"teaching-hours/backend/internal/dto"
	"teaching-hours/backend/internal/service"
	"teaching-hours/backend/pkg/response"
)

// TeachingRecordHandler weekly period entries. Ownership is enforced in the service.
type TeachingRecordHandler struct {
	recordSvc service.TeachingRecordService
}

// NewTeachingRecordHandler creates a TeachingRecordHandler
func NewTeachingRecordHandler(recordSvc service.TeachingRecordService) *TeachingRecordHandler {
	return &TeachingRecordHandler{recordSvc: recordSvc}
}

// ListRecords
// GET /api/v1/teaching-records
func (h *TeachingRecordHandler) ListRecords(c *gin.Context) {
	var req dto.TeachingRecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	records, total, err := h.recordSvc.List(c.Request.Context(), &req, caller)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, records, total, req.GetPage(), req.GetPageSize())
}

// GetRecord
// GET /api/v1/teaching-records/:id
func (h *TeachingRecordHandler) GetRecord(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	record, err := h.recordSvc.GetByID(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, record)
}

// CreateRecord
// POST /api/v1/teaching-records
func (h *TeachingRecordHandler) CreateRecord(c *gin.Context) {
	var req dto.CreateTeachingRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	record, err := h.recordSvc.Create(c.Request.Context(), &req, caller)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, record)
}

// BatchCreateRecords the rows of one entry form, reported per row
// POST /api/v1/teaching-records/batch
func (h *TeachingRecordHandler) BatchCreateRecords(c *gin.Context) {
	var req dto.BatchCreateTeachingRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.recordSvc.BatchCreate(c.Request.Context(), &req, caller)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateRecord
// PUT /api/v1/teaching-records/:id
func (h *TeachingRecordHandler) UpdateRecord(c *gin.Context) {
	var req dto.UpdateTeachingRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	record, err := h.recordSvc.Update(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, record)
}

// DeleteRecord
// DELETE /api/v1/teaching-records/:id
func (h *TeachingRecordHandler) DeleteRecord(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.recordSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}
