package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teaching-hours/backend/internal/service"
	apperrors "teaching-hours/backend/pkg/errors"
	"teaching-hours/backend/pkg/response"
)

// business codes carried in the response envelope
const (
	codeBadRequest   = 10001
	codeUnauthorized = 10002
	codeForbidden    = 10003
	codeNotFound     = 10006
	codeConflict     = 10007
	codeLoginFailed  = 11001
)

const msgBadParams = "tham số không hợp lệ"

// handleError maps a service error to the response envelope. Untagged errors become 500
// and are attached to the context for the request logger.
func handleError(c *gin.Context, err error) {
	msg, tagged := apperrors.MessageOf(err)
	status := apperrors.HTTPStatus(err)
	if !tagged || status == http.StatusInternalServerError {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	switch status {
	case http.StatusNotFound:
		response.NotFound(c, codeNotFound, msg)
	case http.StatusConflict:
		response.Conflict(c, codeConflict, msg)
	case http.StatusForbidden:
		response.Forbidden(c, codeForbidden, msg)
	default:
		response.BadRequest(c, codeBadRequest, msg)
	}
}

// bindError answers a failed ShouldBind with the validation message
func bindError(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, codeBadRequest, msgBadParams, err.Error())
}

// resolveYear the explicit school year or the active one. Writes the error response on failure.
func resolveYear(c *gin.Context, years service.SchoolYearService, id string) (string, bool) {
	year, err := years.Resolve(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return "", false
	}
	return year.SchoolYearID, true
}
