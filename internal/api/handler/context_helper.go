package handler

import (
	"github.com/gin-gonic/gin"

	"teaching-hours/backend/internal/service"
	"teaching-hours/backend/pkg/jwt"
	"teaching-hours/backend/pkg/response"
)

const msgUnauthenticated = "chưa xác thực"

// MustGetUserID extracts user_id set by the JWT middleware.
// On failure it writes a 401 and returns false; callers return immediately.
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString("user_id")
	if s == "" {
		response.Unauthorized(c, codeUnauthorized, msgUnauthenticated)
		return "", false
	}
	return s, true
}

// MustGetCaller user, role and linked teacher of the request
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Caller{}, false
	}
	role := c.GetString("role")
	if role == "" {
		response.Unauthorized(c, codeUnauthorized, msgUnauthenticated)
		return service.Caller{}, false
	}
	return service.Caller{UserID: userID, Role: role, TeacherID: c.GetString("teacher_id")}, true
}

// MustGetClaims the parsed access token
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	claims, ok := v.(*jwt.Claims)
	if !exists || !ok || claims == nil {
		response.Unauthorized(c, codeUnauthorized, msgUnauthenticated)
		return nil, false
	}
	return claims, true
}
