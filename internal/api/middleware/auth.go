package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"teaching-hours/backend/pkg/jwt"
	"teaching-hours/backend/pkg/response"
)

// Blacklist answers whether a token id was revoked
type Blacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth validates the access token in "Authorization: Bearer <token>".
// blacklist may be nil, revoked tokens are then accepted until they expire.
func JWTAuth(jwtMgr *jwt.Manager, blacklist Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "thiếu thông tin xác thực")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "định dạng xác thực không hợp lệ")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "token không hợp lệ hoặc đã hết hạn")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TokenAccess {
			response.Unauthorized(c, 10002, "loại token không hợp lệ")
			c.Abort()
			return
		}

		if blacklist != nil && claims.ID != "" {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			// Redis errors degrade to accepting the token
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "token đã bị thu hồi")
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("teacher_id", claims.TeacherID)
		c.Set("claims", claims)

		c.Next()
	}
}

// RoleAuth lets through callers holding one of the roles
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("role")
		if userRole == "" {
			response.Unauthorized(c, 10002, "chưa xác thực")
			c.Abort()
			return
		}

		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "không có quyền truy cập")
		c.Abort()
	}
}
