package middlewares

import (
	"net/http"
	"strings"

	"aneka-keramik/internal/apis/dtos"
	"aneka-keramik/internal/repositories"
	"aneka-keramik/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Keys set on the gin context for authenticated requests
const (
	ContextUserID      = "userID"
	ContextUsername    = "username"
	ContextRole        = "role"
	ContextAccessToken = "accessToken"
)

func abortWith(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, dtos.Response{
		Success: false,
		Error:   &dtos.ErrorBody{Message: message},
	})
}

// AuthMiddleware accepts "Bearer <token>" headers whose token is valid and not revoked.
func AuthMiddleware(jwtService utils.JWTService, tokenRepo repositories.TokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			abortWith(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		token := parts[1]

		if tokenRepo.IsTokenBlacklisted(c.Request.Context(), token) {
			abortWith(c, http.StatusForbidden, "Token has been revoked")
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			logrus.WithError(err).Debug("Rejected access token")
			abortWith(c, http.StatusForbidden, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextAccessToken, token)
		c.Next()
	}
}
