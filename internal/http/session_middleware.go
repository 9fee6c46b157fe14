package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"profile-auth/internal/domain"
	"profile-auth/internal/service"
)

const (
	authProfileKey = "auth_profile"
	authClaimsKey  = "auth_claims"
)

type sessionResolver interface {
	ResolveSession(ctx context.Context, token string) (domain.Profile, service.Claims, error)
}

// SessionAuthMiddleware exige un bearer token de sesion valido y guarda perfil y claims en el contexto.
func SessionAuthMiddleware(logger *zap.Logger, sessions sessionResolver) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if sessions == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, standardResponse{Message: "Authentication is not configured."})
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, standardResponse{Message: "Unauthorized."})
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		profile, claims, err := sessions.ResolveSession(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrSessionInvalid) {
				logger.Error("resolve session failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, standardResponse{Message: "There was a problem validating your session."})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, standardResponse{Message: "Unauthorized."})
			return
		}

		c.Set(authProfileKey, profile)
		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthProfile obtiene el perfil autenticado desde el contexto.
func GetAuthProfile(c *gin.Context) (domain.Profile, bool) {
	val, ok := c.Get(authProfileKey)
	if !ok {
		return domain.Profile{}, false
	}
	profile, ok := val.(domain.Profile)
	return profile, ok
}

// GetAuthClaims obtiene las claims de la sesion desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
