package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y las rutas /v1.
func NewRouter(
	logger *zap.Logger,
	profileH *ProfileHandler,
	sessionH *SessionHandler,
	sessions sessionResolver,
) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	requireSession := SessionAuthMiddleware(logger, sessions)
	v1 := r.Group("/v1")

	profile := v1.Group("/profile")
	profile.POST("", profileH.CreateProfile)
	profile.PATCH("", profileH.ConfirmEmail)
	profile.GET("", requireSession, profileH.GetProfile)
	profile.PUT("", requireSession, profileH.UpdateProfile)
	profile.DELETE("", requireSession, profileH.DeactivateProfile)

	session := v1.Group("/session")
	session.POST("", sessionH.LogOn)
	session.GET("", requireSession, sessionH.GetSession)
	session.DELETE("", requireSession, sessionH.LogOut)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
