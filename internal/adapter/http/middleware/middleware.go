package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"ghostpass/config"
	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/pkg/apperror"
	"ghostpass/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Header names for gateway authentication
	HeaderGatewayKey = "X-Gateway-Key"
	HeaderGatewayID  = "X-Gateway-ID"
	HeaderVenueID    = "X-Venue-ID"

	// Context keys
	CtxAccountID = "account_id"
	CtxRole      = "role"
	CtxVenueID   = "venue_id"
	CtxGatewayID = "gateway_id"
)

// JWTAuth creates a middleware that validates staff tokens for dashboard
// routes and stores the claims on the context.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		claims, err := tokenSvc.Validate(authHeader[7:])
		if err != nil {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxAccountID, claims.AccountID)
		c.Set(CtxRole, claims.Role)
		if claims.VenueID != nil {
			c.Set(CtxVenueID, *claims.VenueID)
		}
		c.Next()
	}
}

// RequireRole rejects authenticated requests whose role is not in the
// allowed set. Must run after JWTAuth.
func RequireRole(roles ...domain.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, ok := c.Get(CtxRole)
		if !ok {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}
		role, _ := val.(domain.StaffRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		response.Error(c, apperror.ErrForbiddenRole())
		c.Abort()
	}
}

// GatewayAuth authenticates physical scan points with a static per-venue
// shared key. The gateway sends its venue id and key on every scan.
func GatewayAuth(cfg config.GatewayConfig, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		venueIDStr := c.GetHeader(HeaderVenueID)
		key := c.GetHeader(HeaderGatewayKey)
		gatewayID := c.GetHeader(HeaderGatewayID)

		if venueIDStr == "" || key == "" || gatewayID == "" {
			response.Error(c, apperror.ErrInvalidGatewayKey())
			c.Abort()
			return
		}

		venueID, err := uuid.Parse(venueIDStr)
		if err != nil {
			response.Error(c, apperror.ErrInvalidGatewayKey())
			c.Abort()
			return
		}

		expected, ok := cfg.Keys[venueID.String()]
		if !ok || subtle.ConstantTimeCompare([]byte(expected), []byte(key)) != 1 {
			log.Warn().
				Str("venue_id", venueID.String()).
				Str("gateway_id", gatewayID).
				Msg("gateway key rejected")
			response.Error(c, apperror.ErrInvalidGatewayKey())
			c.Abort()
			return
		}

		c.Set(CtxVenueID, venueID)
		c.Set(CtxGatewayID, gatewayID)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size.
// Once the limit is exceeded the reader returns an error and the
// request is rejected with 413 Payload Too Large.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
