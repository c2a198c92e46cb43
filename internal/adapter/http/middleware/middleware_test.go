package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ghostpass/config"
	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"
	"ghostpass/internal/core/ports/mocks"
	"ghostpass/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// --- JWTAuth ---

func TestJWTAuth_MissingHeader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := gin.New()
	router.GET("/test", JWTAuth(mocks.NewMockTokenService(ctrl), zerolog.Nop()), okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("garbage").Return(nil, apperror.ErrInvalidToken())

	router := gin.New()
	router.GET("/test", JWTAuth(tokenSvc, zerolog.Nop()), okHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_SetsClaims(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountID := uuid.New()
	venueID := uuid.New()
	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate("good-token").Return(&ports.TokenClaims{
		AccountID: accountID,
		Role:      domain.RoleVenue,
		VenueID:   &venueID,
	}, nil)

	router := gin.New()
	router.GET("/test", JWTAuth(tokenSvc, zerolog.Nop()), func(c *gin.Context) {
		gotAccount, _ := c.Get(CtxAccountID)
		gotVenue, _ := c.Get(CtxVenueID)
		assert.Equal(t, accountID, gotAccount)
		assert.Equal(t, venueID, gotVenue)
		okHandler(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- RequireRole ---

func TestRequireRole_Allowed(t *testing.T) {
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		c.Set(CtxRole, domain.RoleAdmin)
	}, RequireRole(domain.RoleAdmin), okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		c.Set(CtxRole, domain.RoleVendor)
	}, RequireRole(domain.RoleAdmin, domain.RoleVenue), okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_NoClaims(t *testing.T) {
	router := gin.New()
	router.GET("/test", RequireRole(domain.RoleAdmin), okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- GatewayAuth ---

func gatewayRouter(cfg config.GatewayConfig) *gin.Engine {
	router := gin.New()
	router.POST("/scan", GatewayAuth(cfg, zerolog.Nop()), func(c *gin.Context) {
		venueID, _ := c.Get(CtxVenueID)
		gatewayID, _ := c.Get(CtxGatewayID)
		c.JSON(http.StatusOK, gin.H{
			"venue_id":   venueID.(uuid.UUID).String(),
			"gateway_id": gatewayID,
		})
	})
	return router
}

func TestGatewayAuth_ValidKey(t *testing.T) {
	venueID := uuid.New()
	router := gatewayRouter(config.GatewayConfig{
		Keys: map[string]string{venueID.String(): "gate-secret-1"},
	})

	req := httptest.NewRequest(http.MethodPost, "/scan", nil)
	req.Header.Set(HeaderVenueID, venueID.String())
	req.Header.Set(HeaderGatewayKey, "gate-secret-1")
	req.Header.Set(HeaderGatewayID, "gate-north")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), venueID.String())
	assert.Contains(t, w.Body.String(), "gate-north")
}

func TestGatewayAuth_WrongKey(t *testing.T) {
	venueID := uuid.New()
	router := gatewayRouter(config.GatewayConfig{
		Keys: map[string]string{venueID.String(): "gate-secret-1"},
	})

	req := httptest.NewRequest(http.MethodPost, "/scan", nil)
	req.Header.Set(HeaderVenueID, venueID.String())
	req.Header.Set(HeaderGatewayKey, "wrong")
	req.Header.Set(HeaderGatewayID, "gate-north")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGatewayAuth_UnknownVenue(t *testing.T) {
	router := gatewayRouter(config.GatewayConfig{Keys: map[string]string{}})

	req := httptest.NewRequest(http.MethodPost, "/scan", nil)
	req.Header.Set(HeaderVenueID, uuid.NewString())
	req.Header.Set(HeaderGatewayKey, "anything")
	req.Header.Set(HeaderGatewayID, "gate-north")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGatewayAuth_MissingHeaders(t *testing.T) {
	router := gatewayRouter(config.GatewayConfig{Keys: map[string]string{}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/scan", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Recovery ---

func TestRecovery_PanicReturns500(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(zerolog.Nop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}

// --- MaxBodySize ---

func TestMaxBodySize_RejectsOversized(t *testing.T) {
	router := gin.New()
	router.Use(MaxBodySize(16))
	router.POST("/test", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		okHandler(c)
	})

	big := strings.NewReader(`{"padding":"` + strings.Repeat("x", 64) + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/test", big)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestMaxBodySize_AllowsSmall(t *testing.T) {
	router := gin.New()
	router.Use(MaxBodySize(1 << 10))
	router.POST("/test", func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		okHandler(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"a":1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
