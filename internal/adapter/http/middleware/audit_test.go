package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func auditRouter(auditSvc *mocks.MockAuditService) *gin.Engine {
	router := gin.New()
	router.Use(AuditLog(auditSvc))
	return router
}

func TestAuditLog_TicketPurchase(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auditSvc := mocks.NewMockAuditService(ctrl)
	router := auditRouter(auditSvc)
	router.POST("/api/v1/purchases/ticket", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	auditSvc.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ interface{}, entry *domain.AuditLog) {
		assert.Equal(t, domain.AuditActionTicketPurchase, entry.Action)
		assert.Equal(t, "ledger_entry", entry.ResourceType)
		assert.Nil(t, entry.ActorID)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/purchases/ticket", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAuditLog_CarriesActor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	adminID := uuid.New()
	auditSvc := mocks.NewMockAuditService(ctrl)

	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(CtxAccountID, adminID) })
	router.Use(AuditLog(auditSvc))
	router.POST("/api/v1/payouts/:id/decide", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	auditSvc.EXPECT().Log(gomock.Any(), gomock.Any()).Do(func(_ interface{}, entry *domain.AuditLog) {
		require.NotNil(t, entry.ActorID)
		assert.Equal(t, adminID, *entry.ActorID)
		assert.Equal(t, domain.AuditActionPayoutDecision, entry.Action)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/payouts/"+uuid.NewString()+"/decide", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditLog_SkipsReads(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auditSvc := mocks.NewMockAuditService(ctrl)
	// No Log expectation: GETs are never audited.
	router := auditRouter(auditSvc)
	router.GET("/api/v1/payouts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payouts", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuditLog_SkipsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auditSvc := mocks.NewMockAuditService(ctrl)
	// No Log expectation: only 2xx responses are audited.
	router := auditRouter(auditSvc)
	router.POST("/api/v1/purchases/ticket", func(c *gin.Context) {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "insufficient"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/purchases/ticket", nil))

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestAuditLog_SkipsUnmappedPaths(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	auditSvc := mocks.NewMockAuditService(ctrl)
	router := auditRouter(auditSvc)
	router.POST("/api/v1/wallets/bind", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/wallets/bind", nil))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestMapPathToAction(t *testing.T) {
	tests := []struct {
		path   string
		method string
		action domain.AuditAction
	}{
		{"/api/v1/auth/register", "POST", domain.AuditActionRegister},
		{"/api/v1/auth/login", "POST", domain.AuditActionLogin},
		{"/api/v1/purchases/spend", "POST", domain.AuditActionVendorSpend},
		{"/api/v1/webhooks/payment", "POST", domain.AuditActionTopupCredit},
		{"/api/v1/payouts", "POST", domain.AuditActionPayoutRequest},
		{"/api/v1/events", "POST", domain.AuditActionEventEdit},
		{"/api/v1/events/abc/status", "PATCH", domain.AuditActionEventEdit},
		{"/api/v1/profiles", "POST", domain.AuditActionProfileEdit},
		{"/api/v1/wallets/bind", "POST", ""},
		{"/api/v1/events", "DELETE", ""},
	}

	for _, tt := range tests {
		action, _ := mapPathToAction(tt.path, tt.method)
		assert.Equal(t, tt.action, action, "%s %s", tt.method, tt.path)
	}
}
