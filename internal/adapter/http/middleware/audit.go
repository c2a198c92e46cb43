package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"ghostpass/internal/core/domain"
	"ghostpass/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// It maps HTTP methods and paths to audit actions.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapPathToAction(c.Request.URL.Path, c.Request.Method)
		if action == "" {
			return
		}

		var actorID *uuid.UUID
		if aid, exists := c.Get(CtxAccountID); exists {
			if id, ok := aid.(uuid.UUID); ok {
				actorID = &id
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			ActorID:      actorID,
			Action:       action,
			ResourceType: resourceType,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToAction(path, method string) (domain.AuditAction, string) {
	switch {
	case path == "/api/v1/auth/register" && method == "POST":
		return domain.AuditActionRegister, "staff_account"
	case path == "/api/v1/auth/login" && method == "POST":
		return domain.AuditActionLogin, "session"
	case path == "/api/v1/purchases/ticket" && method == "POST":
		return domain.AuditActionTicketPurchase, "ledger_entry"
	case path == "/api/v1/purchases/spend" && method == "POST":
		return domain.AuditActionVendorSpend, "ledger_entry"
	case path == "/api/v1/webhooks/payment" && method == "POST":
		return domain.AuditActionTopupCredit, "ledger_entry"
	case path == "/api/v1/payouts" && method == "POST":
		return domain.AuditActionPayoutRequest, "payout"
	case strings.HasPrefix(path, "/api/v1/payouts/") && method == "POST":
		return domain.AuditActionPayoutDecision, "payout"
	case strings.HasPrefix(path, "/api/v1/events") && (method == "POST" || method == "PATCH"):
		return domain.AuditActionEventEdit, "event"
	case strings.HasPrefix(path, "/api/v1/profiles") && (method == "POST" || method == "PUT"):
		return domain.AuditActionProfileEdit, "revenue_profile"
	}
	return "", ""
}
