package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RunNotifications triggers one reminder pass immediately, bypassing
// the scheduler's send-time window. Meant for operators and smoke
// tests, hence the /internal prefix.
func (s *Server) RunNotifications(c *gin.Context) {
	stats, err := s.notificationSvc.Process(c.Request.Context())
	if err != nil {
		s.log.Error("manual notification run failed", zap.Error(err))
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// RunCashflowSync triggers the payment-to-ledger sync. Guard errors
// map to 429 so callers can tell "already handled" from a failure.
func (s *Server) RunCashflowSync(c *gin.Context) {
	result, err := s.cashflowSvc.SyncPaid(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}
