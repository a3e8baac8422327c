package server

import (
	"net/http"
	"strings"
	"time"

	cashflowdomain "github.com/gestorhq/gestor/internal/cashflow/domain"
	"github.com/gin-gonic/gin"
)

type createCashflowEntryRequest struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	EntryDate   string `json:"entry_date"`
}

func (s *Server) CreateCashflowEntry(c *gin.Context) {
	var req createCashflowEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.cashflowSvc.CreateEntry(c.Request.Context(), cashflowdomain.CreateEntryRequest{
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Category:    req.Category,
		EntryDate:   req.EntryDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CashflowSummary(c *gin.Context) {
	var query struct {
		Period string `form:"period"`
		Start  string `form:"start"`
		End    string `form:"end"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var resp cashflowdomain.Summary
	var err error
	switch {
	case query.Start != "" || query.End != "":
		// Explicit bounds take precedence over a period token; both
		// must be present and well formed.
		var start, end time.Time
		start, err = time.ParseInLocation("2006-01-02", strings.TrimSpace(query.Start), time.UTC)
		if err != nil {
			AbortWithError(c, cashflowdomain.ErrInvalidDateRange)
			return
		}
		end, err = time.ParseInLocation("2006-01-02", strings.TrimSpace(query.End), time.UTC)
		if err != nil {
			AbortWithError(c, cashflowdomain.ErrInvalidDateRange)
			return
		}
		resp, err = s.cashflowSvc.SummarizeRange(c.Request.Context(), start, end)
	default:
		resp, err = s.cashflowSvc.Summarize(c.Request.Context(), strings.TrimSpace(query.Period))
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
