package server

import (
	"net/http"
	"strings"

	billingdomain "github.com/gestorhq/gestor/internal/billing/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createBillingRequest struct {
	ClientID           string `json:"client_id"`
	Description        string `json:"description"`
	Amount             string `json:"amount"`
	DueDay             int    `json:"due_day"`
	Installments       int    `json:"installments"`
	CurrentInstallment int    `json:"current_installment"`
	PaymentMethod      string `json:"payment_method"`
}

func (s *Server) CreateBilling(c *gin.Context) {
	var req createBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "invalid amount"))
		return
	}

	resp, err := s.billingSvc.Create(c.Request.Context(), billingdomain.CreateBillingRequest{
		ClientID:           strings.TrimSpace(req.ClientID),
		Description:        strings.TrimSpace(req.Description),
		Amount:             amount,
		DueDay:             req.DueDay,
		Installments:       req.Installments,
		CurrentInstallment: req.CurrentInstallment,
		PaymentMethod:      strings.TrimSpace(req.PaymentMethod),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBillings(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.List(c.Request.Context(), billingdomain.ListBillingRequest{
		Status: strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateBillingStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateBillingStatus(c *gin.Context) {
	var req updateBillingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	status := billingdomain.BillingStatus(strings.TrimSpace(req.Status))
	if err := s.billingSvc.UpdateStatus(c.Request.Context(), id, status); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"id": id, "status": status}})
}
