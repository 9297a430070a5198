package handler

import (
	"strconv"
	"time"

	"waxipay/internal/adapter/http/dto"
	"waxipay/internal/adapter/http/middleware"
	"waxipay/internal/core/domain"
	"waxipay/internal/core/ports"
	"waxipay/pkg/apperror"
	"waxipay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler serves transaction history and dashboard statistics.
type TransactionHandler struct {
	reportingSvc ports.ReportingService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(reportingSvc ports.ReportingService) *TransactionHandler {
	return &TransactionHandler{reportingSvc: reportingSvc}
}

// List handles GET /api/v1/transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	params := ports.TransactionListParams{
		UserID:   userID.(uuid.UUID),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}

	if v := c.Query("type"); v != "" {
		t := domain.TransactionType(v)
		params.Type = &t
	}
	if v := c.Query("payment_method"); v != "" {
		m := domain.PaymentMethod(v)
		params.PaymentMethod = &m
	}
	if v := c.Query("status"); v != "" {
		s := domain.TransactionStatus(v)
		params.Status = &s
	}
	if v := c.Query("from"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			params.From = &ts
		}
	}
	if v := c.Query("to"); v != "" {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			params.To = &ts
		}
	}

	txns, total, err := h.reportingSvc.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, toTransactionResponse(&txns[i]))
	}

	totalPages := int(total) / params.PageSize
	if int(total)%params.PageSize > 0 {
		totalPages++
	}

	response.OK(c, dto.TransactionListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	})
}

// Get handles GET /api/v1/transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrTransactionNotFound())
		return
	}

	txn, err := h.reportingSvc.GetTransaction(c.Request.Context(), userID.(uuid.UUID), txID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toTransactionResponse(txn))
}

// Stats handles GET /api/v1/dashboard/stats.
func (h *TransactionHandler) Stats(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	stats, err := h.reportingSvc.GetStats(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.StatsResponse{
		TotalReceived:     stats.TotalReceived,
		TotalSent:         stats.TotalSent,
		MonthTransactions: stats.MonthTransactions,
		WalletBalance:     stats.WalletBalance,
	})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

// toTransactionResponse converts a domain.Transaction to its DTO.
func toTransactionResponse(t *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:                t.ID.String(),
		Type:              string(t.Type),
		PaymentMethod:     string(t.PaymentMethod),
		Amount:            t.Amount,
		Currency:          t.Currency,
		Fees:              t.Fees,
		Status:            string(t.Status),
		Reference:         t.Reference,
		ExternalReference: t.ExternalReference,
		Description:       t.Description,
		CreatedAt:         t.CreatedAt.Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		s := t.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}
