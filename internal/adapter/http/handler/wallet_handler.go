package handler

import (
	"waxipay/internal/adapter/http/dto"
	"waxipay/internal/adapter/http/middleware"
	"waxipay/internal/core/ports"
	"waxipay/pkg/apperror"
	"waxipay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet queries.
type WalletHandler struct {
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{reportingSvc: reportingSvc}
}

// GetWallet handles GET /api/v1/wallet.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	wallet, err := h.reportingSvc.GetWallet(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletResponse{
		ID:       wallet.ID.String(),
		Balance:  wallet.Balance,
		Currency: wallet.Currency,
		IsActive: wallet.IsActive,
	})
}
