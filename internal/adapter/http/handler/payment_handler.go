package handler

import (
	"errors"
	"net/http"

	"waxipay/internal/adapter/http/dto"
	"waxipay/internal/adapter/http/middleware"
	"waxipay/internal/core/domain"
	"waxipay/internal/core/ports"
	"waxipay/pkg/apperror"
	"waxipay/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment initiation and gateway callbacks.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// InitiatePayment handles POST /api/v1/payments/initiate.
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	description := req.Description
	if description == "" {
		description = "Dépôt WaxiPay"
	}

	result, err := h.paymentSvc.InitiatePayment(c.Request.Context(), ports.InitiatePaymentRequest{
		UserID:        userID.(uuid.UUID),
		Amount:        req.Amount,
		Description:   description,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.InitiatePaymentResponse{
		TransactionID:     result.TransactionID.String(),
		Reference:         result.Reference,
		PaymentURL:        result.PaymentURL,
		ExternalReference: result.ExternalReference,
	})
}

// IPN handles POST /api/v1/payments/ipn. The gateway posts form fields and
// expects a bare JSON body, not the standard response envelope.
func (h *PaymentHandler) IPN(c *gin.Context) {
	n := ports.IPNNotification{
		TypeEvent:       c.PostForm("type_event"),
		CustomField:     c.PostForm("custom_field"),
		RefCommand:      c.PostForm("ref_command"),
		APIKeySHA256:    c.PostForm("api_key_sha256"),
		APISecretSHA256: c.PostForm("api_secret_sha256"),
	}

	if err := h.paymentSvc.HandleIPN(c.Request.Context(), n); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			switch appErr.Code {
			case "SEC_001":
				c.JSON(http.StatusForbidden, gin.H{"error": "Signature invalide"})
				return
			case "PAY_002":
				c.JSON(http.StatusNotFound, gin.H{"error": "Transaction introuvable"})
				return
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "IPN OK"})
}

// Success handles GET /api/v1/payments/success, the browser return URL.
func (h *PaymentHandler) Success(c *gin.Context) {
	response.OK(c, gin.H{"message": "Paiement effectué avec succès"})
}

// Cancel handles GET /api/v1/payments/cancel, the browser cancel URL.
func (h *PaymentHandler) Cancel(c *gin.Context) {
	response.OK(c, gin.H{"message": "Paiement annulé"})
}

// PaymentMethods handles GET /api/v1/payments/methods.
func (h *PaymentHandler) PaymentMethods(c *gin.Context) {
	type method struct {
		Code  string `json:"code"`
		Label string `json:"label"`
	}
	response.OK(c, []method{
		{Code: string(domain.PaymentMethodWave), Label: "Wave"},
		{Code: string(domain.PaymentMethodOrangeMoney), Label: "Orange Money"},
		{Code: string(domain.PaymentMethodFreeMoney), Label: "Free Money"},
		{Code: string(domain.PaymentMethodBankCard), Label: "Carte Bancaire"},
	})
}
