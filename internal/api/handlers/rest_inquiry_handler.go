package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/api/middleware"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/services"
)

// RestInquiryHandler serves the inbox reads for sellers and buyers.
// Routes are expected behind middleware.AuthMiddleware.
type RestInquiryHandler struct {
	negotiation services.INegotiationService
}

// NewRestInquiryHandler creates a new RestInquiryHandler.
func NewRestInquiryHandler(negotiation services.INegotiationService) *RestInquiryHandler {
	return &RestInquiryHandler{negotiation: negotiation}
}

// ListForSeller handles GET /v1/inquiry/seller
func (h *RestInquiryHandler) ListForSeller(c *gin.Context) {
	h.list(c, h.negotiation.ListForSeller)
}

// ListForBuyer handles GET /v1/inquiry/buyer
func (h *RestInquiryHandler) ListForBuyer(c *gin.Context) {
	h.list(c, h.negotiation.ListForBuyer)
}

type listFunc func(ctx context.Context, userID string, opts services.ListOptions) ([]models.Inquiry, error)

func (h *RestInquiryHandler) list(c *gin.Context, fetch listFunc) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	opts := services.ListOptions{
		Kind:   models.InquiryKind(c.Query("kind")),
		Status: models.InquiryStatus(c.Query("status")),
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit", "code": string(services.KindValidation)})
			return
		}
		opts.Limit = limit
	}

	inquiries, err := fetch(c.Request.Context(), userID, opts)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if inquiries == nil {
		inquiries = []models.Inquiry{}
	}
	c.JSON(http.StatusOK, gin.H{
		"inquiries": inquiries,
		"count":     len(inquiries),
	})
}

// GetInquiry handles GET /v1/inquiry/:id
func (h *RestInquiryHandler) GetInquiry(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	inq, err := h.negotiation.GetInquiry(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inq)
}

func (h *RestInquiryHandler) writeError(c *gin.Context, err error) {
	var inqErr *services.InquiryError
	if !errors.As(err, &inqErr) {
		_ = c.Error(err)
		log.Printf("ERROR: inquiry read failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inquiries"})
		return
	}
	message := inqErr.Message
	if inqErr.Kind == services.KindStoreUnavailable {
		_ = c.Error(err)
		log.Printf("ERROR: inquiry read failed: %v", err)
		message = "Service temporarily unavailable, please try again"
	}
	c.JSON(httpStatusForKind(inqErr.Kind), gin.H{"error": message, "code": string(inqErr.Kind)})
}

func httpStatusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation, services.KindMissingReason, services.KindMissingSlot, services.KindNotAnAppointment:
		return http.StatusBadRequest
	case services.KindForbidden, services.KindSelfDealing:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindDuplicateActive, services.KindInvalidTransition, services.KindConcurrentModification:
		return http.StatusConflict
	case services.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
