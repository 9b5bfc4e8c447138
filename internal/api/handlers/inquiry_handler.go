package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homznspace/backend/internal/api/middleware"
	"homznspace/backend/internal/services"
)

type InquiryHandler struct {
	inquiryService services.IInquiryService
}

func NewInquiryHandler(inquiryService services.IInquiryService) *InquiryHandler {
	return &InquiryHandler{inquiryService: inquiryService}
}

// Create handles POST /api/inquiries
func (h *InquiryHandler) Create(c *gin.Context) {
	var req services.CreateInquiryInput
	if !bindJSON(c, &req) {
		return
	}
	p, _ := middleware.GetPrincipal(c)
	inquiry, err := h.inquiryService.Create(c.Request.Context(), p, req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inquiry)
}

// ListForUser handles GET /api/inquiries/user
func (h *InquiryHandler) ListForUser(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	views, err := h.inquiryService.ListForBuyer(c.Request.Context(), p)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// ListForSeller handles GET /api/inquiries/agent
func (h *InquiryHandler) ListForSeller(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	views, err := h.inquiryService.ListForSeller(c.Request.Context(), p)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}
