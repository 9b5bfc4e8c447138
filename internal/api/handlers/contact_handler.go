package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homznspace/backend/internal/api/middleware"
	"homznspace/backend/internal/models"
	"homznspace/backend/internal/services"
)

type ContactHandler struct {
	contactService services.IContactService
}

func NewContactHandler(contactService services.IContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

type contactRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
	PropertyID string `json:"property_id"`
}

// Create handles POST /api/contact
func (h *ContactHandler) Create(c *gin.Context) {
	var req contactRequest
	if !bindJSON(c, &req) {
		return
	}
	lead, err := h.contactService.Create(c.Request.Context(), models.ContactLead{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Message:    req.Message,
		PropertyID: req.PropertyID,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}
