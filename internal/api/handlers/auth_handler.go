package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homznspace/backend/internal/api/middleware"
	"homznspace/backend/internal/apperr"
	"homznspace/backend/internal/services"
)

// AuthHandler serves the /auth routes: logins, registration, profiles and agent approval.
type AuthHandler struct {
	authService  services.IAuthService
	agentService services.IAgentService
}

func NewAuthHandler(authService services.IAuthService, agentService services.IAgentService) *AuthHandler {
	return &AuthHandler{authService: authService, agentService: agentService}
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		middleware.RespondError(c, apperr.Validation("invalid request body"))
		return false
	}
	return true
}

// AdminLogin handles POST /api/auth/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.authService.LoginAdmin(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": res.Token,
		"admin": gin.H{"id": res.Admin.ID, "username": res.Admin.Username},
	})
}

// UserRegister handles POST /api/auth/user/register
func (h *AuthHandler) UserRegister(c *gin.Context) {
	var req services.RegisterUserInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.authService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userSession(res))
}

// UserLogin handles POST /api/auth/user/login
func (h *AuthHandler) UserLogin(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userSession(res))
}

func userSession(res *services.AuthResult) gin.H {
	return gin.H{
		"token": res.Token,
		"user":  gin.H{"id": res.User.ID, "username": res.User.Username, "email": res.User.Email},
	}
}

// AgentRegister handles POST /api/auth/agent/register
func (h *AuthHandler) AgentRegister(c *gin.Context) {
	var req services.RegisterAgentInput
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.authService.RegisterAgent(c.Request.Context(), req); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "Registration successful. Please wait for admin approval."})
}

// AgentLogin handles POST /api/auth/agent/login
func (h *AuthHandler) AgentLogin(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.authService.LoginAgent(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": res.Token,
		"agent": gin.H{"id": res.Agent.ID, "name": res.Agent.Name, "email": res.Agent.Email},
	})
}

func (h *AuthHandler) GetUserProfile(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	user, err := h.authService.GetUserProfile(c.Request.Context(), p)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) UpdateUserProfile(c *gin.Context) {
	var update services.UserProfileUpdate
	if err := decodeStrict(c.Request.Body, &update); err != nil {
		middleware.RespondError(c, err)
		return
	}
	p, _ := middleware.GetPrincipal(c)
	user, err := h.authService.UpdateUserProfile(c.Request.Context(), p, update)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) GetAgentProfile(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	agent, err := h.authService.GetAgentProfile(c.Request.Context(), p)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (h *AuthHandler) UpdateAgentProfile(c *gin.Context) {
	var update services.AgentProfileUpdate
	if err := decodeStrict(c.Request.Body, &update); err != nil {
		middleware.RespondError(c, err)
		return
	}
	p, _ := middleware.GetPrincipal(c)
	agent, err := h.authService.UpdateAgentProfile(c.Request.Context(), p, update)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

// PendingAgents handles GET /api/auth/admin/pending-agents
func (h *AuthHandler) PendingAgents(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	agents, err := h.agentService.ListPending(c.Request.Context(), p)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agents)
}

// ApproveAgent handles PUT /api/auth/admin/approve-agent/:id
func (h *AuthHandler) ApproveAgent(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	agent, err := h.agentService.Approve(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Agent approved successfully", "agent": agent})
}

// RejectAgent handles DELETE /api/auth/admin/reject-agent/:id
func (h *AuthHandler) RejectAgent(c *gin.Context) {
	p, _ := middleware.GetPrincipal(c)
	if err := h.agentService.Reject(c.Request.Context(), p, c.Param("id")); err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Agent rejected/removed"})
}
