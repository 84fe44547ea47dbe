package handler

import (
	"net/http"

	"vetlab/internal/middleware"
	"vetlab/internal/model"
	"vetlab/internal/service"
	"vetlab/pkg/response"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Domain   string `json:"domain" binding:"required,oneof=lab vet"`
}

// RoleResponse is one entry of the permission table.
type RoleResponse struct {
	Name        string   `json:"name"`
	Domain      string   `json:"domain"`
	Permissions []string `json:"permissions"`
}

type AuthHandler struct {
	auth    *service.AuthService
	session *middleware.Auth
}

func NewAuthHandler(svc *service.AuthService, a *middleware.Auth) *AuthHandler {
	return &AuthHandler{auth: svc, session: a}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
	router.GET("/me", h.session.Authenticate(), h.GetMe)
	router.GET("/api/roles", h.session.Authenticate(), h.ListRoles)
}

// Login handles POST /login
// @Summary      Sign in
// @Description  Checks the credentials against the requested domain. Global roles may sign in from either domain.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password, model.Domain(req.Domain))
	if err != nil {
		fail(c, err)
		return
	}

	h.session.SetTokenCookie(c, res.Token, res.ExpiresAt)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Logout handles POST /logout to clear the session cookie
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.session.ClearTokenCookie(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Logged out"))
}

// GetMe handles GET /me
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.MeResponse}
// @Failure      401  {object}  response.Response
// @Router       /me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.auth.Me(claims)))
}

// ListRoles handles GET /api/roles
// @Summary      Role permission table
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]RoleResponse}
// @Router       /api/roles [get]
func (h *AuthHandler) ListRoles(c *gin.Context) {
	table := h.auth.Table()
	names := table.Roles()
	roles := make([]RoleResponse, 0, len(names))
	for _, name := range names {
		r, _ := table.Role(name)
		roles = append(roles, RoleResponse{Name: name, Domain: r.Domain, Permissions: table.Permissions(name)})
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}
