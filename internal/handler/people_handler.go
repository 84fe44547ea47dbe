package handler

import (
	"net/http"

	"vetlab/internal/auth"
	"vetlab/internal/middleware"
	"vetlab/internal/model"
	"vetlab/internal/service"
	"vetlab/pkg/pagination"
	"vetlab/pkg/response"

	"github.com/gin-gonic/gin"
)

// PeopleHandler serves the user and notification collections of both domains
// under /api/:domain.
type PeopleHandler struct {
	users         map[model.Domain]*service.UserService
	notifications map[model.Domain]*service.NotificationService
	auth          *middleware.Auth
}

func NewPeopleHandler(labUsers, vetUsers *service.UserService, labNotes, vetNotes *service.NotificationService, a *middleware.Auth) *PeopleHandler {
	return &PeopleHandler{
		users:         map[model.Domain]*service.UserService{model.DomainLab: labUsers, model.DomainVet: vetUsers},
		notifications: map[model.Domain]*service.NotificationService{model.DomainLab: labNotes, model.DomainVet: vetNotes},
		auth:          a,
	}
}

func (h *PeopleHandler) RegisterRoutes(router *gin.RouterGroup) {
	d := router.Group("/api/:domain", h.auth.RequireDomainParam("domain"))

	users := d.Group("/users")
	{
		users.GET("", h.auth.RequireAnyPermission(auth.ViewUsers, auth.ManageUsers), h.ListUsers)
		users.GET("/:id", h.auth.RequireAnyPermission(auth.ViewUsers, auth.ManageUsers), h.GetUser)
		users.POST("", h.auth.RequirePermission(auth.ManageUsers), h.CreateUser)
		users.PUT("/:id", h.auth.RequirePermission(auth.ManageUsers), h.UpdateUser)
		users.DELETE("/:id", h.auth.RequirePermission(auth.ManageUsers), h.DeleteUser)
	}

	notes := d.Group("/notifications")
	{
		notes.GET("", h.auth.RequirePermission(auth.ViewNotifications), h.ListNotifications)
		notes.POST("", h.auth.RequirePermission(auth.ManageNotifications), h.CreateNotification)
		notes.PATCH("/:id/read", h.auth.RequirePermission(auth.ViewNotifications), h.ToggleRead)
		notes.POST("/read-all", h.auth.RequirePermission(auth.ViewNotifications), h.MarkAllRead)
		notes.DELETE("/:id", h.auth.RequirePermission(auth.ManageNotifications), h.DeleteNotification)
	}
}

func (h *PeopleHandler) userService(c *gin.Context) *service.UserService {
	return h.users[model.Domain(c.Param("domain"))]
}

func (h *PeopleHandler) notificationService(c *gin.Context) *service.NotificationService {
	return h.notifications[model.Domain(c.Param("domain"))]
}

// ListUsers handles GET /api/:domain/users
// @Summary      List the accounts of a domain
// @Description  Passwords are never returned.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        domain   path      string  true   "lab or vet"
// @Param        refresh  query     bool    false  "Bypass the cache"
// @Success      200      {object}  response.Response{data=[]model.User}
// @Router       /api/{domain}/users [get]
func (h *PeopleHandler) ListUsers(c *gin.Context) {
	svc := h.userService(c)
	fetch := svc.List
	if c.Query("refresh") == "true" {
		fetch = svc.Refetch
	}
	users, err := fetch(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	pagination.Respond(c, http.StatusOK, users)
}

// GetUser handles GET /api/:domain/users/:id
// @Summary      Get an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        domain  path      string  true  "lab or vet"
// @Param        id      path      string  true  "User ID"
// @Success      200     {object}  response.Response{data=model.User}
// @Failure      404     {object}  response.Response
// @Router       /api/{domain}/users/{id} [get]
func (h *PeopleHandler) GetUser(c *gin.Context) {
	u, err := h.userService(c).Get(c.Request.Context(), c.Param("id"))
	one(c, http.StatusOK, u, err, "User")
}

// CreateUser handles POST /api/:domain/users
// @Summary      Create an account
// @Description  Usernames are unique and only one program_manager may exist.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        domain   path      string           true  "lab or vet"
// @Param        payload  body      model.UserInput  true  "Account"
// @Success      201      {object}  response.Response{data=model.User}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/{domain}/users [post]
func (h *PeopleHandler) CreateUser(c *gin.Context) {
	var in model.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.userService(c).Create(c.Request.Context(), in)
	one(c, http.StatusCreated, u, err, "User")
}

// UpdateUser handles PUT /api/:domain/users/:id
// @Summary      Update an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        domain   path      string           true  "lab or vet"
// @Param        id       path      string           true  "User ID"
// @Param        payload  body      model.UserPatch  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/{domain}/users/{id} [put]
func (h *PeopleHandler) UpdateUser(c *gin.Context) {
	var patch model.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.userService(c).Update(c.Request.Context(), c.Param("id"), patch)
	one(c, http.StatusOK, u, err, "User")
}

// DeleteUser handles DELETE /api/:domain/users/:id
// @Summary      Delete an account
// @Description  The signed-in account cannot delete itself.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        domain  path      string  true  "lab or vet"
// @Param        id      path      string  true  "User ID"
// @Success      200     {object}  response.Response
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /api/{domain}/users/{id} [delete]
func (h *PeopleHandler) DeleteUser(c *gin.Context) {
	if claims := middleware.ClaimsFrom(c); claims != nil && claims.Subject == c.Param("id") {
		c.JSON(http.StatusBadRequest, response.Localized(http.StatusBadRequest, "cannot delete the signed-in account", "لا يمكن حذف الحساب المستخدم حالياً"))
		return
	}
	ok, err := h.userService(c).Delete(c.Request.Context(), c.Param("id"))
	deleted(c, ok, err, "User")
}

// ListNotifications handles GET /api/:domain/notifications
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        domain  path      string  true  "lab or vet"
// @Success      200     {object}  response.Response{data=[]model.Notification}
// @Router       /api/{domain}/notifications [get]
func (h *PeopleHandler) ListNotifications(c *gin.Context) {
	list, err := h.notificationService(c).List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	pagination.Respond(c, http.StatusOK, list)
}

// CreateNotification handles POST /api/:domain/notifications
// @Summary      Post a notification
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        domain   path      string                   true  "lab or vet"
// @Param        payload  body      model.NotificationInput  true  "Notification"
// @Success      201      {object}  response.Response{data=model.Notification}
// @Failure      400      {object}  response.Response
// @Router       /api/{domain}/notifications [post]
func (h *PeopleHandler) CreateNotification(c *gin.Context) {
	var in model.NotificationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	n, err := h.notificationService(c).Create(c.Request.Context(), in)
	one(c, http.StatusCreated, n, err, "Notification")
}

// ToggleRead handles PATCH /api/:domain/notifications/:id/read
// @Summary      Flip the read flag of a notification
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        domain  path      string  true  "lab or vet"
// @Param        id      path      string  true  "Notification ID"
// @Success      200     {object}  response.Response{data=model.Notification}
// @Failure      404     {object}  response.Response
// @Router       /api/{domain}/notifications/{id}/read [patch]
func (h *PeopleHandler) ToggleRead(c *gin.Context) {
	n, err := h.notificationService(c).Toggle(c.Request.Context(), c.Param("id"))
	one(c, http.StatusOK, n, err, "Notification")
}

// MarkAllRead handles POST /api/:domain/notifications/read-all
// @Summary      Mark every notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        domain  path      string  true  "lab or vet"
// @Success      200     {object}  response.Response
// @Router       /api/{domain}/notifications/read-all [post]
func (h *PeopleHandler) MarkAllRead(c *gin.Context) {
	count, err := h.notificationService(c).MarkAllRead(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"updated": count}))
}

// DeleteNotification handles DELETE /api/:domain/notifications/:id
// @Summary      Delete a notification
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        domain  path      string  true  "lab or vet"
// @Param        id      path      string  true  "Notification ID"
// @Success      200     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /api/{domain}/notifications/{id} [delete]
func (h *PeopleHandler) DeleteNotification(c *gin.Context) {
	ok, err := h.notificationService(c).Delete(c.Request.Context(), c.Param("id"))
	deleted(c, ok, err, "Notification")
}
