package handler

import (
	"net/http"

	"vetlab/internal/auth"
	"vetlab/internal/middleware"
	"vetlab/internal/model"
	"vetlab/internal/service"
	"vetlab/pkg/pagination"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventory *service.InventoryService
	alerts    *service.AlertMonitor
	auth      *middleware.Auth
}

func NewInventoryHandler(inventory *service.InventoryService, alerts *service.AlertMonitor, a *middleware.Auth) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, alerts: alerts, auth: a}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	lab := router.Group("/api/lab", h.auth.RequireDomain(model.DomainLab))
	inv := lab.Group("/inventory")
	{
		inv.GET("", h.auth.RequirePermission(auth.ViewInventory), h.ListItems)
		inv.GET("/transactions", h.auth.RequirePermission(auth.ViewInventory), h.ListTransactions)
		inv.GET("/:id", h.auth.RequirePermission(auth.ViewInventory), h.GetItem)
		inv.POST("", h.auth.RequirePermission(auth.ManageInventory), h.CreateItem)
		inv.PUT("/:id", h.auth.RequirePermission(auth.ManageInventory), h.UpdateItem)
		inv.DELETE("/:id", h.auth.RequirePermission(auth.ManageInventory), h.DeleteItem)
		inv.POST("/:id/add", h.auth.RequirePermission(auth.ManageInventory), h.AddStock)
		inv.POST("/:id/withdraw", h.auth.RequirePermission(auth.WithdrawInventory), h.Withdraw)
	}
	router.GET("/api/alerts", h.auth.RequireDomain(model.DomainLab), h.auth.RequirePermission(auth.ViewInventory), h.ListAlerts)
}

// ListItems handles GET /api/lab/inventory
// @Summary      List inventory items
// @Description  Served from a short-lived cache; refresh=true reloads it.
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        refresh  query     bool  false  "Bypass the cache"
// @Success      200      {object}  response.Response{data=[]model.InventoryItem}
// @Router       /api/lab/inventory [get]
func (h *InventoryHandler) ListItems(c *gin.Context) {
	fetch := h.inventory.GetItems
	if c.Query("refresh") == "true" {
		fetch = h.inventory.Refetch
	}
	items, err := fetch(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	pagination.Respond(c, http.StatusOK, items)
}

// GetItem handles GET /api/lab/inventory/:id
// @Summary      Get an inventory item
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  response.Response{data=model.InventoryItem}
// @Failure      404  {object}  response.Response
// @Router       /api/lab/inventory/{id} [get]
func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.inventory.GetItem(c.Request.Context(), c.Param("id"))
	one(c, http.StatusOK, item, err, "Inventory item")
}

// ListTransactions handles GET /api/lab/inventory/transactions?item_id=
// @Summary      List stock transactions
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        item_id  query     string  false  "Only transactions of this item"
// @Success      200      {object}  response.Response{data=[]model.InventoryTransaction}
// @Router       /api/lab/inventory/transactions [get]
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	txs, err := h.inventory.GetTransactions(c.Request.Context(), c.Query("item_id"))
	if err != nil {
		fail(c, err)
		return
	}
	pagination.Respond(c, http.StatusOK, txs)
}

// CreateItem handles POST /api/lab/inventory
// @Summary      Create an inventory item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.InventoryItemInput  true  "Item"
// @Success      201      {object}  response.Response{data=model.InventoryItem}
// @Failure      400      {object}  response.Response
// @Router       /api/lab/inventory [post]
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var in model.InventoryItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.inventory.CreateItem(c.Request.Context(), in)
	one(c, http.StatusCreated, item, err, "Inventory item")
}

// UpdateItem handles PUT /api/lab/inventory/:id
// @Summary      Update an inventory item
// @Description  Quantities change only through add and withdraw.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                    true  "Item ID"
// @Param        payload  body      model.InventoryItemPatch  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.InventoryItem}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/lab/inventory/{id} [put]
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	var patch model.InventoryItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	item, err := h.inventory.UpdateItem(c.Request.Context(), c.Param("id"), patch)
	one(c, http.StatusOK, item, err, "Inventory item")
}

// DeleteItem handles DELETE /api/lab/inventory/:id
// @Summary      Delete an inventory item
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/lab/inventory/{id} [delete]
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	ok, err := h.inventory.DeleteItem(c.Request.Context(), c.Param("id"))
	deleted(c, ok, err, "Inventory item")
}

func bindMovement(c *gin.Context) (model.StockMovement, bool) {
	var mv model.StockMovement
	if err := c.ShouldBindJSON(&mv); err != nil {
		badRequest(c, err)
		return mv, false
	}
	if mv.SpecialistName == "" {
		if claims := middleware.ClaimsFrom(c); claims != nil {
			mv.SpecialistName = claims.Name
		}
	}
	return mv, true
}

// AddStock handles POST /api/lab/inventory/:id/add
// @Summary      Receive stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Item ID"
// @Param        payload  body      model.StockMovement  true  "Quantity received"
// @Success      201      {object}  response.Response{data=model.InventoryTransaction}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/lab/inventory/{id}/add [post]
func (h *InventoryHandler) AddStock(c *gin.Context) {
	mv, ok := bindMovement(c)
	if !ok {
		return
	}
	tx, err := h.inventory.AddStock(c.Request.Context(), c.Param("id"), mv)
	one(c, http.StatusCreated, tx, err, "Inventory item")
}

// Withdraw handles POST /api/lab/inventory/:id/withdraw
// @Summary      Withdraw stock
// @Description  Rejected with 409 when the quantity exceeds what is on hand.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string               true  "Item ID"
// @Param        payload  body      model.StockMovement  true  "Quantity withdrawn"
// @Success      201      {object}  response.Response{data=model.InventoryTransaction}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/lab/inventory/{id}/withdraw [post]
func (h *InventoryHandler) Withdraw(c *gin.Context) {
	mv, ok := bindMovement(c)
	if !ok {
		return
	}
	tx, err := h.inventory.Withdraw(c.Request.Context(), c.Param("id"), mv)
	one(c, http.StatusCreated, tx, err, "Inventory item")
}

// ListAlerts handles GET /api/alerts
// @Summary      Active inventory alerts
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.Alert}
// @Router       /api/alerts [get]
func (h *InventoryHandler) ListAlerts(c *gin.Context) {
	pagination.Respond(c, http.StatusOK, h.alerts.Active())
}
