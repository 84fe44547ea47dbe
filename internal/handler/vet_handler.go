package handler

import (
	"net/http"

	"vetlab/internal/auth"
	"vetlab/internal/middleware"
	"vetlab/internal/model"
	"vetlab/internal/repository"
	"vetlab/internal/service"
	"vetlab/pkg/pagination"
	"vetlab/pkg/response"

	"github.com/gin-gonic/gin"
)

type VetHandler struct {
	store repository.VetStore
	views *service.VetService
	auth  *middleware.Auth
}

func NewVetHandler(store repository.VetStore, views *service.VetService, a *middleware.Auth) *VetHandler {
	return &VetHandler{store: store, views: views, auth: a}
}

func (h *VetHandler) RegisterRoutes(router *gin.RouterGroup) {
	vet := router.Group("/api/vet", h.auth.RequireDomain(model.DomainVet))

	shipments := vet.Group("/shipments")
	{
		shipments.GET("", h.auth.RequirePermission(auth.ViewShipments), h.ListShipments)
		shipments.GET("/quarantine", h.auth.RequireAnyPermission(auth.ViewQuarantine, auth.ViewShipments), h.QuarantineShipments)
		shipments.GET("/next-number", h.auth.RequirePermission(auth.ManageShipments), h.NextShipmentNumber)
		shipments.GET("/:id", h.auth.RequirePermission(auth.ViewShipments), h.GetShipment)
		shipments.POST("", h.auth.RequirePermission(auth.ManageShipments), h.CreateShipment)
		shipments.PUT("/:id", h.auth.RequirePermission(auth.ManageShipments), h.UpdateShipment)
		shipments.DELETE("/:id", h.auth.RequirePermission(auth.DeleteShipments), h.DeleteShipment)
	}

	traders := vet.Group("/traders")
	{
		traders.GET("", h.auth.RequireAnyPermission(auth.ViewTraders, auth.ViewQuarantine), h.ListTraders)
		traders.POST("", h.auth.RequirePermission(auth.ManageTraders), h.CreateTrader)
		traders.PUT("/:id", h.auth.RequirePermission(auth.ManageTraders), h.UpdateTrader)
		traders.DELETE("/:id", h.auth.RequirePermission(auth.ManageTraders), h.DeleteTrader)
	}
}

// ListShipments handles GET /api/vet/shipments
// @Summary      List animal shipments with their trader entries
// @Tags         vet
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=[]model.ShipmentWithTraders}
// @Router       /api/vet/shipments [get]
func (h *VetHandler) ListShipments(c *gin.Context) {
	list, err := h.views.GetShipmentsWithTraders(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	pagination.Respond(c, http.StatusOK, list)
}

// QuarantineShipments handles GET /api/vet/shipments/quarantine
// @Summary      Shipments holding animals in quarantine
// @Tags         vet
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.ShipmentWithTraders}
// @Router       /api/vet/shipments/quarantine [get]
func (h *VetHandler) QuarantineShipments(c *gin.Context) {
	list, err := h.views.GetQuarantineShipments(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	pagination.Respond(c, http.StatusOK, list)
}

// NextShipmentNumber handles GET /api/vet/shipments/next-number
// @Summary      Preview the next shipment number
// @Description  Returns NNNN-YYYY-V. The number is only reserved when a shipment is created with it.
// @Tags         vet
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /api/vet/shipments/next-number [get]
func (h *VetHandler) NextShipmentNumber(c *gin.Context) {
	n, err := h.store.GetNextShipmentNumber(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"number": n}))
}

// GetShipment handles GET /api/vet/shipments/:id
// @Summary      Get an animal shipment
// @Tags         vet
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Shipment ID"
// @Success      200  {object}  response.Response{data=model.AnimalShipment}
// @Failure      404  {object}  response.Response
// @Router       /api/vet/shipments/{id} [get]
func (h *VetHandler) GetShipment(c *gin.Context) {
	s, err := h.store.GetAnimalShipment(c.Request.Context(), c.Param("id"))
	one(c, http.StatusOK, s, err, "Shipment")
}

// CreateShipment handles POST /api/vet/shipments
// @Summary      Register an animal shipment
// @Description  An empty procedure_number is assigned automatically (NNNN-YYYY-V).
// @Tags         vet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.AnimalShipmentInput  true  "Shipment"
// @Success      201      {object}  response.Response{data=model.AnimalShipment}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/vet/shipments [post]
func (h *VetHandler) CreateShipment(c *gin.Context) {
	var in model.AnimalShipmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.store.CreateAnimalShipment(c.Request.Context(), in)
	one(c, http.StatusCreated, s, err, "Shipment")
}

// UpdateShipment handles PUT /api/vet/shipments/:id
// @Summary      Update an animal shipment
// @Description  A new procedure_number carries the shipment's trader entries with it.
// @Tags         vet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Shipment ID"
// @Param        payload  body      model.AnimalShipmentPatch  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.AnimalShipment}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/vet/shipments/{id} [put]
func (h *VetHandler) UpdateShipment(c *gin.Context) {
	var patch model.AnimalShipmentPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.store.UpdateAnimalShipment(c.Request.Context(), c.Param("id"), patch)
	one(c, http.StatusOK, s, err, "Shipment")
}

// DeleteShipment handles DELETE /api/vet/shipments/:id
// @Summary      Delete a shipment
// @Description  Trader entries filed under the same procedure number go with it.
// @Tags         vet
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Shipment ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/vet/shipments/{id} [delete]
func (h *VetHandler) DeleteShipment(c *gin.Context) {
	ok, err := h.store.DeleteAnimalShipment(c.Request.Context(), c.Param("id"))
	deleted(c, ok, err, "Shipment")
}

// ListTraders handles GET /api/vet/traders?procedure_number=
// @Summary      List quarantine trader entries
// @Tags         vet
// @Produce      json
// @Security     BearerAuth
// @Param        procedure_number  query     string  false  "Only entries of this procedure"
// @Success      200               {object}  response.Response{data=[]model.TraderEntry}
// @Router       /api/vet/traders [get]
func (h *VetHandler) ListTraders(c *gin.Context) {
	var (
		list []model.TraderEntry
		err  error
	)
	if procedure := c.Query("procedure_number"); procedure != "" {
		list, err = h.store.GetTraderEntriesByProcedure(c.Request.Context(), procedure)
	} else {
		list, err = h.store.GetTraderEntries(c.Request.Context())
	}
	if err != nil {
		fail(c, err)
		return
	}
	pagination.Respond(c, http.StatusOK, list)
}

// CreateTrader handles POST /api/vet/traders
// @Summary      File a quarantine trader entry
// @Tags         vet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.TraderEntryInput  true  "Trader entry"
// @Success      201      {object}  response.Response{data=model.TraderEntry}
// @Failure      400      {object}  response.Response
// @Router       /api/vet/traders [post]
func (h *VetHandler) CreateTrader(c *gin.Context) {
	var in model.TraderEntryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.store.CreateTraderEntry(c.Request.Context(), in)
	one(c, http.StatusCreated, t, err, "Trader entry")
}

// UpdateTrader handles PUT /api/vet/traders/:id
// @Summary      Update a trader entry
// @Tags         vet
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Trader entry ID"
// @Param        payload  body      model.TraderEntryPatch  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.TraderEntry}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/vet/traders/{id} [put]
func (h *VetHandler) UpdateTrader(c *gin.Context) {
	var patch model.TraderEntryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	t, err := h.store.UpdateTraderEntry(c.Request.Context(), c.Param("id"), patch)
	one(c, http.StatusOK, t, err, "Trader entry")
}

// DeleteTrader handles DELETE /api/vet/traders/:id
// @Summary      Delete a trader entry
// @Tags         vet
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Trader entry ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/vet/traders/{id} [delete]
func (h *VetHandler) DeleteTrader(c *gin.Context) {
	ok, err := h.store.DeleteTraderEntry(c.Request.Context(), c.Param("id"))
	deleted(c, ok, err, "Trader entry")
}
