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

type LabHandler struct {
	store repository.LabStore
	views *service.LabService
	auth  *middleware.Auth
}

func NewLabHandler(store repository.LabStore, views *service.LabService, a *middleware.Auth) *LabHandler {
	return &LabHandler{store: store, views: views, auth: a}
}

// RegisterRoutes binds the laboratory endpoints under /api/lab.
func (h *LabHandler) RegisterRoutes(router *gin.RouterGroup) {
	lab := router.Group("/api/lab", h.auth.RequireDomain(model.DomainLab))

	procedures := lab.Group("/procedures")
	{
		procedures.GET("", h.auth.RequirePermission(auth.ViewSamples), h.ListProcedures)
		procedures.GET("/next-number", h.auth.RequirePermission(auth.ManageSamples), h.NextProcedureNumber)
		procedures.GET("/summaries", h.auth.RequirePermission(auth.ViewSamples), h.ProcedureSummaries)
		procedures.GET("/:id", h.auth.RequirePermission(auth.ViewSamples), h.GetProcedure)
		procedures.GET("/:id/complete", h.auth.RequirePermission(auth.ViewSamples), h.ProcedureComplete)
		procedures.POST("", h.auth.RequirePermission(auth.ManageSamples), h.CreateProcedure)
		procedures.PUT("/:id", h.auth.RequirePermission(auth.ManageSamples), h.UpdateProcedure)
		procedures.DELETE("/:id", h.auth.RequirePermission(auth.DeleteSamples), h.DeleteProcedure)
	}

	samples := lab.Group("/samples")
	{
		samples.GET("", h.auth.RequirePermission(auth.ViewSamples), h.ListSamples)
		samples.GET("/:id/complete", h.auth.RequirePermission(auth.ViewSamples), h.SampleComplete)
		samples.POST("", h.auth.RequirePermission(auth.ManageSamples), h.CreateSample)
		samples.PUT("/:id", h.auth.RequirePermission(auth.ManageSamples), h.UpdateSample)
		samples.DELETE("/:id", h.auth.RequirePermission(auth.DeleteSamples), h.DeleteSample)
	}

	results := lab.Group("/results")
	{
		results.GET("", h.auth.RequirePermission(auth.ViewResults), h.ListResults)
		results.GET("/details", h.auth.RequirePermission(auth.ViewResults), h.ResultDetails)
		results.POST("", h.auth.RequirePermission(auth.EnterResults), h.CreateResult)
		results.PUT("/:id", h.auth.RequirePermission(auth.EnterResults), h.UpdateResult)
		results.PATCH("/:id/status", h.auth.RequirePermission(auth.ApproveResults), h.SetResultStatus)
		results.DELETE("/:id", h.auth.RequirePermission(auth.EnterResults), h.DeleteResult)
	}
}

// ListProcedures handles GET /api/lab/procedures
// @Summary      List procedures with their samples
// @Description  Procedures ordered by procedure number, newest first. Paginated when page or limit is given.
// @Tags         lab
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  response.Response{data=[]model.SavedSampleWithSamples}
// @Failure      401    {object}  response.Response
// @Failure      403    {object}  response.Response
// @Router       /api/lab/procedures [get]
func (h *LabHandler) ListProcedures(c *gin.Context) {
	list, err := h.views.GetAllSavedSamplesWithSamples(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	pagination.Respond(c, http.StatusOK, list)
}

// GetProcedure handles GET /api/lab/procedures/:id
// @Summary      Get a procedure with its samples
// @Tags         lab
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Procedure ID"
// @Success      200  {object}  response.Response{data=model.SavedSampleWithSamples}
// @Failure      404  {object}  response.Response
// @Router       /api/lab/procedures/{id} [get]
func (h *LabHandler) GetProcedure(c *gin.Context) {
	p, err := h.views.GetSavedSampleWithSamples(c.Request.Context(), c.Param("id"))
	one(c, http.StatusOK, p, err, "Procedure")
}

// NextProcedureNumber handles GET /api/lab/procedures/next-number
// @Summary      Preview the next procedure number
// @Description  Returns NNNN-YYYY-L. The number is only reserved when a procedure is created with it.
// @Tags         lab
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Router       /api/lab/procedures/next-number [get]
func (h *LabHandler) NextProcedureNumber(c *gin.Context) {
	n, err := h.store.GetNextProcedureNumber(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"number": n}))
}

// ProcedureSummaries handles GET /api/lab/procedures/summaries
// @Summary      Sample completion per procedure
// @Tags         lab
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.ProcedureSummary}
// @Router       /api/lab/procedures/summaries [get]
func (h *LabHandler) ProcedureSummaries(c *gin.Context) {
	list, err := h.views.GetProcedureSummaries(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	pagination.Respond(c, http.StatusOK, list)
}

// ProcedureComplete handles GET /api/lab/procedures/:id/complete
// @Summary      Whether every sample of a procedure has an approved result
// @Tags         lab
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Procedure ID"
// @Success      200  {object}  response.Response
// @Router       /api/lab/procedures/{id}/complete [get]
func (h *LabHandler) ProcedureComplete(c *gin.Context) {
	done, err := h.views.IsSavedSampleComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"completed": done}))
}

// CreateProcedure handles POST /api/lab/procedures
// @Summary      Register a procedure
// @Description  An empty internal_procedure_number is assigned automatically.
// @Tags         lab
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.SavedSampleInput  true  "Procedure"
// @Success      201      {object}  response.Response{data=model.SavedSample}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/lab/procedures [post]
func (h *LabHandler) CreateProcedure(c *gin.Context) {
	var in model.SavedSampleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.store.CreateSavedSample(c.Request.Context(), in)
	one(c, http.StatusCreated, p, err, "Procedure")
}

// UpdateProcedure handles PUT /api/lab/procedures/:id
// @Summary      Update a procedure
// @Tags         lab
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                  true  "Procedure ID"
// @Param        payload  body      model.SavedSamplePatch  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.SavedSample}
// @Failure      404      {object}  response.Response
// @Router       /api/lab/procedures/{id} [put]
func (h *LabHandler) UpdateProcedure(c *gin.Context) {
	var patch model.SavedSamplePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	p, err := h.store.UpdateSavedSample(c.Request.Context(), c.Param("id"), patch)
	one(c, http.StatusOK, p, err, "Procedure")
}

// DeleteProcedure handles DELETE /api/lab/procedures/:id
// @Summary      Delete a procedure
// @Description  Removes the procedure, its samples and their results.
// @Tags         lab
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Procedure ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/lab/procedures/{id} [delete]
func (h *LabHandler) DeleteProcedure(c *gin.Context) {
	ok, err := h.store.DeleteSavedSample(c.Request.Context(), c.Param("id"))
	deleted(c, ok, err, "Procedure")
}

// ListSamples handles GET /api/lab/samples?saved_sample_id=
// @Summary      List samples
// @Tags         lab
// @Produce      json
// @Security     BearerAuth
// @Param        saved_sample_id  query     string  false  "Only samples of this procedure"
// @Success      200              {object}  response.Response{data=[]model.Sample}
// @Router       /api/lab/samples [get]
func (h *LabHandler) ListSamples(c *gin.Context) {
	var (
		list []model.Sample
		err  error
	)
	if parent := c.Query("saved_sample_id"); parent != "" {
		list, err = h.store.GetSamplesBySavedSample(c.Request.Context(), parent)
	} else {
		list, err = h.store.GetSamples(c.Request.Context())
	}
	if err != nil {
		fail(c, err)
		return
	}
	pagination.Respond(c, http.StatusOK, list)
}

// SampleComplete handles GET /api/lab/samples/:id/complete
// @Summary      Whether a sample has an approved result
// @Tags         lab
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sample ID"
// @Success      200  {object}  response.Response
// @Router       /api/lab/samples/{id}/complete [get]
func (h *LabHandler) SampleComplete(c *gin.Context) {
	done, err := h.views.IsSampleComplete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"completed": done}))
}

// CreateSample handles POST /api/lab/samples
// @Summary      Add a sample to a procedure
// @Tags         lab
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.SampleInput  true  "Sample"
// @Success      201      {object}  response.Response{data=model.Sample}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/lab/samples [post]
func (h *LabHandler) CreateSample(c *gin.Context) {
	var in model.SampleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.store.CreateSample(c.Request.Context(), in)
	one(c, http.StatusCreated, s, err, "Sample")
}

// UpdateSample handles PUT /api/lab/samples/:id
// @Summary      Update a sample
// @Tags         lab
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string             true  "Sample ID"
// @Param        payload  body      model.SamplePatch  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.Sample}
// @Failure      404      {object}  response.Response
// @Router       /api/lab/samples/{id} [put]
func (h *LabHandler) UpdateSample(c *gin.Context) {
	var patch model.SamplePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	s, err := h.store.UpdateSample(c.Request.Context(), c.Param("id"), patch)
	one(c, http.StatusOK, s, err, "Sample")
}

// DeleteSample handles DELETE /api/lab/samples/:id
// @Summary      Delete a sample
// @Description  Removes the sample and its results.
// @Tags         lab
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sample ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/lab/samples/{id} [delete]
func (h *LabHandler) DeleteSample(c *gin.Context) {
	ok, err := h.store.DeleteSample(c.Request.Context(), c.Param("id"))
	deleted(c, ok, err, "Sample")
}

// ListResults handles GET /api/lab/results?sample_id=
// @Summary      List test results
// @Tags         lab
// @Produce      json
// @Security     BearerAuth
// @Param        sample_id  query     string  false  "Only results of this sample"
// @Success      200        {object}  response.Response{data=[]model.TestResult}
// @Router       /api/lab/results [get]
func (h *LabHandler) ListResults(c *gin.Context) {
	var (
		list []model.TestResult
		err  error
	)
	if sampleID := c.Query("sample_id"); sampleID != "" {
		list, err = h.store.GetTestResultsBySample(c.Request.Context(), sampleID)
	} else {
		list, err = h.store.GetTestResults(c.Request.Context())
	}
	if err != nil {
		fail(c, err)
		return
	}
	pagination.Respond(c, http.StatusOK, list)
}

// ResultDetails handles GET /api/lab/results/details
// @Summary      Test results with sample and procedure fields
// @Tags         lab
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.TestResultWithDetails}
// @Router       /api/lab/results/details [get]
func (h *LabHandler) ResultDetails(c *gin.Context) {
	list, err := h.views.GetTestResultsWithDetails(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	pagination.Respond(c, http.StatusOK, list)
}

// CreateResult handles POST /api/lab/results
// @Summary      Enter a test result
// @Description  New results start as draft. Entering a result as approved or rejected requires approve_results.
// @Tags         lab
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      model.TestResultInput  true  "Result"
// @Success      201      {object}  response.Response{data=model.TestResult}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/lab/results [post]
func (h *LabHandler) CreateResult(c *gin.Context) {
	var in model.TestResultInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	switch in.ApprovalStatus {
	case "", model.ApprovalDraft, model.ApprovalPending:
	default:
		if !h.auth.Allows(c, auth.ApproveResults) {
			forbidden(c, auth.ApproveResults)
			return
		}
	}
	r, err := h.store.CreateTestResult(c.Request.Context(), in)
	one(c, http.StatusCreated, r, err, "Test result")
}

// UpdateResult handles PUT /api/lab/results/:id
// @Summary      Update a test result
// @Description  Changing approval_status requires approve_results.
// @Tags         lab
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Result ID"
// @Param        payload  body      model.TestResultPatch  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.TestResult}
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/lab/results/{id} [put]
func (h *LabHandler) UpdateResult(c *gin.Context) {
	var patch model.TestResultPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	if patch.ApprovalStatus != nil && !h.auth.Allows(c, auth.ApproveResults) {
		forbidden(c, auth.ApproveResults)
		return
	}
	r, err := h.store.UpdateTestResult(c.Request.Context(), c.Param("id"), patch)
	one(c, http.StatusOK, r, err, "Test result")
}

// StatusRequest moves a result through the approval workflow.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// SetResultStatus handles PATCH /api/lab/results/:id/status
// @Summary      Approve or reject a test result
// @Description  The approver is taken from the session.
// @Tags         lab
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string         true  "Result ID"
// @Param        payload  body      StatusRequest  true  "New status"
// @Success      200      {object}  response.Response{data=model.TestResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/lab/results/{id}/status [patch]
func (h *LabHandler) SetResultStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	actor := ""
	if claims := middleware.ClaimsFrom(c); claims != nil {
		actor = claims.Name
		if actor == "" {
			actor = claims.Username
		}
	}
	r, err := h.store.SetTestResultStatus(c.Request.Context(), c.Param("id"), req.Status, actor, req.Reason)
	one(c, http.StatusOK, r, err, "Test result")
}

// DeleteResult handles DELETE /api/lab/results/:id
// @Summary      Delete a test result
// @Tags         lab
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Result ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/lab/results/{id} [delete]
func (h *LabHandler) DeleteResult(c *gin.Context) {
	ok, err := h.store.DeleteTestResult(c.Request.Context(), c.Param("id"))
	deleted(c, ok, err, "Test result")
}
