package handler

import (
	"net/http"
	"strings"

	"vetlab/internal/middleware"
	"vetlab/internal/service"
	"vetlab/pkg/response"

	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	search *service.SearchService
	auth   *middleware.Auth
}

func NewSearchHandler(svc *service.SearchService, a *middleware.Auth) *SearchHandler {
	return &SearchHandler{search: svc, auth: a}
}

func (h *SearchHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/search", h.auth.Authenticate(), h.Search)
}

// Search handles GET /api/search?q=
// @Summary      Global search
// @Description  Searches the entities of the caller's domain that their role may view. Queries shorter than two characters return nothing.
// @Tags         search
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  true  "Query"
// @Success      200  {object}  response.Response{data=[]search.Group}
// @Failure      401  {object}  response.Response
// @Router       /api/search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	groups, err := h.search.Search(c.Request.Context(), claims.SessionUser(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, groups))
}
