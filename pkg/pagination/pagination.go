package pagination

import (
	"strconv"

	"vetlab/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination parameters. Requested is false when the
// client sent neither page nor limit; lists are then returned whole.
type Params struct {
	Page      int
	Limit     int
	Offset    int
	Requested bool
}

// Parse extracts and validates page/limit from query parameters
func Parse(c *gin.Context) Params {
	_, hasPage := c.GetQuery("page")
	_, hasLimit := c.GetQuery("limit")

	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{
		Page:      page,
		Limit:     limit,
		Offset:    (page - 1) * limit,
		Requested: hasPage || hasLimit,
	}
}

// Slice cuts one page out of items, which are already in display order.
func Slice[T any](items []T, p Params) ([]T, response.Meta) {
	total := len(items)
	meta := response.Meta{Page: p.Page, Limit: p.Limit, Total: total}
	if p.Limit > 0 {
		meta.TotalPages = (total + p.Limit - 1) / p.Limit
	}
	if p.Offset >= total {
		return []T{}, meta
	}
	end := min(p.Offset+p.Limit, total)
	return items[p.Offset:end], meta
}

// Respond writes items as a page when the client asked for one, and whole otherwise.
func Respond[T any](c *gin.Context, status int, items []T) {
	if items == nil {
		items = []T{}
	}
	p := Parse(c)
	if !p.Requested {
		c.JSON(status, response.Success(status, items))
		return
	}
	page, meta := Slice(items, p)
	c.JSON(status, response.Page(status, page, meta))
}
