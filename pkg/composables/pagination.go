package composables

import (
	"net/http"
	"strconv"

	"github.com/moimran/netdata/pkg/configuration"
)

type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// UsePaginated reads page/limit query parameters, clamping limit to the
// configured maximum. Page numbers start at 1.
func UsePaginated(r *http.Request) PaginationParams {
	conf := configuration.Use()

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = conf.PageSize
	}
	if limit > conf.MaxPageSize {
		limit = conf.MaxPageSize
	}
	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
