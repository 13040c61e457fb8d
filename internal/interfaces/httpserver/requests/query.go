package requests

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/continuumhq/continuum-server/internal/domain/listview"
	"github.com/continuumhq/continuum-server/internal/domain/query"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// GetPaginationFromQuery parses limit/offset/order query parameters.
func GetPaginationFromQuery(reqCtx *gin.Context) (*query.Pagination, error) {
	limitStr := reqCtx.DefaultQuery("limit", "20")
	offsetStr := reqCtx.Query("offset")
	order := reqCtx.DefaultQuery("order", "desc")

	var limit *int
	if limitStr != "" {
		limitInt, err := strconv.Atoi(limitStr)
		if err != nil || limitInt < 1 {
			return nil, platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "invalid limit number", nil, "b4ce7d10-5a82-4f39-9de6-07c3e1a8f542")
		}
		limit = &limitInt
	}

	var offset *int
	if offsetStr != "" {
		offsetInt, err := strconv.Atoi(offsetStr)
		if err != nil || offsetInt < 0 {
			return nil, platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "invalid offset number", nil, "e82d0f96-31c5-4a74-b8e0-59d6c2a1f738")
		}
		offset = &offsetInt
	}

	if order != "asc" && order != "desc" {
		return nil, platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeValidation, "invalid order", nil, "07a9c5e3-d261-4f80-95b4-c38e6d0a2f17")
	}

	return &query.Pagination{
		Limit:  limit,
		Offset: offset,
		Order:  order,
	}, nil
}

// SearchFromQuery returns the raw search parameter, nil when absent.
func SearchFromQuery(reqCtx *gin.Context) *string {
	if search := reqCtx.Query("search"); search != "" {
		return &search
	}
	return nil
}

// SortFromQuery parses the sortKey/dir parameters of the list screens. dir
// is nil when absent or unrecognized, letting the view fall back to the
// key's default direction.
func SortFromQuery(reqCtx *gin.Context) (string, *listview.Direction) {
	key := reqCtx.Query("sortKey")
	switch reqCtx.Query("dir") {
	case "asc":
		d := listview.Ascending
		return key, &d
	case "desc":
		d := listview.Descending
		return key, &d
	}
	return key, nil
}
