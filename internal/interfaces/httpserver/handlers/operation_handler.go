package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/continuumhq/continuum-server/internal/domain/workflow"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/responses"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// OperationHandler exposes the state of destructive admin operations.
type OperationHandler struct {
	operations *workflow.Registry
}

func NewOperationHandler(operations *workflow.Registry) *OperationHandler {
	return &OperationHandler{operations: operations}
}

// Get godoc
// @Summary      Fetch an operation's state
// @Tags         admin
// @Produce      json
// @Param        id  path      string  true  "Operation ID"
// @Success      200  {object}  workflow.Snapshot
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/admin/operations/{id} [get]
func (h *OperationHandler) Get(c *gin.Context) {
	op, ok := h.operations.Get(c.Param("id"))
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, "operation not found",
			"6d04b8e2-f175-4c93-a0b6-58e2d7c1f049")
		return
	}
	c.JSON(http.StatusOK, op.Snapshot())
}
