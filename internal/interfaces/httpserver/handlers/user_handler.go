package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/continuumhq/continuum-server/internal/domain/purge"
	"github.com/continuumhq/continuum-server/internal/domain/user"
	"github.com/continuumhq/continuum-server/internal/domain/workflow"
	"github.com/continuumhq/continuum-server/internal/infrastructure/metrics"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/requests"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/responses"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// UserHandler exposes the admin user endpoints and the purge cascade.
type UserHandler struct {
	service    *user.Service
	purger     *purge.Purger
	operations *workflow.Registry
	log        zerolog.Logger
}

func NewUserHandler(service *user.Service, purger *purge.Purger, operations *workflow.Registry, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		service:    service,
		purger:     purger,
		operations: operations,
		log:        log.With().Str("component", "user-handler").Logger(),
	}
}

type userResponse struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           *string    `json:"email,omitempty"`
	Role            string     `json:"role"`
	Blocked         bool       `json:"blocked"`
	LastActiveAt    *time.Time `json:"lastActiveAt,omitempty"`
	DefaultEntityID *string    `json:"defaultEntityId,omitempty"`
	AgentModel      *string    `json:"agentModel,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type userListResponse struct {
	Users []userResponse `json:"users"`
	Total int64          `json:"total"`
}

func newUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:              u.PublicID,
		Username:        u.Username,
		Email:           u.Email,
		Role:            string(u.Role),
		Blocked:         u.Blocked,
		LastActiveAt:    u.LastActiveAt,
		DefaultEntityID: u.DefaultEntityID,
		AgentModel:      u.AgentModel,
		CreatedAt:       u.CreatedAt,
	}
}

// List godoc
// @Summary      List users
// @Description  Paginated user list with username/email search.
// @Tags         admin
// @Produce      json
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Page offset"
// @Param        search  query     string  false  "Username or email search"
// @Success      200     {object}  userListResponse
// @Failure      400     {object}  responses.ErrorResponse
// @Router       /v1/admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	pagination, err := requests.GetPaginationFromQuery(c)
	if err != nil {
		responses.HandleError(c, err, "invalid pagination")
		return
	}
	filter := user.Filter{Search: requests.SearchFromQuery(c)}

	users, total, err := h.service.List(c.Request.Context(), filter, pagination)
	if err != nil {
		responses.HandleError(c, err, "failed to list users")
		return
	}
	c.JSON(http.StatusOK, userListResponse{
		Users: functional.Map(users, func(u *user.User) userResponse { return newUserResponse(u) }),
		Total: total,
	})
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetRole godoc
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      string       true  "User public ID"
// @Param        request  body      roleRequest  true  "New role"
// @Success      200      {object}  userResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/users/{id}/role [patch]
func (h *UserHandler) SetRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid role payload",
			"d17f4e82-60c9-4a35-b2d8-95e0c3a6f741")
		return
	}

	u, err := h.service.SetRole(c.Request.Context(), c.Param("id"), user.Role(req.Role))
	if err != nil {
		responses.HandleError(c, err, "failed to update role")
		return
	}
	c.JSON(http.StatusOK, newUserResponse(u))
}

type blockRequest struct {
	Blocked *bool `json:"blocked" binding:"required"`
}

// SetBlocked godoc
// @Summary      Block or unblock a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path      string        true  "User public ID"
// @Param        request  body      blockRequest  true  "Blocked flag"
// @Success      200      {object}  userResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/users/{id}/block [patch]
func (h *UserHandler) SetBlocked(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid block payload",
			"3a60d9f5-c281-4e74-b0c3-76e1d5a8f290")
		return
	}

	u, err := h.service.SetBlocked(c.Request.Context(), c.Param("id"), *req.Blocked)
	if err != nil {
		responses.HandleError(c, err, "failed to update blocked flag")
		return
	}
	c.JSON(http.StatusOK, newUserResponse(u))
}

type purgeResponse struct {
	OperationID string           `json:"operationId"`
	State       workflow.State   `json:"state"`
	Results     map[string]int64 `json:"results"`
	Error       string           `json:"error,omitempty"`
}

// Purge godoc
// @Summary      Purge a user
// @Description  Irreversibly deletes the user and every dependent record, reporting per-category counts.
// @Tags         admin
// @Produce      json
// @Param        id  path      string  true  "User public ID"
// @Success      200  {object}  purgeResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/admin/users/{id}/purge [delete]
func (h *UserHandler) Purge(c *gin.Context) {
	op := h.operations.Begin("user_purge")
	if err := op.Start(); err != nil {
		responses.HandleError(c, err, "failed to start purge")
		return
	}

	result, err := h.purger.PurgeUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = op.Fail(err.Error(), result)
		h.log.Error().Err(err).Str("user_id", c.Param("id")).Msg("user purge failed")
		snap := op.Snapshot()
		// Partial counts accumulated before the failure still reach the caller.
		c.JSON(statusForPurgeError(err), purgeResponse{
			OperationID: op.ID,
			State:       snap.State,
			Results:     snap.Counts,
			Error:       snap.Failure,
		})
		return
	}
	_ = op.Succeed(result)

	for category, n := range result {
		metrics.PurgedRecordsTotal.WithLabelValues(category).Add(float64(n))
	}

	snap := op.Snapshot()
	c.JSON(http.StatusOK, purgeResponse{
		OperationID: op.ID,
		State:       snap.State,
		Results:     snap.Counts,
	})
}

func statusForPurgeError(err error) int {
	if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
