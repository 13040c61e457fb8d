package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/continuumhq/continuum-server/internal/domain/signup"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/requests"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/responses"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// SignupHandler exposes the signup request log and the approval flow.
type SignupHandler struct {
	service *signup.Service
	log     zerolog.Logger
}

func NewSignupHandler(service *signup.Service, log zerolog.Logger) *SignupHandler {
	return &SignupHandler{
		service: service,
		log:     log.With().Str("component", "signup-handler").Logger(),
	}
}

type signupRequestResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Source    *string   `json:"source,omitempty"`
	Message   *string   `json:"message,omitempty"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type signupListResponse struct {
	Requests []signupRequestResponse `json:"requests"`
	Total    int64                   `json:"total"`
}

func newSignupRequestResponse(r *signup.Request) signupRequestResponse {
	return signupRequestResponse{
		ID:        r.PublicID,
		Email:     r.Email,
		Source:    r.Source,
		Message:   r.Message,
		Attempts:  r.Attempts,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type logSignupRequest struct {
	Email   string  `json:"email" binding:"required"`
	Source  *string `json:"source"`
	Message *string `json:"message"`
}

// Log godoc
// @Summary      Record a signup request
// @Description  Upserts by email; repeat requests bump the attempt counter.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      logSignupRequest  true  "Signup request"
// @Success      200      {object}  signupRequestResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/auth/log-signup-request [post]
func (h *SignupHandler) Log(c *gin.Context) {
	var req logSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid signup payload",
			"4f10c8e7-d392-4b56-a0e4-71d6c2a9f853")
		return
	}

	r, err := h.service.Log(c.Request.Context(), req.Email, req.Source, req.Message)
	if err != nil {
		responses.HandleError(c, err, "failed to record signup request")
		return
	}
	c.JSON(http.StatusOK, newSignupRequestResponse(r))
}

// List godoc
// @Summary      List signup requests
// @Tags         admin
// @Produce      json
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Page offset"
// @Param        search  query     string  false  "Email or source search"
// @Success      200     {object}  signupListResponse
// @Router       /v1/admin/signup-requests [get]
func (h *SignupHandler) List(c *gin.Context) {
	pagination, err := requests.GetPaginationFromQuery(c)
	if err != nil {
		responses.HandleError(c, err, "invalid pagination")
		return
	}
	filter := signup.Filter{Search: requests.SearchFromQuery(c)}

	rows, total, err := h.service.List(c.Request.Context(), filter, pagination)
	if err != nil {
		responses.HandleError(c, err, "failed to list signup requests")
		return
	}
	c.JSON(http.StatusOK, signupListResponse{
		Requests: functional.Map(rows, func(r *signup.Request) signupRequestResponse { return newSignupRequestResponse(r) }),
		Total:    total,
	})
}

type approveResponse struct {
	Success bool `json:"success"`
	// User is null when an existing account already matched the email.
	User *userResponse `json:"user"`
}

// Approve godoc
// @Summary      Approve a signup request
// @Description  Creates the account unless one with the same email already exists. The request is removed either way, so re-approval is safe.
// @Tags         admin
// @Produce      json
// @Param        id  path      string  true  "Request public ID"
// @Success      200  {object}  approveResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/signup-requests/{id}/approve [post]
func (h *SignupHandler) Approve(c *gin.Context) {
	result, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to approve signup request")
		return
	}

	resp := approveResponse{Success: true}
	if result.Created != nil {
		u := newUserResponse(result.Created)
		resp.User = &u
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a signup request
// @Tags         admin
// @Param        id  path  string  true  "Request public ID"
// @Success      204
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/admin/signup-requests/{id}/delete [delete]
func (h *SignupHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to delete signup request")
		return
	}
	c.Status(http.StatusNoContent)
}
