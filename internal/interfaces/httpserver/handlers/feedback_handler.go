package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/continuumhq/continuum-server/internal/domain/feedback"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/middlewares"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/requests"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/responses"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// FeedbackHandler exposes feedback submission and the admin list/delete.
type FeedbackHandler struct {
	service *feedback.Service
	log     zerolog.Logger
}

func NewFeedbackHandler(service *feedback.Service, log zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		log:     log.With().Str("component", "feedback-handler").Logger(),
	}
}

type feedbackResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Rating    *int      `json:"rating,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type feedbackListResponse struct {
	Feedback []feedbackResponse `json:"feedback"`
	Total    int64              `json:"total"`
}

func newFeedbackResponse(f *feedback.Feedback) feedbackResponse {
	return feedbackResponse{
		ID:        f.PublicID,
		Category:  f.Category,
		Message:   f.Message,
		Rating:    f.Rating,
		CreatedAt: f.CreatedAt,
	}
}

type submitFeedbackRequest struct {
	Category string `json:"category"`
	Message  string `json:"message" binding:"required"`
	Rating   *int   `json:"rating"`
}

// Submit godoc
// @Summary      Submit feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        request  body      submitFeedbackRequest  true  "Feedback"
// @Success      201      {object}  feedbackResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req submitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid feedback payload",
			"c07d5e93-481f-4a62-b8d5-29e0c6a1f387")
		return
	}

	var userID *uint
	if principal, ok := middlewares.PrincipalFromContext(c); ok {
		userID = &principal.ID
	}
	if req.Category == "" {
		req.Category = "general"
	}

	f, err := h.service.Submit(c.Request.Context(), userID, req.Category, req.Message, req.Rating)
	if err != nil {
		responses.HandleError(c, err, "failed to submit feedback")
		return
	}
	c.JSON(http.StatusCreated, newFeedbackResponse(f))
}

// List godoc
// @Summary      List feedback
// @Tags         admin
// @Produce      json
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Page offset"
// @Param        search  query     string  false  "Category or message search"
// @Success      200     {object}  feedbackListResponse
// @Router       /v1/admin/feedback [get]
func (h *FeedbackHandler) List(c *gin.Context) {
	pagination, err := requests.GetPaginationFromQuery(c)
	if err != nil {
		responses.HandleError(c, err, "invalid pagination")
		return
	}
	filter := feedback.Filter{Search: requests.SearchFromQuery(c)}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}

	rows, total, err := h.service.List(c.Request.Context(), filter, pagination)
	if err != nil {
		responses.HandleError(c, err, "failed to list feedback")
		return
	}
	c.JSON(http.StatusOK, feedbackListResponse{
		Feedback: functional.Map(rows, func(f *feedback.Feedback) feedbackResponse { return newFeedbackResponse(f) }),
		Total:    total,
	})
}

// Delete godoc
// @Summary      Delete a feedback row
// @Tags         admin
// @Param        id  path  string  true  "Feedback public ID"
// @Success      204
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/admin/feedback/{id}/delete [delete]
func (h *FeedbackHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to delete feedback")
		return
	}
	c.Status(http.StatusNoContent)
}
