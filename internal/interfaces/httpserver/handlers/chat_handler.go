package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/continuumhq/continuum-server/internal/domain/chat"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/middlewares"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/requests"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/responses"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// ChatHandler exposes the chat lifecycle endpoints.
type ChatHandler struct {
	service *chat.Service
	log     zerolog.Logger
}

func NewChatHandler(service *chat.Service, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log.With().Str("component", "chat-handler").Logger(),
	}
}

type messageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type chatResponse struct {
	ID        string            `json:"id"`
	Title     *string           `json:"title,omitempty"`
	Public    bool              `json:"public"`
	ShareSlug *string           `json:"shareSlug,omitempty"`
	Messages  []messageResponse `json:"messages,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type chatListResponse struct {
	Chats []chatResponse `json:"chats"`
	Total int64          `json:"total"`
}

func newChatResponse(c *chat.Chat) chatResponse {
	return chatResponse{
		ID:        c.PublicID,
		Title:     c.Title,
		Public:    c.Public,
		ShareSlug: c.ShareSlug,
		Messages: functional.Map(c.Messages, func(m chat.Message) messageResponse {
			return messageResponse{
				ID:        m.PublicID,
				Role:      m.Role,
				Content:   m.Content,
				CreatedAt: m.CreatedAt,
			}
		}),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func principalOrAbort(c *gin.Context) (uint, bool) {
	principal, ok := middlewares.PrincipalFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required",
			"45d91c60-e7f3-4a28-b5d0-82c6e1a9f374")
		return 0, false
	}
	return principal.ID, true
}

type createChatRequest struct {
	EntityID *string `json:"entityId"`
	Title    *string `json:"title"`
}

// Create godoc
// @Summary      Create a chat
// @Description  Creates a chat bound to the named entity, falling back to the system default.
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        request  body      createChatRequest  true  "Chat fields"
// @Success      201      {object}  chatResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/chats [post]
func (h *ChatHandler) Create(c *gin.Context) {
	userID, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid chat payload",
			"63a0f8d2-7c15-4e94-b3a6-d08e2c5f1794")
		return
	}

	created, err := h.service.Create(c.Request.Context(), chat.CreateInput{
		UserID:         userID,
		EntityPublicID: req.EntityID,
		Title:          req.Title,
	})
	if err != nil {
		responses.HandleError(c, err, "failed to create chat")
		return
	}
	c.JSON(http.StatusCreated, newChatResponse(created))
}

// List godoc
// @Summary      List the caller's chats
// @Tags         chats
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Page offset"
// @Success      200     {object}  chatListResponse
// @Router       /v1/chats [get]
func (h *ChatHandler) List(c *gin.Context) {
	userID, ok := principalOrAbort(c)
	if !ok {
		return
	}
	pagination, err := requests.GetPaginationFromQuery(c)
	if err != nil {
		responses.HandleError(c, err, "invalid pagination")
		return
	}

	chats, total, err := h.service.List(c.Request.Context(), userID, pagination)
	if err != nil {
		responses.HandleError(c, err, "failed to list chats")
		return
	}
	c.JSON(http.StatusOK, chatListResponse{
		Chats: functional.Map(chats, func(ch *chat.Chat) chatResponse { return newChatResponse(ch) }),
		Total: total,
	})
}

// Get godoc
// @Summary      Fetch a chat with its messages
// @Tags         chats
// @Produce      json
// @Param        id  path      string  true  "Chat public ID"
// @Success      200  {object}  chatResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/chats/{id} [get]
func (h *ChatHandler) Get(c *gin.Context) {
	userID, ok := principalOrAbort(c)
	if !ok {
		return
	}
	ch, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to fetch chat")
		return
	}
	c.JSON(http.StatusOK, newChatResponse(ch))
}

type addMessageRequest struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// AddMessage godoc
// @Summary      Append a message
// @Tags         chats
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Chat public ID"
// @Param        request  body      addMessageRequest  true  "Message"
// @Success      201      {object}  messageResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Router       /v1/chats/{id}/messages [post]
func (h *ChatHandler) AddMessage(c *gin.Context) {
	userID, ok := principalOrAbort(c)
	if !ok {
		return
	}
	var req addMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid message payload",
			"b92c7f50-3d18-4e64-a7c2-08f5d1e6a934")
		return
	}

	m, err := h.service.AddMessage(c.Request.Context(), userID, c.Param("id"), req.Role, req.Content)
	if err != nil {
		responses.HandleError(c, err, "failed to append message")
		return
	}
	c.JSON(http.StatusCreated, messageResponse{
		ID:        m.PublicID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	})
}

// Copy godoc
// @Summary      Duplicate a chat
// @Description  Copies the chat and its messages under fresh IDs. Copies are never shared.
// @Tags         chats
// @Produce      json
// @Param        id  path      string  true  "Chat public ID"
// @Success      201  {object}  chatResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/chats/{id}/copy [post]
func (h *ChatHandler) Copy(c *gin.Context) {
	userID, ok := principalOrAbort(c)
	if !ok {
		return
	}
	copied, err := h.service.Copy(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to copy chat")
		return
	}
	c.JSON(http.StatusCreated, newChatResponse(copied))
}

// Export godoc
// @Summary      Export a chat snapshot
// @Tags         chats
// @Produce      json
// @Param        id  path      string  true  "Chat public ID"
// @Success      200  {object}  chat.ExportSnapshot
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/chats/{id}/export [get]
func (h *ChatHandler) Export(c *gin.Context) {
	userID, ok := principalOrAbort(c)
	if !ok {
		return
	}
	snap, err := h.service.Export(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to export chat")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="chat-`+snap.ID+`.json"`)
	c.JSON(http.StatusOK, snap)
}

// Share godoc
// @Summary      Share a chat
// @Description  Marks the chat public and assigns a share slug.
// @Tags         chats
// @Produce      json
// @Param        id  path      string  true  "Chat public ID"
// @Success      200  {object}  chatResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/chats/{id}/share [post]
func (h *ChatHandler) Share(c *gin.Context) {
	userID, ok := principalOrAbort(c)
	if !ok {
		return
	}
	ch, err := h.service.Share(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to share chat")
		return
	}
	c.JSON(http.StatusOK, newChatResponse(ch))
}

// Unshare godoc
// @Summary      Revoke a chat's share link
// @Tags         chats
// @Produce      json
// @Param        id  path      string  true  "Chat public ID"
// @Success      200  {object}  chatResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/chats/{id}/share [delete]
func (h *ChatHandler) Unshare(c *gin.Context) {
	userID, ok := principalOrAbort(c)
	if !ok {
		return
	}
	ch, err := h.service.Unshare(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to unshare chat")
		return
	}
	c.JSON(http.StatusOK, newChatResponse(ch))
}

// Clear godoc
// @Summary      Delete a chat's messages, keeping the chat
// @Tags         chats
// @Produce      json
// @Param        id  path      string  true  "Chat public ID"
// @Success      200  {object}  clearResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/chats/{id}/clear [post]
func (h *ChatHandler) Clear(c *gin.Context) {
	userID, ok := principalOrAbort(c)
	if !ok {
		return
	}
	deleted, err := h.service.Clear(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to clear chat")
		return
	}
	c.JSON(http.StatusOK, clearResponse{Deleted: deleted})
}

// Delete godoc
// @Summary      Delete a chat
// @Tags         chats
// @Param        id  path  string  true  "Chat public ID"
// @Success      204
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/chats/{id} [delete]
func (h *ChatHandler) Delete(c *gin.Context) {
	userID, ok := principalOrAbort(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		responses.HandleError(c, err, "failed to delete chat")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetShared godoc
// @Summary      Fetch a publicly shared chat
// @Description  No authentication; the chat must still be public.
// @Tags         chats
// @Produce      json
// @Param        slug  path      string  true  "Share slug"
// @Success      200   {object}  chatResponse
// @Failure      404   {object}  responses.ErrorResponse
// @Router       /v1/shared/{slug} [get]
func (h *ChatHandler) GetShared(c *gin.Context) {
	ch, err := h.service.GetShared(c.Request.Context(), c.Param("slug"))
	if err != nil {
		responses.HandleError(c, err, "shared chat not found")
		return
	}
	c.JSON(http.StatusOK, newChatResponse(ch))
}
