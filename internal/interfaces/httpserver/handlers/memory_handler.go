package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/continuumhq/continuum-server/internal/domain/entity"
	"github.com/continuumhq/continuum-server/internal/domain/memory"
	"github.com/continuumhq/continuum-server/internal/infrastructure/metrics"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/responses"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// MemoryHandler exposes the continuity memory endpoints of an entity.
type MemoryHandler struct {
	service  *memory.Service
	entities *entity.Service
	log      zerolog.Logger
}

func NewMemoryHandler(service *memory.Service, entities *entity.Service, log zerolog.Logger) *MemoryHandler {
	return &MemoryHandler{
		service:  service,
		entities: entities,
		log:      log.With().Str("component", "memory-handler").Logger(),
	}
}

type memoryResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	Importance int       `json:"importance"`
	Tags       []string  `json:"tags,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

func newMemoryResponse(m *memory.Memory) memoryResponse {
	return memoryResponse{
		ID:         m.PublicID,
		Type:       string(m.Type),
		Content:    m.Content,
		Importance: m.Importance,
		Tags:       m.Tags,
		OccurredAt: m.OccurredAt,
		CreatedAt:  m.CreatedAt,
	}
}

// resolveEntity maps the path entity ID to its internal row, 404ing unknowns.
func (h *MemoryHandler) resolveEntity(c *gin.Context) (*entity.Entity, bool) {
	e, err := h.entities.GetByPublicID(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to resolve entity")
		return nil, false
	}
	return e, true
}

// List godoc
// @Summary      List an entity's memories
// @Tags         memories
// @Produce      json
// @Param        id  path      string  true  "Entity public ID"
// @Success      200  {array}  memoryResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/entities/{id}/memory [get]
func (h *MemoryHandler) List(c *gin.Context) {
	e, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	memories, err := h.service.List(c.Request.Context(), e.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to list memories")
		return
	}
	c.JSON(http.StatusOK, functional.Map(memories, func(m *memory.Memory) memoryResponse {
		return newMemoryResponse(m)
	}))
}

// Create godoc
// @Summary      Create a memory
// @Tags         memories
// @Accept       json
// @Produce      json
// @Param        id       path      string        true  "Entity public ID"
// @Param        request  body      memory.Input  true  "Memory fields"
// @Success      201      {object}  memoryResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/entities/{id}/memory [post]
func (h *MemoryHandler) Create(c *gin.Context) {
	e, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	var input memory.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid memory payload",
			"08f5d2c7-961a-4e38-b4d0-73c2e9a5f816")
		return
	}

	m, err := h.service.Create(c.Request.Context(), e.ID, input)
	if err != nil {
		metrics.MemoryMutationsTotal.WithLabelValues("create", "error").Inc()
		responses.HandleError(c, err, "failed to create memory")
		return
	}
	metrics.MemoryMutationsTotal.WithLabelValues("create", "ok").Inc()
	c.JSON(http.StatusCreated, newMemoryResponse(m))
}

type importResponse struct {
	Imported int `json:"imported"`
}

// Import godoc
// @Summary      Replace an entity's memory collection
// @Description  Accepts an exported memory file. Ownership fields in the records are stripped and every record gets a fresh ID.
// @Tags         memories
// @Accept       json
// @Produce      json
// @Param        id       path      string  true  "Entity public ID"
// @Param        request  body      []memory.Input  true  "Exported records"
// @Success      200      {object}  importResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/entities/{id}/memory [put]
func (h *MemoryHandler) Import(c *gin.Context) {
	e, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid import payload",
			"d40a6e91-23c8-4f57-b1e6-85d0c7a3f294")
		return
	}

	inputs, err := memory.SanitizeImport(c.Request.Context(), raw)
	if err != nil {
		responses.HandleError(c, err, "invalid import payload")
		return
	}

	imported, err := h.service.Import(c.Request.Context(), e.ID, inputs)
	if err != nil {
		metrics.MemoryMutationsTotal.WithLabelValues("import", "error").Inc()
		responses.HandleError(c, err, "failed to import memories")
		return
	}
	metrics.MemoryMutationsTotal.WithLabelValues("import", "ok").Inc()
	c.JSON(http.StatusOK, importResponse{Imported: imported})
}

type clearResponse struct {
	Deleted int64 `json:"deleted"`
}

// Clear godoc
// @Summary      Delete an entity's whole memory collection
// @Tags         memories
// @Produce      json
// @Param        id  path      string  true  "Entity public ID"
// @Success      200  {object}  clearResponse
// @Router       /v1/entities/{id}/memory [delete]
func (h *MemoryHandler) Clear(c *gin.Context) {
	e, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	deleted, err := h.service.Clear(c.Request.Context(), e.ID)
	if err != nil {
		metrics.MemoryMutationsTotal.WithLabelValues("clear", "error").Inc()
		responses.HandleError(c, err, "failed to clear memories")
		return
	}
	metrics.MemoryMutationsTotal.WithLabelValues("clear", "ok").Inc()
	c.JSON(http.StatusOK, clearResponse{Deleted: deleted})
}

// Export godoc
// @Summary      Export an entity's memories
// @Description  Point-in-time snapshot without ownership fields, suitable for re-import.
// @Tags         memories
// @Produce      json
// @Param        id  path      string  true  "Entity public ID"
// @Success      200  {array}  memory.ExportRecord
// @Router       /v1/entities/{id}/memory/export [get]
func (h *MemoryHandler) Export(c *gin.Context) {
	e, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	records, err := h.service.Export(c.Request.Context(), e.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to export memories")
		return
	}
	c.Header("Content-Disposition", `attachment; filename="memories-`+e.PublicID+`.json"`)
	c.JSON(http.StatusOK, records)
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// BulkDelete godoc
// @Summary      Delete memories by ID
// @Description  Deletes in parallel, all-settled: failures are reported per ID rather than aborting the batch.
// @Tags         memories
// @Accept       json
// @Produce      json
// @Param        id       path      string             true  "Entity public ID"
// @Param        request  body      bulkDeleteRequest  true  "Memory public IDs"
// @Success      200      {object}  memory.BulkDeleteResult
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/entities/{id}/memory/bulk-delete [post]
func (h *MemoryHandler) BulkDelete(c *gin.Context) {
	e, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid bulk delete payload",
			"76e3c0d5-18af-4b92-8c54-e02d7f9a1635")
		return
	}

	result, err := h.service.BulkDelete(c.Request.Context(), e.ID, req.IDs)
	if err != nil {
		metrics.MemoryMutationsTotal.WithLabelValues("bulk_delete", "error").Inc()
		responses.HandleError(c, err, "failed to delete memories")
		return
	}
	metrics.MemoryMutationsTotal.WithLabelValues("bulk_delete", "ok").Inc()
	c.JSON(http.StatusOK, result)
}

// Update godoc
// @Summary      Update a memory
// @Tags         memories
// @Accept       json
// @Produce      json
// @Param        id       path      string        true  "Entity public ID"
// @Param        memId    path      string        true  "Memory public ID"
// @Param        request  body      memory.Input  true  "Memory fields"
// @Success      200      {object}  memoryResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Router       /v1/entities/{id}/memory/{memId} [put]
func (h *MemoryHandler) Update(c *gin.Context) {
	e, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	var input memory.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid memory payload",
			"1b84f6e2-d507-4a39-b0c8-96e4d2c7a153")
		return
	}

	m, err := h.service.Update(c.Request.Context(), e.ID, c.Param("memId"), input)
	if err != nil {
		metrics.MemoryMutationsTotal.WithLabelValues("update", "error").Inc()
		responses.HandleError(c, err, "failed to update memory")
		return
	}
	metrics.MemoryMutationsTotal.WithLabelValues("update", "ok").Inc()
	c.JSON(http.StatusOK, newMemoryResponse(m))
}

// Delete godoc
// @Summary      Delete a memory
// @Tags         memories
// @Produce      json
// @Param        id     path  string  true  "Entity public ID"
// @Param        memId  path  string  true  "Memory public ID"
// @Success      204
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/entities/{id}/memory/{memId} [delete]
func (h *MemoryHandler) Delete(c *gin.Context) {
	e, ok := h.resolveEntity(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), e.ID, c.Param("memId")); err != nil {
		metrics.MemoryMutationsTotal.WithLabelValues("delete", "error").Inc()
		responses.HandleError(c, err, "failed to delete memory")
		return
	}
	metrics.MemoryMutationsTotal.WithLabelValues("delete", "ok").Inc()
	c.Status(http.StatusNoContent)
}
