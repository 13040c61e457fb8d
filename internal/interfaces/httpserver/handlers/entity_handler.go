package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/continuumhq/continuum-server/internal/domain/entity"
	"github.com/continuumhq/continuum-server/internal/domain/listview"
	"github.com/continuumhq/continuum-server/internal/domain/workflow"
	"github.com/continuumhq/continuum-server/internal/infrastructure/metrics"
	"github.com/continuumhq/continuum-server/internal/infrastructure/toolcatalog"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/requests"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/responses"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
	"github.com/continuumhq/continuum-server/internal/utils/platformerrors"
)

// EntityHandler exposes entity configuration and the admin entity screen.
type EntityHandler struct {
	service    *entity.Service
	tools      *toolcatalog.Catalog
	operations *workflow.Registry
	validate   *validator.Validate
	log        zerolog.Logger
}

func NewEntityHandler(service *entity.Service, tools *toolcatalog.Catalog, operations *workflow.Registry, log zerolog.Logger) *EntityHandler {
	return &EntityHandler{
		service:    service,
		tools:      tools,
		operations: operations,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		log:        log.With().Str("component", "entity-handler").Logger(),
	}
}

type entityResponse struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Description     *string               `json:"description,omitempty"`
	IsSystem        bool                  `json:"isSystem"`
	AssocUserIDs    []string              `json:"assocUserIds"`
	Model           string                `json:"model"`
	ModelOverride   *string               `json:"modelOverride,omitempty"`
	EffectiveModel  string                `json:"effectiveModel"`
	ReasoningEffort string                `json:"reasoningEffort"`
	Tools           []string              `json:"tools"`
	Voice           *entity.VoiceConfig   `json:"voice,omitempty"`
	Pulse           *entity.PulseSchedule `json:"pulse,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

type entitySummaryResponse struct {
	entityResponse
	MemoryCount int64 `json:"memoryCount"`
}

func newEntityResponse(e *entity.Entity) entityResponse {
	return entityResponse{
		ID:              e.PublicID,
		Name:            e.Name,
		Description:     e.Description,
		IsSystem:        e.IsSystem,
		AssocUserIDs:    e.AssocUserIDs,
		Model:           e.Model,
		ModelOverride:   e.ModelOverride,
		EffectiveModel:  e.EffectiveModel(),
		ReasoningEffort: string(e.ReasoningEffort),
		Tools:           e.Tools,
		Voice:           e.Voice,
		Pulse:           e.Pulse,
		CreatedAt:       e.CreatedAt,
	}
}

type entityInput struct {
	Name            string                `json:"name" validate:"required,max=120"`
	Description     *string               `json:"description"`
	AssocUserIDs    []string              `json:"assocUserIds"`
	Model           string                `json:"model"`
	ModelOverride   *string               `json:"modelOverride"`
	ReasoningEffort string                `json:"reasoningEffort" validate:"omitempty,oneof=low medium high"`
	Tools           []string              `json:"tools"`
	Voice           *entity.VoiceConfig   `json:"voice"`
	Pulse           *entity.PulseSchedule `json:"pulse"`
}

func (h *EntityHandler) domainInput(req entityInput) entity.Input {
	return entity.Input{
		Name:            req.Name,
		Description:     req.Description,
		AssocUserIDs:    req.AssocUserIDs,
		Model:           req.Model,
		ModelOverride:   req.ModelOverride,
		ReasoningEffort: entity.ReasoningEffort(req.ReasoningEffort),
		Tools:           req.Tools,
		Voice:           req.Voice,
		Pulse:           req.Pulse,
	}
}

func (h *EntityHandler) validateTools(c *gin.Context, tools []string) bool {
	for _, name := range tools {
		if !h.tools.Has(name) {
			responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "unknown tool: "+name,
				"90c5e2d8-47af-4163-b7e0-28d9c1a5f634")
			return false
		}
	}
	return true
}

// Create godoc
// @Summary      Create an entity
// @Tags         entities
// @Accept       json
// @Produce      json
// @Param        request  body      entityInput  true  "Entity configuration"
// @Success      201      {object}  entityResponse
// @Failure      400      {object}  responses.ErrorResponse
// @Router       /v1/entities [post]
func (h *EntityHandler) Create(c *gin.Context) {
	var req entityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid entity payload",
			"e26d8f40-1c95-4b73-a8e2-60d5c9a3f187")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(),
			"3f18a5c2-d970-46be-8e04-b1c72d5a9f63")
		return
	}
	if !h.validateTools(c, req.Tools) {
		return
	}

	e, err := h.service.Create(c.Request.Context(), h.domainInput(req))
	if err != nil {
		responses.HandleError(c, err, "failed to create entity")
		return
	}
	c.JSON(http.StatusCreated, newEntityResponse(e))
}

// Update godoc
// @Summary      Update an entity
// @Tags         entities
// @Accept       json
// @Produce      json
// @Param        id       path      string       true  "Entity public ID"
// @Param        request  body      entityInput  true  "Entity configuration"
// @Success      200      {object}  entityResponse
// @Failure      404      {object}  responses.ErrorResponse
// @Router       /v1/entities/{id} [put]
func (h *EntityHandler) Update(c *gin.Context) {
	var req entityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid entity payload",
			"57b0d3e9-a624-4f18-92c7-e85d0c1a6f34")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(),
			"ac42e7d1-65f8-4b09-9d23-70c1e8b5a4f6")
		return
	}
	if !h.validateTools(c, req.Tools) {
		return
	}

	e, err := h.service.Update(c.Request.Context(), c.Param("id"), h.domainInput(req))
	if err != nil {
		responses.HandleError(c, err, "failed to update entity")
		return
	}
	c.JSON(http.StatusOK, newEntityResponse(e))
}

// entityListView drives the admin entity screen's within-page search, facet
// filtering, and sorting.
var entityListView = listview.New(
	func(s *entity.Summary) []string {
		fields := []string{s.Name, s.Model}
		if s.Description != nil {
			fields = append(fields, *s.Description)
		}
		return fields
	},
	map[string]listview.SortKey[*entity.Summary]{
		"name": {
			Compare: func(a, b *entity.Summary) int { return listview.CompareStrings(a.Name, b.Name) },
			Default: listview.Ascending,
		},
		"created": {
			Compare: func(a, b *entity.Summary) int { return a.CreatedAt.Compare(b.CreatedAt) },
			Default: listview.Descending,
		},
		"memories": {
			Compare: func(a, b *entity.Summary) int {
				switch {
				case a.MemoryCount < b.MemoryCount:
					return -1
				case a.MemoryCount > b.MemoryCount:
					return 1
				}
				return 0
			},
			Default: listview.Descending,
		},
	},
)

// ListSummaries godoc
// @Summary      List entities with memory counts
// @Description  Optional within-page search over name/description/model, orphaned facet, and sortKey/dir ordering. An absent dir uses the key's default direction.
// @Tags         admin
// @Produce      json
// @Param        search    query     string  false  "Free-text search"
// @Param        orphaned  query     bool    false  "Only purge-eligible entities"
// @Param        sortKey   query     string  false  "Sort column (name, created, memories)"
// @Param        dir       query     string  false  "Sort direction (asc, desc)"
// @Success      200  {array}  entitySummaryResponse
// @Router       /v1/admin/entities [get]
func (h *EntityHandler) ListSummaries(c *gin.Context) {
	summaries, err := h.service.ListSummaries(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "failed to list entities")
		return
	}

	var search string
	if s := requests.SearchFromQuery(c); s != nil {
		search = *s
	}
	var facets []func(*entity.Summary) bool
	if c.Query("orphaned") == "true" {
		facets = append(facets, func(s *entity.Summary) bool { return s.Orphaned() })
	}
	rows := entityListView.Filter(summaries, search, facets...)

	if sortKey, dir := requests.SortFromQuery(c); sortKey != "" {
		sortDir := listview.Ascending
		if dir != nil {
			sortDir = *dir
		} else {
			// A freshly selected key starts in its default direction.
			_, sortDir = entityListView.Toggle("", listview.Ascending, sortKey)
		}
		rows = entityListView.Sort(rows, sortKey, sortDir)
	}

	c.JSON(http.StatusOK, functional.Map(rows, func(s *entity.Summary) entitySummaryResponse {
		return entitySummaryResponse{
			entityResponse: newEntityResponse(&s.Entity),
			MemoryCount:    s.MemoryCount,
		}
	}))
}

type entityDeleteResponse struct {
	DeletedMemories int64 `json:"deletedMemories"`
}

// Delete godoc
// @Summary      Delete an entity and its memories
// @Tags         admin
// @Produce      json
// @Param        id  path      string  true  "Entity public ID"
// @Success      200  {object}  entityDeleteResponse
// @Failure      404  {object}  responses.ErrorResponse
// @Router       /v1/admin/entities/{id}/delete [delete]
func (h *EntityHandler) Delete(c *gin.Context) {
	deletedMemories, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		responses.HandleError(c, err, "failed to delete entity")
		return
	}
	metrics.PurgedRecordsTotal.WithLabelValues("memories").Add(float64(deletedMemories))
	metrics.PurgedRecordsTotal.WithLabelValues("entities").Inc()
	c.JSON(http.StatusOK, entityDeleteResponse{DeletedMemories: deletedMemories})
}

type orphanPurgeResponse struct {
	OperationID string              `json:"operationId"`
	State       workflow.State      `json:"state"`
	Result      *entity.PurgeResult `json:"result,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// PurgeOrphaned godoc
// @Summary      Purge orphaned entities
// @Description  Deletes every non-system entity with no associated users, with its memories.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  orphanPurgeResponse
// @Router       /v1/admin/entities/purge-orphaned [post]
func (h *EntityHandler) PurgeOrphaned(c *gin.Context) {
	op := h.operations.Begin("orphan_purge")
	if err := op.Start(); err != nil {
		responses.HandleError(c, err, "failed to start purge")
		return
	}

	result, err := h.service.PurgeOrphaned(c.Request.Context())
	if err != nil {
		_ = op.Fail(err.Error(), nil)
		h.log.Error().Err(err).Msg("orphan purge failed")
		c.JSON(http.StatusInternalServerError, orphanPurgeResponse{
			OperationID: op.ID,
			State:       workflow.StateFailed,
			Error:       err.Error(),
		})
		return
	}
	_ = op.Succeed(map[string]int64{
		"entities": result.DeletedEntities,
		"memories": result.DeletedMemories,
	})

	metrics.PurgedRecordsTotal.WithLabelValues("entities").Add(float64(result.DeletedEntities))
	metrics.PurgedRecordsTotal.WithLabelValues("memories").Add(float64(result.DeletedMemories))

	c.JSON(http.StatusOK, orphanPurgeResponse{
		OperationID: op.ID,
		State:       workflow.StateSucceeded,
		Result:      result,
	})
}
