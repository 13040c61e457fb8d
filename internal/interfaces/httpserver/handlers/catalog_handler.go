package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/continuumhq/continuum-server/internal/infrastructure/modelcatalog"
	"github.com/continuumhq/continuum-server/internal/infrastructure/queueclient"
	"github.com/continuumhq/continuum-server/internal/infrastructure/toolcatalog"
	"github.com/continuumhq/continuum-server/internal/infrastructure/voicecatalog"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/responses"
	"github.com/continuumhq/continuum-server/internal/utils/stringutils"
)

// CatalogHandler exposes the queue proxy and the tool/voice/model catalogs.
type CatalogHandler struct {
	queue  *queueclient.Client
	voices *voicecatalog.Client
	models *modelcatalog.Client
	tools  *toolcatalog.Catalog
	log    zerolog.Logger
}

func NewCatalogHandler(
	queue *queueclient.Client,
	voices *voicecatalog.Client,
	models *modelcatalog.Client,
	tools *toolcatalog.Catalog,
	log zerolog.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		queue:  queue,
		voices: voices,
		models: models,
		tools:  tools,
		log:    log.With().Str("component", "catalog-handler").Logger(),
	}
}

// Queues godoc
// @Summary      Queue dashboard
// @Description  Proxies the external job-queue service: counts, workers, and one page of jobs with normalized payloads.
// @Tags         admin
// @Produce      json
// @Param        limit   query     int     false  "Page size"
// @Param        offset  query     int     false  "Page offset"
// @Param        status  query     string  false  "Job status facet"
// @Param        search  query     string  false  "Job name search"
// @Success      200     {object}  queueclient.Stats
// @Failure      502     {object}  responses.ErrorResponse
// @Router       /v1/queues [get]
func (h *CatalogHandler) Queues(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	stats, err := h.queue.Stats(c.Request.Context(), queueclient.Query{
		Limit:  limit,
		Offset: offset,
		Status: c.Query("status"),
		Search: stringutils.EscapeRegex(c.Query("search")),
	})
	if err != nil {
		responses.HandleError(c, err, "queue service unavailable")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Tools godoc
// @Summary      Tool catalog
// @Tags         catalogs
// @Produce      json
// @Success      200  {array}  toolcatalog.Tool
// @Router       /v1/tools [get]
func (h *CatalogHandler) Tools(c *gin.Context) {
	c.JSON(http.StatusOK, h.tools.List())
}

// Voices godoc
// @Summary      Voice catalog
// @Tags         catalogs
// @Produce      json
// @Success      200  {array}  voicecatalog.Voice
// @Failure      502  {object}  responses.ErrorResponse
// @Router       /v1/voices/elevenlabs [get]
func (h *CatalogHandler) Voices(c *gin.Context) {
	voices, err := h.voices.List(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "voice catalog unavailable")
		return
	}
	c.JSON(http.StatusOK, voices)
}

// Models godoc
// @Summary      Model catalog
// @Tags         catalogs
// @Produce      json
// @Success      200  {array}  modelcatalog.Model
// @Failure      502  {object}  responses.ErrorResponse
// @Router       /v1/models [get]
func (h *CatalogHandler) Models(c *gin.Context) {
	models, err := h.models.List(c.Request.Context())
	if err != nil {
		responses.HandleError(c, err, "model catalog unavailable")
		return
	}
	c.JSON(http.StatusOK, models)
}
