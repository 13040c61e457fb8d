package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/continuumhq/continuum-server/internal/domain/pulse"
	"github.com/continuumhq/continuum-server/internal/interfaces/httpserver/responses"
	"github.com/continuumhq/continuum-server/internal/utils/functional"
)

// PulseHandler exposes the pulse log screen.
type PulseHandler struct {
	service *pulse.Service
	log     zerolog.Logger
}

func NewPulseHandler(service *pulse.Service, log zerolog.Logger) *PulseHandler {
	return &PulseHandler{
		service: service,
		log:     log.With().Str("component", "pulse-handler").Logger(),
	}
}

type pulseLogResponse struct {
	EntityID   string    `json:"entityId"`
	Status     string    `json:"status"`
	Summary    string    `json:"summary,omitempty"`
	DurationMS int64     `json:"durationMs"`
	StartedAt  time.Time `json:"startedAt"`
}

type pulsePageResponse struct {
	Logs     []pulseLogResponse `json:"logs"`
	Total    int64              `json:"total"`
	Entities []pulse.EntityRef  `json:"entities"`
}

// List godoc
// @Summary      List pulse logs
// @Description  Paginated wake-cycle logs with entity and status facets, plus the entities available for filtering.
// @Tags         admin
// @Produce      json
// @Param        limit     query     int     false  "Page size"
// @Param        offset    query     int     false  "Page offset"
// @Param        entityId  query     string  false  "Entity public ID facet"
// @Param        status    query     string  false  "Status facet"
// @Success      200       {object}  pulsePageResponse
// @Router       /v1/admin/pulse [get]
func (h *PulseHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := pulse.Filter{}
	if entityID := c.Query("entityId"); entityID != "" {
		filter.EntityPublicID = &entityID
	}
	if status := c.Query("status"); status != "" {
		st := pulse.Status(status)
		filter.Status = &st
	}

	page, err := h.service.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		responses.HandleError(c, err, "failed to list pulse logs")
		return
	}
	c.JSON(http.StatusOK, pulsePageResponse{
		Logs: functional.Map(page.Logs, func(l *pulse.Log) pulseLogResponse {
			return pulseLogResponse{
				EntityID:   l.EntityPublicID,
				Status:     string(l.Status),
				Summary:    l.Summary,
				DurationMS: l.DurationMS,
				StartedAt:  l.StartedAt,
			}
		}),
		Total:    page.Total,
		Entities: page.Entities,
	})
}
