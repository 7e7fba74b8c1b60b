package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ilindan-dev/seq-chat-bridge/internal/domain/model"
	repo "github.com/ilindan-dev/seq-chat-bridge/internal/domain/repository"
	"github.com/ilindan-dev/seq-chat-bridge/internal/service"
	"github.com/rs/zerolog"
)

// EventDeliverer is the inbound delivery entry point.
type EventDeliverer interface {
	Deliver(e model.Event)
}

var _ EventDeliverer = (*service.Dispatcher)(nil)

type Handlers struct {
	deliverer EventDeliverer
	journal   repo.DeliveryRepository // nil when the journal is disabled
	logger    zerolog.Logger
}

// NewHandlers creates a new instance of Handlers. journal may be nil.
func NewHandlers(dispatcher *service.Dispatcher, journal repo.DeliveryRepository, logger *zerolog.Logger) *Handlers {
	return newHandlers(dispatcher, journal, logger)
}

func newHandlers(deliverer EventDeliverer, journal repo.DeliveryRepository, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		deliverer: deliverer,
		journal:   journal,
		logger:    logger.With().Str("layer", "http_handler").Logger(),
	}
}

// RegisterRoutes sets up the routing for the ingestion API.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/events", h.IngestEvent)
		api.GET("/deliveries/:eventId", h.GetDelivery)
	}
}

// IngestEvent accepts one log event and starts its delivery in the background.
// The response does not wait for the chat provider.
func (h *Handlers) IngestEvent(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "could not read request body"})
		return
	}

	event, err := model.DecodeEvent(raw)
	if err != nil {
		h.logger.Warn().Err(err).Msg("invalid event body")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	h.deliverer.Deliver(*event)
	c.JSON(http.StatusAccepted, AcceptedResponse{Status: "accepted", ID: event.ID})
}

// GetDelivery returns the journal record of an event.
func (h *Handlers) GetDelivery(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "delivery journal is disabled"})
		return
	}

	eventID := c.Param("eventId")
	delivery, err := h.journal.GetByEventID(c.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error().Err(err).Str("event_id", eventID).Msg("failed to get delivery")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to retrieve delivery"})
		return
	}

	c.JSON(http.StatusOK, toDeliveryResponse(delivery))
}
