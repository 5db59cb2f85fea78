package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sgarlapa/expense-ledger-bot/internal/slack"
)

// EventProcessor runs the normalization pipeline for one inbound event.
type EventProcessor interface {
	Process(ctx context.Context, event slack.InboundEvent)
}

// Handler handles Slack Events API webhook requests.
type Handler struct {
	processor      EventProcessor
	location       *time.Location
	processTimeout time.Duration
	logger         *zap.Logger
}

// NewHandler creates a new webhook handler. location is the timezone message
// timestamps are interpreted in.
func NewHandler(processor EventProcessor, location *time.Location, logger *zap.Logger) *Handler {
	return &Handler{
		processor:      processor,
		location:       location,
		processTimeout: 60 * time.Second,
		logger:         logger,
	}
}

// Handle processes incoming webhook requests. Slack expects a fast 200, so
// events are acknowledged immediately and processed asynchronously.
func (h *Handler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("Failed to read request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	var envelope slack.Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		h.logger.Error("Failed to parse event payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse event payload"})
		return
	}

	// URL verification handshake
	if envelope.Type == "url_verification" {
		h.logger.Info("Answering URL verification challenge")
		c.JSON(http.StatusOK, gin.H{"challenge": envelope.Challenge})
		return
	}

	if envelope.Type != "event_callback" || envelope.Event.Type != "message" {
		c.JSON(http.StatusOK, gin.H{"message": "Event ignored"})
		return
	}

	// Ignore our own and other bots' messages to avoid feedback loops
	if envelope.Event.BotID != "" || envelope.Event.SubType == "bot_message" {
		c.JSON(http.StatusOK, gin.H{"message": "Bot message ignored"})
		return
	}

	event := envelope.Event.ToInbound(h.location, time.Now())

	h.logger.Info("Received message event",
		zap.String("event_id", event.EventID),
		zap.String("author", event.Author),
		zap.Int("attachments", len(event.Attachments)))

	// Process asynchronously to respond quickly to Slack
	go h.process(event)

	c.JSON(http.StatusOK, gin.H{"message": "Event received"})
}

// process runs the pipeline for one event outside the request lifecycle.
func (h *Handler) process(event slack.InboundEvent) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Panic in event processing", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), h.processTimeout)
	defer cancel()

	h.processor.Process(ctx, event)
}
