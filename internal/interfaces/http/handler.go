package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"chatrelay/internal/entities"
	"chatrelay/internal/usecases"

	"github.com/gin-gonic/gin"
)

// SessionStats is the read-only view of the session store used by /healthz.
type SessionStats interface {
	Len() int
	ActiveCount() int
}

type Handler struct {
	messageService *usecases.MessageService
	dispatcher     *usecases.Dispatcher
	sessions       SessionStats
	log            *slog.Logger
}

func NewHandler(service *usecases.MessageService, dispatcher *usecases.Dispatcher, sessions SessionStats, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		messageService: service,
		dispatcher:     dispatcher,
		sessions:       sessions,
		log:            log.With("component", "webhook"),
	}
}

func SetupRoutes(r *gin.Engine, h *Handler, maxBodyBytes int64) {
	r.Use(RequestLogger(h.log))
	r.Use(Recovery(h.log))
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(maxBodyBytes))

	r.POST("/webhook", h.HandleWebhook)
	r.GET("/healthz", h.Health)
}

// webhookEvent is the Gupshup inbound message envelope:
// {"payload": {"sender": {"phone": ...}, "payload": {"text": ...}}}
type webhookEvent struct {
	Payload *struct {
		Sender struct {
			Phone senderPhone `json:"phone"`
		} `json:"sender"`
		Payload struct {
			Text string `json:"text"`
		} `json:"payload"`
	} `json:"payload"`
}

// senderPhone accepts the phone as a JSON string or number; Gupshup sends
// strings but numeric ids are kept digit-for-digit.
type senderPhone string

func (p *senderPhone) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*p = ""
	case string:
		*p = senderPhone(x)
	case json.Number:
		*p = senderPhone(x.String())
	default:
		return fmt.Errorf("sender phone must be a string or number, got %T", v)
	}
	return nil
}

// HandleWebhook processes one inbound event to completion before answering.
// Incomplete events are acknowledged with "ignored"; only an unparsable body is an error.
func (h *Handler) HandleWebhook(c *gin.Context) {
	var evt webhookEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		h.log.Error("webhook.malformed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if evt.Payload == nil {
		h.log.Warn("webhook.ignored", slog.String("reason", "no payload"))
		c.JSON(http.StatusOK, "ignored")
		return
	}
	phone := SanitizeString(string(evt.Payload.Sender.Phone))
	text := SanitizeString(evt.Payload.Payload.Text)
	if phone == "" || text == "" {
		h.log.Warn("webhook.ignored", slog.String("reason", "missing sender phone or text"))
		c.JSON(http.StatusOK, "ignored")
		return
	}

	msg := entities.Message{
		From:     phone,
		Content:  text,
		Platform: "whatsapp",
	}

	// The provider may hang up early; the transition and dispatch still run to completion.
	ctx := context.WithoutCancel(c.Request.Context())
	h.messageService.ProcessMessage(ctx, msg)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.sessions != nil {
		resp["sessions"] = h.sessions.Len()
		resp["active_sessions"] = h.sessions.ActiveCount()
	}
	if h.dispatcher != nil {
		sent, failed := h.dispatcher.Stats()
		resp["dispatch_sent"] = sent
		resp["dispatch_failed"] = failed
	}
	c.JSON(http.StatusOK, resp)
}
