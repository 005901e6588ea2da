package usecases

import (
	"context"
	"log/slog"

	"chatrelay/internal/entities"
	"chatrelay/internal/interfaces"
	"chatrelay/internal/logger"
)

// MessageService runs the relay pipeline for one inbound message:
// session transition, then dispatch of the reply.
type MessageService struct {
	sessions   *SessionManager
	dispatcher *Dispatcher
	usage      interfaces.UsageRecorder
	log        *slog.Logger
}

func NewMessageService(sessions *SessionManager, dispatcher *Dispatcher, usage interfaces.UsageRecorder, log *slog.Logger) *MessageService {
	if log == nil {
		log = slog.Default()
	}
	return &MessageService{
		sessions:   sessions,
		dispatcher: dispatcher,
		usage:      usage,
		log:        log.With("component", "relay"),
	}
}

// ProcessMessage handles msg to completion. Nothing here fails the caller:
// provider and delivery problems are absorbed and logged.
func (s *MessageService) ProcessMessage(ctx context.Context, msg entities.Message) entities.Response {
	s.log.Info("message.received",
		slog.String("from", msg.From),
		slog.String("platform", msg.Platform),
		slog.String("text", logger.Preview(msg.Content)),
	)
	s.record(ctx, msg.From, s.usageReceived)

	reply := s.sessions.ProcessMessage(ctx, msg.From, msg.Content)
	resp := entities.Response{To: msg.From, Content: reply}
	if reply == "" {
		return resp
	}

	if s.dispatcher.Dispatch(ctx, msg.From, reply) {
		s.record(ctx, msg.From, s.usageSent)
		s.logTodayUsage(ctx, msg.From)
	}
	return resp
}

func (s *MessageService) logTodayUsage(ctx context.Context, userID string) {
	reader, ok := s.usage.(interfaces.UsageReader)
	if !ok {
		return
	}
	sent, received, err := reader.GetTodayUsage(ctx, userID)
	if err != nil {
		s.log.Warn("usage.read.fail", slog.String("user_id", userID), slog.String("error", err.Error()))
		return
	}
	s.log.Info("usage.today",
		slog.String("user_id", userID),
		slog.Int("sent", sent),
		slog.Int("received", received),
	)
}

func (s *MessageService) usageReceived(ctx context.Context, userID string) error {
	return s.usage.IncrementReceived(ctx, userID)
}

func (s *MessageService) usageSent(ctx context.Context, userID string) error {
	return s.usage.IncrementSent(ctx, userID)
}

func (s *MessageService) record(ctx context.Context, userID string, fn func(context.Context, string) error) {
	if s.usage == nil {
		return
	}
	if err := fn(ctx, userID); err != nil {
		s.log.Warn("usage.record.fail", slog.String("user_id", userID), slog.String("error", err.Error()))
	}
}
